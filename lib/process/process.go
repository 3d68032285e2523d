// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds entrypoint helpers for the shell binary. They
// cover the one place raw stderr output is legitimate: failures that
// happen before the structured logger has been built (flag parsing,
// config loading).
package process

import (
	"fmt"
	"io"
	"os"
)

// exit is replaced in tests.
var exit = os.Exit

// Fatal writes "error: err" to stderr and exits with code 1.
func Fatal(err error) {
	report(os.Stderr, err)
	exit(1)
}

func report(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
