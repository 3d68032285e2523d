// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries build identification for the shell binary.
//
// Values are injected at build time via -ldflags, for example:
//
//	go build -ldflags "-X github.com/document-qa/shell/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via -ldflags at build time.
var (
	// GitCommit is the short git SHA of the build.
	GitCommit = "unknown"

	// GitDirty is "true" when the tree had uncommitted changes.
	GitDirty = "false"

	// BuildTime is the UTC timestamp of the build.
	BuildTime = "unknown"

	// Version is the application version shared with the GUI bundle.
	Version = "0.1.0-dev"
)

// Info returns the one-line version string printed by --version.
func Info() string {
	dirty := ""
	if GitDirty == "true" {
		dirty = "-dirty"
	}
	return fmt.Sprintf("%s (%s%s, %s)", Version, GitCommit, dirty, BuildTime)
}

// Full extends Info with the Go toolchain and target platform, which
// decides the sidecar executable name.
func Full() string {
	return fmt.Sprintf("%s\n  Go: %s\n  Platform: %s/%s",
		Info(), runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
