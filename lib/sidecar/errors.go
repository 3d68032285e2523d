// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"errors"
	"fmt"
)

var (
	// ErrExecutableNotFound means no backend executable exists in the
	// bundle directory under any accepted name.
	ErrExecutableNotFound = errors.New("sidecar: backend executable not found")

	// ErrAlreadyRunning is returned by Start while a spawn is in
	// progress or a backend is live.
	ErrAlreadyRunning = errors.New("sidecar: backend already running")
)

// SpawnError reports that the backend could not be started. It wraps
// ErrExecutableNotFound or the operating system's error.
type SpawnError struct {
	// Executable is the resolved path, or the bare name when resolution
	// itself failed.
	Executable string
	Err        error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawning backend %s: %v", e.Executable, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// KillError reports that the backend could not be terminated.
type KillError struct {
	PID int
	Err error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("killing backend (pid %d): %v", e.PID, e.Err)
}

func (e *KillError) Unwrap() error { return e.Err }
