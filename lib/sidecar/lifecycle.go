// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"fmt"
	"log/slog"
)

// Lifecycle binds a Supervisor to the GUI host's hooks. The host calls
// Setup once the application is ready and CloseRequested when the main
// window is asked to close. Neither hook returns an error or lets a
// panic escape: a broken backend must never keep the window from
// opening or closing.
type Lifecycle struct {
	supervisor       *Supervisor
	workingDirectory string
	logger           *slog.Logger
}

// NewLifecycle returns hooks that start the backend in workingDirectory.
func NewLifecycle(supervisor *Supervisor, workingDirectory string, logger *slog.Logger) *Lifecycle {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Lifecycle{
		supervisor:       supervisor,
		workingDirectory: workingDirectory,
		logger:           logger.With("component", "lifecycle"),
	}
}

// Setup starts the backend. Spawn errors were already logged by the
// supervisor.
func (l *Lifecycle) Setup() {
	defer l.recoverHook("setup")
	_ = l.supervisor.Start(l.workingDirectory)
}

// CloseRequested stops the backend. Kill errors were already logged by
// the supervisor; the window closes regardless.
func (l *Lifecycle) CloseRequested() {
	defer l.recoverHook("close requested")
	l.logger.Info("window close requested, stopping backend")
	_ = l.supervisor.Stop()
}

func (l *Lifecycle) recoverHook(hook string) {
	if r := recover(); r != nil {
		l.logger.Error("panic in lifecycle hook", "hook", hook, "panic", fmt.Sprint(r))
	}
}
