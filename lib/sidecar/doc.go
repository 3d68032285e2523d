// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package sidecar supervises the Document-QA backend: one child process
// that the desktop shell spawns when the application is ready and kills
// when the window closes.
//
// A [Supervisor] owns at most one live [Child] handle, kept behind a
// mutex because the host calls [Supervisor.Start] and [Supervisor.Stop]
// from different goroutines. Stop takes the handle out of the slot
// under the lock and kills it after releasing the lock, so a kill that
// blocks never stalls anything else that needs the slot, and a second
// Stop finds the slot empty and does nothing.
//
// Each spawned process produces a finite stream of [Event] values:
// stdout lines, stderr lines, runtime errors, and exactly one
// termination notice, which is always last. A relay goroutine per
// process logs them in order (stdout at info, stderr at warn, errors at
// error, termination at info) and exits at the termination notice. A
// backend that crashes is reported the same way as one that exits
// cleanly; nothing is restarted.
//
// Failures are logged and returned but never panic: a missing or broken
// backend must not stop the GUI from opening or closing. [Lifecycle]
// adapts the supervisor to the two host hooks (application setup and
// window close) and absorbs those errors.
//
// In [config.ModeExternallyManaged] the developer runs the backend by
// hand and Start is a logged no-op.
package sidecar
