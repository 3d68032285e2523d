// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package watchdog records the backend process the shell is currently
// supervising in a small state file inside the data directory.
//
// The supervisor writes a [State] right after a successful spawn and
// clears it when the backend is killed or exits on its own. If the shell
// itself crashes, or is force-quit by the OS, the file survives. On the
// next start [Check] reports it, together with whether the recorded PID
// is still alive, so the shell can warn that an orphaned backend may be
// holding the database or listening port.
//
// The file is written atomically (temporary file, fsync, rename, fsync
// of the parent directory) so a reader never sees a partial state.
//
// This package has no dependencies on other packages in this module.
package watchdog
