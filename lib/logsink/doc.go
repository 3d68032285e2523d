// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package logsink builds the shell's structured logger.
//
// Everything the shell logs, including every line the backend writes to
// stdout or stderr, goes through the *slog.Logger returned by [New].
// Records go to two places:
//
//   - the console (stderr): slog.TextHandler when stderr is a terminal,
//     slog.JSONHandler otherwise, matching how the rest of the tooling
//     formats logs for humans versus collectors
//   - optionally a JSON log file in the data directory, written through
//     [RotatingFile], which rotates at a size limit and compresses each
//     rotated file with zstd
//
// When the sink is disabled (the production default) New returns a
// logger that drops every record, so callers never check whether
// logging is on.
package logsink
