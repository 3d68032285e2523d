// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers.
//
// [RequireReceive] and [RequireClosed] wrap the select-with-timeout
// pattern so tests that wait on relay goroutines fail with a message
// instead of hanging. These are the only helpers that use real
// wall-clock timeouts.
//
// [LogRecorder] is a slog.Handler that keeps every record it receives,
// in order, so tests can assert the exact sequence of lines the
// supervisor logged (level, message, attributes).
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
