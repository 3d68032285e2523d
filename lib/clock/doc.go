// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts wall-clock reads so that code which stamps
// state files, computes backend uptime, or names rotated log files can
// be tested deterministically.
//
// Production code injects [Real]; tests inject [Fake] and move time
// forward explicitly with [FakeClock.Advance]. Nothing in this module
// sleeps or waits on timers, so the interface is limited to reading
// the current time.
package clock
