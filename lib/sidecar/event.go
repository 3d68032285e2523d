// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"fmt"
	"strconv"
)

// EventKind tags an Event.
type EventKind int

const (
	// EventStdout carries one line the backend wrote to stdout.
	EventStdout EventKind = iota + 1
	// EventStderr carries one line the backend wrote to stderr.
	EventStderr
	// EventError reports a failure reading output or waiting for the
	// process. The process may still be running.
	EventError
	// EventTerminated is the last event of every stream.
	EventTerminated
)

func (k EventKind) String() string {
	switch k {
	case EventStdout:
		return "stdout"
	case EventStderr:
		return "stderr"
	case EventError:
		return "error"
	case EventTerminated:
		return "terminated"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// Event is one item of a child's output stream. Line is set for
// EventStdout and EventStderr, Err for EventError, Status for
// EventTerminated.
type Event struct {
	Kind   EventKind
	Line   string
	Err    error
	Status TerminationStatus
}

// TerminationStatus describes how the process ended. Code is nil when
// the process was killed by a signal; Signal is empty otherwise.
type TerminationStatus struct {
	Code   *int
	Signal string
}

// ExitCode builds a status for a normal exit.
func ExitCode(code int) TerminationStatus {
	return TerminationStatus{Code: &code}
}

func (s TerminationStatus) String() string {
	switch {
	case s.Code != nil:
		return fmt.Sprintf("exit status %d", *s.Code)
	case s.Signal != "":
		return "signal: " + s.Signal
	default:
		return "unknown"
	}
}
