// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import "testing"

func TestTerminationStatusString(t *testing.T) {
	tests := []struct {
		status TerminationStatus
		want   string
	}{
		{ExitCode(0), "exit status 0"},
		{ExitCode(2), "exit status 2"},
		{TerminationStatus{Signal: "SIGKILL"}, "signal: SIGKILL"},
		{TerminationStatus{}, "unknown"},
	}
	for _, test := range tests {
		if got := test.status.String(); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}

func TestEventKindString(t *testing.T) {
	tests := map[EventKind]string{
		EventStdout:     "stdout",
		EventStderr:     "stderr",
		EventError:      "error",
		EventTerminated: "terminated",
		EventKind(0):    "unknown(0)",
	}
	for kind, want := range tests {
		if got := kind.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", int(kind), got, want)
		}
	}
}
