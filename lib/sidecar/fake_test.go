// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/document-qa/shell/lib/clock"
	"github.com/document-qa/shell/lib/config"
	"github.com/document-qa/shell/lib/testutil"
	"github.com/document-qa/shell/lib/watchdog"
)

// spawnerFunc adapts a function to Spawner.
type spawnerFunc func(Command) (<-chan Event, Child, error)

func (f spawnerFunc) Spawn(command Command) (<-chan Event, Child, error) { return f(command) }

// fakeProcess is a scripted child. Killing it delivers a SIGKILL
// termination notice, like a real process dying.
type fakeProcess struct {
	pid     int
	events  chan Event
	killErr error

	kills     atomic.Int32
	closeOnce sync.Once
}

func newFakeProcess(pid int) *fakeProcess {
	return &fakeProcess{pid: pid, events: make(chan Event, 32)}
}

func (p *fakeProcess) PID() int { return p.pid }

func (p *fakeProcess) Kill() error {
	p.kills.Add(1)
	if p.killErr != nil {
		return p.killErr
	}
	p.terminate(TerminationStatus{Signal: "SIGKILL"})
	return nil
}

func (p *fakeProcess) stdout(line string) { p.events <- Event{Kind: EventStdout, Line: line} }
func (p *fakeProcess) stderr(line string) { p.events <- Event{Kind: EventStderr, Line: line} }
func (p *fakeProcess) exit(code int)      { p.terminate(ExitCode(code)) }

func (p *fakeProcess) terminate(status TerminationStatus) {
	p.closeOnce.Do(func() {
		p.events <- Event{Kind: EventTerminated, Status: status}
		close(p.events)
	})
}

// processSpawner hands out fake processes in order and records commands.
type processSpawner struct {
	mu        sync.Mutex
	processes []*fakeProcess
	commands  []Command
}

func (s *processSpawner) Spawn(command Command) (<-chan Event, Child, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, command)
	process := newFakeProcess(1000 + len(s.commands))
	s.processes = append(s.processes, process)
	return process.events, process, nil
}

func (s *processSpawner) spawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

func (s *processSpawner) process(i int) *fakeProcess {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processes[i]
}

type harness struct {
	supervisor *Supervisor
	logs       *testutil.LogRecorder
	binDir     string
	dataDir    string
	statePath  string
	clock      *clock.FakeClock
}

var epoch = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// newHarness builds a packaged-mode supervisor whose bundle directory
// holds a "backend" file, so executable resolution succeeds.
func newHarness(t *testing.T, spawner Spawner, adjust ...func(*Options)) *harness {
	t.Helper()
	binDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(binDir, "backend"), []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatalf("writing fake backend: %v", err)
	}
	dataDir := t.TempDir()
	logs, logger := testutil.NewLogRecorder()
	fake := clock.Fake(epoch)

	options := Options{
		Mode:      config.ModePackaged,
		Name:      "backend",
		BinDir:    binDir,
		GOOS:      "linux",
		GOARCH:    "amd64",
		StatePath: filepath.Join(dataDir, watchdog.FileName),
		Spawner:   spawner,
		Logger:    logger,
		Clock:     fake,
		Alive:     func(int) bool { return false },
	}
	for _, f := range adjust {
		f(&options)
	}

	return &harness{
		supervisor: New(options),
		logs:       logs,
		binDir:     binDir,
		dataDir:    dataDir,
		statePath:  options.StatePath,
		clock:      fake,
	}
}

// backendRecords filters the relayed backend output from the
// supervisor's own records.
func (h *harness) backendRecords() []testutil.Record {
	var records []testutil.Record
	for _, record := range h.logs.Records() {
		if record.Attrs["component"] == "backend" {
			records = append(records, record)
		}
	}
	return records
}

const relayTimeout = 5 * time.Second
