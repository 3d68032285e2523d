// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// Command describes a process to spawn.
type Command struct {
	Path string
	Args []string

	// Dir is the working directory.
	Dir string

	// Env is appended to the inherited environment.
	Env []string
}

// Child is the handle to a running process.
type Child interface {
	PID() int

	// Kill terminates the process (on Unix, its whole process group).
	// Killing a process that has already exited succeeds.
	Kill() error
}

// Spawner starts processes. The returned channel delivers the process's
// events in order, ends with exactly one EventTerminated, and is then
// closed. The consumer must drain it until EventTerminated.
type Spawner interface {
	Spawn(command Command) (<-chan Event, Child, error)
}

const (
	// eventBuffer absorbs output bursts while the relay is logging.
	eventBuffer = 64

	// maxLineLength bounds one output line. A longer line is reported
	// as an EventError and the rest of that stream is discarded.
	maxLineLength = 1 << 20
)

// ExecSpawner spawns real operating-system processes.
type ExecSpawner struct{}

var _ Spawner = ExecSpawner{}

// Spawn starts command with piped stdout and stderr.
func (ExecSpawner) Spawn(command Command) (<-chan Event, Child, error) {
	cmd := exec.Command(command.Path, command.Args...)
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	configureCommand(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	events := make(chan Event, eventBuffer)
	go pump(cmd, stdout, stderr, events)
	return events, &execChild{process: cmd.Process}, nil
}

// pump relays both output streams, then reaps the process and sends the
// termination notice. Wait must not run before both pipes hit EOF.
func pump(cmd *exec.Cmd, stdout, stderr io.Reader, events chan<- Event) {
	defer close(events)

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		scanLines(stdout, EventStdout, events)
	}()
	go func() {
		defer readers.Done()
		scanLines(stderr, EventStderr, events)
	}()
	readers.Wait()

	waitErr := cmd.Wait()
	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		events <- Event{Kind: EventError, Err: fmt.Errorf("waiting for backend: %w", waitErr)}
	}
	events <- Event{Kind: EventTerminated, Status: terminationStatus(cmd.ProcessState)}
}

// scanLines sends one event per line. Invalid UTF-8 is replaced rather
// than dropped so a misencoded traceback still reaches the log.
func scanLines(r io.Reader, kind EventKind, events chan<- Event) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineLength)
	for scanner.Scan() {
		events <- Event{Kind: kind, Line: strings.ToValidUTF8(scanner.Text(), "\uFFFD")}
	}
	if err := scanner.Err(); err != nil {
		events <- Event{Kind: EventError, Err: fmt.Errorf("reading backend %s: %w", kind, err)}
		// Keep draining so the backend never blocks on a full pipe.
		_, _ = io.Copy(io.Discard, r)
	}
}

func terminationStatus(state *os.ProcessState) TerminationStatus {
	if state == nil {
		return TerminationStatus{}
	}
	if signal := signalName(state); signal != "" {
		return TerminationStatus{Signal: signal}
	}
	return ExitCode(state.ExitCode())
}

type execChild struct {
	process *os.Process
}

func (c *execChild) PID() int { return c.process.Pid }

func (c *execChild) Kill() error { return killProcess(c.process) }
