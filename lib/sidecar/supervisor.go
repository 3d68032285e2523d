// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/document-qa/shell/lib/binhash"
	"github.com/document-qa/shell/lib/clock"
	"github.com/document-qa/shell/lib/config"
	"github.com/document-qa/shell/lib/watchdog"
)

// State is the supervisor's position in the backend lifecycle.
type State int

const (
	StateNotStarted State = iota
	StateSpawning
	StateRunning
	StateTerminating
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not-started"
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateTerminating:
		return "terminating"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Options configures a Supervisor. Zero values select production
// behavior where one exists.
type Options struct {
	// Mode decides whether Start spawns anything.
	Mode config.Mode

	// Name is the backend executable's base name.
	Name string

	// BinDir is searched for the executable. Empty means the directory
	// of the running shell executable.
	BinDir string

	Args []string
	Env  []string

	// GOOS and GOARCH select the executable naming scheme. Empty means
	// the running platform.
	GOOS   string
	GOARCH string

	// StatePath, when set, is where the running backend is recorded
	// for orphan detection after a shell crash.
	StatePath string

	Spawner Spawner
	Logger  *slog.Logger
	Clock   clock.Clock

	// Alive probes a PID from a previous run. Nil means ProcessAlive.
	Alive func(pid int) bool
}

// Supervisor owns the lifecycle of one backend process at a time.
type Supervisor struct {
	options       Options
	logger        *slog.Logger
	backendLogger *slog.Logger

	mu sync.Mutex
	// child is the live handle; nil before start and after stop.
	child Child
	state State
	// generation identifies the process instance child belongs to, so a
	// relay that outlives its process never clears a newer handle.
	generation uint64
	// stopRequested records a Stop that arrived while spawning.
	stopRequested bool
	relayDone     chan struct{}
}

// New returns a Supervisor in StateNotStarted.
func New(options Options) *Supervisor {
	if options.Spawner == nil {
		options.Spawner = ExecSpawner{}
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Alive == nil {
		options.Alive = ProcessAlive
	}
	if options.GOOS == "" {
		options.GOOS = runtime.GOOS
	}
	if options.GOARCH == "" {
		options.GOARCH = runtime.GOARCH
	}
	return &Supervisor{
		options:       options,
		logger:        options.Logger.With("component", "sidecar"),
		backendLogger: options.Logger.With("component", "backend"),
	}
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// RelayDone returns a channel closed when the relay of the most recently
// spawned process has seen its termination notice. Before any spawn the
// channel is already closed.
func (s *Supervisor) RelayDone() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.relayDone == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.relayDone
}

// Start spawns the backend with workingDirectory as its working
// directory and begins relaying its output. A failure is logged here,
// once, and returned as a *SpawnError; nothing is retried.
func (s *Supervisor) Start(workingDirectory string) error {
	if s.options.Mode == config.ModeExternallyManaged {
		s.logger.Info("backend is externally managed, not spawning",
			"mode", string(s.options.Mode),
		)
		return nil
	}

	s.mu.Lock()
	switch s.state {
	case StateSpawning, StateRunning, StateTerminating:
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.state = StateSpawning
	s.stopRequested = false
	s.mu.Unlock()

	s.checkOrphan()

	events, child, executable, err := s.spawn(workingDirectory)
	if err != nil {
		s.mu.Lock()
		s.state = StateNotStarted
		s.mu.Unlock()
		s.logger.Error("starting backend failed",
			"working_directory", workingDirectory,
			"error", err,
		)
		return err
	}

	startedAt := s.options.Clock.Now()
	digest := s.fingerprint(executable)

	// Recorded before the handle is published so that a concurrent
	// Stop's kill always clears it afterwards.
	s.recordState(watchdog.State{
		PID:              child.PID(),
		Executable:       executable,
		Digest:           digest,
		WorkingDirectory: workingDirectory,
		StartedAt:        startedAt,
	})

	done := make(chan struct{})
	s.mu.Lock()
	s.generation++
	generation := s.generation
	s.relayDone = done
	stopRequested := s.stopRequested
	if stopRequested {
		s.state = StateTerminating
	} else {
		s.child = child
		s.state = StateRunning
	}
	s.mu.Unlock()

	s.logger.Info("backend started",
		"pid", child.PID(),
		"executable", executable,
		"digest", digest,
		"working_directory", workingDirectory,
	)

	go s.relay(events, generation, startedAt, done)

	if stopRequested {
		s.logger.Info("stop requested while spawning, terminating backend", "pid", child.PID())
		_ = s.kill(child)
	}
	return nil
}

// spawn resolves the executable and starts it. Runs without the lock.
func (s *Supervisor) spawn(workingDirectory string) (<-chan Event, Child, string, error) {
	directory := s.options.BinDir
	if directory == "" {
		var err error
		if directory, err = bundleDirectory(); err != nil {
			return nil, nil, "", &SpawnError{Executable: s.options.Name, Err: err}
		}
	}

	executable, err := ResolveExecutable(directory, s.options.Name, s.options.GOOS, s.options.GOARCH)
	if err != nil {
		return nil, nil, "", &SpawnError{Executable: s.options.Name, Err: err}
	}

	events, child, err := s.options.Spawner.Spawn(Command{
		Path: executable,
		Args: s.options.Args,
		Dir:  workingDirectory,
		Env:  s.options.Env,
	})
	if err != nil {
		return nil, nil, "", &SpawnError{Executable: executable, Err: err}
	}
	return events, child, executable, nil
}

// Stop kills the backend if one is live. The handle is taken out of the
// slot under the lock and killed after the lock is released, so only
// the first of several concurrent or repeated calls does anything.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	child := s.child
	s.child = nil
	if child == nil {
		if s.state == StateSpawning {
			s.stopRequested = true
		}
		s.mu.Unlock()
		return nil
	}
	s.state = StateTerminating
	s.mu.Unlock()

	return s.kill(child)
}

// kill terminates a handle that has already been removed from the slot.
func (s *Supervisor) kill(child Child) error {
	pid := child.PID()
	if err := child.Kill(); err != nil {
		s.setState(StateStopped)
		s.logger.Error("terminating backend failed", "pid", pid, "error", err)
		// The state file stays: the process may outlive the shell.
		return &KillError{PID: pid, Err: err}
	}
	s.setState(StateStopped)
	s.logger.Info("backend terminated", "pid", pid)
	s.clearState()
	return nil
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// relay logs every event of one process instance in arrival order and
// returns at its termination notice.
func (s *Supervisor) relay(events <-chan Event, generation uint64, startedAt time.Time, done chan struct{}) {
	defer close(done)

	for event := range events {
		switch event.Kind {
		case EventStdout:
			s.backendLogger.Info(event.Line, "stream", "stdout")
		case EventStderr:
			s.backendLogger.Warn(event.Line, "stream", "stderr")
		case EventError:
			s.backendLogger.Error("backend error", "error", event.Err)
		case EventTerminated:
			s.backendLogger.Info("backend exited", terminationAttrs(event.Status, s.options.Clock.Now().Sub(startedAt))...)
			s.exited(generation)
			return
		}
	}

	// A spawner that closes the stream without a termination notice
	// still means the process is gone.
	s.backendLogger.Error("backend output ended without a termination notice")
	s.exited(generation)
}

// exited clears the slot after the process ended on its own. If Stop
// already took the handle there is nothing to do.
func (s *Supervisor) exited(generation uint64) {
	s.mu.Lock()
	owned := s.generation == generation && s.child != nil
	if owned {
		s.child = nil
		s.state = StateStopped
	}
	s.mu.Unlock()

	if owned {
		s.clearState()
	}
}

func terminationAttrs(status TerminationStatus, uptime time.Duration) []any {
	attrs := []any{"status", status.String()}
	if status.Code != nil {
		attrs = append(attrs, "exit_code", *status.Code)
	}
	if status.Signal != "" {
		attrs = append(attrs, "signal", status.Signal)
	}
	return append(attrs, "uptime", uptime.Round(time.Millisecond).String())
}

// fingerprint hashes the executable for the log and state file. A hash
// failure is not a spawn failure.
func (s *Supervisor) fingerprint(executable string) string {
	digest, err := binhash.HashFile(executable)
	if err != nil {
		s.logger.Warn("hashing backend executable failed", "executable", executable, "error", err)
		return ""
	}
	return binhash.FormatDigest(digest)
}

// checkOrphan reports a backend left running by a previous shell that
// did not shut down cleanly. The PID is not killed: after a crash it may
// already belong to an unrelated process.
func (s *Supervisor) checkOrphan() {
	if s.options.StatePath == "" {
		return
	}
	previous, alive, err := watchdog.Check(s.options.StatePath, s.options.Alive)
	if err != nil {
		s.logger.Warn("reading previous sidecar state failed", "path", s.options.StatePath, "error", err)
	} else if alive {
		s.logger.Warn("backend from a previous session may still be running",
			"pid", previous.PID,
			"executable", previous.Executable,
			"started_at", previous.StartedAt,
		)
	}
	s.clearState()
}

func (s *Supervisor) recordState(state watchdog.State) {
	if s.options.StatePath == "" {
		return
	}
	if err := watchdog.Write(s.options.StatePath, state); err != nil {
		s.logger.Warn("recording sidecar state failed", "path", s.options.StatePath, "error", err)
	}
}

func (s *Supervisor) clearState() {
	if s.options.StatePath == "" {
		return
	}
	if err := watchdog.Clear(s.options.StatePath); err != nil {
		s.logger.Warn("clearing sidecar state failed", "path", s.options.StatePath, "error", err)
	}
}
