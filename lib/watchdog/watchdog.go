// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package watchdog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileName is the state file's name inside the data directory.
const FileName = "sidecar.json"

// State describes one spawned backend.
type State struct {
	// PID of the backend (and, on Unix, its process group).
	PID int `json:"pid"`

	// Executable is the absolute path that was spawned.
	Executable string `json:"executable"`

	// Digest is the BLAKE3 hex digest of Executable at spawn time.
	// Empty when hashing failed.
	Digest string `json:"digest,omitempty"`

	// WorkingDirectory is the directory the backend was started in.
	WorkingDirectory string `json:"working_directory"`

	// StartedAt is when the spawn succeeded.
	StartedAt time.Time `json:"started_at"`
}

// Write atomically replaces the state file at path. The parent
// directory must exist.
func Write(path string, state State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling sidecar state: %w", err)
	}
	data = append(data, '\n')

	temporaryPath := path + ".tmp"

	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary sidecar state file: %w", err)
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary sidecar state file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary sidecar state file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary sidecar state file: %w", err)
	}

	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming sidecar state file into place: %w", err)
	}

	parentDirectory, err := os.Open(filepath.Dir(path))
	if err == nil {
		parentDirectory.Sync()
		parentDirectory.Close()
	}

	return nil
}

// Read parses the state file at path. A missing file yields an error
// wrapping os.ErrNotExist.
func Read(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return State{}, fmt.Errorf("parsing sidecar state file %s: %w", path, err)
	}
	return state, nil
}

// Check reads the state left by a previous run. It returns the state and
// whether alive reports its PID as still running. A missing file is
// (State{}, false, nil); an unreadable or corrupt file is an error so
// the caller can tell "nothing recorded" from "record damaged".
func Check(path string, alive func(pid int) bool) (State, bool, error) {
	state, err := Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return State{}, false, nil
		}
		return State{}, false, err
	}
	if state.PID <= 0 {
		return state, false, nil
	}
	return state, alive(state.PID), nil
}

// Clear removes the state file. Idempotent.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing sidecar state file: %w", err)
	}
	return nil
}
