// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package sidecar

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureCommand puts the backend in its own process group. A
// PyInstaller one-file executable is a bootloader that forks the real
// interpreter, so killing only the direct child would orphan it.
func configureCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcess sends SIGKILL to the process group led by process.
func killProcess(process *os.Process) error {
	if err := process.Signal(syscall.Signal(0)); errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	err := unix.Kill(-process.Pid, unix.SIGKILL)
	if err == nil || errors.Is(err, unix.ESRCH) {
		return nil
	}
	// The group is unreachable (EPERM); the leader alone is better
	// than nothing.
	if err := process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// ProcessAlive reports whether pid names a running process. EPERM means
// it exists but belongs to someone else, which still counts.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

func signalName(state *os.ProcessState) string {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return ""
	}
	return unix.SignalName(status.Signal())
}
