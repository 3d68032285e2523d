// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TargetTriple returns the compiler target triple the packaging step
// appends to sidecar executables built for goos/goarch.
func TargetTriple(goos, goarch string) (string, bool) {
	var architecture string
	switch goarch {
	case "amd64":
		architecture = "x86_64"
	case "arm64":
		architecture = "aarch64"
	default:
		return "", false
	}
	switch goos {
	case "windows":
		return architecture + "-pc-windows-msvc", true
	case "darwin":
		return architecture + "-apple-darwin", true
	case "linux":
		return architecture + "-unknown-linux-gnu", true
	default:
		return "", false
	}
}

// ResolveExecutable finds the backend executable called name inside
// directory. The plain name is tried first (installed bundles strip the
// triple), then name-<target triple> (the form the packaging script
// writes). On Windows both carry .exe.
func ResolveExecutable(directory, name, goos, goarch string) (string, error) {
	extension := ""
	if goos == "windows" {
		extension = ".exe"
	}

	candidates := []string{name + extension}
	if triple, ok := TargetTriple(goos, goarch); ok {
		candidates = append(candidates, name+"-"+triple+extension)
	}

	for _, candidate := range candidates {
		path := filepath.Join(directory, candidate)
		info, err := os.Stat(path)
		if err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s (tried %s)",
		ErrExecutableNotFound, name, directory, strings.Join(candidates, ", "))
}

// bundleDirectory is the directory holding the running shell
// executable, where installers place the sidecar.
func bundleDirectory() (string, error) {
	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locating shell executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(executable); err == nil {
		executable = resolved
	}
	return filepath.Dir(executable), nil
}
