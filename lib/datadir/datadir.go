// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package datadir resolves the per-user application-data directory the
// backend runs in. The backend keeps its SQLite database, uploaded
// documents, and vector index relative to its working directory, so
// this path is where all user data lives:
//
//	windows  %APPDATA%\Document-QA
//	darwin   ~/Library/Application Support/Document-QA
//	other    ~/.document-qa
package datadir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoHome is returned when the platform layout needs a home directory
// and none is known.
var ErrNoHome = errors.New("datadir: home directory unknown")

// Resolve computes the data directory for appName on goos. getenv is
// consulted for APPDATA on Windows; home is the user's home directory
// (may be empty when APPDATA is set on Windows). The result uses the
// path separator of the running OS.
func Resolve(goos, appName string, getenv func(string) string, home string) (string, error) {
	if appName == "" {
		return "", fmt.Errorf("datadir: application name is empty")
	}
	switch goos {
	case "windows":
		if appData := getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName), nil
		}
		if home == "" {
			return "", ErrNoHome
		}
		return filepath.Join(home, "AppData", "Roaming", appName), nil
	case "darwin":
		if home == "" {
			return "", ErrNoHome
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	default:
		if home == "" {
			return "", ErrNoHome
		}
		return filepath.Join(home, "."+strings.ToLower(appName)), nil
	}
}

// Ensure creates directory and any missing parents.
func Ensure(directory string) error {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("creating data directory %s: %w", directory, err)
	}
	return nil
}
