// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package sidecar

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTargetTriple(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		ok           bool
	}{
		{"windows", "amd64", "x86_64-pc-windows-msvc", true},
		{"windows", "arm64", "aarch64-pc-windows-msvc", true},
		{"darwin", "amd64", "x86_64-apple-darwin", true},
		{"darwin", "arm64", "aarch64-apple-darwin", true},
		{"linux", "amd64", "x86_64-unknown-linux-gnu", true},
		{"linux", "arm64", "aarch64-unknown-linux-gnu", true},
		{"linux", "riscv64", "", false},
		{"freebsd", "amd64", "", false},
	}
	for _, test := range tests {
		got, ok := TargetTriple(test.goos, test.goarch)
		if got != test.want || ok != test.ok {
			t.Errorf("TargetTriple(%q, %q) = %q, %v; want %q, %v",
				test.goos, test.goarch, got, ok, test.want, test.ok)
		}
	}
}

func TestResolveExecutable(t *testing.T) {
	tests := []struct {
		name   string
		files  []string
		goos   string
		goarch string
		want   string
	}{
		{
			name:   "plain name",
			files:  []string{"backend"},
			goos:   "linux",
			goarch: "amd64",
			want:   "backend",
		},
		{
			name:   "target triple",
			files:  []string{"backend-aarch64-apple-darwin"},
			goos:   "darwin",
			goarch: "arm64",
			want:   "backend-aarch64-apple-darwin",
		},
		{
			name:   "plain name preferred over triple",
			files:  []string{"backend", "backend-x86_64-unknown-linux-gnu"},
			goos:   "linux",
			goarch: "amd64",
			want:   "backend",
		},
		{
			name:   "windows extension",
			files:  []string{"backend", "backend.exe"},
			goos:   "windows",
			goarch: "amd64",
			want:   "backend.exe",
		},
		{
			name:   "windows triple with extension",
			files:  []string{"backend-x86_64-pc-windows-msvc.exe"},
			goos:   "windows",
			goarch: "amd64",
			want:   "backend-x86_64-pc-windows-msvc.exe",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			directory := t.TempDir()
			for _, file := range test.files {
				if err := os.WriteFile(filepath.Join(directory, file), nil, 0755); err != nil {
					t.Fatal(err)
				}
			}
			got, err := ResolveExecutable(directory, "backend", test.goos, test.goarch)
			if err != nil {
				t.Fatalf("ResolveExecutable: %v", err)
			}
			if want := filepath.Join(directory, test.want); got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestResolveExecutableMissing(t *testing.T) {
	directory := t.TempDir()
	// A directory with the right name is not an executable.
	if err := os.Mkdir(filepath.Join(directory, "backend"), 0755); err != nil {
		t.Fatal(err)
	}

	_, err := ResolveExecutable(directory, "backend", "linux", "arm64")
	if !errors.Is(err, ErrExecutableNotFound) {
		t.Fatalf("got %v, want ErrExecutableNotFound", err)
	}
	if !strings.Contains(err.Error(), "backend-aarch64-unknown-linux-gnu") {
		t.Errorf("error should list the names tried: %v", err)
	}
}
