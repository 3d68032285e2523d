// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package binhash

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func TestHashFile(t *testing.T) {
	content := []byte("#!/bin/sh\necho backend\n")
	path := filepath.Join(t.TempDir(), "backend")
	if err := os.WriteFile(path, content, 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}

	want := blake3.Sum256(content)
	if got != want {
		t.Errorf("HashFile = %x, want %x", got, want)
	}
}

func TestHashFileLargerThanCopyBuffer(t *testing.T) {
	content := []byte(strings.Repeat("document-qa ", 20000))
	path := filepath.Join(t.TempDir(), "backend")
	if err := os.WriteFile(path, content, 0755); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if want := blake3.Sum256(content); got != want {
		t.Errorf("HashFile = %x, want %x", got, want)
	}
}

func TestHashFileNonexistent(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should wrap os.ErrNotExist, got %v", err)
	}
}

func TestFormatParseDigest(t *testing.T) {
	digest := blake3.Sum256([]byte("backend"))
	formatted := FormatDigest(digest)
	if len(formatted) != 64 {
		t.Fatalf("FormatDigest length = %d, want 64", len(formatted))
	}

	parsed, err := ParseDigest(formatted)
	if err != nil {
		t.Fatalf("ParseDigest: %v", err)
	}
	if parsed != digest {
		t.Errorf("ParseDigest = %x, want %x", parsed, digest)
	}
}

func TestParseDigestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not hex", "zz"},
		{"too short", "abcd"},
		{"too long", strings.Repeat("ab", 33)},
		{"empty", ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseDigest(test.input); err == nil {
				t.Errorf("ParseDigest(%q) succeeded, want error", test.input)
			}
		})
	}
}
