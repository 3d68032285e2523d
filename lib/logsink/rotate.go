// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package logsink

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/document-qa/shell/lib/clock"
)

// archiveSuffix ends every rotated, compressed log file.
const archiveSuffix = ".log.zst"

// archiveTimeFormat sorts lexically in chronological order.
const archiveTimeFormat = "20060102T150405Z"

// RotatingFile is an append-only log file that, once a write would push
// it past maxSize, compresses its current contents to
// <name>-<UTC timestamp>.log.zst beside it and starts over empty.
// Safe for concurrent use.
type RotatingFile struct {
	mu         sync.Mutex
	path       string
	maxSize    int64
	maxBackups int
	clock      clock.Clock

	file *os.File
	size int64
}

// OpenRotating opens (appending to) or creates the file at path.
func OpenRotating(path string, maxSize int64, maxBackups int, clk clock.Clock) (*RotatingFile, error) {
	rotating := &RotatingFile{
		path:       path,
		maxSize:    maxSize,
		maxBackups: maxBackups,
		clock:      clk,
	}
	if err := rotating.open(); err != nil {
		return nil, err
	}
	return rotating, nil
}

func (r *RotatingFile) open() error {
	file, err := os.OpenFile(r.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("inspecting log file: %w", err)
	}
	r.file = file
	r.size = info.Size()
	return nil
}

// Write appends p, rotating first when p would overflow the limit. A
// single record larger than the limit is still written whole.
func (r *RotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		return 0, os.ErrClosed
	}

	if r.maxSize > 0 && r.size > 0 && r.size+int64(len(p)) > r.maxSize {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close closes the active file. Further writes return os.ErrClosed.
func (r *RotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// rotate runs with mu held.
func (r *RotatingFile) rotate() error {
	if err := r.file.Close(); err != nil {
		return fmt.Errorf("closing log file for rotation: %w", err)
	}
	r.file = nil

	archive := r.archivePath()
	if err := compressFile(r.path, archive); err != nil {
		// Keep logging into the uncompressed file rather than losing
		// records.
		if openErr := r.open(); openErr != nil {
			return openErr
		}
		return err
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing rotated log file: %w", err)
	}
	if err := r.open(); err != nil {
		return err
	}
	return r.prune()
}

// archivePath returns an unused archive name for the current time.
func (r *RotatingFile) archivePath() string {
	base := strings.TrimSuffix(r.path, filepath.Ext(r.path))
	stamp := r.clock.Now().UTC().Format(archiveTimeFormat)
	candidate := base + "-" + stamp + archiveSuffix
	for sequence := 1; ; sequence++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%s.%d%s", base, stamp, sequence, archiveSuffix)
	}
}

// Archives lists the compressed rotated files, oldest first.
func (r *RotatingFile) Archives() ([]string, error) {
	base := strings.TrimSuffix(r.path, filepath.Ext(r.path))
	matches, err := filepath.Glob(base + "-*" + archiveSuffix)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

func (r *RotatingFile) prune() error {
	if r.maxBackups <= 0 {
		return nil
	}
	archives, err := r.Archives()
	if err != nil {
		return fmt.Errorf("listing log archives: %w", err)
	}
	for len(archives) > r.maxBackups {
		if err := os.Remove(archives[0]); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing old log archive: %w", err)
		}
		archives = archives[1:]
	}
	return nil
}

// compressFile writes a zstd copy of source to destination via a
// temporary file, so a crash never leaves a truncated archive.
func compressFile(source, destination string) error {
	input, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening log file for compression: %w", err)
	}
	defer input.Close()

	temporaryPath := destination + ".tmp"
	output, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating log archive: %w", err)
	}

	encoder, err := zstd.NewWriter(output, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		output.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	if _, err := io.Copy(encoder, input); err != nil {
		encoder.Close()
		output.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("compressing log file: %w", err)
	}
	if err := encoder.Close(); err != nil {
		output.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("finishing log archive: %w", err)
	}
	if err := output.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing log archive: %w", err)
	}
	if err := os.Rename(temporaryPath, destination); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming log archive into place: %w", err)
	}
	return nil
}
