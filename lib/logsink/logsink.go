// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package logsink

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/document-qa/shell/lib/clock"
)

// FileName is the active log file inside the log directory.
const FileName = "docqa-shell.log"

// Options configures New.
type Options struct {
	// Enabled false yields a logger that discards everything.
	Enabled bool

	// Level is the minimum level for both destinations.
	Level slog.Level

	// Console receives human- or machine-readable records. Nil means
	// os.Stderr.
	Console io.Writer

	// Directory, when non-empty, enables the log file
	// Directory/docqa-shell.log. The directory is created if needed.
	Directory string

	// MaxSize rotates the file once it would exceed this many bytes.
	// Zero disables rotation.
	MaxSize int64

	// MaxBackups is the number of compressed rotated files kept. Zero
	// keeps all of them.
	MaxBackups int

	// Clock names rotated files. Nil means the real clock.
	Clock clock.Clock
}

// New returns the logger and a Closer that flushes and closes the log
// file. The Closer is always non-nil.
func New(options Options) (*slog.Logger, io.Closer, error) {
	if !options.Enabled {
		return slog.New(slog.DiscardHandler), nopCloser{}, nil
	}

	console := options.Console
	if console == nil {
		console = os.Stderr
	}
	handlerOptions := &slog.HandlerOptions{Level: options.Level}

	handlers := []slog.Handler{consoleHandler(console, handlerOptions)}
	var closer io.Closer = nopCloser{}

	if options.Directory != "" {
		if err := os.MkdirAll(options.Directory, 0755); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		clk := options.Clock
		if clk == nil {
			clk = clock.Real()
		}
		file, err := OpenRotating(filepath.Join(options.Directory, FileName), options.MaxSize, options.MaxBackups, clk)
		if err != nil {
			return nil, nil, err
		}
		handlers = append(handlers, slog.NewJSONHandler(file, handlerOptions))
		closer = file
	}

	if len(handlers) == 1 {
		return slog.New(handlers[0]), closer, nil
	}
	return slog.New(fanout(handlers)), closer, nil
}

// consoleHandler picks text output for terminals and JSON otherwise.
func consoleHandler(w io.Writer, options *slog.HandlerOptions) slog.Handler {
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
