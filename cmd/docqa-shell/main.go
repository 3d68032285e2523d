// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/document-qa/shell/lib/config"
	"github.com/document-qa/shell/lib/datadir"
	"github.com/document-qa/shell/lib/logsink"
	"github.com/document-qa/shell/lib/process"
	"github.com/document-qa/shell/lib/sidecar"
	"github.com/document-qa/shell/lib/version"
	"github.com/document-qa/shell/lib/watchdog"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		process.Fatal(err)
	}
}

// relayGrace bounds how long shutdown waits for the backend's final
// log lines.
const relayGrace = 2 * time.Second

// flags holds the parsed command line. Empty strings mean "not given".
type flags struct {
	configPath  string
	mode        string
	dataDir     string
	logLevel    string
	showVersion bool
}

func parseFlags(args []string, output io.Writer) (flags, error) {
	var parsed flags

	flagSet := pflag.NewFlagSet("docqa-shell", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.StringVar(&parsed.configPath, "config", "", "path to a YAML or JSONC config file (default: $"+config.EnvironmentVariable+", else built-in defaults)")
	flagSet.StringVar(&parsed.mode, "mode", "", "run mode: packaged or externally-managed (overrides config)")
	flagSet.StringVar(&parsed.dataDir, "data-dir", "", "application data directory (overrides config and platform default)")
	flagSet.StringVar(&parsed.logLevel, "log-level", "", "minimum log level: debug, info, warn, error (overrides config)")
	flagSet.BoolVar(&parsed.showVersion, "version", false, "print version information and exit")

	if err := flagSet.Parse(args); err != nil {
		return flags{}, err
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return flags{}, fmt.Errorf("unexpected argument: %s", rest[0])
	}
	return parsed, nil
}

// loadConfig reads configuration and applies command-line overrides on
// top of it.
func loadConfig(parsed flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if parsed.configPath != "" {
		cfg, err = config.LoadFile(parsed.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if parsed.mode != "" {
		mode, err := config.ParseMode(parsed.mode)
		if err != nil {
			return nil, fmt.Errorf("--mode: %w", err)
		}
		cfg.Mode = mode
	}
	if parsed.dataDir != "" {
		cfg.Data.Dir = parsed.dataDir
	}
	if parsed.logLevel != "" {
		cfg.Logging.Level = parsed.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dataDirectory returns the configured data directory or the platform
// default for the application name.
func dataDirectory(cfg *config.Config, goos string, getenv func(string) string, home string) (string, error) {
	if cfg.Data.Dir != "" {
		return filepath.Clean(cfg.Data.Dir), nil
	}
	return datadir.Resolve(goos, cfg.AppName, getenv, home)
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	parsed, err := parseFlags(args, os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if parsed.showVersion {
		fmt.Fprintf(stdout, "docqa-shell %s\n", version.Full())
		return nil
	}

	cfg, err := loadConfig(parsed)
	if err != nil {
		return err
	}

	// A missing home directory only matters if the platform layout
	// needs it, which Resolve reports.
	home, _ := os.UserHomeDir()
	dataDir, err := dataDirectory(cfg, runtime.GOOS, os.Getenv, home)
	if err != nil {
		return fmt.Errorf("resolving data directory: %w", err)
	}
	if err := datadir.Ensure(dataDir); err != nil {
		return err
	}

	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return err
	}
	sinkOptions := logsink.Options{
		Enabled:    cfg.Logging.Enabled,
		Level:      level,
		MaxSize:    int64(cfg.Logging.MaxSizeMB) << 20,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if cfg.Logging.File {
		sinkOptions.Directory = filepath.Join(dataDir, "logs")
	}
	logger, logCloser, err := logsink.New(sinkOptions)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer logCloser.Close()

	logger.Info("docqa-shell starting",
		"version", version.Info(),
		"environment", string(cfg.Environment),
		"mode", string(cfg.Mode),
		"data_dir", dataDir,
	)

	supervisor := sidecar.New(sidecar.Options{
		Mode:      cfg.Mode,
		Name:      cfg.Backend.Name,
		BinDir:    cfg.Backend.BinDir,
		Args:      cfg.Backend.Args,
		Env:       cfg.Backend.Environ(),
		StatePath: filepath.Join(dataDir, watchdog.FileName),
		Logger:    logger,
	})
	lifecycle := sidecar.NewLifecycle(supervisor, dataDir, logger)

	lifecycle.Setup()
	<-ctx.Done()
	lifecycle.CloseRequested()

	// The relay logs the termination notice; give it a moment so the last
	// line reaches the log file before it is closed. A backend that
	// survived a failed kill would hold the relay open indefinitely.
	select {
	case <-supervisor.RelayDone():
	case <-time.After(relayGrace):
	}
	logger.Info("docqa-shell stopped")
	return nil
}
