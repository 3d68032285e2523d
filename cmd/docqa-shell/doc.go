// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// docqa-shell is the native host of the Document-QA desktop application.
// It owns the backend sidecar: at startup it resolves the per-user data
// directory, spawns the bundled backend executable there, and relays the
// backend's output into its own log; when the host is asked to close it
// kills the backend before exiting.
//
// In a packaged build the GUI window's ready and close-requested events
// drive the two lifecycle hooks. Run standalone, SIGINT and SIGTERM stand
// in for closing the window.
//
// Run mode comes from configuration. A production build spawns the
// bundled backend; a development build assumes the developer is running
// the backend separately and spawns nothing:
//
//	docqa-shell                          # build defaults, no file
//	docqa-shell --config shell.yaml      # or DOCQA_CONFIG=shell.yaml
//	docqa-shell --mode packaged --data-dir /tmp/docqa
//
// Process tree:
//
//	docqa-shell → backend (own process group on Unix) → [fork] interpreter
package main
