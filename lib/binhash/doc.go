// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash fingerprints executable files with BLAKE3.
//
// The shell logs the digest of the backend executable every time it
// spawns one and records it in the sidecar state file, so a bug report
// from an installed application identifies the exact backend build
// that produced it, independent of the version string the backend
// reports about itself.
//
//   - [HashFile] streams a file through BLAKE3-256 with constant memory
//   - [FormatDigest] renders a digest as lowercase hex, the form used
//     in log output and state files
//   - [ParseDigest] reverses FormatDigest, validating length
//
// This package has no dependencies on other packages in this module.
package binhash
