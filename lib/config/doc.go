// Copyright 2026 The Document-QA Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the shell's configuration.
//
// A desktop application must start with no configuration file at all,
// so unlike a server the shell falls back to [Default] when neither the
// --config flag nor DOCQA_CONFIG names a file. When a file is given it
// is the single source of truth: environment variables do not override
// its values, apart from ${VAR} expansion in path fields.
//
// Files ending in .json or .jsonc are read as JSON with comments; any
// other extension is read as YAML.
//
// The file may carry development and production sections that override
// base values when [Config].Environment matches. The environment decides
// the two things a debug build and a release build differ on:
//
//   - [Config].Mode: development defaults to [ModeExternallyManaged]
//     (the developer runs the backend by hand, the shell spawns
//     nothing); production defaults to [ModePackaged] (the shell spawns
//     the bundled sidecar).
//   - [LoggingConfig].Enabled: on in development, off in production.
//
// Without a file the environment is [BuildEnvironment], which release
// bundles set to production at link time. In production, logging is
// disabled beneath whatever the file's production section says.
//
// The mode is resolved once at startup and handed to the supervisor as a
// plain value; nothing else branches on the build type.
package config
