// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the pose relay configuration.
//
// Configuration comes from exactly one file, named by the --config flag
// or the POSE_RELAY_CONFIG environment variable. There is no search
// path and no per-field environment override: what the file says (plus
// defaults for what it omits) is what runs. Without either, the relay
// runs on [Default].
//
// Files are YAML. Files ending in .json or .jsonc are accepted too;
// comments and trailing commas are stripped before decoding. Unknown
// keys are rejected so a misspelled option fails loudly instead of
// silently keeping its default.
//
// Path values (source.trace_path, log.file) may reference ${VAR} or
// ${VAR:-default}, expanded from the process environment.
package config
