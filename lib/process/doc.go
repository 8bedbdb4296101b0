// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the relay binaries.
//
// Fatal is the one sanctioned raw write to stderr outside lib/version:
// main() uses it for errors returned before or after the structured
// logger exists, such as a configuration error or a listener that
// could not bind.
package process
