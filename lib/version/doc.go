// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the relay
// binaries.
//
// Four package-level variables are injected at build time via
// -ldflags -X:
//
//   - [GitCommit] -- short git SHA of the build
//   - [GitDirty] -- "true" if there were uncommitted changes
//   - [BuildTime] -- UTC timestamp of the build
//   - [Version] -- semantic version string
//
// For example:
//
//	go build -ldflags "-X github.com/bureau-foundation/poserelay/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/pose-relay
package version
