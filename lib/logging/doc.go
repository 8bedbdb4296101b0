// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging builds the process logger from [config.LogConfig].
//
// Output goes to stderr unless a log file is configured, in which case
// it goes to that file with size-based rotation. The "auto" format
// picks slog.TextHandler when the destination is a terminal and
// slog.JSONHandler otherwise, so an operator at a shell gets readable
// lines while a supervisor capturing stderr gets JSON.
package logging
