// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package posetrace

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/bureau-foundation/poserelay/lib/pose"
)

// FormatVersion is written into every header. Readers reject other
// versions.
const FormatVersion = 1

var (
	// ErrChecksum reports a trailer whose count or digest does not
	// match the records read.
	ErrChecksum = errors.New("posetrace: checksum mismatch")

	// ErrTruncated reports a trace that ended before its trailer.
	ErrTruncated = errors.New("posetrace: trace truncated before trailer")
)

// Header is the first item of a trace.
type Header struct {
	Version int       `json:"version"`
	RateHz  float64   `json:"rate_hz"`
	Created time.Time `json:"created"`
	// Origin describes where the records came from ("synthetic",
	// a device serial number, ...).
	Origin string `json:"origin,omitempty"`
}

// Trailer closes a trace.
type Trailer struct {
	Count  uint64 `json:"count"`
	Digest []byte `json:"digest"`
}

// entry is the envelope for everything after the header. Exactly one
// field is set.
type entry struct {
	Record  *pose.Record `cbor:"r,omitempty"`
	Trailer *Trailer     `cbor:"t,omitempty"`
}

// Compression selects the stream compressor.
type Compression string

const (
	None Compression = "none"
	Zstd Compression = "zstd"
	LZ4  Compression = "lz4"
)

// CompressionFor picks the compression for path from its extension.
func CompressionFor(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return None
	}
}
