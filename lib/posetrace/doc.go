// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package posetrace reads and writes pose trace files: recorded
// tracking-camera output that the relay can replay in place of live
// hardware (bench testing, controller development, regression runs).
//
// A trace is a sequence of deterministic CBOR items (lib/codec):
//
//	Header            version, nominal rate, creation time, origin
//	entry{Record}     zero or more pose records
//	entry{Trailer}    record count and BLAKE3-256 digest
//
// The digest covers the canonical CBOR encoding of every record in
// order. [Reader.Next] verifies the count and digest when it reaches
// the trailer and reports [ErrChecksum] on mismatch; a stream that ends
// before the trailer reports [ErrTruncated].
//
// Compression is chosen from the file extension: ".zst" (zstd),
// ".lz4" (LZ4 frame), anything else is stored raw.
package posetrace
