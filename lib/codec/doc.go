// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the relay's CBOR encoding configuration.
//
// The wire protocol to the controller is line-oriented ASCII and never
// touches this package. CBOR is used for on-disk pose traces
// (lib/posetrace), where compact binary floats matter and the format
// must decode identically on the robot and on a workstation.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items, so
// the same record always encodes to the same bytes. posetrace relies
// on that for its trailer checksum.
//
//	data, err := codec.Marshal(record)
//	encoder := codec.NewEncoder(file)
//	decoder := codec.NewDecoder(file)
//
// Types that only ever appear in CBOR use `cbor` struct tags. Types
// that are also printed as JSON by the CLI tools use `json` tags, which
// fxamacker/cbor honors as a fallback. Never put both on one field.
package codec
