// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package posetrace

import (
	"bytes"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/poserelay/lib/codec"
	"github.com/bureau-foundation/poserelay/lib/pose"
)

// Reader reads records from a trace in order.
type Reader struct {
	header  Header
	decoder *codec.Decoder
	digest  hash.Hash
	count   uint64
	trailer *Trailer
	closers []func() error
}

// Open opens the trace at path, decompressing according to its
// extension, and reads the header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace %s: %w", path, err)
	}
	reader, err := NewReader(file, CompressionFor(path))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	reader.closers = append(reader.closers, file.Close)
	return reader, nil
}

// NewReader reads a trace from r. Closing the Reader does not close r.
func NewReader(r io.Reader, compression Compression) (*Reader, error) {
	reader := &Reader{digest: blake3.New()}

	switch compression {
	case Zstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("starting zstd stream: %w", err)
		}
		reader.closers = append(reader.closers, func() error { decoder.Close(); return nil })
		r = decoder
	case LZ4:
		r = lz4.NewReader(r)
	case None, "":
	default:
		return nil, fmt.Errorf("unknown trace compression %q", compression)
	}

	reader.decoder = codec.NewDecoder(r)
	if err := reader.decoder.Decode(&reader.header); err != nil {
		reader.Close()
		if errors.Is(err, io.EOF) {
			return nil, ErrTruncated
		}
		return nil, fmt.Errorf("reading trace header: %w", err)
	}
	if reader.header.Version != FormatVersion {
		reader.Close()
		return nil, fmt.Errorf("unsupported trace version %d (want %d)", reader.header.Version, FormatVersion)
	}
	return reader, nil
}

// Header returns the trace header.
func (r *Reader) Header() Header { return r.header }

// Trailer returns the trailer once Next has returned io.EOF.
func (r *Reader) Trailer() (Trailer, bool) {
	if r.trailer == nil {
		return Trailer{}, false
	}
	return *r.trailer, true
}

// Next returns the next record. At the trailer it verifies the count
// and digest and returns io.EOF, or ErrChecksum on mismatch.
func (r *Reader) Next() (pose.Record, error) {
	if r.trailer != nil {
		return pose.Record{}, io.EOF
	}

	var item entry
	if err := r.decoder.Decode(&item); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return pose.Record{}, ErrTruncated
		}
		return pose.Record{}, fmt.Errorf("reading record %d: %w", r.count, err)
	}

	switch {
	case item.Record != nil:
		data, err := codec.Marshal(*item.Record)
		if err != nil {
			return pose.Record{}, fmt.Errorf("re-encoding record %d: %w", r.count, err)
		}
		r.digest.Write(data)
		r.count++
		return *item.Record, nil
	case item.Trailer != nil:
		r.trailer = item.Trailer
		if item.Trailer.Count != r.count || !bytes.Equal(item.Trailer.Digest, r.digest.Sum(nil)) {
			return pose.Record{}, fmt.Errorf("%w: trailer says %d records, read %d", ErrChecksum, item.Trailer.Count, r.count)
		}
		return pose.Record{}, io.EOF
	default:
		return pose.Record{}, fmt.Errorf("reading record %d: empty trace entry", r.count)
	}
}

// Close releases the decompressor and the file if Open created it.
func (r *Reader) Close() error {
	var err error
	for i := len(r.closers) - 1; i >= 0; i-- {
		err = errors.Join(err, r.closers[i]())
	}
	r.closers = nil
	return err
}

// ReadAll reads every record of the trace at path and verifies its
// trailer.
func ReadAll(path string) (Header, []pose.Record, error) {
	reader, err := Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer reader.Close()

	var records []pose.Record
	for {
		record, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return reader.Header(), records, nil
		}
		if err != nil {
			return reader.Header(), records, err
		}
		records = append(records, record)
	}
}
