// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package posetrace

import (
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/poserelay/lib/codec"
	"github.com/bureau-foundation/poserelay/lib/pose"
)

// Writer appends records to a trace. Close must be called to write the
// trailer; a trace without one is reported as truncated on replay.
type Writer struct {
	compressor io.WriteCloser // nil for None
	encoder    *codec.Encoder

	// Set by Create. Records go to temporaryPath, which Close renames
	// to path, so a reader never sees a trace that is still being
	// written.
	file          *os.File
	path          string
	temporaryPath string

	digest hash.Hash
	count  uint64
	closed bool
}

// Create starts the trace file at path, compressed according to its
// extension, and writes header. The file appears at path, replacing any
// existing one, only when Close succeeds.
func Create(path string, header Header) (*Writer, error) {
	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating trace %s: %w", path, err)
	}
	writer, err := NewWriter(file, CompressionFor(path), header)
	if err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return nil, err
	}
	writer.file = file
	writer.path = path
	writer.temporaryPath = temporaryPath
	return writer, nil
}

// NewWriter writes a trace to w. Closing the Writer does not close w.
func NewWriter(w io.Writer, compression Compression, header Header) (*Writer, error) {
	writer := &Writer{digest: blake3.New()}

	switch compression {
	case Zstd:
		encoder, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("starting zstd stream: %w", err)
		}
		writer.compressor = encoder
		w = encoder
	case LZ4:
		compressor := lz4.NewWriter(w)
		writer.compressor = compressor
		w = compressor
	case None, "":
	default:
		return nil, fmt.Errorf("unknown trace compression %q", compression)
	}

	header.Version = FormatVersion
	writer.encoder = codec.NewEncoder(w)
	if err := writer.encoder.Encode(header); err != nil {
		return nil, fmt.Errorf("writing trace header: %w", err)
	}
	return writer, nil
}

// Write appends one record.
func (w *Writer) Write(record pose.Record) error {
	if w.closed {
		return errors.New("posetrace: write after close")
	}
	data, err := codec.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding record %d: %w", w.count, err)
	}
	w.digest.Write(data)
	if err := w.encoder.Encode(entry{Record: &record}); err != nil {
		return fmt.Errorf("writing record %d: %w", w.count, err)
	}
	w.count++
	return nil
}

// Count returns the number of records written so far.
func (w *Writer) Count() uint64 { return w.count }

// Close writes the trailer and flushes the compressor, then closes the
// file if the Writer opened it. Calling Close twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	trailer := Trailer{Count: w.count, Digest: w.digest.Sum(nil)}
	err := w.encoder.Encode(entry{Trailer: &trailer})
	if err != nil {
		err = fmt.Errorf("writing trace trailer: %w", err)
	}
	if w.compressor != nil {
		err = errors.Join(err, w.compressor.Close())
	}
	if w.file == nil {
		return err
	}
	if err != nil {
		w.discard()
		return err
	}
	return w.commit()
}

// Abort discards a trace started by Create without publishing it. It
// is a no-op after Close.
func (w *Writer) Abort() {
	if w.closed {
		return
	}
	w.closed = true
	if w.compressor != nil {
		w.compressor.Close()
	}
	if w.file != nil {
		w.discard()
	}
}

// commit syncs the temporary file and renames it into place.
func (w *Writer) commit() error {
	if err := w.file.Sync(); err != nil {
		w.discard()
		return fmt.Errorf("syncing trace %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		os.Remove(w.temporaryPath)
		return fmt.Errorf("closing trace %s: %w", w.path, err)
	}
	if err := os.Rename(w.temporaryPath, w.path); err != nil {
		os.Remove(w.temporaryPath)
		return fmt.Errorf("renaming trace into place: %w", err)
	}

	// Make the rename durable across a power loss.
	if directory, err := os.Open(filepath.Dir(w.path)); err == nil {
		directory.Sync()
		directory.Close()
	}
	return nil
}

func (w *Writer) discard() {
	w.file.Close()
	os.Remove(w.temporaryPath)
}
