package blobstore

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the algorithm used by CompressStore.
type Compression int

const (
	// CompressionZstd compresses blobs with zstandard.
	CompressionZstd Compression = iota
	// CompressionLZ4 compresses blobs with lz4.
	CompressionLZ4
)

// String returns a string representation of the Compression.
func (c Compression) String() string {
	switch c {
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// Per-blob magic prefixes. Blobs are self-describing so a store written
// with one algorithm can be read back regardless of the wrapper's own
// configured algorithm, and uncompressed blobs pass through untouched.
var (
	magicZstd = []byte{'G', 'Q', 'Z', '1'}
	magicLZ4  = []byte{'G', 'Q', 'L', '1'}
)

// CompressStore wraps a BlobStore and transparently compresses blob
// contents. The wrapped layout is otherwise unchanged: blob names and
// the directory structure stay as the caller wrote them.
type CompressStore struct {
	inner BlobStore
	algo  Compression
}

// NewCompressStore creates a CompressStore writing with the given
// algorithm.
func NewCompressStore(inner BlobStore, algo Compression) *CompressStore {
	return &CompressStore{inner: inner, algo: algo}
}

// Put compresses data and writes it to the inner store.
func (s *CompressStore) Put(ctx context.Context, name string, data []byte) error {
	var buf bytes.Buffer

	switch s.algo {
	case CompressionZstd:
		buf.Write(magicZstd)
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		if _, err := enc.Write(data); err != nil {
			_ = enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	case CompressionLZ4:
		buf.Write(magicLZ4)
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			_ = w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported compression: %d", int(s.algo))
	}

	return s.inner.Put(ctx, name, buf.Bytes())
}

// Open reads a blob from the inner store and decompresses it according
// to its magic prefix. Blobs without a known prefix are returned as-is.
func (s *CompressStore) Open(ctx context.Context, name string) (Blob, error) {
	raw, err := ReadAll(ctx, s.inner, name)
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.HasPrefix(raw, magicZstd):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer dec.Close()
		data, err := dec.DecodeAll(raw[len(magicZstd):], nil)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", name, err)
		}
		return &memoryBlob{data: data}, nil
	case bytes.HasPrefix(raw, magicLZ4):
		data, err := io.ReadAll(lz4.NewReader(bytes.NewReader(raw[len(magicLZ4):])))
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", name, err)
		}
		return &memoryBlob{data: data}, nil
	default:
		return &memoryBlob{data: raw}, nil
	}
}

// Delete removes a blob from the inner store.
func (s *CompressStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List returns all blob names with the given prefix.
func (s *CompressStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
