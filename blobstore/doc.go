// Package blobstore provides the storage abstraction behind geoquad
// snapshots.
//
// A snapshot is a directory of small named blobs (one per internal tree
// node plus a configuration record); BlobStore is the interface for
// reading and writing that directory. Implementations must be safe for
// concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap-backed reads
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3
//   - minio.Store: MinIO and other S3-compatible object stores
//
// # Wrappers
//
//   - CompressStore: transparent zstd/lz4 blob compression
//   - ThrottledStore: write-throughput limiting for shared links
//
// Wrappers compose:
//
//	store := blobstore.NewThrottledStore(
//	    blobstore.NewCompressStore(inner, blobstore.CompressionZstd),
//	    4<<20)
package blobstore
