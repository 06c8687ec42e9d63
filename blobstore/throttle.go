package blobstore

import (
	"context"

	"golang.org/x/time/rate"
)

// ThrottledStore wraps a BlobStore and limits write throughput. Useful
// when a snapshot of a large tree is written to shared object storage
// and must not saturate the link or trip provider rate limits.
//
// Reads are not throttled; loads run once at startup and are expected
// to finish as fast as possible.
type ThrottledStore struct {
	inner   BlobStore
	limiter *rate.Limiter
}

// NewThrottledStore creates a ThrottledStore capped at bytesPerSec of
// write throughput. A non-positive limit disables throttling.
func NewThrottledStore(inner BlobStore, bytesPerSec int) *ThrottledStore {
	var limiter *rate.Limiter
	if bytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	}
	return &ThrottledStore{inner: inner, limiter: limiter}
}

// Put waits until the rate limit admits len(data) bytes, then writes to
// the inner store.
func (s *ThrottledStore) Put(ctx context.Context, name string, data []byte) error {
	if s.limiter != nil && len(data) > 0 {
		n := len(data)
		// A blob larger than the burst is admitted in burst-sized waves.
		burst := s.limiter.Burst()
		for n > burst {
			if err := s.limiter.WaitN(ctx, burst); err != nil {
				return err
			}
			n -= burst
		}
		if err := s.limiter.WaitN(ctx, n); err != nil {
			return err
		}
	}
	return s.inner.Put(ctx, name, data)
}

// Open opens a blob for reading.
func (s *ThrottledStore) Open(ctx context.Context, name string) (Blob, error) {
	return s.inner.Open(ctx, name)
}

// Delete removes a blob.
func (s *ThrottledStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List returns all blob names with the given prefix.
func (s *ThrottledStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}
