package limit

import (
	"context"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// BlobStore bounds the number of in-flight operations on its backend.
type BlobStore struct {
	backend blobsweep.BlobStore
	sem     *semaphore.Weighted
}

// Put implements blobsweep.BlobStore.
func (s *BlobStore) Put(ctx context.Context, data []byte) (blobsweep.Hash, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", errors.WithStack(err)
	}
	defer s.sem.Release(1)

	return s.backend.Put(ctx, data)
}

// Get implements blobsweep.BlobStore.
func (s *BlobStore) Get(ctx context.Context, hash blobsweep.Hash) ([]byte, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WithStack(err)
	}
	defer s.sem.Release(1)

	return s.backend.Get(ctx, hash)
}

// SizeLimit implements blobsweep.BlobStore.
func (s *BlobStore) SizeLimit() int64 {
	return s.backend.SizeLimit()
}

var _ blobsweep.BlobStore = &BlobStore{}
