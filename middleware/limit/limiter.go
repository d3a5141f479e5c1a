// Package limit bounds the number of concurrent I/O operations. Directory
// fan-out itself is unbounded: only leaf operations hold a slot, so a
// directory waiting on its children never starves them.
package limit

import (
	"github.com/bornholm/go-blobsweep"
	"golang.org/x/sync/semaphore"
)

// Limiter shares a pool of slots between a filesystem and a blob store.
type Limiter struct {
	sem *semaphore.Weighted
}

func (l *Limiter) Middleware() blobsweep.Middleware {
	return func(next blobsweep.FileSystem) blobsweep.FileSystem {
		return &FileSystem{backend: next, sem: l.sem}
	}
}

func (l *Limiter) Store(backend blobsweep.BlobStore) blobsweep.BlobStore {
	return &BlobStore{backend: backend, sem: l.sem}
}

func NewLimiter(size int64) *Limiter {
	return &Limiter{
		sem: semaphore.NewWeighted(size),
	}
}
