package memory

import (
	"context"
	"sync"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/pkg/errors"
)

// Store keeps blobs in memory and counts the calls it receives. Nothing
// outlives the process.
type Store struct {
	algorithm store.Algorithm
	sizeLimit int64

	mutex sync.RWMutex
	blobs map[blobsweep.Hash][]byte
	puts  map[blobsweep.Hash]int
	fault func(data []byte) error
}

// Put implements blobsweep.BlobStore.
func (s *Store) Put(ctx context.Context, data []byte) (blobsweep.Hash, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}

	if err := store.CheckSize(data, s.sizeLimit); err != nil {
		return "", errors.WithStack(err)
	}

	hash, err := s.algorithm.Sum(data)
	if err != nil {
		return "", errors.WithStack(err)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.fault != nil {
		if err := s.fault(data); err != nil {
			return "", errors.WithStack(err)
		}
	}

	s.puts[hash]++

	if _, exists := s.blobs[hash]; !exists {
		s.blobs[hash] = append([]byte{}, data...)
	}

	return hash, nil
}

// Get implements blobsweep.BlobStore.
func (s *Store) Get(ctx context.Context, hash blobsweep.Hash) ([]byte, error) {
	if err := hash.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, exists := s.blobs[hash]
	if !exists {
		return nil, errors.Wrapf(blobsweep.ErrNotFound, "blob '%s'", hash)
	}

	return append([]byte{}, data...), nil
}

// SizeLimit implements blobsweep.BlobStore.
func (s *Store) SizeLimit() int64 {
	return s.sizeLimit
}

// Puts returns how many times content with the given hash was stored.
func (s *Store) Puts(hash blobsweep.Hash) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.puts[hash]
}

// TotalPuts returns the number of successful Put calls.
func (s *Store) TotalPuts() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	total := 0
	for _, count := range s.puts {
		total += count
	}

	return total
}

// Hashes returns every stored hash.
func (s *Store) Hashes() []blobsweep.Hash {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	hashes := make([]blobsweep.Hash, 0, len(s.blobs))
	for h := range s.blobs {
		hashes = append(hashes, h)
	}

	return hashes
}

// FailWhen makes Put return the error returned by fn, if any.
func (s *Store) FailWhen(fn func(data []byte) error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.fault = fn
}

func NewStore(algorithm store.Algorithm, sizeLimit int64) *Store {
	return &Store{
		algorithm: algorithm,
		sizeLimit: sizeLimit,
		blobs:     make(map[blobsweep.Hash][]byte),
		puts:      make(map[blobsweep.Hash]int),
	}
}

var _ blobsweep.BlobStore = &Store{}
