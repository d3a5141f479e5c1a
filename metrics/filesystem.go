package metrics

import (
	"context"
	"os"

	"github.com/bornholm/go-blobsweep"
)

type FileSystem struct {
	backend blobsweep.FileSystem
	metrics *Metrics
}

// Stat implements blobsweep.FileSystem.
func (fs *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	info, err := fs.backend.Stat(ctx, name)
	fs.metrics.observeOperation("stat", err)
	return info, err
}

// Lstat implements blobsweep.FileSystem.
func (fs *FileSystem) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	info, err := fs.backend.Lstat(ctx, name)
	fs.metrics.observeOperation("lstat", err)
	return info, err
}

// ReadFile implements blobsweep.FileSystem.
func (fs *FileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	data, err := fs.backend.ReadFile(ctx, name)
	fs.metrics.observeOperation("readfile", err)
	return data, err
}

// ReadDir implements blobsweep.FileSystem.
func (fs *FileSystem) ReadDir(ctx context.Context, name string) ([]string, error) {
	names, err := fs.backend.ReadDir(ctx, name)
	fs.metrics.observeOperation("readdir", err)
	return names, err
}

// Remove implements blobsweep.FileSystem.
func (fs *FileSystem) Remove(ctx context.Context, name string) error {
	err := fs.backend.Remove(ctx, name)
	fs.metrics.observeOperation("remove", err)
	return err
}

// RemoveAll implements blobsweep.FileSystem.
func (fs *FileSystem) RemoveAll(ctx context.Context, name string) error {
	err := fs.backend.RemoveAll(ctx, name)
	fs.metrics.observeOperation("removeall", err)
	return err
}

var _ blobsweep.FileSystem = &FileSystem{}

type BlobStore struct {
	backend blobsweep.BlobStore
	metrics *Metrics
}

// Put implements blobsweep.BlobStore.
func (s *BlobStore) Put(ctx context.Context, data []byte) (blobsweep.Hash, error) {
	hash, err := s.backend.Put(ctx, data)
	s.metrics.puts.WithLabelValues(status(err)).Inc()
	if err == nil {
		s.metrics.bytes.Add(float64(len(data)))
	}
	return hash, err
}

// Get implements blobsweep.BlobStore.
func (s *BlobStore) Get(ctx context.Context, hash blobsweep.Hash) ([]byte, error) {
	return s.backend.Get(ctx, hash)
}

// SizeLimit implements blobsweep.BlobStore.
func (s *BlobStore) SizeLimit() int64 {
	return s.backend.SizeLimit()
}

var _ blobsweep.BlobStore = &BlobStore{}
