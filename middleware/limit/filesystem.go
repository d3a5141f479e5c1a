package limit

import (
	"context"
	"os"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// FileSystem bounds the number of in-flight operations on its backend.
type FileSystem struct {
	backend blobsweep.FileSystem
	sem     *semaphore.Weighted
}

// Stat implements blobsweep.FileSystem.
func (fs *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	if err := fs.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WithStack(err)
	}
	defer fs.sem.Release(1)

	return fs.backend.Stat(ctx, name)
}

// Lstat implements blobsweep.FileSystem.
func (fs *FileSystem) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	if err := fs.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WithStack(err)
	}
	defer fs.sem.Release(1)

	return fs.backend.Lstat(ctx, name)
}

// ReadFile implements blobsweep.FileSystem.
func (fs *FileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := fs.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WithStack(err)
	}
	defer fs.sem.Release(1)

	return fs.backend.ReadFile(ctx, name)
}

// ReadDir implements blobsweep.FileSystem.
func (fs *FileSystem) ReadDir(ctx context.Context, name string) ([]string, error) {
	if err := fs.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.WithStack(err)
	}
	defer fs.sem.Release(1)

	return fs.backend.ReadDir(ctx, name)
}

// Remove implements blobsweep.FileSystem.
func (fs *FileSystem) Remove(ctx context.Context, name string) error {
	if err := fs.sem.Acquire(ctx, 1); err != nil {
		return errors.WithStack(err)
	}
	defer fs.sem.Release(1)

	return fs.backend.Remove(ctx, name)
}

// RemoveAll implements blobsweep.FileSystem.
func (fs *FileSystem) RemoveAll(ctx context.Context, name string) error {
	if err := fs.sem.Acquire(ctx, 1); err != nil {
		return errors.WithStack(err)
	}
	defer fs.sem.Release(1)

	return fs.backend.RemoveAll(ctx, name)
}

var _ blobsweep.FileSystem = &FileSystem{}
