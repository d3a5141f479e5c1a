package local

import (
	"context"
	"os"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

// FileSystem is the host filesystem.
type FileSystem struct{}

// Stat implements blobsweep.FileSystem.
func (fs *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	info, err := os.Stat(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return info, nil
}

// Lstat implements blobsweep.FileSystem.
func (fs *FileSystem) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	info, err := os.Lstat(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return info, nil
}

// ReadFile implements blobsweep.FileSystem.
func (fs *FileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return data, nil
}

// ReadDir implements blobsweep.FileSystem.
func (fs *FileSystem) ReadDir(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	entries, err := os.ReadDir(name)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}

	return names, nil
}

// Remove implements blobsweep.FileSystem.
func (fs *FileSystem) Remove(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	if err := os.Remove(name); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// RemoveAll implements blobsweep.FileSystem.
func (fs *FileSystem) RemoveAll(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	if err := os.RemoveAll(name); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func NewFileSystem() *FileSystem {
	return &FileSystem{}
}

var _ blobsweep.FileSystem = &FileSystem{}
