package blobsweep

import (
	"context"
	"os"
)

// FileSystem is the driver the archival engine consumes. Paths are plain
// host paths, every method maps to one system call.
type FileSystem interface {
	Stat(ctx context.Context, name string) (os.FileInfo, error)
	Lstat(ctx context.Context, name string) (os.FileInfo, error)
	ReadFile(ctx context.Context, name string) ([]byte, error)
	// ReadDir returns the names of the directory entries in listing order.
	ReadDir(ctx context.Context, name string) ([]string, error)
	// Remove unlinks a file or removes an empty directory.
	Remove(ctx context.Context, name string) error
	RemoveAll(ctx context.Context, name string) error
}
