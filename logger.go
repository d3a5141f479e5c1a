package blobsweep

import (
	"context"
	"log/slog"
	"os"
)

type LoggerFileSystem struct {
	logger  *slog.Logger
	backend FileSystem
}

// Stat implements FileSystem.
func (fs *LoggerFileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	fs.logger.DebugContext(ctx, "filesystem operation", slog.String("operation", "stat"), slog.String("name", name))
	return fs.backend.Stat(ctx, name)
}

// Lstat implements FileSystem.
func (fs *LoggerFileSystem) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	fs.logger.DebugContext(ctx, "filesystem operation", slog.String("operation", "lstat"), slog.String("name", name))
	return fs.backend.Lstat(ctx, name)
}

// ReadFile implements FileSystem.
func (fs *LoggerFileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	fs.logger.DebugContext(ctx, "filesystem operation", slog.String("operation", "readfile"), slog.String("name", name))
	return fs.backend.ReadFile(ctx, name)
}

// ReadDir implements FileSystem.
func (fs *LoggerFileSystem) ReadDir(ctx context.Context, name string) ([]string, error) {
	fs.logger.DebugContext(ctx, "filesystem operation", slog.String("operation", "readdir"), slog.String("name", name))
	return fs.backend.ReadDir(ctx, name)
}

// Remove implements FileSystem.
func (fs *LoggerFileSystem) Remove(ctx context.Context, name string) error {
	fs.logger.DebugContext(ctx, "filesystem operation", slog.String("operation", "remove"), slog.String("name", name))
	return fs.backend.Remove(ctx, name)
}

// RemoveAll implements FileSystem.
func (fs *LoggerFileSystem) RemoveAll(ctx context.Context, name string) error {
	fs.logger.DebugContext(ctx, "filesystem operation", slog.String("operation", "removeall"), slog.String("name", name))
	return fs.backend.RemoveAll(ctx, name)
}

func WithLogger(backend FileSystem, logger *slog.Logger) *LoggerFileSystem {
	return &LoggerFileSystem{
		backend: backend,
		logger:  logger,
	}
}

var _ FileSystem = &LoggerFileSystem{}

type LoggerBlobStore struct {
	logger  *slog.Logger
	backend BlobStore
}

// Put implements BlobStore.
func (s *LoggerBlobStore) Put(ctx context.Context, data []byte) (Hash, error) {
	hash, err := s.backend.Put(ctx, data)
	if err != nil {
		s.logger.DebugContext(ctx, "store operation", slog.String("operation", "put"), slog.Int("size", len(data)), slog.Any("error", err))
		return "", err
	}

	s.logger.DebugContext(ctx, "store operation", slog.String("operation", "put"), slog.Int("size", len(data)), slog.String("hash", string(hash)))

	return hash, nil
}

// Get implements BlobStore.
func (s *LoggerBlobStore) Get(ctx context.Context, hash Hash) ([]byte, error) {
	s.logger.DebugContext(ctx, "store operation", slog.String("operation", "get"), slog.String("hash", string(hash)))
	return s.backend.Get(ctx, hash)
}

// SizeLimit implements BlobStore.
func (s *LoggerBlobStore) SizeLimit() int64 {
	return s.backend.SizeLimit()
}

func WithStoreLogger(backend BlobStore, logger *slog.Logger) *LoggerBlobStore {
	return &LoggerBlobStore{
		backend: backend,
		logger:  logger,
	}
}

var _ BlobStore = &LoggerBlobStore{}
