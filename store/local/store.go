package local

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/google/renameio"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
)

const zstdExtension = ".zst"

// Store keeps each blob in its own file, sharded by the first bytes of its
// hash: <dir>/ab/cd/abcd....
type Store struct {
	dir         string
	algorithm   store.Algorithm
	sizeLimit   int64
	compression Compression
	encoder     *zstd.Encoder
	decoder     *zstd.Decoder
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

	exists, err := s.exists(hash)
	if err != nil {
		return "", errors.WithStack(err)
	}

	if exists {
		return hash, nil
	}

	path := s.path(hash)
	if s.compression == CompressionZstd {
		data = s.encoder.EncodeAll(data, make([]byte, 0, len(data)))
		path += zstdExtension
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.WithStack(err)
	}

	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrapf(err, "could not write blob '%s'", hash)
	}

	return hash, nil
}

// Get implements blobsweep.BlobStore.
func (s *Store) Get(ctx context.Context, hash blobsweep.Hash) ([]byte, error) {
	if err := hash.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	path := s.path(hash)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return nil, errors.WithStack(err)
	}

	compressed, err := os.ReadFile(path + zstdExtension)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(blobsweep.ErrNotFound, "blob '%s'", hash)
		}

		return nil, errors.WithStack(err)
	}

	data, err = s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not decompress blob '%s'", hash)
	}

	return data, nil
}

// SizeLimit implements blobsweep.BlobStore.
func (s *Store) SizeLimit() int64 {
	return s.sizeLimit
}

func (s *Store) path(hash blobsweep.Hash) string {
	h := string(hash)
	return filepath.Join(s.dir, h[0:2], h[2:4], h)
}

func (s *Store) exists(hash blobsweep.Hash) (bool, error) {
	path := s.path(hash)

	for _, candidate := range []string{path, path + zstdExtension} {
		_, err := os.Stat(candidate)
		if err == nil {
			return true, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return false, errors.WithStack(err)
		}
	}

	return false, nil
}

func NewStore(dir string, algorithm store.Algorithm, sizeLimit int64, compression Compression) (*Store, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if compression == "" {
		compression = CompressionNone
	}

	return &Store{
		dir:         dir,
		algorithm:   algorithm,
		sizeLimit:   sizeLimit,
		compression: compression,
		encoder:     encoder,
		decoder:     decoder,
	}, nil
}

var _ blobsweep.BlobStore = &Store{}
