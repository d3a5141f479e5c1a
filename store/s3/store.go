package s3

import (
	"bytes"
	"context"
	"io"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

const contentType = "application/octet-stream"

// Store keeps each blob as an object named after its hash.
type Store struct {
	client    *minio.Client
	bucket    string
	prefix    string
	algorithm store.Algorithm
	sizeLimit int64
}

// Put implements blobsweep.BlobStore.
func (s *Store) Put(ctx context.Context, data []byte) (blobsweep.Hash, error) {
	if err := store.CheckSize(data, s.sizeLimit); err != nil {
		return "", errors.WithStack(err)
	}

	hash, err := s.algorithm.Sum(data)
	if err != nil {
		return "", errors.WithStack(err)
	}

	key := s.key(hash)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err == nil {
		return hash, nil
	} else if !isNotFound(err) {
		return "", errors.WithStack(err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not put object '%s'", key)
	}

	return hash, nil
}

// Get implements blobsweep.BlobStore.
func (s *Store) Get(ctx context.Context, hash blobsweep.Hash) ([]byte, error) {
	if err := hash.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	key := s.key(hash)

	object, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(blobsweep.ErrNotFound, "blob '%s'", hash)
		}

		return nil, errors.WithStack(err)
	}

	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.Wrapf(blobsweep.ErrNotFound, "blob '%s'", hash)
		}

		return nil, errors.WithStack(err)
	}

	return data, nil
}

// SizeLimit implements blobsweep.BlobStore.
func (s *Store) SizeLimit() int64 {
	return s.sizeLimit
}

func (s *Store) key(hash blobsweep.Hash) string {
	return s.prefix + string(hash)
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}

func NewStore(client *minio.Client, bucket string, prefix string, algorithm store.Algorithm, sizeLimit int64) *Store {
	return &Store{
		client:    client,
		bucket:    bucket,
		prefix:    prefix,
		algorithm: algorithm,
		sizeLimit: sizeLimit,
	}
}

var _ blobsweep.BlobStore = &Store{}
