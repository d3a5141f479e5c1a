package blobsweep

import (
	"context"
	"encoding/hex"

	"github.com/pkg/errors"
)

// Hash is the hex encoded digest of a stored blob.
type Hash string

const HashSize = 32

func (h Hash) String() string {
	return string(h)
}

func (h Hash) Validate() error {
	if len(h) != hex.EncodedLen(HashSize) {
		return errors.Wrapf(ErrInvalidHash, "unexpected hash length %d", len(h))
	}

	for _, r := range h {
		if !(r >= '0' && r <= '9') && !(r >= 'a' && r <= 'f') {
			return errors.Wrapf(ErrInvalidHash, "unexpected character '%c' in hash '%s'", r, h)
		}
	}

	return nil
}

func ParseHash(raw string) (Hash, error) {
	h := Hash(raw)
	if err := h.Validate(); err != nil {
		return "", errors.WithStack(err)
	}

	return h, nil
}

// BlobStore is a content-addressed store. Storing the same bytes twice
// yields the same hash.
type BlobStore interface {
	Put(ctx context.Context, data []byte) (Hash, error)
	Get(ctx context.Context, hash Hash) ([]byte, error)
	// SizeLimit is the largest blob, in bytes, accepted by Put.
	SizeLimit() int64
}
