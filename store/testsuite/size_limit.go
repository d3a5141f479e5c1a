package testsuite

import (
	"context"
	"crypto/rand"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

func SizeLimit(ctx context.Context, store blobsweep.BlobStore) error {
	limit := store.SizeLimit()

	data := make([]byte, limit+1)
	if _, err := rand.Read(data); err != nil {
		return errors.WithStack(err)
	}

	if _, err := store.Put(ctx, data[:limit]); err != nil {
		return errors.Wrap(err, "blob at the size limit should be accepted")
	}

	if _, err := store.Put(ctx, data); !errors.Is(err, blobsweep.ErrTooLarge) {
		return errors.Errorf("expected ErrTooLarge, got '%v'", err)
	}

	return nil
}
