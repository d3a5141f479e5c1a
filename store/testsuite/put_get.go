package testsuite

import (
	"bytes"
	"context"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

func PutGet(ctx context.Context, store blobsweep.BlobStore) error {
	content := []byte("<h1>Index of /tmp/node_modules/</h1>\n<ul>\n</ul>\n")

	hash, err := store.Put(ctx, content)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := hash.Validate(); err != nil {
		return errors.WithStack(err)
	}

	data, err := store.Get(ctx, hash)
	if err != nil {
		return errors.WithStack(err)
	}

	if !bytes.Equal(content, data) {
		return errors.Errorf("data: expected '%s', got '%s'", content, data)
	}

	return nil
}

func EmptyBlob(ctx context.Context, store blobsweep.BlobStore) error {
	hash, err := store.Put(ctx, []byte{})
	if err != nil {
		return errors.WithStack(err)
	}

	data, err := store.Get(ctx, hash)
	if err != nil {
		return errors.WithStack(err)
	}

	if e, g := 0, len(data); e != g {
		return errors.Errorf("len(data): expected '%d', got '%d'", e, g)
	}

	return nil
}

func GetNotFound(ctx context.Context, store blobsweep.BlobStore) error {
	const missing blobsweep.Hash = "0000000000000000000000000000000000000000000000000000000000000000"

	if _, err := store.Get(ctx, missing); !errors.Is(err, blobsweep.ErrNotFound) {
		return errors.Errorf("expected ErrNotFound, got '%v'", err)
	}

	return nil
}

func GetInvalidHash(ctx context.Context, store blobsweep.BlobStore) error {
	if _, err := store.Get(ctx, "../../etc/passwd"); !errors.Is(err, blobsweep.ErrInvalidHash) {
		return errors.Errorf("expected ErrInvalidHash, got '%v'", err)
	}

	return nil
}
