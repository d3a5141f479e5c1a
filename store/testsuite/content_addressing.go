package testsuite

import (
	"context"
	"sync"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

func ContentAddressing(ctx context.Context, store blobsweep.BlobStore) error {
	first, err := store.Put(ctx, []byte("module.exports = 1;\n"))
	if err != nil {
		return errors.WithStack(err)
	}

	second, err := store.Put(ctx, []byte("module.exports = 1;\n"))
	if err != nil {
		return errors.WithStack(err)
	}

	if first != second {
		return errors.Errorf("identical content: expected same hash, got '%s' and '%s'", first, second)
	}

	third, err := store.Put(ctx, []byte("module.exports = 2;\n"))
	if err != nil {
		return errors.WithStack(err)
	}

	if first == third {
		return errors.Errorf("different content: expected different hashes, got '%s' twice", first)
	}

	return nil
}

func ConcurrentPut(ctx context.Context, store blobsweep.BlobStore) error {
	const concurrency = 8

	content := []byte(`{"name":"left-pad","version":"1.3.0"}`)

	var wg sync.WaitGroup
	hashes := make([]blobsweep.Hash, concurrency)
	errs := make([]error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i], errs[i] = store.Put(ctx, content)
		}(i)
	}

	wg.Wait()

	for i := 0; i < concurrency; i++ {
		if errs[i] != nil {
			return errors.WithStack(errs[i])
		}

		if hashes[i] != hashes[0] {
			return errors.Errorf("put #%d: expected hash '%s', got '%s'", i, hashes[0], hashes[i])
		}
	}

	return nil
}
