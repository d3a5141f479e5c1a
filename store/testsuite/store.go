package testsuite

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

type storeTestCase struct {
	Name string
	Run  func(ctx context.Context, store blobsweep.BlobStore) error
}

var storeTestCases = []storeTestCase{
	{
		Name: "PutGet",
		Run:  PutGet,
	},
	{
		Name: "EmptyBlob",
		Run:  EmptyBlob,
	},
	{
		Name: "ContentAddressing",
		Run:  ContentAddressing,
	},
	{
		Name: "ConcurrentPut",
		Run:  ConcurrentPut,
	},
	{
		Name: "SizeLimit",
		Run:  SizeLimit,
	},
	{
		Name: "GetNotFound",
		Run:  GetNotFound,
	},
	{
		Name: "GetInvalidHash",
		Run:  GetInvalidHash,
	},
}

// TestBlobStore runs every behavioural case against store. The store must
// be configured with a size limit small enough to be allocated in memory.
func TestBlobStore(t *testing.T, store blobsweep.BlobStore) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store = blobsweep.WithStoreLogger(store, slog.Default())

	for _, tc := range storeTestCases {
		t.Run(tc.Name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := tc.Run(ctx, store); err != nil {
				t.Errorf("%+v", errors.WithStack(err))
			}
		})
	}
}
