// Package all registers every blob store backend.
package all

import (
	_ "github.com/bornholm/go-blobsweep/store/local"
	_ "github.com/bornholm/go-blobsweep/store/memory"
	_ "github.com/bornholm/go-blobsweep/store/s3"
	_ "github.com/bornholm/go-blobsweep/store/sqlite"
)
