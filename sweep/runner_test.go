package sweep

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/bornholm/go-blobsweep/archive"
	"github.com/bornholm/go-blobsweep/filesystem/fstest"
	"github.com/bornholm/go-blobsweep/filesystem/local"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/bornholm/go-blobsweep/store/memory"
	"github.com/pkg/errors"
)

func TestRunner(t *testing.T) {
	type testCase struct {
		Removal        Removal
		ExpectedExists bool
	}

	testCases := []testCase{
		{
			Removal:        RemovalRecursive,
			ExpectedExists: false,
		},
		{
			Removal:        RemovalSweep,
			ExpectedExists: false,
		},
		{
			Removal:        RemovalNone,
			ExpectedExists: true,
		},
	}

	for _, tc := range testCases {
		t.Run(string(tc.Removal), func(t *testing.T) {
			ctx := context.Background()
			root := fstest.Create(t, fstest.Tree{
				"app/node_modules/a/index.js": "a",
				"lib/node_modules/b/index.js": "b",
				"bad/node_modules/c/index.js": "c",
			})

			fs := fstest.Wrap(local.NewFileSystem())
			fs.Fail(fstest.OpReadFile, filepath.Join(root, "bad/node_modules/c/index.js"), os.ErrPermission)

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			s := memory.NewStore(store.AlgorithmSHA256, store.DefaultSizeLimit)
			engine := archive.NewEngine(fs, s, archive.WithLogger(logger))

			var out bytes.Buffer
			runner := NewRunner(fs, engine, &out, WithRemoval(tc.Removal), WithLogger(logger))

			app := filepath.Join(root, "app/node_modules")
			lib := filepath.Join(root, "lib/node_modules")
			bad := filepath.Join(root, "bad/node_modules")

			report := runner.Run(ctx, slices.Values([]string{app, bad, lib, app}))

			expectedReport := Report{Targets: 3, Archived: 2, Failed: 1}
			if !tc.ExpectedExists {
				expectedReport.Removed = 2
			}

			if e, g := expectedReport, report; e != g {
				t.Errorf("report: expected '%+v', got '%+v'", e, g)
			}

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			if e, g := 2, len(lines); e != g {
				t.Fatalf("output lines: expected '%d', got '%d' (%q)", e, g, out.String())
			}

			for i, target := range []string{app, lib} {
				hash, err := engine.Archive(ctx, target)
				if err != nil {
					t.Fatalf("%+v", errors.WithStack(err))
				}

				if e, g := hash.String()+" "+target, lines[i]; e != g {
					t.Errorf("line #%d: expected '%s', got '%s'", i, e, g)
				}

				if _, err := s.Get(ctx, hash); err != nil {
					t.Errorf("expected index of '%s' to be stored: %+v", target, errors.WithStack(err))
				}

				if e, g := tc.ExpectedExists, exists(t, target); e != g {
					t.Errorf("'%s' exists: expected '%v', got '%v'", target, e, g)
				}
			}

			if !exists(t, filepath.Join(bad, "c/index.js")) {
				t.Errorf("expected failing target to be kept")
			}
		})
	}
}
