package restore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/archive"
	"github.com/bornholm/go-blobsweep/filesystem/fstest"
	"github.com/bornholm/go-blobsweep/filesystem/local"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/bornholm/go-blobsweep/store/memory"
	"github.com/pkg/errors"
)

func TestRestore(t *testing.T) {
	ctx := context.Background()

	tree := fstest.Tree{
		"node_modules/left-pad/index.js":      "module.exports = leftPad;\n",
		"node_modules/left-pad/package.json":  `{"name":"left-pad"}`,
		"node_modules/@types/node/index.d.ts": "export {};\n",
		"node_modules/.bin/":                  "",
		"node_modules/same-a.js":              "same",
		"node_modules/same-b.js":              "same",
	}

	root := fstest.Create(t, tree)
	s := memory.NewStore(store.AlgorithmSHA256, store.DefaultSizeLimit)
	engine := archive.NewEngine(local.NewFileSystem(), s)

	hash, err := engine.Archive(ctx, filepath.Join(root, "node_modules"))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	dest := filepath.Join(t.TempDir(), "restored")
	restorer := NewRestorer(s, slog.Default())

	if err := restorer.Restore(ctx, hash, dest); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	for name, content := range tree {
		path := filepath.Join(dest, filepath.FromSlash(name[len("node_modules/"):]))

		info, err := os.Stat(path)
		if err != nil {
			t.Errorf("%+v", errors.WithStack(err))
			continue
		}

		if content == "" && name[len(name)-1] == '/' {
			if !info.IsDir() {
				t.Errorf("expected '%s' to be a directory", path)
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if e, g := content, string(data); e != g {
			t.Errorf("'%s': expected '%s', got '%s'", name, e, g)
		}
	}

	if err := restorer.Restore(ctx, hash, dest); !errors.Is(err, os.ErrExist) {
		t.Errorf("expected restoring over existing files to fail with os.ErrExist, got '%v'", err)
	}
}

func TestRestoreRejectsFiles(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(store.AlgorithmSHA256, store.DefaultSizeLimit)

	hash, err := s.Put(ctx, []byte("module.exports = 1;\n"))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	restorer := NewRestorer(s, slog.Default())

	if err := restorer.Restore(ctx, hash, t.TempDir()); !errors.Is(err, archive.ErrNotIndex) {
		t.Errorf("expected ErrNotIndex, got '%v'", err)
	}

	var missing blobsweep.Hash = "0000000000000000000000000000000000000000000000000000000000000000"
	if err := restorer.Restore(ctx, missing, t.TempDir()); !errors.Is(err, blobsweep.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got '%v'", err)
	}
}

func TestRestoreRejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore(store.AlgorithmSHA256, store.DefaultSizeLimit)

	file, err := s.Put(ctx, []byte("pwned"))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	root, err := s.Put(ctx, archive.RenderIndex("/tmp/evil", []archive.Entry{{Name: "..", Hash: file}}))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	restorer := NewRestorer(s, slog.Default())

	if err := restorer.Restore(ctx, root, t.TempDir()); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("expected ErrInvalidEntry, got '%v'", err)
	}
}
