package archive

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/filesystem/fstest"
	"github.com/bornholm/go-blobsweep/filesystem/local"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/bornholm/go-blobsweep/store/memory"
	"github.com/pkg/errors"
)

// listingFS returns directory entries in a fixed order.
type listingFS struct {
	blobsweep.FileSystem
	listings map[string][]string
}

func (fs *listingFS) ReadDir(ctx context.Context, name string) ([]string, error) {
	if names, exists := fs.listings[name]; exists {
		if _, err := fs.FileSystem.ReadDir(ctx, name); err != nil {
			return nil, err
		}
		return names, nil
	}

	return fs.FileSystem.ReadDir(ctx, name)
}

func newTestEngine(t *testing.T, sizeLimit int64) (*Engine, *fstest.FileSystem, *memory.Store) {
	t.Helper()

	fs := fstest.Wrap(local.NewFileSystem())
	s := memory.NewStore(store.AlgorithmSHA256, sizeLimit)

	return NewEngine(fs, s), fs, s
}

func mustSum(t *testing.T, data string) blobsweep.Hash {
	t.Helper()

	hash, err := store.AlgorithmSHA256.Sum([]byte(data))
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	return hash
}

func TestArchiveMemoization(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"foo.txt":        "foo",
		"nested/bar.txt": "bar",
	})

	engine, fs, s := newTestEngine(t, store.DefaultSizeLimit)

	first, err := engine.Archive(ctx, root)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	second, err := engine.Archive(ctx, root)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if first != second {
		t.Errorf("expected identical hashes, got '%s' and '%s'", first, second)
	}

	for _, name := range []string{"foo.txt", "nested/bar.txt"} {
		path := filepath.Join(root, filepath.FromSlash(name))

		if e, g := 1, fs.Calls(fstest.OpReadFile, path); e != g {
			t.Errorf("read calls for '%s': expected '%d', got '%d'", name, e, g)
		}

		if e, g := 1, fs.Calls(fstest.OpStat, path); e != g {
			t.Errorf("stat calls for '%s': expected '%d', got '%d'", name, e, g)
		}
	}

	if e, g := 1, fs.Calls(fstest.OpReadDir, root); e != g {
		t.Errorf("readdir calls: expected '%d', got '%d'", e, g)
	}

	// foo.txt, nested/bar.txt, nested/ index, root index
	if e, g := 4, s.TotalPuts(); e != g {
		t.Errorf("store puts: expected '%d', got '%d'", e, g)
	}
}

func TestArchiveCoalescing(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"shared.js":    "module.exports = 'shared';\n",
		"lib/index.js": "require('../shared');\n",
	})

	engine, fs, s := newTestEngine(t, store.DefaultSizeLimit)

	shared := filepath.Join(root, "shared.js")
	fs.Delay(fstest.OpReadFile, shared, 50*time.Millisecond)

	const callers = 16

	paths := make([]string, callers)
	hashes := make([]blobsweep.Hash, callers)
	failures := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		paths[i] = shared
		if i%2 == 1 {
			paths[i] = root
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			hashes[i], failures[i] = engine.Archive(ctx, paths[i])
		}(i)
	}
	wg.Wait()

	for i, err := range failures {
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if hashes[i] != hashes[i%2] {
			t.Errorf("hash of '%s': expected '%s', got '%s'", paths[i], hashes[i%2], hashes[i])
		}
	}

	if e, g := 1, fs.Calls(fstest.OpReadFile, shared); e != g {
		t.Errorf("read calls for shared.js: expected '%d', got '%d'", e, g)
	}

	// shared.js and lib/index.js
	if e, g := 2, fs.Total(fstest.OpReadFile); e != g {
		t.Errorf("total read calls: expected '%d', got '%d'", e, g)
	}

	// root and lib/
	if e, g := 2, fs.Total(fstest.OpReadDir); e != g {
		t.Errorf("total readdir calls: expected '%d', got '%d'", e, g)
	}

	if e, g := 1, s.Puts(mustSum(t, "module.exports = 'shared';\n")); e != g {
		t.Errorf("store puts for shared.js: expected '%d', got '%d'", e, g)
	}

	// shared.js, lib/index.js, lib/ index, root index
	if e, g := 4, s.TotalPuts(); e != g {
		t.Errorf("store puts: expected '%d', got '%d'", e, g)
	}
}

func TestArchiveContentAddressing(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"a/index.js": "module.exports = 1;\n",
		"b/index.js": "module.exports = 1;\n",
		"c/index.js": "module.exports = 2;\n",
	})

	engine, _, _ := newTestEngine(t, store.DefaultSizeLimit)

	hashes := make(map[string]blobsweep.Hash)
	for _, name := range []string{"a", "b", "c"} {
		hash, err := engine.Archive(ctx, filepath.Join(root, name, "index.js"))
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}
		hashes[name] = hash
	}

	if hashes["a"] != hashes["b"] {
		t.Errorf("identical content: expected same hash, got '%s' and '%s'", hashes["a"], hashes["b"])
	}

	if hashes["a"] == hashes["c"] {
		t.Errorf("different content: expected different hashes, got '%s' twice", hashes["a"])
	}

	if e, g := mustSum(t, "module.exports = 1;\n"), hashes["a"]; e != g {
		t.Errorf("expected hash '%s', got '%s'", e, g)
	}
}

func TestArchiveAllOrNothing(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"x.js": "x",
		"y.js": "y",
		"z.js": "z",
	})

	engine, _, s := newTestEngine(t, store.DefaultSizeLimit)

	errStore := errors.New("store unavailable")
	s.FailWhen(func(data []byte) error {
		if string(data) == "y" {
			return errStore
		}
		return nil
	})

	_, err := engine.Archive(ctx, root)

	if !errors.Is(err, blobsweep.ErrArchivalFailed) {
		t.Fatalf("expected ErrArchivalFailed, got '%v'", err)
	}

	if !errors.Is(err, blobsweep.ErrSkipped) {
		t.Errorf("expected ErrSkipped cause, got '%v'", err)
	}

	if !errors.Is(err, errStore) {
		t.Errorf("expected store failure cause, got '%v'", err)
	}

	var pathErr *blobsweep.PathError
	if !errors.As(err, &pathErr) || pathErr.Path != root {
		t.Errorf("expected failure to name '%s', got '%v'", root, err)
	}

	if e, g := 2, s.TotalPuts(); e != g {
		t.Errorf("store puts: expected '%d', got '%d'", e, g)
	}

	for _, hash := range s.Hashes() {
		data, err := s.Get(ctx, hash)
		if err != nil {
			t.Fatalf("%+v", errors.WithStack(err))
		}

		if bytes.HasPrefix(data, []byte("<h1>")) {
			t.Errorf("expected no index document to be stored, found '%s'", data)
		}
	}
}

func TestArchiveCachedFailure(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{"locked.js": "locked"})

	engine, fs, _ := newTestEngine(t, store.DefaultSizeLimit)

	path := filepath.Join(root, "locked.js")
	fs.Fail(fstest.OpReadFile, path, os.ErrPermission)

	for i := 0; i < 2; i++ {
		if _, err := engine.Archive(ctx, path); !errors.Is(err, blobsweep.ErrReadFailed) {
			t.Fatalf("expected ErrReadFailed cause, got '%v'", err)
		}
	}

	if e, g := 1, fs.Calls(fstest.OpReadFile, path); e != g {
		t.Errorf("read calls: expected '%d', got '%d'", e, g)
	}
}

func TestArchiveSizeLimit(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"at-limit.bin":   strings.Repeat("x", 8),
		"over-limit.bin": strings.Repeat("x", 9),
	})

	engine, _, _ := newTestEngine(t, 8)

	if _, err := engine.Archive(ctx, filepath.Join(root, "at-limit.bin")); err != nil {
		t.Errorf("expected file at the size limit to be archived, got '%+v'", err)
	}

	_, err := engine.Archive(ctx, filepath.Join(root, "over-limit.bin"))
	if !errors.Is(err, blobsweep.ErrSkipped) {
		t.Fatalf("expected ErrSkipped, got '%v'", err)
	}

	if !errors.Is(err, blobsweep.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge cause, got '%v'", err)
	}

	if !errors.Is(err, blobsweep.ErrArchivalFailed) {
		t.Errorf("expected ErrArchivalFailed, got '%v'", err)
	}
}

func TestArchiveDeterministicOrder(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{
		"a": "a",
		"b": "b",
		"c": "c",
	})

	fs := fstest.Wrap(local.NewFileSystem())
	fs.Delay(fstest.OpReadFile, filepath.Join(root, "a"), 100*time.Millisecond)

	s := memory.NewStore(store.AlgorithmSHA256, store.DefaultSizeLimit)
	engine := NewEngine(&listingFS{
		FileSystem: fs,
		listings:   map[string][]string{root: {"b", "a", "c"}},
	}, s)

	hash, err := engine.Archive(ctx, root)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err := s.Get(ctx, hash)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	expected := RenderIndex(root, []Entry{
		{Name: "b", Hash: mustSum(t, "b")},
		{Name: "a", Hash: mustSum(t, "a")},
		{Name: "c", Hash: mustSum(t, "c")},
	})

	if !bytes.Equal(expected, data) {
		t.Errorf("index: expected\n%s\ngot\n%s", expected, data)
	}
}

func TestArchiveEmptyDirectory(t *testing.T) {
	ctx := context.Background()
	root := fstest.Create(t, fstest.Tree{"empty/": ""})

	engine, _, s := newTestEngine(t, store.DefaultSizeLimit)

	dir := filepath.Join(root, "empty")

	hash, err := engine.Archive(ctx, dir)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	data, err := s.Get(ctx, hash)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := "<h1>Index of "+dir+"/</h1>\n<ul>\n</ul>\n", string(data); e != g {
		t.Errorf("index: expected '%s', got '%s'", e, g)
	}
}

func TestArchiveUnsupportedEntry(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()

	link := filepath.Join(root, "dangling")
	if err := os.Symlink(filepath.Join(root, "missing"), link); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	engine, _, _ := newTestEngine(t, store.DefaultSizeLimit)

	if _, err := engine.Archive(ctx, link); !errors.Is(err, blobsweep.ErrUnsupportedEntry) {
		t.Errorf("expected ErrUnsupportedEntry, got '%v'", err)
	}

	if _, err := engine.Archive(ctx, root); !errors.Is(err, blobsweep.ErrArchivalFailed) {
		t.Errorf("expected parent to fail with ErrArchivalFailed, got '%v'", err)
	}
}

func TestArchiveNotAccessible(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t, store.DefaultSizeLimit)

	if _, err := engine.Archive(ctx, filepath.Join(t.TempDir(), "missing")); !errors.Is(err, blobsweep.ErrNotAccessible) {
		t.Errorf("expected ErrNotAccessible, got '%v'", err)
	}
}
