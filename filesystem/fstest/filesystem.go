// Package fstest provides an instrumented blobsweep.FileSystem for tests.
package fstest

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/bornholm/go-blobsweep"
	"github.com/pkg/errors"
)

type Operation string

const (
	OpStat      Operation = "stat"
	OpLstat     Operation = "lstat"
	OpReadFile  Operation = "readfile"
	OpReadDir   Operation = "readdir"
	OpRemove    Operation = "remove"
	OpRemoveAll Operation = "removeall"
)

type call struct {
	op   Operation
	name string
}

// FileSystem counts the calls made to its backend and can fail or delay
// them per operation and path.
type FileSystem struct {
	backend blobsweep.FileSystem

	mutex  sync.Mutex
	calls  map[call]int
	faults map[call]error
	delays map[call]time.Duration
}

func (fs *FileSystem) Fail(op Operation, name string, err error) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.faults[call{op, name}] = err
}

func (fs *FileSystem) Delay(op Operation, name string, d time.Duration) {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	fs.delays[call{op, name}] = d
}

// Calls returns how many times op was called for name.
func (fs *FileSystem) Calls(op Operation, name string) int {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()
	return fs.calls[call{op, name}]
}

// Total returns how many times op was called for any path.
func (fs *FileSystem) Total(op Operation) int {
	fs.mutex.Lock()
	defer fs.mutex.Unlock()

	total := 0
	for c, count := range fs.calls {
		if c.op == op {
			total += count
		}
	}

	return total
}

func (fs *FileSystem) before(ctx context.Context, op Operation, name string) error {
	fs.mutex.Lock()
	c := call{op, name}
	fs.calls[c]++
	fault := fs.faults[c]
	delay := fs.delays[c]
	fs.mutex.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}

	if fault != nil {
		return errors.WithStack(&os.PathError{Op: string(op), Path: name, Err: fault})
	}

	return nil
}

// Stat implements blobsweep.FileSystem.
func (fs *FileSystem) Stat(ctx context.Context, name string) (os.FileInfo, error) {
	if err := fs.before(ctx, OpStat, name); err != nil {
		return nil, err
	}
	return fs.backend.Stat(ctx, name)
}

// Lstat implements blobsweep.FileSystem.
func (fs *FileSystem) Lstat(ctx context.Context, name string) (os.FileInfo, error) {
	if err := fs.before(ctx, OpLstat, name); err != nil {
		return nil, err
	}
	return fs.backend.Lstat(ctx, name)
}

// ReadFile implements blobsweep.FileSystem.
func (fs *FileSystem) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := fs.before(ctx, OpReadFile, name); err != nil {
		return nil, err
	}
	return fs.backend.ReadFile(ctx, name)
}

// ReadDir implements blobsweep.FileSystem.
func (fs *FileSystem) ReadDir(ctx context.Context, name string) ([]string, error) {
	if err := fs.before(ctx, OpReadDir, name); err != nil {
		return nil, err
	}
	return fs.backend.ReadDir(ctx, name)
}

// Remove implements blobsweep.FileSystem.
func (fs *FileSystem) Remove(ctx context.Context, name string) error {
	if err := fs.before(ctx, OpRemove, name); err != nil {
		return err
	}
	return fs.backend.Remove(ctx, name)
}

// RemoveAll implements blobsweep.FileSystem.
func (fs *FileSystem) RemoveAll(ctx context.Context, name string) error {
	if err := fs.before(ctx, OpRemoveAll, name); err != nil {
		return err
	}
	return fs.backend.RemoveAll(ctx, name)
}

func Wrap(backend blobsweep.FileSystem) *FileSystem {
	return &FileSystem{
		backend: backend,
		calls:   make(map[call]int),
		faults:  make(map[call]error),
		delays:  make(map[call]time.Duration),
	}
}

var _ blobsweep.FileSystem = &FileSystem{}
