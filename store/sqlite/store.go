package sqlite

import (
	"context"
	"log"
	"time"

	"github.com/bornholm/go-blobsweep"
	"github.com/bornholm/go-blobsweep/store"
	"github.com/pkg/errors"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitemigration"
	"zombiezen.com/go/sqlite/sqlitex"
)

// Store keeps blobs as rows of a single sqlite database.
type Store struct {
	pool      *sqlitemigration.Pool
	algorithm store.Algorithm
	sizeLimit int64
}

// Put implements blobsweep.BlobStore.
func (s *Store) Put(ctx context.Context, data []byte) (hash blobsweep.Hash, err error) {
	if err := store.CheckSize(data, s.sizeLimit); err != nil {
		return "", errors.WithStack(err)
	}

	hash, err = s.algorithm.Sum(data)
	if err != nil {
		return "", errors.WithStack(err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return "", errors.WithStack(err)
	}
	defer s.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT OR IGNORE INTO blobs (hash, size, content, created_at)
		VALUES (?, ?, ?, ?)
	`, &sqlitex.ExecOptions{
		Args: []any{string(hash), len(data), data, time.Now().Unix()},
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not insert blob '%s'", hash)
	}

	return hash, nil
}

// Get implements blobsweep.BlobStore.
func (s *Store) Get(ctx context.Context, hash blobsweep.Hash) ([]byte, error) {
	if err := hash.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer s.pool.Put(conn)

	var (
		data  []byte
		found bool
	)

	err = sqlitex.Execute(conn, `SELECT content FROM blobs WHERE hash = ?`, &sqlitex.ExecOptions{
		Args: []any{string(hash)},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			data = make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, data)
			return nil
		},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if !found {
		return nil, errors.Wrapf(blobsweep.ErrNotFound, "blob '%s'", hash)
	}

	return data, nil
}

// SizeLimit implements blobsweep.BlobStore.
func (s *Store) SizeLimit() int64 {
	return s.sizeLimit
}

func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func NewStore(dbPath string, algorithm store.Algorithm, sizeLimit int64) *Store {
	schema := sqlitemigration.Schema{
		Migrations: []string{
			`CREATE TABLE IF NOT EXISTS blobs (
					hash TEXT PRIMARY KEY,      -- Hex digest of the content
					size INTEGER NOT NULL,      -- Content length in bytes
					content BLOB,               -- Raw content
					created_at INTEGER NOT NULL -- Unix timestamp of the first insertion
			)`,
		},
	}

	pool := sqlitemigration.NewPool(dbPath, schema, sqlitemigration.Options{
		Flags: sqlite.OpenCreate | sqlite.OpenReadWrite | sqlite.OpenWAL,
		PrepareConn: func(conn *sqlite.Conn) error {
			return sqlitex.ExecScript(conn, `PRAGMA busy_timeout = 5000;`)
		},
		OnError: func(e error) {
			log.Printf("%+v", e)
		},
	})

	return &Store{
		pool:      pool,
		algorithm: algorithm,
		sizeLimit: sizeLimit,
	}
}

var _ blobsweep.BlobStore = &Store{}
