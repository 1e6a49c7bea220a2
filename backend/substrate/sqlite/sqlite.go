// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/common"
	_ "github.com/mattn/go-sqlite3"
)

// FileName is the name of the database file created within the directory a
// substrate is opened in.
const FileName = "polystore.sqlite"

const (
	createTableStmt = `CREATE TABLE IF NOT EXISTS records (key BLOB PRIMARY KEY, value BLOB NOT NULL) WITHOUT ROWID`
	getStmt         = `SELECT value FROM records WHERE key = ?`
	hasStmt         = `SELECT EXISTS(SELECT 1 FROM records WHERE key = ?)`
	putStmt         = `INSERT INTO records(key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteStmt      = `DELETE FROM records WHERE key = ?`
	countStmt       = `SELECT COUNT(*) FROM records`
)

// Substrate is a backend.Substrate persisted in a single SQLite table. Each
// batch is applied within its own transaction.
type Substrate struct {
	db     *sql.DB
	get    *sql.Stmt
	has    *sql.Stmt
	put    *sql.Stmt
	delete *sql.Stmt
	closed bool
}

// Open opens or creates a SQLite substrate located in the given directory.
func Open(directory string) (*Substrate, error) {
	path := filepath.Join(directory, FileName)
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s; %w", path, err)
	}
	// the host serializes all operations, a single connection suffices
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableStmt); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to create records table; %w", err), db.Close())
	}

	res := &Substrate{db: db}
	for _, cur := range []struct {
		stmt **sql.Stmt
		sql  string
	}{
		{&res.get, getStmt},
		{&res.has, hasStmt},
		{&res.put, putStmt},
		{&res.delete, deleteStmt},
	} {
		stmt, err := db.Prepare(cur.sql)
		if err != nil {
			return nil, errors.Join(fmt.Errorf("failed to prepare statement %q; %w", cur.sql, err), res.Close())
		}
		*cur.stmt = stmt
	}
	return res, nil
}

func (s *Substrate) Get(key []byte) ([]byte, bool, error) {
	if s.closed {
		return nil, false, backend.ErrClosed
	}
	var value []byte
	err := s.get.QueryRow(key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, true, nil
}

func (s *Substrate) Has(key []byte) (bool, error) {
	if s.closed {
		return false, backend.ErrClosed
	}
	var exists bool
	if err := s.has.QueryRow(key).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Substrate) Apply(batch *backend.Batch) (err error) {
	if s.closed {
		return backend.ErrClosed
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	put := tx.Stmt(s.put)
	del := tx.Stmt(s.delete)
	for _, op := range batch.Ops() {
		if op.IsDelete() {
			_, err = del.Exec(op.Key)
		} else {
			_, err = put.Exec(op.Key, op.Value)
		}
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Len returns the number of stored records.
func (s *Substrate) Len() (int, error) {
	if s.closed {
		return 0, backend.ErrClosed
	}
	var count int
	if err := s.db.QueryRow(countStmt).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// Flush checkpoints the write-ahead log into the database file.
func (s *Substrate) Flush() error {
	if s.closed {
		return backend.ErrClosed
	}
	_, err := s.db.Exec(`PRAGMA wal_checkpoint(TRUNCATE)`)
	return err
}

func (s *Substrate) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, stmt := range []*sql.Stmt{s.get, s.has, s.put, s.delete} {
		if stmt != nil {
			errs = append(errs, stmt.Close())
		}
	}
	errs = append(errs, s.db.Close())
	return errors.Join(errs...)
}

func (s *Substrate) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	stats := s.db.Stats()
	mf.SetNote(fmt.Sprintf("(open connections: %d)", stats.OpenConnections))
	return mf
}
