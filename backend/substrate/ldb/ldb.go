// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/0xsoniclabs/polystore/backend"
	"github.com/0xsoniclabs/polystore/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// DirectoryName is the name of the LevelDB directory created within the
// directory a substrate is opened in.
const DirectoryName = "leveldb"

// Substrate is a backend.Substrate persisted in a LevelDB instance.
type Substrate struct {
	db      *leveldb.DB
	options *opt.WriteOptions
	path    string
}

// Open opens or creates a LevelDB substrate located in the given directory.
// If options is nil, default options tuned for small records are used.
func Open(directory string, options *opt.Options) (*Substrate, error) {
	if options == nil {
		options = &opt.Options{
			BlockCacheCapacity:     16 * opt.MiB,
			WriteBuffer:            8 * opt.MiB,
			OpenFilesCacheCapacity: 64,
		}
	}
	path := filepath.Join(directory, DirectoryName)
	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb in %s; %w", path, err)
	}
	return &Substrate{
		db:      db,
		options: &opt.WriteOptions{},
		path:    path,
	}, nil
}

func (s *Substrate) Get(key []byte) ([]byte, bool, error) {
	value, err := s.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(err)
	}
	return value, true, nil
}

func (s *Substrate) Has(key []byte) (bool, error) {
	has, err := s.db.Has(key, nil)
	return has, wrapError(err)
}

// Apply writes the operations of the batch as a single LevelDB batch, which
// LevelDB applies atomically.
func (s *Substrate) Apply(batch *backend.Batch) error {
	var b leveldb.Batch
	for _, op := range batch.Ops() {
		if op.IsDelete() {
			b.Delete(op.Key)
		} else {
			b.Put(op.Key, op.Value)
		}
	}
	return wrapError(s.db.Write(&b, s.options))
}

// Flush forces the content of the write buffer to disk.
func (s *Substrate) Flush() error {
	var b leveldb.Batch
	return wrapError(s.db.Write(&b, &opt.WriteOptions{Sync: true}))
}

func (s *Substrate) Close() error {
	return s.db.Close()
}

func (s *Substrate) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	var stats leveldb.DBStats
	if err := s.db.Stats(&stats); err == nil {
		cache := common.NewMemoryFootprint(uintptr(stats.BlockCacheSize))
		mf.AddChild("blockCache", cache)
		mf.SetNote(fmt.Sprintf("(open tables: %d)", stats.OpenedTablesCount))
	}
	return mf
}

// wrapError reports the use of a closed database as backend.ErrClosed.
func wrapError(err error) error {
	if errors.Is(err, leveldb.ErrClosed) {
		return fmt.Errorf("%w; %w", backend.ErrClosed, err)
	}
	return err
}
