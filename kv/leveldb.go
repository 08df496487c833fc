// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	writeOpt = &opt.WriteOptions{}
	readOpt  = &opt.ReadOptions{}
)

// levelStore implements the Store interface backed by goleveldb.
type levelStore struct {
	db *leveldb.DB
}

func openLevelDB(stg storage.Storage, cacheSize, openFilesCacheCapacity int) (*levelStore, error) {
	if cacheSize < 128 {
		cacheSize = 128
	}
	if openFilesCacheCapacity < 64 {
		openFilesCacheCapacity = 64
	}

	db, err := leveldb.Open(stg, &opt.Options{
		OpenFilesCacheCapacity: openFilesCacheCapacity,
		BlockCacheCapacity:     cacheSize / 2 * opt.MiB,
		WriteBuffer:            cacheSize / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if err != nil {
		return nil, errors.Wrap(err, "open level db")
	}
	return &levelStore{db: db}, nil
}

// NewMemStore opens an in-memory store, for tests and ephemeral runs.
func NewMemStore() Store {
	store, err := openLevelDB(storage.NewMemStorage(), 128, 0)
	if err != nil {
		// mem storage never fails to open
		panic(errors.Wrap(err, "open mem db"))
	}
	return store
}

// NewStore opens a persistent store at the given path.
func NewStore(path string, cacheSize int) (Store, error) {
	stg, err := storage.OpenFile(path, false)
	if err != nil {
		return nil, errors.Wrap(err, "new persistent level db")
	}
	return openLevelDB(stg, cacheSize, 0)
}

func (ls *levelStore) Get(key []byte) ([]byte, error) {
	return ls.db.Get(key, readOpt)
}

func (ls *levelStore) Has(key []byte) (bool, error) {
	return ls.db.Has(key, readOpt)
}

func (ls *levelStore) Put(key, val []byte) error {
	return ls.db.Put(key, val, writeOpt)
}

func (ls *levelStore) Delete(key []byte) error {
	return ls.db.Delete(key, writeOpt)
}

func (ls *levelStore) IsNotFound(err error) bool {
	return err == leveldb.ErrNotFound
}

func (ls *levelStore) Iterate(r Range) Iterator {
	var rng *util.Range
	if len(r.Start) > 0 || len(r.Limit) > 0 {
		rng = &util.Range{Start: r.Start, Limit: r.Limit}
	}
	return ls.db.NewIterator(rng, readOpt)
}

func (ls *levelStore) Close() error {
	return ls.db.Close()
}
