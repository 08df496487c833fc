// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "github.com/syndtr/goleveldb/leveldb/util"

// Bucket provides a logical bucket for a kv store by key prefixing.
type Bucket string

type bucketStore struct {
	b   Bucket
	src Store
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{b, src}
}

func (s *bucketStore) makeKey(key []byte) []byte {
	return append([]byte(s.b), key...)
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.makeKey(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.makeKey(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, val []byte) error {
	return s.src.Put(s.makeKey(key), val)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.makeKey(key))
}

func (s *bucketStore) Iterate(r Range) Iterator {
	start := s.makeKey(r.Start)
	var limit []byte
	if len(r.Limit) == 0 {
		limit = util.BytesPrefix([]byte(s.b)).Limit
	} else {
		limit = s.makeKey(r.Limit)
	}
	return &bucketIter{s.src.Iterate(Range{Start: start, Limit: limit}), len(s.b)}
}

func (s *bucketStore) Close() error {
	return s.src.Close()
}

type bucketIter struct {
	Iterator
	prefixLen int
}

// Key strips the bucket prefix.
func (i *bucketIter) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}
