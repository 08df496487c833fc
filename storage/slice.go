// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/archon-network/archon/archon"
)

// Slice is an append-only growable list, similar to a dynamic array in
// contract storage. Items are never reordered or removed; insertion is O(1).
type Slice[V any] struct {
	context *Context
	basePos archon.Bytes32
}

// NewSlice creates a slice rooted at the slot derived from pos and the owning
// entity's key.
func NewSlice[V any](context *Context, pos archon.Bytes32, owner []byte) *Slice[V] {
	return &Slice[V]{
		context: context,
		basePos: archon.Blake2b(owner, pos.Bytes()),
	}
}

func (s *Slice[V]) itemKey(index uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return s.context.key(s.basePos, b[:])
}

// Len returns the number of items appended so far.
func (s *Slice[V]) Len() (uint64, error) {
	raw, err := s.context.store.Get(s.context.key(s.basePos, nil))
	if err != nil {
		if s.context.store.IsNotFound(err) {
			return 0, nil
		}
		return 0, err
	}
	return binary.BigEndian.Uint64(raw), nil
}

// Append adds an item at the end of the list.
func (s *Slice[V]) Append(value V) error {
	length, err := s.Len()
	if err != nil {
		return err
	}
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	if err := s.context.store.Put(s.itemKey(length), raw); err != nil {
		return err
	}
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], length+1)
	return s.context.store.Put(s.context.key(s.basePos, nil), b[:])
}

// Get loads the item at index.
func (s *Slice[V]) Get(index uint64) (value V, err error) {
	raw, err := s.context.store.Get(s.itemKey(index))
	if err != nil {
		return value, err
	}
	err = rlp.DecodeBytes(raw, &value)
	return value, err
}

// ForEach iterates items in append order.
func (s *Slice[V]) ForEach(fn func(index uint64, value V) error) error {
	length, err := s.Len()
	if err != nil {
		return err
	}
	for i := uint64(0); i < length; i++ {
		value, err := s.Get(i)
		if err != nil {
			return err
		}
		if err := fn(i, value); err != nil {
			return err
		}
	}
	return nil
}
