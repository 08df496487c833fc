// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/archon-network/archon/archon"
)

// Key is any type usable as a mapping key.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for ledger records, similar to a
// mapping in contract storage. A key that was never set reads as the zero
// value of V.
type Mapping[K Key, V any] struct {
	context *Context
	basePos archon.Bytes32
}

// NewMapping creates a mapping rooted at the given slot.
func NewMapping[K Key, V any](context *Context, pos archon.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

// Get loads the value for key. Missing keys decode to the zero value.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := m.context.store.Get(m.context.key(m.basePos, key.Bytes()))
	if err != nil {
		if m.context.store.IsNotFound(err) {
			return value, nil
		}
		return value, err
	}
	if len(raw) == 0 {
		return value, nil
	}
	err = rlp.DecodeBytes(raw, &value)
	return value, err
}

// Set stores the value for key.
func (m *Mapping[K, V]) Set(key K, value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.context.store.Put(m.context.key(m.basePos, key.Bytes()), raw)
}

// Delete removes the value for key.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.context.store.Delete(m.context.key(m.basePos, key.Bytes()))
}

// Has reports whether the key was ever set.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	return m.context.store.Has(m.context.key(m.basePos, key.Bytes()))
}
