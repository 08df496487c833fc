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

// Value stores a single record at a fixed slot, RLP encoded. Used for the
// global aggregate and other singletons.
type Value[V any] struct {
	context *Context
	pos     archon.Bytes32
}

// NewValue creates the wrapper at the given slot.
func NewValue[V any](context *Context, slot archon.Bytes32) *Value[V] {
	return &Value[V]{context: context, pos: slot}
}

// Get loads the record. An unset slot decodes to the zero value.
func (v *Value[V]) Get() (value V, err error) {
	if reflect.ValueOf(value).Kind() == reflect.Ptr {
		value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
	}
	raw, err := v.context.store.Get(v.context.key(v.pos, nil))
	if err != nil {
		if v.context.store.IsNotFound(err) {
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

// Set stores the record.
func (v *Value[V]) Set(value V) error {
	raw, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return v.context.store.Put(v.context.key(v.pos, nil), raw)
}
