// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/kv"
)

// Context scopes ledger records to a keyed region of the backing store.
// All higher level primitives (Mapping, Value, Uint256, Slice) resolve
// their keys through it.
type Context struct {
	store kv.Store
}

// NewContext creates a context over the given store.
func NewContext(store kv.Store) *Context {
	return &Context{store: store}
}

// Store exposes the backing store.
func (c *Context) Store() kv.Store {
	return c.store
}

// key derives the storage key for a slot/key pair.
func (c *Context) key(slot archon.Bytes32, key []byte) []byte {
	if len(key) == 0 {
		return slot.Bytes()
	}
	h := archon.Blake2b(key, slot.Bytes())
	return h.Bytes()
}

// NameToSlot derives a slot from a human readable name.
func NameToSlot(name string) archon.Bytes32 {
	return archon.BytesToBytes32([]byte(name))
}
