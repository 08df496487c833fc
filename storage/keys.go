// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"

	"github.com/archon-network/archon/archon"
)

// Uint32Key adapts a uint32 (epoch numbers, tier ids) for use as a mapping key.
type Uint32Key uint32

// Bytes returns the big-endian form of the key.
func (k Uint32Key) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(k))
	return b[:]
}

// CompositeKey joins multiple key parts into a single mapping key.
type CompositeKey []byte

// Bytes returns the raw composite key.
func (k CompositeKey) Bytes() []byte { return k }

// NewCompositeKey hashes the given parts into one key.
func NewCompositeKey(parts ...[]byte) CompositeKey {
	h := archon.Blake2b(parts...)
	return CompositeKey(h.Bytes())
}
