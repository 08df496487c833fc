// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
)

// Uint256 is a wrapper for storage and retrieval of a single unsigned big
// integer, similar to an uint256 slot in contract storage.
type Uint256 struct {
	context *Context
	pos     archon.Bytes32
}

// NewUint256 creates the wrapper at the given slot.
func NewUint256(context *Context, slot archon.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

// Get reads the current value. An unset slot reads as 0.
func (u *Uint256) Get() (*big.Int, error) {
	raw, err := u.context.store.Get(u.context.key(u.pos, nil))
	if err != nil {
		if u.context.store.IsNotFound(err) {
			return new(big.Int), nil
		}
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// Set writes the value. Negative values are rejected.
func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 {
		return errors.New("negative value")
	}
	return u.context.store.Put(u.context.key(u.pos, nil), value.Bytes())
}

// Add increases the stored value.
func (u *Uint256) Add(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(stored.Add(stored, value))
}

// Sub decreases the stored value. Underflow is an error, the slot is left
// untouched.
func (u *Uint256) Sub(value *big.Int) error {
	stored, err := u.Get()
	if err != nil {
		return err
	}
	if stored.Cmp(value) < 0 {
		return errors.New("uint256 underflow")
	}
	return u.Set(stored.Sub(stored, value))
}
