// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregation

import (
	"math/big"

	"github.com/archon-network/archon/storage"
)

var (
	slotLastStaked     = storage.NameToSlot("agg-last-staked")
	slotMinStaked      = storage.NameToSlot("agg-min-staked")
	slotExcess         = storage.NameToSlot("agg-excess-weighted")
	slotExcessExpiries = storage.NameToSlot("agg-excess-expiries")
)

// Series holds the per-epoch staked amounts of one aggregate: the amount
// staked at the end of each epoch, the minimum over each epoch, and the
// excess weighted stake scheduled to expire at future epochs. Nodes and the
// global aggregate share the same layout, distinguished by the owner key.
type Series struct {
	owner      []byte
	lastStaked *storage.Mapping[storage.CompositeKey, *big.Int]
	minStaked  *storage.Mapping[storage.CompositeKey, *big.Int]
	excess     *storage.Mapping[storage.CompositeKey, *big.Int]
	expiries   *storage.Slice[uint32]
}

// NewSeries creates the series for the aggregate identified by owner.
func NewSeries(sctx *storage.Context, owner []byte) *Series {
	return &Series{
		owner:      owner,
		lastStaked: storage.NewMapping[storage.CompositeKey, *big.Int](sctx, slotLastStaked),
		minStaked:  storage.NewMapping[storage.CompositeKey, *big.Int](sctx, slotMinStaked),
		excess:     storage.NewMapping[storage.CompositeKey, *big.Int](sctx, slotExcess),
		expiries:   storage.NewSlice[uint32](sctx, slotExcessExpiries, owner),
	}
}

func (s *Series) key(e uint32) storage.CompositeKey {
	return storage.NewCompositeKey(s.owner, storage.Uint32Key(e).Bytes())
}

func (s *Series) get(m *storage.Mapping[storage.CompositeKey, *big.Int], e uint32) (*big.Int, error) {
	v, err := m.Get(s.key(e))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// LastStaked returns the staked amount recorded for the end of epoch e.
func (s *Series) LastStaked(e uint32) (*big.Int, error) {
	return s.get(s.lastStaked, e)
}

// SetLastStaked records the staked amount for the end of epoch e.
func (s *Series) SetLastStaked(e uint32, v *big.Int) error {
	return s.lastStaked.Set(s.key(e), v)
}

// MinStaked returns the minimum staked amount recorded over epoch e.
func (s *Series) MinStaked(e uint32) (*big.Int, error) {
	return s.get(s.minStaked, e)
}

// SetMinStaked records the minimum staked amount over epoch e.
func (s *Series) SetMinStaked(e uint32, v *big.Int) error {
	return s.minStaked.Set(s.key(e), v)
}

// Excess returns the excess weighted stake scheduled to drop at epoch e.
func (s *Series) Excess(e uint32) (*big.Int, error) {
	return s.get(s.excess, e)
}

// SetExcess overwrites the scheduled excess for epoch e. Used with zero to
// neutralize entries that were settled out of band, e.g. by a slash.
func (s *Series) SetExcess(e uint32, v *big.Int) error {
	return s.excess.Set(s.key(e), v)
}

// AddExcess increases the scheduled excess for epoch e and remembers the
// epoch in the expiry list.
func (s *Series) AddExcess(e uint32, v *big.Int) error {
	cur, err := s.Excess(e)
	if err != nil {
		return err
	}
	if err := s.excess.Set(s.key(e), cur.Add(cur, v)); err != nil {
		return err
	}
	return s.expiries.Append(e)
}

// ForEachExpiry iterates the recorded expiry epochs in insertion order. The
// list is append-only and deliberately unsorted; an epoch may appear more
// than once, so consumers settling entries out of band must zero the excess
// entry as they go to make repeated visits harmless.
func (s *Series) ForEachExpiry(fn func(e uint32) error) error {
	return s.expiries.ForEach(func(_ uint64, e uint32) error {
		return fn(e)
	})
}
