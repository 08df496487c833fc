// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tiers implements the lock tier registry. Tiers are immutable once
// referenced by an existing position; removal only disables future use.
package tiers

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/storage"
)

var (
	slotTiers        = storage.NameToSlot("lock-tiers")
	slotTiersCounter = storage.NameToSlot("lock-tiers-counter")
)

// Tier describes a lock commitment: a minimum amount locked for a fixed
// number of epochs in exchange for a reward weight above 100%.
type Tier struct {
	ID               uint32
	MinStakingAmount *big.Int
	LengthEpochs     uint32
	WeightBps        uint32 // > 10000, i.e. strictly above 100%
	Active           bool
}

// IsEmpty returns whether the entry can be treated as empty.
func (t *Tier) IsEmpty() bool {
	return t.WeightBps == 0
}

// Service manages the tier registry.
type Service struct {
	tiers   *storage.Mapping[storage.Uint32Key, *Tier]
	counter *storage.Uint256
}

// New creates a tier service over the given storage context.
func New(sctx *storage.Context) *Service {
	return &Service{
		tiers:   storage.NewMapping[storage.Uint32Key, *Tier](sctx, slotTiers),
		counter: storage.NewUint256(sctx, slotTiersCounter),
	}
}

// Add registers a new tier and returns its id. Ids start at 1; id 0 is
// reserved for liquid stake.
func (s *Service) Add(minAmount *big.Int, lengthEpochs, weightBps uint32) (uint32, error) {
	if weightBps <= archon.FullWeightBps {
		return 0, errors.New("tier weight must exceed 100%")
	}
	if lengthEpochs == 0 {
		return 0, errors.New("tier length must be at least one epoch")
	}

	count, err := s.counter.Get()
	if err != nil {
		return 0, err
	}
	if !count.IsUint64() || count.Uint64() >= math.MaxUint32 {
		return 0, errors.New("tier id space exhausted")
	}
	id := uint32(count.Uint64()) + 1

	entry := &Tier{
		ID:               id,
		MinStakingAmount: minAmount,
		LengthEpochs:     lengthEpochs,
		WeightBps:        weightBps,
		Active:           true,
	}
	if err := s.tiers.Set(storage.Uint32Key(id), entry); err != nil {
		return 0, err
	}
	if err := s.counter.Add(big.NewInt(1)); err != nil {
		return 0, err
	}
	return id, nil
}

// Get returns the tier with the given id.
func (s *Service) Get(id uint32) (*Tier, error) {
	if id == archon.LiquidTierID {
		return nil, reverts.InvalidTier("tier id 0 is liquid stake")
	}
	tier, err := s.tiers.Get(storage.Uint32Key(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get tier")
	}
	if tier.IsEmpty() {
		return nil, reverts.InvalidTier("tier %d does not exist", id)
	}
	return tier, nil
}

// List returns every registered tier in id order, disabled ones included.
func (s *Service) List() ([]*Tier, error) {
	count, err := s.counter.Get()
	if err != nil {
		return nil, err
	}
	total := count.Uint64()
	out := make([]*Tier, 0, total)
	for id := uint64(1); id <= total; id++ {
		tier, err := s.Get(uint32(id))
		if err != nil {
			return nil, err
		}
		out = append(out, tier)
	}
	return out, nil
}

// Disable deactivates a tier for future use. Positions already locked into
// it are unaffected.
func (s *Service) Disable(id uint32) error {
	tier, err := s.Get(id)
	if err != nil {
		return err
	}
	tier.Active = false
	return s.tiers.Set(storage.Uint32Key(id), tier)
}

// IsValid reports whether the tier can back a new locked stake of the given
// amount.
func (s *Service) IsValid(id uint32, amount *big.Int) (bool, error) {
	tier, err := s.tiers.Get(storage.Uint32Key(id))
	if err != nil {
		return false, errors.Wrap(err, "failed to get tier")
	}
	if tier.IsEmpty() || !tier.Active {
		return false, nil
	}
	return amount.Cmp(tier.MinStakingAmount) >= 0, nil
}
