// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package position implements the per-position side of the staking ledger:
// one record per stake, its lazily maintained per-epoch staked amounts, and
// the per-node membership list.
package position

import (
	"math/big"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/stakes"
)

type Kind = uint8

const (
	KindUnknown Kind = iota // 0 -> default value
	KindOperator
	KindDelegator
)

// Position is a single stake, held by an operator or a delegator.
//
// BaseStakedAmount is immutable after creation except to zero on full
// withdrawal or redemption; catch-up never touches it.
type Position struct {
	Owner  archon.Address
	NodeID archon.Address
	Kind   Kind

	BaseStakedAmount *big.Int
	FeeStakedAmount  *big.Int // operator only: delegator principal accruing here via the node fee

	// lock tier snapshot, taken at stake time; tiers are immutable once referenced
	LockTierID       uint32 // 0 = liquid
	LockWeightBps    uint32
	LockLengthEpochs uint32

	FeeBps uint32 // node delegator fee applied to this position's principal (delegators only)

	StartEpoch              uint32 // epoch of first activity; min stake of that epoch is 0
	LastEpochStakingUpdated uint32
	LastEpochRewardsUpdated uint32

	UnclaimedRewards  *big.Int
	CumulativeRewards *big.Int

	StakingStartTimestamp uint64

	Prev *archon.Bytes32 `rlp:"nil"` // doubly linked list of the node's positions
	Next *archon.Bytes32 `rlp:"nil"`
}

// IsEmpty returns whether the entry can be treated as empty.
func (p *Position) IsEmpty() bool {
	return p.Kind == KindUnknown
}

// IsLocked returns whether the position is currently locked into a tier.
func (p *Position) IsLocked() bool {
	return p.LockTierID != archon.LiquidTierID
}

// EndLockEpoch returns the epoch at which the lock naturally expires and the
// position reverts to liquid. The staking epoch itself is only partially
// locked and does not count toward the term. Returns 0 for liquid positions.
func (p *Position) EndLockEpoch() uint32 {
	if !p.IsLocked() {
		return 0
	}
	return p.StartEpoch + p.LockLengthEpochs + 1
}

// NetPrincipal returns the principal counted toward this position's own
// per-epoch staked amounts: the base stake less the node's delegator fee.
func (p *Position) NetPrincipal() *big.Int {
	if p.Kind == KindDelegator && p.FeeBps > 0 {
		net, _ := stakes.FeeSplit(p.BaseStakedAmount, p.FeeBps)
		return net
	}
	return new(big.Int).Set(p.BaseStakedAmount)
}

// CarryAt returns the staked amount this position contributes to epoch e,
// given its current fields: net principal, plus the lock excess while e is
// before the lock expiry, plus accrued delegation fees for operators.
func (p *Position) CarryAt(e uint32) *big.Int {
	carry := p.NetPrincipal()
	if p.IsLocked() && e < p.EndLockEpoch() {
		carry.Add(carry, stakes.Excess(p.BaseStakedAmount, p.LockWeightBps))
	}
	if p.FeeStakedAmount != nil {
		carry.Add(carry, p.FeeStakedAmount)
	}
	return carry
}

// WeightedStake returns the full weighted amount the position adds to its
// node and the global aggregate while locked (principal plus excess), or the
// plain principal when liquid. The delegator fee split is internal to the
// node and does not change this total.
func (p *Position) WeightedStake() *big.Int {
	if p.IsLocked() {
		return stakes.WeightedAmount(p.BaseStakedAmount, p.LockWeightBps)
	}
	return new(big.Int).Set(p.BaseStakedAmount)
}
