// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package positions

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/position"
)

// CreateStakeRequest is the body of POST /positions.
type CreateStakeRequest struct {
	Owner  archon.Address        `json:"owner"`
	Node   archon.Address        `json:"node"`
	Amount *math.HexOrDecimal256 `json:"amount"`
	Tier   uint32                `json:"tier"`
}

// CallerRequest carries the caller of a claim or withdrawal.
type CallerRequest struct {
	Caller archon.Address `json:"caller"`
}

// CatchupRequest is the body of the catch-up endpoints. UntilEpoch 0 means
// as far as allowed.
type CatchupRequest struct {
	UntilEpoch uint32 `json:"untilEpoch"`
}

// BatchCatchupRequest is the body of POST /positions/catchup.
type BatchCatchupRequest struct {
	IDs []archon.Bytes32 `json:"ids"`
}

// BatchClaimRequest is the body of POST /positions/rewards/claim.
type BatchClaimRequest struct {
	Caller archon.Address   `json:"caller"`
	IDs    []archon.Bytes32 `json:"ids"`
}

// Position is the JSON presentation of a stake.
type Position struct {
	ID                      archon.Bytes32        `json:"id"`
	Owner                   archon.Address        `json:"owner"`
	Node                    archon.Address        `json:"node"`
	Kind                    string                `json:"kind"`
	Amount                  *math.HexOrDecimal256 `json:"amount"`
	FeeAmount               *math.HexOrDecimal256 `json:"feeAmount"`
	FeeBps                  uint32                `json:"feeBps"`
	Tier                    uint32                `json:"tier"`
	WeightBps               uint32                `json:"weightBps,omitempty"`
	StartEpoch              uint32                `json:"startEpoch"`
	EndLockEpoch            uint32                `json:"endLockEpoch,omitempty"`
	Locked                  bool                  `json:"locked"`
	LastEpochStakingUpdated uint32                `json:"lastEpochStakingUpdated"`
	LastEpochRewardsUpdated uint32                `json:"lastEpochRewardsUpdated"`
	UnclaimedRewards        *math.HexOrDecimal256 `json:"unclaimedRewards"`
	CumulativeRewards       *math.HexOrDecimal256 `json:"cumulativeRewards"`
	StakingStartTimestamp   uint64                `json:"stakingStartTimestamp"`
}

// EpochAmounts is one epoch's recorded staked amounts.
type EpochAmounts struct {
	Epoch uint32                `json:"epoch"`
	Last  *math.HexOrDecimal256 `json:"last"`
	Min   *math.HexOrDecimal256 `json:"min"`
}

// AmountResponse carries a single settled amount.
type AmountResponse struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func kindString(k position.Kind) string {
	switch k {
	case position.KindOperator:
		return "operator"
	case position.KindDelegator:
		return "delegator"
	default:
		return "unknown"
	}
}

func convertPosition(id archon.Bytes32, pos *position.Position) *Position {
	return &Position{
		ID:                      id,
		Owner:                   pos.Owner,
		Node:                    pos.NodeID,
		Kind:                    kindString(pos.Kind),
		Amount:                  (*math.HexOrDecimal256)(pos.BaseStakedAmount),
		FeeAmount:               (*math.HexOrDecimal256)(pos.FeeStakedAmount),
		FeeBps:                  pos.FeeBps,
		Tier:                    pos.LockTierID,
		WeightBps:               pos.LockWeightBps,
		StartEpoch:              pos.StartEpoch,
		EndLockEpoch:            pos.EndLockEpoch(),
		Locked:                  pos.IsLocked(),
		LastEpochStakingUpdated: pos.LastEpochStakingUpdated,
		LastEpochRewardsUpdated: pos.LastEpochRewardsUpdated,
		UnclaimedRewards:        (*math.HexOrDecimal256)(pos.UnclaimedRewards),
		CumulativeRewards:       (*math.HexOrDecimal256)(pos.CumulativeRewards),
		StakingStartTimestamp:   pos.StakingStartTimestamp,
	}
}

func convertAmounts(e uint32, last, minimum *big.Int) *EpochAmounts {
	return &EpochAmounts{
		Epoch: e,
		Last:  (*math.HexOrDecimal256)(last),
		Min:   (*math.HexOrDecimal256)(minimum),
	}
}
