// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package nodes

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/aggregation"
)

// RegisterRequest is the body of POST /nodes.
type RegisterRequest struct {
	Operator archon.Address        `json:"operator"`
	Node     archon.Address        `json:"node"`
	FeeBps   uint32                `json:"feeBps"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Tier     uint32                `json:"tier"`
}

// CatchupRequest is the body of POST /nodes/{id}/catchup.
type CatchupRequest struct {
	UntilEpoch uint32 `json:"untilEpoch"`
}

// SlashRequest is the body of POST /nodes/{id}/slash.
type SlashRequest struct {
	Caller     archon.Address `json:"caller"`
	PercentBps uint32         `json:"percentBps"`
}

// Node is the JSON presentation of a node aggregate.
type Node struct {
	ID                      archon.Address        `json:"id"`
	Operator                archon.Address        `json:"operator"`
	OperatorPosition        archon.Bytes32        `json:"operatorPosition"`
	FeeBps                  uint32                `json:"feeBps"`
	Amount                  *math.HexOrDecimal256 `json:"amount"`
	StartEpoch              uint32                `json:"startEpoch"`
	LastEpochStakingUpdated uint32                `json:"lastEpochStakingUpdated"`
	Active                  bool                  `json:"active"`
	LastActiveEpoch         uint32                `json:"lastActiveEpoch,omitempty"`
	SlashedBps              uint32                `json:"slashedBps,omitempty"`
}

// EpochAmounts is one epoch's recorded staked amounts.
type EpochAmounts struct {
	Epoch uint32                `json:"epoch"`
	Last  *math.HexOrDecimal256 `json:"last"`
	Min   *math.HexOrDecimal256 `json:"min"`
}

func convertNode(id archon.Address, node *aggregation.Aggregate, opPosition archon.Bytes32) *Node {
	return &Node{
		ID:                      id,
		Operator:                node.Operator,
		OperatorPosition:        opPosition,
		FeeBps:                  node.DelegatorFeeBps,
		Amount:                  (*math.HexOrDecimal256)(node.BaseStakedAmount),
		StartEpoch:              node.StartEpoch,
		LastEpochStakingUpdated: node.LastEpochStakingUpdated,
		Active:                  node.Active,
		LastActiveEpoch:         node.LastActiveEpoch,
		SlashedBps:              node.SlashedBps,
	}
}
