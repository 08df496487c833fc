// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/event"

	"github.com/archon-network/archon/archon"
)

// EventType names a ledger state transition.
type EventType string

const (
	EventStakeCreated     EventType = "stake_created"
	EventNodeRegistered   EventType = "node_registered"
	EventUpgradedToLiquid EventType = "upgraded_to_liquid"
	EventNodeSlashed      EventType = "node_slashed"
	EventRewardsClaimed   EventType = "rewards_claimed"
	EventPositionRedeemed EventType = "position_redeemed"
)

// Event is emitted on every ledger state transition of external interest.
type Event struct {
	Type     EventType       `json:"type"`
	Position *archon.Bytes32 `json:"position,omitempty"`
	Node     *archon.Address `json:"node,omitempty"`
	Epoch    uint32          `json:"epoch"`
	Amount   *big.Int        `json:"amount,omitempty"`
}

// SubscribeEvents delivers ledger events to the given channel until the
// subscription is unsubscribed. Delivery blocks on a full channel, so
// subscribers should buffer and drain promptly.
func (l *Ledger) SubscribeEvents(ch chan<- Event) event.Subscription {
	return l.feed.Subscribe(ch)
}

func (l *Ledger) emit(ev Event) {
	l.feed.Send(ev)
}

func eventPosition(id archon.Bytes32) *archon.Bytes32 { return &id }

func eventNode(id archon.Address) *archon.Address { return &id }
