// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package aggregation implements the node level of the staking ledger: one
// aggregate record per registered node and its per-epoch staked amounts.
package aggregation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/storage"
)

var (
	slotNodes     = storage.NameToSlot("nodes")
	slotNodeIndex = storage.NameToSlot("node-index")
)

// Aggregate is the per-node staking record. The staked amount fields mirror
// the sum of the node's positions; the per-epoch history lives in a Series.
type Aggregate struct {
	Operator         archon.Address
	OperatorPosition archon.Bytes32 // the operator's own position, target of fee accrual
	DelegatorFeeBps  uint32

	BaseStakedAmount *big.Int // sum of live position principals

	StartEpoch              uint32
	LastEpochStakingUpdated uint32

	Active          bool
	LastActiveEpoch uint32 // set when the node is deactivated; catch-up ceiling thereafter
	SlashedBps      uint32
}

// IsEmpty returns whether the record was never registered.
func (a *Aggregate) IsEmpty() bool {
	return a.Operator.IsZero() && !a.Active
}

// CatchupCeiling returns the last epoch the node's series may advance to,
// given the current epoch. Inactive nodes are frozen at deactivation.
func (a *Aggregate) CatchupCeiling(currentEpoch uint32) uint32 {
	if currentEpoch == 0 {
		return 0
	}
	ceiling := currentEpoch - 1
	if !a.Active && a.LastActiveEpoch > 0 && a.LastActiveEpoch-1 < ceiling {
		ceiling = a.LastActiveEpoch - 1
	}
	return ceiling
}

// Service manages node aggregate records.
type Service struct {
	sctx  *storage.Context
	nodes *storage.Mapping[archon.Address, *Aggregate]
	index *storage.Slice[archon.Address]
}

// New creates an aggregation service over the given storage context.
func New(sctx *storage.Context) *Service {
	return &Service{
		sctx:  sctx,
		nodes: storage.NewMapping[archon.Address, *Aggregate](sctx, slotNodes),
		index: storage.NewSlice[archon.Address](sctx, slotNodeIndex, []byte("all")),
	}
}

// Register stores a new node aggregate and adds it to the node index.
func (s *Service) Register(id archon.Address, entry *Aggregate) error {
	existing, err := s.nodes.Get(id)
	if err != nil {
		return errors.Wrap(err, "failed to get node")
	}
	if !existing.IsEmpty() {
		return reverts.AlreadyExists("node %s already registered", id)
	}
	if err := s.nodes.Set(id, entry); err != nil {
		return errors.Wrap(err, "failed to set node")
	}
	return s.index.Append(id)
}

// Get returns the node aggregate, or the empty value if never registered.
func (s *Service) Get(id archon.Address) (*Aggregate, error) {
	entry, err := s.nodes.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get node")
	}
	return entry, nil
}

// GetExisting returns the node aggregate or an EntityNotFound revert.
func (s *Service) GetExisting(id archon.Address) (*Aggregate, error) {
	entry, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if entry.IsEmpty() {
		return nil, reverts.EntityNotFound("node %s", id)
	}
	return entry, nil
}

// Set stores the node aggregate.
func (s *Service) Set(id archon.Address, entry *Aggregate) error {
	if err := s.nodes.Set(id, entry); err != nil {
		return errors.Wrap(err, "failed to set node")
	}
	return nil
}

// Series returns the node's per-epoch staked amount series.
func (s *Service) Series(id archon.Address) *Series {
	return NewSeries(s.sctx, id.Bytes())
}

// ForEach iterates all registered nodes in registration order.
func (s *Service) ForEach(fn func(id archon.Address, entry *Aggregate) error) error {
	return s.index.ForEach(func(_ uint64, id archon.Address) error {
		entry, err := s.Get(id)
		if err != nil {
			return err
		}
		return fn(id, entry)
	})
}
