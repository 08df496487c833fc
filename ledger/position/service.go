// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/storage"
)

var (
	slotPositions        = storage.NameToSlot("positions")
	slotPositionsCounter = storage.NameToSlot("positions-counter")
	slotLastStaked       = storage.NameToSlot("position-last-staked")
	slotMinStaked        = storage.NameToSlot("position-min-staked")
)

// Service manages position records and their per-epoch staked amounts.
type Service struct {
	positions  *storage.Mapping[archon.Bytes32, *Position]
	counter    *storage.Uint256
	lastStaked *storage.Mapping[storage.CompositeKey, *big.Int]
	minStaked  *storage.Mapping[storage.CompositeKey, *big.Int]
	lists      *lists
}

// New creates a position service over the given storage context.
func New(sctx *storage.Context) *Service {
	return &Service{
		positions:  storage.NewMapping[archon.Bytes32, *Position](sctx, slotPositions),
		counter:    storage.NewUint256(sctx, slotPositionsCounter),
		lastStaked: storage.NewMapping[storage.CompositeKey, *big.Int](sctx, slotLastStaked),
		minStaked:  storage.NewMapping[storage.CompositeKey, *big.Int](sctx, slotMinStaked),
		lists:      newLists(sctx),
	}
}

// Get returns the position, or the empty value if it was never created.
func (s *Service) Get(id archon.Bytes32) (*Position, error) {
	p, err := s.positions.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	return p, nil
}

// GetExisting returns the position or an EntityNotFound revert.
func (s *Service) GetExisting(id archon.Bytes32) (*Position, error) {
	if id.IsZero() {
		return nil, reverts.EntityNotFound("position id is zero")
	}
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return nil, reverts.EntityNotFound("position %s", id.AbbrevString())
	}
	return p, nil
}

// Set stores the position.
func (s *Service) Set(id archon.Bytes32, entry *Position) error {
	if err := s.positions.Set(id, entry); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	return nil
}

// Create stores a new position and links it into its node's list. The id is
// derived from the owner, the node and a global counter.
func (s *Service) Create(entry *Position) (archon.Bytes32, error) {
	count, err := s.counter.Get()
	if err != nil {
		return archon.Bytes32{}, err
	}
	if err := s.counter.Add(big.NewInt(1)); err != nil {
		return archon.Bytes32{}, err
	}
	id := archon.Blake2b(entry.Owner.Bytes(), entry.NodeID.Bytes(), count.Bytes())

	if err := s.lists.link(s, entry.NodeID, id, entry); err != nil {
		return archon.Bytes32{}, err
	}
	if err := s.Set(id, entry); err != nil {
		return archon.Bytes32{}, err
	}
	return id, nil
}

// Remove unlinks the position from its node's list and deletes the record.
func (s *Service) Remove(id archon.Bytes32, entry *Position) error {
	if err := s.lists.unlink(s, entry.NodeID, id, entry); err != nil {
		return err
	}
	return s.positions.Delete(id)
}

// ForEachInNode iterates the node's positions in insertion order.
// The callback may mutate and re-store entries, but must not unlink them.
func (s *Service) ForEachInNode(node archon.Address, fn func(id archon.Bytes32, entry *Position) error) error {
	return s.lists.forEach(s, node, fn)
}

// CountInNode returns the number of positions linked to the node.
func (s *Service) CountInNode(node archon.Address) (uint64, error) {
	meta, err := s.lists.meta.Get(node)
	if err != nil {
		return 0, err
	}
	return meta.Size, nil
}

//
// per-epoch staked amounts
//

func epochKey(id archon.Bytes32, e uint32) storage.CompositeKey {
	return storage.NewCompositeKey(id.Bytes(), storage.Uint32Key(e).Bytes())
}

// LastStaked returns the recorded staked amount for the epoch.
func (s *Service) LastStaked(id archon.Bytes32, e uint32) (*big.Int, error) {
	v, err := s.lastStaked.Get(epochKey(id, e))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// SetLastStaked records the staked amount for the epoch.
func (s *Service) SetLastStaked(id archon.Bytes32, e uint32, v *big.Int) error {
	return s.lastStaked.Set(epochKey(id, e), v)
}

// MinStaked returns the recorded minimum staked amount for the epoch.
func (s *Service) MinStaked(id archon.Bytes32, e uint32) (*big.Int, error) {
	v, err := s.minStaked.Get(epochKey(id, e))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// SetMinStaked records the minimum staked amount for the epoch.
func (s *Service) SetMinStaked(id archon.Bytes32, e uint32, v *big.Int) error {
	return s.minStaked.Set(epochKey(id, e), v)
}
