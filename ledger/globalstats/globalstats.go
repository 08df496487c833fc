// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package globalstats tracks the protocol-wide aggregate: the total staked
// amounts across all nodes, their per-epoch history, and the reward pools
// assigned to finished epochs.
package globalstats

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/ledger/aggregation"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/storage"
)

var (
	slotStats            = storage.NameToSlot("global-stats")
	slotRewardPools      = storage.NameToSlot("reward-pools")
	slotLastRewardsEpoch = storage.NameToSlot("last-rewards-epoch")

	seriesOwner = []byte("global")
)

// Stats is the protocol-wide staking record.
type Stats struct {
	BaseStakedAmount        *big.Int // sum of all live position principals
	StartEpoch              uint32
	LastEpochStakingUpdated uint32
}

// Service manages the global aggregate and the reward pools.
type Service struct {
	stats       *storage.Value[*Stats]
	series      *aggregation.Series
	pools       *storage.Mapping[storage.Uint32Key, *big.Int]
	poolsCursor *storage.Value[uint32]
}

// New creates the global stats service over the given storage context.
func New(sctx *storage.Context) *Service {
	return &Service{
		stats:       storage.NewValue[*Stats](sctx, slotStats),
		series:      aggregation.NewSeries(sctx, seriesOwner),
		pools:       storage.NewMapping[storage.Uint32Key, *big.Int](sctx, slotRewardPools),
		poolsCursor: storage.NewValue[uint32](sctx, slotLastRewardsEpoch),
	}
}

// Get loads the global record. Before any stake it reads as the zero value.
func (s *Service) Get() (*Stats, error) {
	stats, err := s.stats.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get global stats")
	}
	if stats.BaseStakedAmount == nil {
		stats.BaseStakedAmount = new(big.Int)
	}
	return stats, nil
}

// Set stores the global record.
func (s *Service) Set(stats *Stats) error {
	if err := s.stats.Set(stats); err != nil {
		return errors.Wrap(err, "failed to set global stats")
	}
	return nil
}

// Series returns the global per-epoch staked amount series.
func (s *Service) Series() *aggregation.Series {
	return s.series
}

//
// reward pools
//

// RewardPool returns the pool assigned to the epoch, zero if unassigned.
func (s *Service) RewardPool(e uint32) (*big.Int, error) {
	v, err := s.pools.Get(storage.Uint32Key(e))
	if err != nil {
		return nil, err
	}
	if v == nil {
		return new(big.Int), nil
	}
	return v, nil
}

// LastRewardsEpoch returns the most recent epoch with an assigned pool,
// zero if none has been assigned yet.
func (s *Service) LastRewardsEpoch() (uint32, error) {
	return s.poolsCursor.Get()
}

// SetRewardPool assigns the pool for epoch e. Pools are assigned strictly in
// sequence, each epoch exactly once, and only for epochs that have finished.
func (s *Service) SetRewardPool(e uint32, amount *big.Int, currentEpoch uint32) error {
	if e == 0 || e >= currentEpoch {
		return reverts.InvalidEpoch("reward epoch %d is not in the past", e)
	}
	last, err := s.LastRewardsEpoch()
	if err != nil {
		return err
	}
	if e != last+1 {
		return reverts.InvalidEpoch("reward epoch %d out of sequence, expected %d", e, last+1)
	}
	if amount.Sign() < 0 {
		return errors.New("negative reward pool")
	}
	if err := s.pools.Set(storage.Uint32Key(e), amount); err != nil {
		return err
	}
	return s.poolsCursor.Set(e)
}
