// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/aggregation"
	"github.com/archon-network/archon/ledger/globalstats"
	"github.com/archon-network/archon/ledger/position"
	"github.com/archon-network/archon/ledger/reverts"
)

// The catch-up engine rolls an entity's per-epoch arrays forward through a
// caller-chosen epoch. Finished epochs are immutable once written: mutations
// settle an entity through the current epoch before changing it, so catch-up
// never revisits an epoch. An untilEpoch of 0 means "as far as allowed".

// UpdateStakerPreviousEpochs brings a position's per-epoch arrays up to date
// through untilEpoch, clamped to the last finished epoch and, for positions
// on an inactive node, to the node's last active epoch. Already-current
// positions are a no-op; a target below the position's own progress is an
// InvalidEpoch failure.
func (l *Ledger) UpdateStakerPreviousEpochs(id archon.Bytes32, untilEpoch uint32) error {
	pos, err := l.positions.GetExisting(id)
	if err != nil {
		return err
	}
	node, err := l.nodes.GetExisting(pos.NodeID)
	if err != nil {
		return err
	}
	if untilEpoch != 0 && untilEpoch < pos.LastEpochStakingUpdated {
		return reverts.InvalidEpoch("target epoch %d is before the position's last update %d", untilEpoch, pos.LastEpochStakingUpdated)
	}
	return l.catchupPosition(id, pos, node, untilEpoch)
}

// UpdateNodePreviousEpochs brings a node's per-epoch arrays up to date
// through untilEpoch, with the same clamping rules as the position form.
func (l *Ledger) UpdateNodePreviousEpochs(nodeID archon.Address, untilEpoch uint32) error {
	node, err := l.nodes.GetExisting(nodeID)
	if err != nil {
		return err
	}
	if untilEpoch != 0 && untilEpoch < node.LastEpochStakingUpdated {
		return reverts.InvalidEpoch("target epoch %d is before the node's last update %d", untilEpoch, node.LastEpochStakingUpdated)
	}
	if err := l.catchupNode(nodeID, node, untilEpoch); err != nil {
		return err
	}
	return l.nodes.Set(nodeID, node)
}

// UpdateGlobalPreviousEpochs brings the global aggregate's per-epoch arrays
// up to date through untilEpoch. A no-op before the first stake.
func (l *Ledger) UpdateGlobalPreviousEpochs(untilEpoch uint32) error {
	stats, err := l.global.Get()
	if err != nil {
		return err
	}
	if stats.StartEpoch == 0 {
		return nil
	}
	if untilEpoch != 0 && untilEpoch < stats.LastEpochStakingUpdated {
		return reverts.InvalidEpoch("target epoch %d is before the global last update %d", untilEpoch, stats.LastEpochStakingUpdated)
	}
	if err := l.catchupGlobal(stats, untilEpoch); err != nil {
		return err
	}
	return l.global.Set(stats)
}

// UpdateAllPreviousEpochs applies the position catch-up to every id in
// order. Zero ids is a no-op; any unknown id aborts the whole batch before
// any state change.
func (l *Ledger) UpdateAllPreviousEpochs(ids []archon.Bytes32) error {
	if len(ids) == 0 {
		return nil
	}
	entries := make([]*position.Position, len(ids))
	nodes := make([]*aggregation.Aggregate, len(ids))
	for i, id := range ids {
		pos, err := l.positions.GetExisting(id)
		if err != nil {
			return err
		}
		node, err := l.nodes.GetExisting(pos.NodeID)
		if err != nil {
			return err
		}
		entries[i], nodes[i] = pos, node
	}
	for i, id := range ids {
		if err := l.catchupPosition(id, entries[i], nodes[i], 0); err != nil {
			return err
		}
	}
	return nil
}

// catchupPosition rolls the position forward through min(untilEpoch,
// ceiling). Crossing the lock expiry switches the position to liquid; the
// excess retraction itself is not re-applied here, the aggregates read it
// from their pre-registered schedule.
func (l *Ledger) catchupPosition(id archon.Bytes32, pos *position.Position, node *aggregation.Aggregate, untilEpoch uint32) error {
	end := node.CatchupCeiling(l.CurrentEpoch())
	if untilEpoch != 0 && untilEpoch < end {
		end = untilEpoch
	}
	start := pos.LastEpochStakingUpdated + 1
	if start > end {
		return nil
	}

	endLock := pos.EndLockEpoch()
	upgraded := pos.IsLocked() && endLock <= end

	for e := start; e <= end; e++ {
		carry := pos.CarryAt(e)
		if err := l.positions.SetLastStaked(id, e, carry); err != nil {
			return err
		}
		if err := l.positions.SetMinStaked(id, e, carry); err != nil {
			return err
		}
	}

	pos.LastEpochStakingUpdated = end
	if upgraded {
		pos.LockTierID = archon.LiquidTierID
		logger.Debug("position upgraded to liquid", "position", id, "epoch", endLock)
		l.emit(Event{Type: EventUpgradedToLiquid, Position: eventPosition(id), Node: eventNode(pos.NodeID), Epoch: endLock})
	}
	if err := l.positions.Set(id, pos); err != nil {
		return err
	}
	metricEpochsCaught().AddWithLabel(int64(end-start+1), map[string]string{"entity": "position"})
	return nil
}

func (l *Ledger) catchupNode(nodeID archon.Address, node *aggregation.Aggregate, untilEpoch uint32) error {
	end := node.CatchupCeiling(l.CurrentEpoch())
	if untilEpoch != 0 && untilEpoch < end {
		end = untilEpoch
	}
	start := node.LastEpochStakingUpdated + 1
	if start > end {
		return nil
	}
	if err := advanceSeries(l.nodes.Series(nodeID), node.LastEpochStakingUpdated, end); err != nil {
		return err
	}
	node.LastEpochStakingUpdated = end
	metricEpochsCaught().AddWithLabel(int64(end-start+1), map[string]string{"entity": "node"})
	return nil
}

func (l *Ledger) catchupGlobal(stats *globalstats.Stats, untilEpoch uint32) error {
	current := l.CurrentEpoch()
	if current == 0 {
		return nil
	}
	end := current - 1
	if untilEpoch != 0 && untilEpoch < end {
		end = untilEpoch
	}
	start := stats.LastEpochStakingUpdated + 1
	if start > end {
		return nil
	}
	if err := advanceSeries(l.global.Series(), stats.LastEpochStakingUpdated, end); err != nil {
		return err
	}
	stats.LastEpochStakingUpdated = end
	metricEpochsCaught().AddWithLabel(int64(end-start+1), map[string]string{"entity": "global"})
	return nil
}

// advanceSeries carries an aggregate's staked amount forward through
// (lastUpdated, end], dropping each epoch's scheduled excess as it is
// reached. Expired excess leaves at the start of its epoch, so the epoch's
// minimum equals its carried amount.
func advanceSeries(series *aggregation.Series, lastUpdated, end uint32) error {
	carry, err := series.LastStaked(lastUpdated)
	if err != nil {
		return err
	}
	for e := lastUpdated + 1; e <= end; e++ {
		ex, err := series.Excess(e)
		if err != nil {
			return err
		}
		if ex.Sign() > 0 {
			if carry.Cmp(ex) < 0 {
				return errors.Errorf("scheduled excess at epoch %d exceeds staked amount", e)
			}
			carry.Sub(carry, ex)
		}
		if err := series.SetLastStaked(e, carry); err != nil {
			return err
		}
		if err := series.SetMinStaked(e, carry); err != nil {
			return err
		}
	}
	return nil
}

//
// settle-through-current, the mutation-side counterpart of catch-up
//

// settlePosition writes the position's current-epoch entries so a following
// mutation lands on settled state. The pre-mutation carry is both last and
// min for the epoch; increases never lower the minimum and decreases go
// through the dedicated helpers.
func (l *Ledger) settlePosition(id archon.Bytes32, pos *position.Position, node *aggregation.Aggregate, current uint32) error {
	if pos.LastEpochStakingUpdated == current {
		return nil
	}
	if err := l.catchupPosition(id, pos, node, 0); err != nil {
		return err
	}
	carry := pos.CarryAt(current)
	if err := l.positions.SetLastStaked(id, current, carry); err != nil {
		return err
	}
	if err := l.positions.SetMinStaked(id, current, carry); err != nil {
		return err
	}
	pos.LastEpochStakingUpdated = current
	return l.positions.Set(id, pos)
}

func (l *Ledger) settleNode(nodeID archon.Address, node *aggregation.Aggregate, current uint32) error {
	if node.LastEpochStakingUpdated == current {
		return nil
	}
	if err := l.catchupNode(nodeID, node, 0); err != nil {
		return err
	}
	if err := advanceSeries(l.nodes.Series(nodeID), node.LastEpochStakingUpdated, current); err != nil {
		return err
	}
	node.LastEpochStakingUpdated = current
	return l.nodes.Set(nodeID, node)
}

func (l *Ledger) settleGlobal(stats *globalstats.Stats, current uint32) error {
	if stats.LastEpochStakingUpdated == current {
		return nil
	}
	if err := l.catchupGlobal(stats, 0); err != nil {
		return err
	}
	if err := advanceSeries(l.global.Series(), stats.LastEpochStakingUpdated, current); err != nil {
		return err
	}
	stats.LastEpochStakingUpdated = current
	return l.global.Set(stats)
}
