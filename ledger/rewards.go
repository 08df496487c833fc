// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/aggregation"
	"github.com/archon-network/archon/ledger/position"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/ledger/stakes"
)

// SetRewards assigns the reward pool for an epoch. Pools are assigned
// exactly once per epoch, strictly in sequence, and only for epochs that
// have finished.
func (l *Ledger) SetRewards(caller archon.Address, amount *big.Int, e uint32) error {
	if !l.auth.CanSetRewards(caller) {
		return reverts.NotOwner("caller %s may not set rewards", caller)
	}
	if err := l.global.SetRewardPool(e, amount, l.CurrentEpoch()); err != nil {
		return err
	}
	logger.Info("reward pool set", "epoch", e, "amount", amount)
	return nil
}

// UpdateUnclaimedRewards accrues the position's share of every finished,
// funded epoch it has not yet been credited for. The share of epoch e is
// minStaked[position,e] * pool[e] / minStaked[global,e], zero whenever any
// operand is zero.
func (l *Ledger) UpdateUnclaimedRewards(id archon.Bytes32) error {
	pos, err := l.positions.GetExisting(id)
	if err != nil {
		return err
	}
	node, err := l.nodes.GetExisting(pos.NodeID)
	if err != nil {
		return err
	}
	return l.updateRewards(id, pos, node)
}

// ClaimRewards settles and pays out the position's accrued rewards. If the
// position's node is inactive, the position is redeemed as the final act:
// its certificate is invalidated and the effective principal, reduced by any
// slash, is returned to the owner.
func (l *Ledger) ClaimRewards(caller archon.Address, id archon.Bytes32) (*big.Int, error) {
	pos, err := l.positions.GetExisting(id)
	if err != nil {
		return nil, err
	}
	owner, err := l.vault.OwnerOf(id)
	if err != nil {
		return nil, err
	}
	if owner.IsZero() || owner != caller {
		return nil, reverts.NotOwner("caller %s does not hold the certificate for %s", caller, id.AbbrevString())
	}
	node, err := l.nodes.GetExisting(pos.NodeID)
	if err != nil {
		return nil, err
	}

	amount, err := l.payRewards(id, pos, node, owner)
	if err != nil {
		return nil, err
	}

	if !node.Active {
		if err := l.redeemPosition(id, pos, node, owner); err != nil {
			return nil, err
		}
	}

	metricClaims().Add(1)
	return amount, nil
}

// ClaimAllRewards claims every given position in order, aborting the batch
// on the first failure. An empty batch is a NoPositions failure.
func (l *Ledger) ClaimAllRewards(caller archon.Address, ids []archon.Bytes32) (*big.Int, error) {
	if len(ids) == 0 {
		return nil, reverts.NoPositions("no positions to claim")
	}
	total := new(big.Int)
	for _, id := range ids {
		amount, err := l.ClaimRewards(caller, id)
		if err != nil {
			return nil, err
		}
		total.Add(total, amount)
	}
	return total, nil
}

// updateRewards accrues pending epoch shares into UnclaimedRewards. The
// accrual target is the last epoch that is finished, funded, and within the
// node's active span.
func (l *Ledger) updateRewards(id archon.Bytes32, pos *position.Position, node *aggregation.Aggregate) error {
	target := node.CatchupCeiling(l.CurrentEpoch())
	lastFunded, err := l.global.LastRewardsEpoch()
	if err != nil {
		return err
	}
	if lastFunded < target {
		target = lastFunded
	}
	if target <= pos.LastEpochRewardsUpdated {
		return nil
	}

	// the per-epoch arrays must cover the accrual range
	if err := l.catchupPosition(id, pos, node, target); err != nil {
		return err
	}
	stats, err := l.global.Get()
	if err != nil {
		return err
	}
	if err := l.catchupGlobal(stats, target); err != nil {
		return err
	}
	if err := l.global.Set(stats); err != nil {
		return err
	}

	globalSeries := l.global.Series()
	accrued := new(big.Int)
	for e := pos.LastEpochRewardsUpdated + 1; e <= target; e++ {
		posMin, err := l.positions.MinStaked(id, e)
		if err != nil {
			return err
		}
		if posMin.Sign() == 0 {
			continue
		}
		globalMin, err := globalSeries.MinStaked(e)
		if err != nil {
			return err
		}
		pool, err := l.global.RewardPool(e)
		if err != nil {
			return err
		}
		if globalMin.Sign() == 0 || pool.Sign() == 0 {
			continue
		}
		share := new(big.Int).Mul(posMin, pool)
		share.Div(share, globalMin)
		accrued.Add(accrued, share)
	}

	pos.UnclaimedRewards.Add(pos.UnclaimedRewards, accrued)
	pos.LastEpochRewardsUpdated = target
	return l.positions.Set(id, pos)
}

// payRewards settles the position's rewards and transfers the unclaimed
// balance to the owner.
func (l *Ledger) payRewards(id archon.Bytes32, pos *position.Position, node *aggregation.Aggregate, owner archon.Address) (*big.Int, error) {
	if err := l.updateRewards(id, pos, node); err != nil {
		return nil, err
	}
	amount := new(big.Int).Set(pos.UnclaimedRewards)
	if amount.Sign() == 0 {
		return amount, nil
	}
	pos.CumulativeRewards.Add(pos.CumulativeRewards, amount)
	pos.UnclaimedRewards = new(big.Int)
	if err := l.positions.Set(id, pos); err != nil {
		return nil, err
	}
	if err := l.vault.PayReward(owner, amount); err != nil {
		return nil, errors.Wrap(err, "failed to pay reward")
	}
	logger.Debug("rewards claimed", "position", id, "owner", owner, "amount", amount)
	l.emit(Event{Type: EventRewardsClaimed, Position: eventPosition(id), Node: eventNode(pos.NodeID), Epoch: l.CurrentEpoch(), Amount: amount})
	return amount, nil
}

// redeemPosition destroys a position on an inactive node, returning the
// effective principal. The node's frozen per-epoch arrays are left as they
// are; only the always-consistent base sums move.
func (l *Ledger) redeemPosition(id archon.Bytes32, pos *position.Position, node *aggregation.Aggregate, owner archon.Address) error {
	effective := stakes.Reduce(pos.BaseStakedAmount, node.SlashedBps)
	if effective.Sign() > 0 {
		if err := l.vault.WithdrawPrincipal(owner, effective); err != nil {
			return errors.Wrap(err, "failed to withdraw principal")
		}
	}
	if err := l.vault.RedeemCertificate(id); err != nil {
		return errors.Wrap(err, "failed to redeem certificate")
	}

	node.BaseStakedAmount.Sub(node.BaseStakedAmount, pos.BaseStakedAmount)
	if err := l.nodes.Set(pos.NodeID, node); err != nil {
		return err
	}
	stats, err := l.global.Get()
	if err != nil {
		return err
	}
	stats.BaseStakedAmount.Sub(stats.BaseStakedAmount, pos.BaseStakedAmount)
	if err := l.global.Set(stats); err != nil {
		return err
	}

	nodeID := pos.NodeID
	if err := l.positions.Remove(id, pos); err != nil {
		return err
	}
	logger.Debug("position redeemed", "position", id, "owner", owner, "returned", effective)
	l.emit(Event{Type: EventPositionRedeemed, Position: eventPosition(id), Node: eventNode(nodeID), Epoch: l.CurrentEpoch(), Amount: effective})
	return nil
}
