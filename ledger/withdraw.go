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

// WithdrawStake fully withdraws a position: pending rewards are settled and
// paid, the principal is returned through custody, and the position is
// destroyed. On an active node only liquid delegator positions may leave;
// operator stake and still-locked stakes are withdrawable once the node is
// inactive, with the principal reduced by any slash.
func (l *Ledger) WithdrawStake(caller archon.Address, id archon.Bytes32) (*big.Int, error) {
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

	if !node.Active {
		// nothing accrued so far is forfeited
		if _, err := l.payRewards(id, pos, node, owner); err != nil {
			return nil, err
		}
		effective := stakes.Reduce(pos.BaseStakedAmount, node.SlashedBps)
		if err := l.redeemPosition(id, pos, node, owner); err != nil {
			return nil, err
		}
		return effective, nil
	}

	current := l.CurrentEpoch()

	// rejections are pure projections of the stored position, so a refused
	// withdrawal leaves no trace; an expired lock merely awaits catch-up
	if pos.IsLocked() && current < pos.EndLockEpoch() {
		return nil, errors.Errorf("position %s is locked until epoch %d", id.AbbrevString(), pos.EndLockEpoch())
	}
	if pos.Kind == position.KindOperator {
		return nil, errors.New("operator stake is withdrawable only after the node is deactivated")
	}

	// a pending lock expiry is processed before the settlement math
	if err := l.catchupPosition(id, pos, node, 0); err != nil {
		return nil, err
	}

	// nothing accrued so far is forfeited
	if _, err := l.payRewards(id, pos, node, owner); err != nil {
		return nil, err
	}

	// the delegation fee carried by the operator position leaves with the
	// delegator
	if pos.FeeBps > 0 {
		_, fee := stakes.FeeSplit(pos.BaseStakedAmount, pos.FeeBps)
		if fee.Sign() > 0 {
			if err := l.deaccrueOperatorFee(node, fee, current); err != nil {
				return nil, err
			}
		}
	}

	if err := l.settleNode(pos.NodeID, node, current); err != nil {
		return nil, err
	}
	node.BaseStakedAmount.Sub(node.BaseStakedAmount, pos.BaseStakedAmount)
	if err := subFromEpoch(l.nodes.Series(pos.NodeID), current, pos.BaseStakedAmount); err != nil {
		return nil, err
	}
	if err := l.nodes.Set(pos.NodeID, node); err != nil {
		return nil, err
	}

	stats, err := l.global.Get()
	if err != nil {
		return nil, err
	}
	if err := l.settleGlobal(stats, current); err != nil {
		return nil, err
	}
	stats.BaseStakedAmount.Sub(stats.BaseStakedAmount, pos.BaseStakedAmount)
	if err := subFromEpoch(l.global.Series(), current, pos.BaseStakedAmount); err != nil {
		return nil, err
	}
	if err := l.global.Set(stats); err != nil {
		return nil, err
	}

	principal := new(big.Int).Set(pos.BaseStakedAmount)
	if err := l.vault.WithdrawPrincipal(owner, principal); err != nil {
		return nil, errors.Wrap(err, "failed to withdraw principal")
	}
	if err := l.vault.RedeemCertificate(id); err != nil {
		return nil, errors.Wrap(err, "failed to redeem certificate")
	}
	nodeID := pos.NodeID
	if err := l.positions.Remove(id, pos); err != nil {
		return nil, err
	}

	logger.Debug("stake withdrawn", "position", id, "owner", owner, "principal", principal)
	l.emit(Event{Type: EventPositionRedeemed, Position: eventPosition(id), Node: eventNode(nodeID), Epoch: current, Amount: principal})
	return principal, nil
}

// deaccrueOperatorFee removes a departing delegator's fee contribution from
// the operator position's carried stake.
func (l *Ledger) deaccrueOperatorFee(node *aggregation.Aggregate, fee *big.Int, current uint32) error {
	opID := node.OperatorPosition
	op, err := l.positions.GetExisting(opID)
	if err != nil {
		return err
	}
	if err := l.settlePosition(opID, op, node, current); err != nil {
		return err
	}
	if op.FeeStakedAmount.Cmp(fee) < 0 {
		return errors.New("operator fee stake underflow")
	}
	op.FeeStakedAmount.Sub(op.FeeStakedAmount, fee)

	last, err := l.positions.LastStaked(opID, current)
	if err != nil {
		return err
	}
	if last.Cmp(fee) < 0 {
		return errors.New("operator staked amount underflow")
	}
	last.Sub(last, fee)
	if err := l.positions.SetLastStaked(opID, current, last); err != nil {
		return err
	}
	minimum, err := l.positions.MinStaked(opID, current)
	if err != nil {
		return err
	}
	if last.Cmp(minimum) < 0 {
		if err := l.positions.SetMinStaked(opID, current, last); err != nil {
			return err
		}
	}
	return l.positions.Set(opID, op)
}
