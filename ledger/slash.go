// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/reverts"
)

// SlashNode slashes the node by percentBps (1..10000), deactivating it as of
// the current epoch. The node's carried stake leaves the global aggregate
// immediately and every excess-weight entry scheduled strictly after the
// current epoch is neutralized by direct write, so that a later catch-up
// pass cannot subtract it a second time. Positions survive a partial slash
// with reduced effective balances; a full slash leaves them claimable and
// redeemable only.
func (l *Ledger) SlashNode(caller archon.Address, nodeID archon.Address, percentBps uint32) error {
	if !l.auth.CanSlash(caller) {
		return reverts.NotOwner("caller %s may not slash", caller)
	}
	if percentBps == 0 || percentBps > archon.MaxSlashBps {
		return errors.Errorf("slash bps %d out of range", percentBps)
	}
	node, err := l.nodes.GetExisting(nodeID)
	if err != nil {
		return err
	}
	if !node.Active {
		return errors.Errorf("node %s is already inactive", nodeID)
	}
	current := l.CurrentEpoch()
	if current == 0 {
		return errors.New("staking has not started")
	}

	// settle the node through the current epoch while it is still active,
	// so naturally expired excess has already been dropped
	if err := l.settleNode(nodeID, node, current); err != nil {
		return err
	}
	nodeSeries := l.nodes.Series(nodeID)
	nodeCarry, err := nodeSeries.LastStaked(current)
	if err != nil {
		return err
	}

	node.Active = false
	node.LastActiveEpoch = current
	node.SlashedBps = percentBps
	if err := l.nodes.Set(nodeID, node); err != nil {
		return err
	}

	stats, err := l.global.Get()
	if err != nil {
		return err
	}
	if err := l.settleGlobal(stats, current); err != nil {
		return err
	}
	globalSeries := l.global.Series()
	if err := subFromEpoch(globalSeries, current, nodeCarry); err != nil {
		return err
	}

	// neutralize the node's future scheduled excess: the bonus can never
	// materialize because the principal backing it is gone
	err = nodeSeries.ForEachExpiry(func(e uint32) error {
		if e <= current {
			return nil
		}
		ex, err := nodeSeries.Excess(e)
		if err != nil {
			return err
		}
		if ex.Sign() == 0 {
			return nil
		}
		gex, err := globalSeries.Excess(e)
		if err != nil {
			return err
		}
		if gex.Cmp(ex) < 0 {
			return errors.Errorf("node excess at epoch %d exceeds global schedule", e)
		}
		if err := globalSeries.SetExcess(e, gex.Sub(gex, ex)); err != nil {
			return err
		}
		return nodeSeries.SetExcess(e, new(big.Int))
	})
	if err != nil {
		return err
	}

	metricSlashes().Add(1)
	logger.Info("node slashed", "node", nodeID, "bps", percentBps, "epoch", current)
	l.emit(Event{Type: EventNodeSlashed, Node: eventNode(nodeID), Epoch: current, Amount: nodeCarry})
	return nil
}
