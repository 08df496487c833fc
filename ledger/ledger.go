// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ledger coordinates the staking protocol's epoch accounting: the
// per-position, per-node and global staked amount histories, the excess
// weight of locked stakes, slashing and reward accrual. Per-epoch state is
// intentionally lazy; every entry point brings an entity up to date only as
// far as the caller asks, and correctness holds for arbitrary gaps between
// updates.
package ledger

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/authority"
	"github.com/archon-network/archon/custody"
	"github.com/archon-network/archon/epoch"
	"github.com/archon-network/archon/ledger/aggregation"
	"github.com/archon-network/archon/ledger/globalstats"
	"github.com/archon-network/archon/ledger/position"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/ledger/stakes"
	"github.com/archon-network/archon/ledger/tiers"
	"github.com/archon-network/archon/log"
	"github.com/archon-network/archon/metrics"
	"github.com/archon-network/archon/storage"
)

var logger = log.WithContext("pkg", "ledger")

var (
	metricStakesCreated = metrics.LazyLoadCounter("ledger_stakes_created_count")
	metricEpochsCaught  = metrics.LazyLoadCounterVec("ledger_epochs_caught_up_count", []string{"entity"})
	metricSlashes       = metrics.LazyLoadCounter("ledger_slashes_count")
	metricClaims        = metrics.LazyLoadCounter("ledger_reward_claims_count")
)

// Ledger is the single mutation surface of the staking state. All operations
// execute as one atomic sequential step; failures leave no partial effect.
type Ledger struct {
	clock     *epoch.Clock
	tiers     *tiers.Service
	positions *position.Service
	nodes     *aggregation.Service
	global    *globalstats.Service
	vault     custody.Vault
	auth      authority.Authorizer

	feed event.Feed
	now  func() uint64
}

// New creates a ledger over the given storage context and collaborators.
func New(
	sctx *storage.Context,
	clock *epoch.Clock,
	vault custody.Vault,
	auth authority.Authorizer,
) *Ledger {
	return &Ledger{
		clock:     clock,
		tiers:     tiers.New(sctx),
		positions: position.New(sctx),
		nodes:     aggregation.New(sctx),
		global:    globalstats.New(sctx),
		vault:     vault,
		auth:      auth,
		now:       func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Tiers exposes the lock tier registry.
func (l *Ledger) Tiers() *tiers.Service {
	return l.tiers
}

// Clock exposes the epoch clock.
func (l *Ledger) Clock() *epoch.Clock {
	return l.clock
}

// CurrentEpoch returns the epoch at the current time, 0 before staking
// starts.
func (l *Ledger) CurrentEpoch() uint32 {
	return l.clock.At(l.now())
}

// RegisterNode creates a node aggregate together with its operator position,
// funded with principal under the given tier. Returns the operator position
// id.
func (l *Ledger) RegisterNode(
	operator archon.Address,
	nodeID archon.Address,
	feeBps uint32,
	principal *big.Int,
	tierID uint32,
) (archon.Bytes32, error) {
	if !l.auth.CanRegisterNode(operator) {
		return archon.Bytes32{}, reverts.NotOwner("operator %s may not register nodes", operator)
	}
	if nodeID.IsZero() {
		return archon.Bytes32{}, reverts.EntityNotFound("node id is zero")
	}
	if operator.IsZero() {
		return archon.Bytes32{}, reverts.EntityNotFound("operator address is zero")
	}
	if feeBps > archon.FullWeightBps {
		return archon.Bytes32{}, errors.Errorf("delegator fee %d exceeds 100%%", feeBps)
	}
	current := l.CurrentEpoch()
	if current == 0 {
		return archon.Bytes32{}, errors.New("staking has not started")
	}
	tier, err := l.validTier(tierID, principal)
	if err != nil {
		return archon.Bytes32{}, err
	}

	if err := l.vault.DepositPrincipal(operator, principal); err != nil {
		return archon.Bytes32{}, errors.Wrap(err, "failed to deposit principal")
	}

	pos := l.buildPosition(operator, nodeID, position.KindOperator, principal, tier, 0, current)
	id, err := l.positions.Create(pos)
	if err != nil {
		return archon.Bytes32{}, err
	}
	if err := l.vault.IssueCertificate(id, operator); err != nil {
		return archon.Bytes32{}, errors.Wrap(err, "failed to issue certificate")
	}
	if err := l.initPositionEpoch(id, pos, current); err != nil {
		return archon.Bytes32{}, err
	}

	node := &aggregation.Aggregate{
		Operator:                operator,
		OperatorPosition:        id,
		DelegatorFeeBps:         feeBps,
		BaseStakedAmount:        new(big.Int).Set(principal),
		StartEpoch:              current,
		LastEpochStakingUpdated: current,
		Active:                  true,
	}
	if err := l.nodes.Register(nodeID, node); err != nil {
		return archon.Bytes32{}, err
	}
	series := l.nodes.Series(nodeID)
	if err := series.SetLastStaked(current, pos.WeightedStake()); err != nil {
		return archon.Bytes32{}, err
	}
	if err := series.SetMinStaked(current, new(big.Int)); err != nil {
		return archon.Bytes32{}, err
	}
	if err := l.registerExcess(series, pos); err != nil {
		return archon.Bytes32{}, err
	}

	if err := l.addToGlobal(pos, current); err != nil {
		return archon.Bytes32{}, err
	}

	logger.Info("node registered", "node", nodeID, "operator", operator, "principal", principal)
	l.emit(Event{Type: EventNodeRegistered, Node: eventNode(nodeID), Position: eventPosition(id), Epoch: current, Amount: principal})
	return id, nil
}

// NewStake stakes principal on a node, liquid (tierID 0) or locked into a
// tier. Returns the new position id.
func (l *Ledger) NewStake(
	owner archon.Address,
	principal *big.Int,
	nodeID archon.Address,
	tierID uint32,
) (archon.Bytes32, error) {
	current := l.CurrentEpoch()
	if current == 0 {
		return archon.Bytes32{}, errors.New("staking has not started")
	}
	node, err := l.nodes.GetExisting(nodeID)
	if err != nil {
		return archon.Bytes32{}, err
	}
	if !node.Active {
		return archon.Bytes32{}, errors.Errorf("node %s is inactive", nodeID)
	}
	tier, err := l.validTier(tierID, principal)
	if err != nil {
		return archon.Bytes32{}, err
	}

	kind := position.KindDelegator
	feeBps := node.DelegatorFeeBps
	if owner == node.Operator {
		kind = position.KindOperator
		feeBps = 0
	}

	if err := l.vault.DepositPrincipal(owner, principal); err != nil {
		return archon.Bytes32{}, errors.Wrap(err, "failed to deposit principal")
	}

	pos := l.buildPosition(owner, nodeID, kind, principal, tier, feeBps, current)
	id, err := l.positions.Create(pos)
	if err != nil {
		return archon.Bytes32{}, err
	}
	if err := l.vault.IssueCertificate(id, owner); err != nil {
		return archon.Bytes32{}, errors.Wrap(err, "failed to issue certificate")
	}
	if err := l.initPositionEpoch(id, pos, current); err != nil {
		return archon.Bytes32{}, err
	}

	// the delegator fee accrues on the operator's own position
	if kind == position.KindDelegator && feeBps > 0 {
		_, fee := stakes.FeeSplit(principal, feeBps)
		if err := l.accrueOperatorFee(node, fee, current); err != nil {
			return archon.Bytes32{}, err
		}
	}

	// node and global aggregates gain the full weighted amount; the fee
	// split is internal to the node
	if err := l.settleNode(nodeID, node, current); err != nil {
		return archon.Bytes32{}, err
	}
	node.BaseStakedAmount.Add(node.BaseStakedAmount, principal)
	series := l.nodes.Series(nodeID)
	if err := addToEpoch(series, current, pos.WeightedStake()); err != nil {
		return archon.Bytes32{}, err
	}
	if err := l.registerExcess(series, pos); err != nil {
		return archon.Bytes32{}, err
	}
	if err := l.nodes.Set(nodeID, node); err != nil {
		return archon.Bytes32{}, err
	}

	if err := l.addToGlobal(pos, current); err != nil {
		return archon.Bytes32{}, err
	}

	metricStakesCreated().Add(1)
	logger.Debug("stake created", "position", id, "node", nodeID, "principal", principal, "tier", tierID)
	l.emit(Event{Type: EventStakeCreated, Node: eventNode(nodeID), Position: eventPosition(id), Epoch: current, Amount: principal})
	return id, nil
}

// AddTier registers a new lock tier. Restricted to tier managers.
func (l *Ledger) AddTier(caller archon.Address, minAmount *big.Int, lengthEpochs, weightBps uint32) (uint32, error) {
	if !l.auth.CanManageTiers(caller) {
		return 0, reverts.NotOwner("caller %s may not manage tiers", caller)
	}
	id, err := l.tiers.Add(minAmount, lengthEpochs, weightBps)
	if err != nil {
		return 0, err
	}
	logger.Info("tier added", "tier", id, "length", lengthEpochs, "weight", weightBps)
	return id, nil
}

// DisableTier deactivates a tier for future stakes. Restricted to tier
// managers.
func (l *Ledger) DisableTier(caller archon.Address, id uint32) error {
	if !l.auth.CanManageTiers(caller) {
		return reverts.NotOwner("caller %s may not manage tiers", caller)
	}
	return l.tiers.Disable(id)
}

// NodePositions returns the ids of every position staked on the node, in
// creation order.
func (l *Ledger) NodePositions(nodeID archon.Address) ([]archon.Bytes32, error) {
	if _, err := l.nodes.GetExisting(nodeID); err != nil {
		return nil, err
	}
	var ids []archon.Bytes32
	err := l.positions.ForEachInNode(nodeID, func(id archon.Bytes32, _ *position.Position) error {
		ids = append(ids, id)
		return nil
	})
	return ids, err
}

// ForEachNode iterates every registered node in registration order.
func (l *Ledger) ForEachNode(fn func(id archon.Address, node *aggregation.Aggregate) error) error {
	return l.nodes.ForEach(fn)
}

// GetWeightedAmount returns the weight-adjusted amount for a principal under
// a tier. Pure projection, no side effects.
func (l *Ledger) GetWeightedAmount(principal *big.Int, tierID uint32) (*big.Int, error) {
	if tierID == archon.LiquidTierID {
		return new(big.Int).Set(principal), nil
	}
	tier, err := l.tiers.Get(tierID)
	if err != nil {
		return nil, err
	}
	return stakes.WeightedAmount(principal, tier.WeightBps), nil
}

// GetEndLockEpoch returns the epoch at which the position's lock expires,
// 0 for liquid positions. Pure projection over the position's own fields.
func (l *Ledger) GetEndLockEpoch(id archon.Bytes32) (uint32, error) {
	pos, err := l.positions.GetExisting(id)
	if err != nil {
		return 0, err
	}
	return pos.EndLockEpoch(), nil
}

// Position returns the position record.
func (l *Ledger) Position(id archon.Bytes32) (*position.Position, error) {
	return l.positions.GetExisting(id)
}

// PositionEpoch returns the recorded last/min staked amounts of a position
// for one epoch.
func (l *Ledger) PositionEpoch(id archon.Bytes32, e uint32) (last, minimum *big.Int, err error) {
	if last, err = l.positions.LastStaked(id, e); err != nil {
		return nil, nil, err
	}
	if minimum, err = l.positions.MinStaked(id, e); err != nil {
		return nil, nil, err
	}
	return last, minimum, nil
}

// Node returns the node aggregate record.
func (l *Ledger) Node(id archon.Address) (*aggregation.Aggregate, error) {
	return l.nodes.GetExisting(id)
}

// NodeEpoch returns the recorded last/min staked amounts of a node for one
// epoch.
func (l *Ledger) NodeEpoch(id archon.Address, e uint32) (last, minimum *big.Int, err error) {
	series := l.nodes.Series(id)
	if last, err = series.LastStaked(e); err != nil {
		return nil, nil, err
	}
	if minimum, err = series.MinStaked(e); err != nil {
		return nil, nil, err
	}
	return last, minimum, nil
}

// Global returns the protocol-wide aggregate record.
func (l *Ledger) Global() (*globalstats.Stats, error) {
	return l.global.Get()
}

// RewardPool returns the reward pool assigned to an epoch, zero when unset.
func (l *Ledger) RewardPool(e uint32) (*big.Int, error) {
	return l.global.RewardPool(e)
}

// LastRewardsEpoch returns the highest epoch with an assigned reward pool.
func (l *Ledger) LastRewardsEpoch() (uint32, error) {
	return l.global.LastRewardsEpoch()
}

// GlobalEpoch returns the recorded last/min staked amounts of the global
// aggregate for one epoch.
func (l *Ledger) GlobalEpoch(e uint32) (last, minimum *big.Int, err error) {
	series := l.global.Series()
	if last, err = series.LastStaked(e); err != nil {
		return nil, nil, err
	}
	if minimum, err = series.MinStaked(e); err != nil {
		return nil, nil, err
	}
	return last, minimum, nil
}

//
// internal helpers
//

func (l *Ledger) validTier(tierID uint32, principal *big.Int) (*tiers.Tier, error) {
	if principal == nil || principal.Sign() <= 0 {
		return nil, errors.New("principal must be positive")
	}
	if tierID == archon.LiquidTierID {
		return nil, nil
	}
	tier, err := l.tiers.Get(tierID)
	if err != nil {
		return nil, err
	}
	ok, err := l.tiers.IsValid(tierID, principal)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, reverts.InvalidTier("tier %d inactive or principal below its minimum", tierID)
	}
	return tier, nil
}

func (l *Ledger) buildPosition(
	owner archon.Address,
	nodeID archon.Address,
	kind position.Kind,
	principal *big.Int,
	tier *tiers.Tier,
	feeBps uint32,
	current uint32,
) *position.Position {
	pos := &position.Position{
		Owner:                   owner,
		NodeID:                  nodeID,
		Kind:                    kind,
		BaseStakedAmount:        new(big.Int).Set(principal),
		FeeStakedAmount:         new(big.Int),
		FeeBps:                  feeBps,
		StartEpoch:              current,
		LastEpochStakingUpdated: current,
		LastEpochRewardsUpdated: current - 1,
		UnclaimedRewards:        new(big.Int),
		CumulativeRewards:       new(big.Int),
		StakingStartTimestamp:   l.now(),
	}
	if tier != nil {
		pos.LockTierID = tier.ID
		pos.LockWeightBps = tier.WeightBps
		pos.LockLengthEpochs = tier.LengthEpochs
	}
	return pos
}

// initPositionEpoch writes the creation epoch's array entries: the full
// carry as last, zero as min since the stake was not held the whole epoch.
func (l *Ledger) initPositionEpoch(id archon.Bytes32, pos *position.Position, current uint32) error {
	if err := l.positions.SetLastStaked(id, current, pos.CarryAt(current)); err != nil {
		return err
	}
	return l.positions.SetMinStaked(id, current, new(big.Int))
}

// registerExcess schedules the retraction of a locked position's bonus
// weight at its lock expiry epoch.
func (l *Ledger) registerExcess(series *aggregation.Series, pos *position.Position) error {
	if !pos.IsLocked() {
		return nil
	}
	excess := stakes.Excess(pos.BaseStakedAmount, pos.LockWeightBps)
	return series.AddExcess(pos.EndLockEpoch(), excess)
}

// accrueOperatorFee settles the node operator's position through the current
// epoch and adds the delegation fee to its carried stake.
func (l *Ledger) accrueOperatorFee(node *aggregation.Aggregate, fee *big.Int, current uint32) error {
	opID := node.OperatorPosition
	op, err := l.positions.GetExisting(opID)
	if err != nil {
		return err
	}
	if err := l.settlePosition(opID, op, node, current); err != nil {
		return err
	}
	op.FeeStakedAmount.Add(op.FeeStakedAmount, fee)
	last, err := l.positions.LastStaked(opID, current)
	if err != nil {
		return err
	}
	if err := l.positions.SetLastStaked(opID, current, last.Add(last, fee)); err != nil {
		return err
	}
	return l.positions.Set(opID, op)
}

// addToGlobal settles the global aggregate through the current epoch and
// adds a newly created position's stake.
func (l *Ledger) addToGlobal(pos *position.Position, current uint32) error {
	stats, err := l.global.Get()
	if err != nil {
		return err
	}
	if stats.StartEpoch == 0 {
		// very first stake of the protocol
		stats.StartEpoch = current
		stats.LastEpochStakingUpdated = current
		series := l.global.Series()
		if err := series.SetLastStaked(current, new(big.Int)); err != nil {
			return err
		}
		if err := series.SetMinStaked(current, new(big.Int)); err != nil {
			return err
		}
	} else if err := l.settleGlobal(stats, current); err != nil {
		return err
	}
	stats.BaseStakedAmount.Add(stats.BaseStakedAmount, pos.BaseStakedAmount)
	series := l.global.Series()
	if err := addToEpoch(series, current, pos.WeightedStake()); err != nil {
		return err
	}
	if err := l.registerExcess(series, pos); err != nil {
		return err
	}
	return l.global.Set(stats)
}

// addToEpoch increases an aggregate's last staked amount for the epoch. The
// minimum is untouched; increases never lower it.
func addToEpoch(series *aggregation.Series, e uint32, amount *big.Int) error {
	last, err := series.LastStaked(e)
	if err != nil {
		return err
	}
	return series.SetLastStaked(e, last.Add(last, amount))
}

// subFromEpoch decreases an aggregate's last staked amount for the epoch and
// lowers the minimum to match when undercut.
func subFromEpoch(series *aggregation.Series, e uint32, amount *big.Int) error {
	last, err := series.LastStaked(e)
	if err != nil {
		return err
	}
	if last.Cmp(amount) < 0 {
		return errors.New("staked amount underflow")
	}
	last.Sub(last, amount)
	if err := series.SetLastStaked(e, last); err != nil {
		return err
	}
	minimum, err := series.MinStaked(e)
	if err != nil {
		return err
	}
	if last.Cmp(minimum) < 0 {
		return series.SetMinStaked(e, last)
	}
	return nil
}
