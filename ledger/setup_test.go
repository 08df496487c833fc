// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/authority"
	"github.com/archon-network/archon/custody"
	"github.com/archon-network/archon/epoch"
	"github.com/archon-network/archon/kv"
	"github.com/archon-network/archon/storage"
)

const (
	testClockStart    = uint64(1000)
	testEpochDuration = 100 * time.Second
)

var testAdmin = archon.BytesToAddress([]byte("admin"))

// LedgerTest wires a ledger over an in-memory store with a controllable
// clock. The test starts in epoch 1.
type LedgerTest struct {
	*Ledger
	t     *testing.T
	vault *custody.MemVault
	ts    uint64
}

func newTest(t *testing.T) *LedgerTest {
	clock := epoch.NewClock(testClockStart, testEpochDuration)
	vault := custody.NewMemVault()
	auth := authority.NewStatic([]archon.Address{testAdmin}, true)
	led := New(storage.NewContext(kv.NewMemStore()), clock, vault, auth)

	lt := &LedgerTest{Ledger: led, t: t, vault: vault, ts: testClockStart}
	led.now = func() uint64 { return lt.ts }
	return lt
}

// AdvanceTo moves the clock to the beginning of the given epoch.
func (lt *LedgerTest) AdvanceTo(e uint32) {
	lt.t.Helper()
	require.GreaterOrEqual(lt.t, e, lt.CurrentEpoch(), "clock only moves forward")
	lt.ts = lt.Clock().Start(e)
	require.Equal(lt.t, e, lt.CurrentEpoch())
}

// AddTier registers a tier and returns its id.
func (lt *LedgerTest) AddTier(minAmount int64, lengthEpochs, weightBps uint32) uint32 {
	lt.t.Helper()
	id, err := lt.Tiers().Add(big.NewInt(minAmount), lengthEpochs, weightBps)
	require.NoError(lt.t, err)
	return id
}

// Register creates a node with an operator stake and returns the operator
// position id.
func (lt *LedgerTest) Register(operator, node archon.Address, feeBps uint32, principal int64, tierID uint32) archon.Bytes32 {
	lt.t.Helper()
	id, err := lt.RegisterNode(operator, node, feeBps, big.NewInt(principal), tierID)
	require.NoError(lt.t, err)
	return id
}

// Stake creates a position and returns its id.
func (lt *LedgerTest) Stake(owner archon.Address, principal int64, node archon.Address, tierID uint32) archon.Bytes32 {
	lt.t.Helper()
	id, err := lt.NewStake(owner, big.NewInt(principal), node, tierID)
	require.NoError(lt.t, err)
	return id
}

func addr(name string) archon.Address {
	return archon.BytesToAddress([]byte(name))
}

// PositionAssertions checks a position's per-epoch entries and bookkeeping.
type PositionAssertions struct {
	lt *LedgerTest
	id archon.Bytes32

	lastUpdated *uint32
	locked      *bool
	epochLast   map[uint32]int64
	epochMin    map[uint32]int64
}

func (lt *LedgerTest) AssertPosition(id archon.Bytes32) *PositionAssertions {
	return &PositionAssertions{
		lt:        lt,
		id:        id,
		epochLast: make(map[uint32]int64),
		epochMin:  make(map[uint32]int64),
	}
}

func (pa *PositionAssertions) LastUpdated(e uint32) *PositionAssertions {
	pa.lastUpdated = &e
	return pa
}

func (pa *PositionAssertions) Locked(locked bool) *PositionAssertions {
	pa.locked = &locked
	return pa
}

func (pa *PositionAssertions) Epoch(e uint32, last, minimum int64) *PositionAssertions {
	pa.epochLast[e] = last
	pa.epochMin[e] = minimum
	return pa
}

func (pa *PositionAssertions) Assert(t *testing.T) {
	pos, err := pa.lt.Position(pa.id)
	require.NoError(t, err)

	if pa.lastUpdated != nil {
		assert.Equal(t, *pa.lastUpdated, pos.LastEpochStakingUpdated, "position last updated epoch mismatch")
	}
	if pa.locked != nil {
		assert.Equal(t, *pa.locked, pos.IsLocked(), "position lock state mismatch")
	}
	for e, want := range pa.epochLast {
		last, minimum, err := pa.lt.PositionEpoch(pa.id, e)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(want).String(), last.String(), "position last staked mismatch at epoch %d", e)
		assert.Equal(t, big.NewInt(pa.epochMin[e]).String(), minimum.String(), "position min staked mismatch at epoch %d", e)
	}
}

// NodeAssertions checks a node's per-epoch entries and schedule.
type NodeAssertions struct {
	lt *LedgerTest
	id archon.Address

	active      *bool
	base        *int64
	lastUpdated *uint32
	epochLast   map[uint32]int64
	epochMin    map[uint32]int64
	excess      map[uint32]int64
}

func (lt *LedgerTest) AssertNode(id archon.Address) *NodeAssertions {
	return &NodeAssertions{
		lt:        lt,
		id:        id,
		epochLast: make(map[uint32]int64),
		epochMin:  make(map[uint32]int64),
		excess:    make(map[uint32]int64),
	}
}

func (na *NodeAssertions) Active(active bool) *NodeAssertions {
	na.active = &active
	return na
}

func (na *NodeAssertions) Base(amount int64) *NodeAssertions {
	na.base = &amount
	return na
}

func (na *NodeAssertions) LastUpdated(e uint32) *NodeAssertions {
	na.lastUpdated = &e
	return na
}

func (na *NodeAssertions) Epoch(e uint32, last, minimum int64) *NodeAssertions {
	na.epochLast[e] = last
	na.epochMin[e] = minimum
	return na
}

func (na *NodeAssertions) Excess(e uint32, amount int64) *NodeAssertions {
	na.excess[e] = amount
	return na
}

func (na *NodeAssertions) Assert(t *testing.T) {
	node, err := na.lt.Node(na.id)
	require.NoError(t, err)

	if na.active != nil {
		assert.Equal(t, *na.active, node.Active, "node active state mismatch")
	}
	if na.base != nil {
		assert.Equal(t, big.NewInt(*na.base).String(), node.BaseStakedAmount.String(), "node base staked mismatch")
	}
	if na.lastUpdated != nil {
		assert.Equal(t, *na.lastUpdated, node.LastEpochStakingUpdated, "node last updated epoch mismatch")
	}
	for e, want := range na.epochLast {
		last, minimum, err := na.lt.NodeEpoch(na.id, e)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(want).String(), last.String(), "node last staked mismatch at epoch %d", e)
		assert.Equal(t, big.NewInt(na.epochMin[e]).String(), minimum.String(), "node min staked mismatch at epoch %d", e)
	}
	series := na.lt.nodes.Series(na.id)
	for e, want := range na.excess {
		got, err := series.Excess(e)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(want).String(), got.String(), "node excess mismatch at epoch %d", e)
	}
}

// GlobalAssertions checks the global aggregate.
type GlobalAssertions struct {
	lt *LedgerTest

	base        *int64
	lastUpdated *uint32
	epochLast   map[uint32]int64
	epochMin    map[uint32]int64
	excess      map[uint32]int64
}

func (lt *LedgerTest) AssertGlobal() *GlobalAssertions {
	return &GlobalAssertions{
		lt:        lt,
		epochLast: make(map[uint32]int64),
		epochMin:  make(map[uint32]int64),
		excess:    make(map[uint32]int64),
	}
}

func (ga *GlobalAssertions) Base(amount int64) *GlobalAssertions {
	ga.base = &amount
	return ga
}

func (ga *GlobalAssertions) LastUpdated(e uint32) *GlobalAssertions {
	ga.lastUpdated = &e
	return ga
}

func (ga *GlobalAssertions) Epoch(e uint32, last, minimum int64) *GlobalAssertions {
	ga.epochLast[e] = last
	ga.epochMin[e] = minimum
	return ga
}

func (ga *GlobalAssertions) Excess(e uint32, amount int64) *GlobalAssertions {
	ga.excess[e] = amount
	return ga
}

func (ga *GlobalAssertions) Assert(t *testing.T) {
	stats, err := ga.lt.Global()
	require.NoError(t, err)

	if ga.base != nil {
		assert.Equal(t, big.NewInt(*ga.base).String(), stats.BaseStakedAmount.String(), "global base staked mismatch")
	}
	if ga.lastUpdated != nil {
		assert.Equal(t, *ga.lastUpdated, stats.LastEpochStakingUpdated, "global last updated epoch mismatch")
	}
	for e, want := range ga.epochLast {
		last, minimum, err := ga.lt.GlobalEpoch(e)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(want).String(), last.String(), "global last staked mismatch at epoch %d", e)
		assert.Equal(t, big.NewInt(ga.epochMin[e]).String(), minimum.String(), "global min staked mismatch at epoch %d", e)
	}
	series := ga.lt.global.Series()
	for e, want := range ga.excess {
		got, err := series.Excess(e)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(want).String(), got.String(), "global excess mismatch at epoch %d", e)
	}
}
