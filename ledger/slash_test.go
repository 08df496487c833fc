// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/ledger/reverts"
)

func TestSlashValidation(t *testing.T) {
	lt := newTest(t)
	node := addr("node")
	lt.Register(addr("op"), node, 0, 10_000, 0)

	err := lt.SlashNode(addr("stranger"), node, 5000)
	assert.True(t, reverts.Is(err, reverts.CodeNotOwner))

	err = lt.SlashNode(testAdmin, node, 0)
	assert.ErrorContains(t, err, "out of range")
	err = lt.SlashNode(testAdmin, node, 10_001)
	assert.ErrorContains(t, err, "out of range")

	err = lt.SlashNode(testAdmin, addr("unknown"), 5000)
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))

	require.NoError(t, lt.SlashNode(testAdmin, node, 5000))
	err = lt.SlashNode(testAdmin, node, 5000)
	assert.ErrorContains(t, err, "already inactive")
}

func TestSlashBeforeLockExpiry(t *testing.T) {
	lt := newTest(t)
	node := addr("node")
	lt.Register(addr("op"), node, 0, 10_000, 0)
	tier := lt.AddTier(100, 10, 12000)
	id := lt.Stake(addr("alice"), 100_000, node, tier) // excess 20,000 at epoch 12

	lt.AdvanceTo(3)
	require.NoError(t, lt.SlashNode(testAdmin, node, 5000))

	// the node's arrays freeze at the slash epoch with its carried stake,
	// the global aggregate loses that stake the same epoch
	lt.AssertNode(node).
		Active(false).
		LastUpdated(3).
		Epoch(2, 130_000, 130_000).
		Epoch(3, 130_000, 130_000).
		Excess(12, 0).
		Assert(t)
	lt.AssertGlobal().
		LastUpdated(3).
		Epoch(3, 0, 0).
		Excess(12, 0).
		Assert(t)

	nd, err := lt.Node(node)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), nd.LastActiveEpoch)
	assert.Equal(t, uint32(5000), nd.SlashedBps)

	// the neutralized schedule makes later global catch-up converge
	// without re-subtracting the dead node's bonus
	lt.AdvanceTo(20)
	require.NoError(t, lt.UpdateGlobalPreviousEpochs(0))
	lt.AssertGlobal().
		LastUpdated(19).
		Epoch(12, 0, 0).
		Epoch(19, 0, 0).
		Assert(t)

	// node catch-up is clamped to the last active epoch
	require.NoError(t, lt.UpdateNodePreviousEpochs(node, 0))
	lt.AssertNode(node).LastUpdated(3).Assert(t)

	// positions on the node stop one epoch earlier
	require.NoError(t, lt.UpdateStakerPreviousEpochs(id, 0))
	lt.AssertPosition(id).
		LastUpdated(2).
		Epoch(2, 120_000, 120_000).
		Assert(t)
}

func TestSlashAfterLockExpiry(t *testing.T) {
	lt := newTest(t)
	node := addr("node")
	lt.Register(addr("op"), node, 0, 10_000, 0)
	tier := lt.AddTier(100, 10, 12000)
	lt.Stake(addr("alice"), 100_000, node, tier)

	// the lock expires naturally at epoch 12; slashing afterwards must not
	// subtract the already-dropped excess again
	lt.AdvanceTo(14)
	require.NoError(t, lt.SlashNode(testAdmin, node, 5000))

	lt.AssertNode(node).
		LastUpdated(14).
		Epoch(11, 130_000, 130_000).
		Epoch(12, 110_000, 110_000).
		Epoch(14, 110_000, 110_000).
		Assert(t)
	lt.AssertGlobal().
		LastUpdated(14).
		Epoch(14, 0, 0).
		Assert(t)
}

func TestSlashSurvivingNodeUnaffected(t *testing.T) {
	lt := newTest(t)
	bad, good := addr("node-bad"), addr("node-good")
	lt.Register(addr("op-bad"), bad, 0, 10_000, 0)
	lt.Register(addr("op-good"), good, 0, 40_000, 0)

	lt.AdvanceTo(4)
	require.NoError(t, lt.SlashNode(testAdmin, bad, 10_000))

	// only the slashed node's stake leaves the global aggregate
	lt.AssertGlobal().Epoch(4, 40_000, 40_000).Assert(t)
	lt.AssertNode(good).Active(true).LastUpdated(1).Assert(t)

	lt.AdvanceTo(9)
	require.NoError(t, lt.UpdateNodePreviousEpochs(good, 0))
	lt.AssertNode(good).LastUpdated(8).Epoch(8, 40_000, 40_000).Assert(t)
}

func TestPartialSlashRedemption(t *testing.T) {
	lt := newTest(t)
	node, op, alice := addr("node"), addr("op"), addr("alice")
	opID := lt.Register(op, node, 0, 10_000, 0)
	aliceID := lt.Stake(alice, 2000, node, 0)

	lt.AdvanceTo(3)
	require.NoError(t, lt.SlashNode(testAdmin, node, 5000))

	// claiming on an inactive node redeems the position at half value
	paid, err := lt.ClaimRewards(alice, aliceID)
	require.NoError(t, err)
	assert.Equal(t, "0", paid.String())
	assert.Equal(t, "1000", lt.vault.Deposited(alice).String())

	_, err = lt.Position(aliceID)
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))
	owner, err := lt.vault.OwnerOf(aliceID)
	require.NoError(t, err)
	assert.True(t, owner.IsZero())

	// operator stake becomes withdrawable once the node is inactive
	returned, err := lt.WithdrawStake(op, opID)
	require.NoError(t, err)
	assert.Equal(t, "5000", returned.String())
	assert.Equal(t, "5000", lt.vault.Deposited(op).String())

	lt.AssertGlobal().Base(0).Assert(t)
	lt.AssertNode(node).Base(0).Assert(t)
}
