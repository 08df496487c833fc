// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger/reverts"
)

func (lt *LedgerTest) SetPool(e uint32, amount int64) {
	lt.t.Helper()
	require.NoError(lt.t, lt.SetRewards(testAdmin, big.NewInt(amount), e))
}

func TestSetRewardsSequencing(t *testing.T) {
	lt := newTest(t)
	lt.AdvanceTo(4)

	err := lt.SetRewards(addr("stranger"), big.NewInt(100), 1)
	assert.True(t, reverts.Is(err, reverts.CodeNotOwner))

	err = lt.SetRewards(testAdmin, big.NewInt(100), 0)
	assert.True(t, reverts.Is(err, reverts.CodeInvalidEpoch))

	// pools cover only finished epochs
	err = lt.SetRewards(testAdmin, big.NewInt(100), 4)
	assert.True(t, reverts.Is(err, reverts.CodeInvalidEpoch))

	// ...and are assigned strictly in sequence, exactly once
	err = lt.SetRewards(testAdmin, big.NewInt(100), 2)
	assert.True(t, reverts.Is(err, reverts.CodeInvalidEpoch))
	lt.SetPool(1, 100)
	lt.SetPool(2, 200)
	err = lt.SetRewards(testAdmin, big.NewInt(300), 2)
	assert.True(t, reverts.Is(err, reverts.CodeInvalidEpoch))

	last, err := lt.global.LastRewardsEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), last)
}

func TestRewardAccrualAndClaim(t *testing.T) {
	lt := newTest(t)
	op, node := addr("op"), addr("node")
	opID := lt.Register(op, node, 0, 1000, 0)

	lt.AdvanceTo(4)
	lt.SetPool(1, 500)
	lt.SetPool(2, 700)
	lt.SetPool(3, 900)

	// the creation epoch has a zero minimum, so only epochs 2 and 3 pay
	paid, err := lt.ClaimRewards(op, opID)
	require.NoError(t, err)
	assert.Equal(t, "1600", paid.String())
	assert.Equal(t, "1600", lt.vault.RewardsPaid(op).String())

	pos, err := lt.Position(opID)
	require.NoError(t, err)
	assert.Equal(t, "0", pos.UnclaimedRewards.String())
	assert.Equal(t, "1600", pos.CumulativeRewards.String())
	assert.Equal(t, uint32(3), pos.LastEpochRewardsUpdated)

	// nothing left to claim
	paid, err = lt.ClaimRewards(op, opID)
	require.NoError(t, err)
	assert.Equal(t, "0", paid.String())
}

func TestRewardAccrualBoundedByFunding(t *testing.T) {
	lt := newTest(t)
	op, node := addr("op"), addr("node")
	opID := lt.Register(op, node, 0, 1000, 0)

	lt.AdvanceTo(10)
	lt.SetPool(1, 500)
	lt.SetPool(2, 700)

	// accrual stops at the last funded epoch even though epoch 9 is done
	require.NoError(t, lt.UpdateUnclaimedRewards(opID))
	pos, err := lt.Position(opID)
	require.NoError(t, err)
	assert.Equal(t, "700", pos.UnclaimedRewards.String())
	assert.Equal(t, uint32(2), pos.LastEpochRewardsUpdated)

	// funding a later epoch reopens accrual from where it stopped
	lt.SetPool(3, 900)
	paid, err := lt.ClaimRewards(op, opID)
	require.NoError(t, err)
	assert.Equal(t, "1600", paid.String())
}

func TestRewardProRataSplit(t *testing.T) {
	lt := newTest(t)
	op, alice, node := addr("op"), addr("alice"), addr("node")
	opID := lt.Register(op, node, 0, 1000, 0)
	aliceID := lt.Stake(alice, 3000, node, 0)

	lt.AdvanceTo(3)
	lt.SetPool(1, 100)
	lt.SetPool(2, 800)

	opPaid, err := lt.ClaimRewards(op, opID)
	require.NoError(t, err)
	alicePaid, err := lt.ClaimRewards(alice, aliceID)
	require.NoError(t, err)

	// epoch 1 pays nobody (creation epoch), epoch 2 splits 1:3
	assert.Equal(t, "200", opPaid.String())
	assert.Equal(t, "600", alicePaid.String())
}

func TestRewardSplitFollowsDelegationFee(t *testing.T) {
	lt := newTest(t)
	op, alice, node := addr("op"), addr("alice"), addr("node")
	opID := lt.Register(op, node, 1000, 10_000, 0) // 10% delegator fee
	aliceID := lt.Stake(alice, 2000, node, 0)

	lt.AdvanceTo(3)
	lt.SetPool(1, 0)
	lt.SetPool(2, 1200)

	// the operator's share includes the accrued delegation fee: 10,200 of
	// the 12,000 weighted total, the delegator holds the net 1,800
	opPaid, err := lt.ClaimRewards(op, opID)
	require.NoError(t, err)
	alicePaid, err := lt.ClaimRewards(alice, aliceID)
	require.NoError(t, err)

	assert.Equal(t, "1020", opPaid.String())
	assert.Equal(t, "180", alicePaid.String())
}

func TestClaimRewardsOwnership(t *testing.T) {
	lt := newTest(t)
	op, node := addr("op"), addr("node")
	opID := lt.Register(op, node, 0, 1000, 0)

	_, err := lt.ClaimRewards(addr("stranger"), opID)
	assert.True(t, reverts.Is(err, reverts.CodeNotOwner))

	unknown := archon.BytesToBytes32([]byte("no-such-position"))
	_, err = lt.ClaimRewards(op, unknown)
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))
}

func TestClaimAllRewards(t *testing.T) {
	lt := newTest(t)
	alice, node := addr("alice"), addr("node")
	lt.Register(addr("op"), node, 0, 1000, 0)
	first := lt.Stake(alice, 1000, node, 0)
	second := lt.Stake(alice, 2000, node, 0)

	lt.AdvanceTo(3)
	lt.SetPool(1, 0)
	lt.SetPool(2, 400)

	_, err := lt.ClaimAllRewards(alice, nil)
	assert.True(t, reverts.Is(err, reverts.CodeNoPositions))

	// 4,000 total stake: 1,000 + 2,000 of it is alice's
	total, err := lt.ClaimAllRewards(alice, []archon.Bytes32{first, second})
	require.NoError(t, err)
	assert.Equal(t, "300", total.String())
	assert.Equal(t, "300", lt.vault.RewardsPaid(alice).String())
}
