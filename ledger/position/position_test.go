// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/kv"
	"github.com/archon-network/archon/ledger/reverts"
	"github.com/archon-network/archon/storage"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return New(storage.NewContext(kv.NewMemStore()))
}

func newDelegator(owner, node archon.Address, amount int64) *Position {
	return &Position{
		Owner:             owner,
		NodeID:            node,
		Kind:              KindDelegator,
		BaseStakedAmount:  big.NewInt(amount),
		FeeStakedAmount:   new(big.Int),
		UnclaimedRewards:  new(big.Int),
		CumulativeRewards: new(big.Int),
	}
}

func TestEndLockEpoch(t *testing.T) {
	p := &Position{
		Kind:             KindDelegator,
		BaseStakedAmount: big.NewInt(1000),
		LockTierID:       2,
		LockWeightBps:    12000,
		LockLengthEpochs: 10,
		StartEpoch:       5,
	}
	// the staking epoch itself does not count toward the lock term
	assert.Equal(t, uint32(16), p.EndLockEpoch())

	liquid := &Position{Kind: KindDelegator, BaseStakedAmount: big.NewInt(1000)}
	assert.False(t, liquid.IsLocked())
	assert.Equal(t, uint32(0), liquid.EndLockEpoch())
}

func TestNetPrincipalFeeSplit(t *testing.T) {
	p := newDelegator(archon.BytesToAddress([]byte("d1")), archon.BytesToAddress([]byte("n1")), 2000)
	p.FeeBps = 1000

	assert.Equal(t, big.NewInt(1800), p.NetPrincipal())

	// operators keep their full principal
	op := &Position{Kind: KindOperator, BaseStakedAmount: big.NewInt(2000), FeeBps: 1000}
	assert.Equal(t, big.NewInt(2000), op.NetPrincipal())
}

func TestCarryAt(t *testing.T) {
	p := &Position{
		Kind:             KindDelegator,
		BaseStakedAmount: big.NewInt(100_000),
		LockTierID:       1,
		LockWeightBps:    12000,
		LockLengthEpochs: 10,
		StartEpoch:       3,
	}

	// locked epochs carry the 20% excess
	assert.Equal(t, big.NewInt(120_000), p.CarryAt(4))
	assert.Equal(t, big.NewInt(120_000), p.CarryAt(13))
	// the expiry epoch and later carry only the principal
	assert.Equal(t, big.NewInt(100_000), p.CarryAt(14))

	// accrued delegation fees count toward an operator's carry
	op := &Position{
		Kind:             KindOperator,
		BaseStakedAmount: big.NewInt(50_000),
		FeeStakedAmount:  big.NewInt(200),
	}
	assert.Equal(t, big.NewInt(50_200), op.CarryAt(9))
}

func TestServiceCreateGet(t *testing.T) {
	svc := newService(t)
	node := archon.BytesToAddress([]byte("node-1"))

	id, err := svc.Create(newDelegator(archon.BytesToAddress([]byte("owner-1")), node, 1000))
	require.NoError(t, err)
	assert.False(t, id.IsZero())

	got, err := svc.GetExisting(id)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), got.BaseStakedAmount)
	assert.Equal(t, node, got.NodeID)

	// ids are unique even for the same owner/node pair
	id2, err := svc.Create(newDelegator(archon.BytesToAddress([]byte("owner-1")), node, 1000))
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)
}

func TestServiceGetExistingReverts(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetExisting(archon.Bytes32{})
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))

	_, err = svc.GetExisting(archon.BytesToBytes32([]byte("missing")))
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))
}

func TestNodeListOrderAndRemove(t *testing.T) {
	svc := newService(t)
	node := archon.BytesToAddress([]byte("node-1"))

	var ids []archon.Bytes32
	for i := int64(1); i <= 3; i++ {
		owner := archon.BytesToAddress([]byte{byte(i)})
		id, err := svc.Create(newDelegator(owner, node, i*100))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	count, err := svc.CountInNode(node)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	var seen []archon.Bytes32
	require.NoError(t, svc.ForEachInNode(node, func(id archon.Bytes32, _ *Position) error {
		seen = append(seen, id)
		return nil
	}))
	assert.Equal(t, ids, seen)

	// unlink the middle entry, order of the rest is preserved
	mid, err := svc.GetExisting(ids[1])
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ids[1], mid))

	seen = seen[:0]
	require.NoError(t, svc.ForEachInNode(node, func(id archon.Bytes32, _ *Position) error {
		seen = append(seen, id)
		return nil
	}))
	assert.Equal(t, []archon.Bytes32{ids[0], ids[2]}, seen)

	count, err = svc.CountInNode(node)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), count)

	_, err = svc.GetExisting(ids[1])
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))
}

func TestNodeListRemoveHeadAndTail(t *testing.T) {
	svc := newService(t)
	node := archon.BytesToAddress([]byte("node-1"))

	var ids []archon.Bytes32
	for i := int64(1); i <= 3; i++ {
		id, err := svc.Create(newDelegator(archon.BytesToAddress([]byte{byte(i)}), node, 100))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	head, err := svc.GetExisting(ids[0])
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ids[0], head))

	tail, err := svc.GetExisting(ids[2])
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ids[2], tail))

	var seen []archon.Bytes32
	require.NoError(t, svc.ForEachInNode(node, func(id archon.Bytes32, _ *Position) error {
		seen = append(seen, id)
		return nil
	}))
	assert.Equal(t, []archon.Bytes32{ids[1]}, seen)

	only, err := svc.GetExisting(ids[1])
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ids[1], only))

	count, err := svc.CountInNode(node)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestEpochAmounts(t *testing.T) {
	svc := newService(t)
	id := archon.BytesToBytes32([]byte("pos"))

	v, err := svc.LastStaked(id, 7)
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, svc.SetLastStaked(id, 7, big.NewInt(500)))
	require.NoError(t, svc.SetMinStaked(id, 7, big.NewInt(300)))

	v, err = svc.LastStaked(id, 7)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), v)

	v, err = svc.MinStaked(id, 7)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), v)

	// other epochs are unaffected
	v, err = svc.MinStaked(id, 8)
	require.NoError(t, err)
	assert.Zero(t, v.Sign())
}
