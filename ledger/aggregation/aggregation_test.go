// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package aggregation

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

func TestRegisterAndGet(t *testing.T) {
	svc := newService(t)
	node := archon.BytesToAddress([]byte("node-1"))
	operator := archon.BytesToAddress([]byte("op-1"))

	require.NoError(t, svc.Register(node, &Aggregate{
		Operator:         operator,
		DelegatorFeeBps:  1000,
		BaseStakedAmount: new(big.Int),
		StartEpoch:       3,
		Active:           true,
	}))

	entry, err := svc.GetExisting(node)
	require.NoError(t, err)
	assert.Equal(t, operator, entry.Operator)
	assert.Equal(t, uint32(1000), entry.DelegatorFeeBps)
	assert.True(t, entry.Active)

	// second registration of the same id is rejected
	err = svc.Register(node, &Aggregate{Operator: operator, Active: true})
	assert.True(t, reverts.Is(err, reverts.CodeAlreadyExists))

	_, err = svc.GetExisting(archon.BytesToAddress([]byte("unknown")))
	assert.True(t, reverts.Is(err, reverts.CodeEntityNotFound))
}

func TestForEachRegistrationOrder(t *testing.T) {
	svc := newService(t)

	var want []archon.Address
	for i := 1; i <= 3; i++ {
		id := archon.BytesToAddress([]byte{byte(i)})
		require.NoError(t, svc.Register(id, &Aggregate{
			Operator: archon.BytesToAddress([]byte{0xff, byte(i)}),
			Active:   true,
		}))
		want = append(want, id)
	}

	var seen []archon.Address
	require.NoError(t, svc.ForEach(func(id archon.Address, entry *Aggregate) error {
		assert.False(t, entry.IsEmpty())
		seen = append(seen, id)
		return nil
	}))
	assert.Equal(t, want, seen)
}

func TestCatchupCeiling(t *testing.T) {
	active := &Aggregate{Active: true}
	assert.Equal(t, uint32(0), active.CatchupCeiling(0))
	assert.Equal(t, uint32(0), active.CatchupCeiling(1))
	assert.Equal(t, uint32(9), active.CatchupCeiling(10))

	// inactive nodes are frozen at the epoch before deactivation
	slashed := &Aggregate{Active: false, LastActiveEpoch: 6}
	assert.Equal(t, uint32(5), slashed.CatchupCeiling(10))
	// the freeze never extends the ceiling
	assert.Equal(t, uint32(4), slashed.CatchupCeiling(5))
}

func TestSeriesEpochAmounts(t *testing.T) {
	svc := newService(t)
	series := svc.Series(archon.BytesToAddress([]byte("node-1")))

	v, err := series.LastStaked(4)
	require.NoError(t, err)
	assert.Zero(t, v.Sign())

	require.NoError(t, series.SetLastStaked(4, big.NewInt(1200)))
	require.NoError(t, series.SetMinStaked(4, big.NewInt(900)))

	v, err = series.LastStaked(4)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1200), v)

	v, err = series.MinStaked(4)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(900), v)

	// distinct owners do not share entries
	other := svc.Series(archon.BytesToAddress([]byte("node-2")))
	v, err = other.LastStaked(4)
	require.NoError(t, err)
	assert.Zero(t, v.Sign())
}

func TestSeriesExcessSchedule(t *testing.T) {
	svc := newService(t)
	series := svc.Series(archon.BytesToAddress([]byte("node-1")))

	// out of order registration is preserved as-is
	require.NoError(t, series.AddExcess(12, big.NewInt(20_000)))
	require.NoError(t, series.AddExcess(9, big.NewInt(5_000)))
	require.NoError(t, series.AddExcess(12, big.NewInt(1_000)))

	var order []uint32
	require.NoError(t, series.ForEachExpiry(func(e uint32) error {
		order = append(order, e)
		return nil
	}))
	assert.Equal(t, []uint32{12, 9, 12}, order)

	v, err := series.Excess(12)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(21_000), v)

	v, err = series.Excess(9)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5_000), v)

	// neutralizing an entry leaves the expiry list untouched
	require.NoError(t, series.SetExcess(12, new(big.Int)))
	v, err = series.Excess(12)
	require.NoError(t, err)
	assert.Zero(t, v.Sign())
}
