// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/kv"
)

type record struct {
	Amount *big.Int
	Epoch  uint32
}

func newTestContext(t *testing.T) *Context {
	store := kv.NewMemStore()
	t.Cleanup(func() { store.Close() })
	return NewContext(store)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[archon.Address, *record](ctx, NameToSlot("records"))

	addr := archon.BytesToAddress([]byte("addr1"))

	// unset key reads as zero value
	got, err := m.Get(addr)
	require.NoError(t, err)
	assert.Nil(t, got.Amount)

	require.NoError(t, m.Set(addr, &record{Amount: big.NewInt(42), Epoch: 7}))
	got, err = m.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), got.Amount)
	assert.Equal(t, uint32(7), got.Epoch)

	require.NoError(t, m.Delete(addr))
	has, err := m.Has(addr)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMappingUint32Key(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[Uint32Key, *big.Int](ctx, NameToSlot("per-epoch"))

	require.NoError(t, m.Set(Uint32Key(3), big.NewInt(100)))
	got, err := m.Get(Uint32Key(3))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), got)

	// neighboring epochs are unaffected
	got, err = m.Get(Uint32Key(4))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(0), got)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, NameToSlot("total"))

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(1000)))
	require.NoError(t, u.Sub(big.NewInt(400)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600), v)

	// underflow leaves the slot untouched
	assert.Error(t, u.Sub(big.NewInt(601)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600), v)
}

func TestSliceAppendOnly(t *testing.T) {
	ctx := newTestContext(t)
	owner := archon.BytesToAddress([]byte("node")).Bytes()
	s := NewSlice[uint32](ctx, NameToSlot("expiry-epochs"), owner)

	length, err := s.Len()
	require.NoError(t, err)
	assert.Zero(t, length)

	// appends keep insertion order, even out of numeric order
	for _, e := range []uint32{12, 9, 12, 30} {
		require.NoError(t, s.Append(e))
	}

	var got []uint32
	require.NoError(t, s.ForEach(func(_ uint64, v uint32) error {
		got = append(got, v)
		return nil
	}))
	assert.Equal(t, []uint32{12, 9, 12, 30}, got)
}
