// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health_test

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
	"github.com/archon-network/archon/health"
	"github.com/archon-network/archon/kv"
	"github.com/archon-network/archon/ledger"
	"github.com/archon-network/archon/storage"
)

func newLedger(store kv.Store, start uint64) *ledger.Ledger {
	return ledger.New(
		storage.NewContext(store),
		epoch.NewClock(start, time.Hour),
		custody.NewMemVault(),
		authority.NewStatic(nil, true),
	)
}

func TestStatusEmptyLedger(t *testing.T) {
	led := newLedger(kv.NewMemStore(), uint64(time.Now().Add(-90*time.Minute).Unix()))

	status, err := health.New(led).Status()
	require.NoError(t, err)

	assert.True(t, status.Healthy)
	assert.True(t, status.StakingStarted)
	assert.Equal(t, uint32(2), status.CurrentEpoch)
	assert.Equal(t, uint32(0), status.EpochsBehind)
}

func TestStatusSettledLedger(t *testing.T) {
	led := newLedger(kv.NewMemStore(), uint64(time.Now().Add(-90*time.Minute).Unix()))

	operator := archon.BytesToAddress([]byte("operator"))
	nodeID := archon.BytesToAddress([]byte("node"))
	_, err := led.RegisterNode(operator, nodeID, 0, big.NewInt(10000), 0)
	require.NoError(t, err)

	status, err := health.New(led).Status()
	require.NoError(t, err)

	assert.True(t, status.Healthy)
	assert.Equal(t, uint32(2), status.CurrentEpoch)
	assert.Equal(t, uint32(2), status.LastEpochStakingUpdated)
	assert.Equal(t, uint32(0), status.EpochsBehind)
}

func TestStatusLaggingLedger(t *testing.T) {
	store := kv.NewMemStore()
	led := newLedger(store, uint64(time.Now().Add(-90*time.Minute).Unix()))

	operator := archon.BytesToAddress([]byte("operator"))
	nodeID := archon.BytesToAddress([]byte("node"))
	_, err := led.RegisterNode(operator, nodeID, 0, big.NewInt(10000), 0)
	require.NoError(t, err)

	// same state viewed through a clock that started ten epochs earlier,
	// so the settled series is far behind the current epoch
	stale := newLedger(store, uint64(time.Now().Add(-690*time.Minute).Unix()))

	status, err := health.New(stale).Status()
	require.NoError(t, err)

	assert.False(t, status.Healthy)
	assert.Equal(t, uint32(12), status.CurrentEpoch)
	assert.Equal(t, uint32(2), status.LastEpochStakingUpdated)
	assert.Equal(t, uint32(10), status.EpochsBehind)
}
