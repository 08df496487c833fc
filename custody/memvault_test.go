// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custody

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archon-network/archon/archon"
)

func TestCertificateLifecycle(t *testing.T) {
	v := NewMemVault()
	id := archon.BytesToBytes32([]byte("pos-1"))
	owner := archon.BytesToAddress([]byte("alice"))

	got, err := v.OwnerOf(id)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	require.NoError(t, v.IssueCertificate(id, owner))
	assert.Error(t, v.IssueCertificate(id, owner))

	got, err = v.OwnerOf(id)
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	require.NoError(t, v.RedeemCertificate(id))
	assert.Error(t, v.RedeemCertificate(id))

	got, err = v.OwnerOf(id)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestPrincipalAndRewards(t *testing.T) {
	v := NewMemVault()
	owner := archon.BytesToAddress([]byte("alice"))

	require.NoError(t, v.DepositPrincipal(owner, big.NewInt(1000)))
	require.NoError(t, v.DepositPrincipal(owner, big.NewInt(500)))
	assert.Equal(t, big.NewInt(1500), v.Deposited(owner))

	assert.Error(t, v.WithdrawPrincipal(owner, big.NewInt(2000)))
	require.NoError(t, v.WithdrawPrincipal(owner, big.NewInt(1500)))
	assert.Zero(t, v.Deposited(owner).Sign())

	require.NoError(t, v.PayReward(owner, big.NewInt(42)))
	require.NoError(t, v.PayReward(owner, big.NewInt(8)))
	assert.Equal(t, big.NewInt(50), v.RewardsPaid(owner))
}
