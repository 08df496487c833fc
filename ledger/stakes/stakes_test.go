// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stakes

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightedAmount(t *testing.T) {
	// liquid stake carries full weight
	assert.Equal(t, big.NewInt(100_000), WeightedAmount(big.NewInt(100_000), 10000))
	assert.Equal(t, big.NewInt(100_000), WeightedAmount(big.NewInt(100_000), 0))

	// 120% tier
	assert.Equal(t, big.NewInt(120_000), WeightedAmount(big.NewInt(100_000), 12000))
}

func TestExcess(t *testing.T) {
	assert.Equal(t, big.NewInt(20_000), Excess(big.NewInt(100_000), 12000))
	assert.Equal(t, 0, Excess(big.NewInt(100_000), 10000).Sign())
}

func TestFeeSplit(t *testing.T) {
	net, fee := FeeSplit(big.NewInt(2000), 1000) // 10% fee
	assert.Equal(t, big.NewInt(1800), net)
	assert.Equal(t, big.NewInt(200), fee)

	// rounding dust stays with the delegator, the split always sums back
	net, fee = FeeSplit(big.NewInt(1001), 3333)
	assert.Equal(t, big.NewInt(1001), new(big.Int).Add(net, fee))
}

func TestReduce(t *testing.T) {
	assert.Equal(t, big.NewInt(750), Reduce(big.NewInt(1000), 2500))
	assert.Equal(t, 0, Reduce(big.NewInt(1000), 10000).Sign())
	assert.Equal(t, big.NewInt(1000), Reduce(big.NewInt(1000), 0))
}
