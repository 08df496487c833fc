// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakes holds the weighted stake arithmetic shared by positions and
// aggregates. All weights and fees are expressed in basis points.
package stakes

import (
	"math/big"

	"github.com/archon-network/archon/archon"
)

var bpsDenominator = big.NewInt(int64(archon.FullWeightBps))

// WeightedAmount returns principal * weightBps / 100%.
// A liquid stake carries full weight, i.e. the principal itself.
func WeightedAmount(principal *big.Int, weightBps uint32) *big.Int {
	if weightBps == archon.FullWeightBps || weightBps == 0 {
		return new(big.Int).Set(principal)
	}
	w := new(big.Int).Mul(principal, big.NewInt(int64(weightBps)))
	return w.Quo(w, bpsDenominator)
}

// Excess returns the portion of the weighted amount above the principal,
// attributable only while the stake is locked.
func Excess(principal *big.Int, weightBps uint32) *big.Int {
	weighted := WeightedAmount(principal, weightBps)
	return weighted.Sub(weighted, principal)
}

// FeeSplit divides amount into the delegator's net share and the operator's
// fee share. net + fee == amount holds exactly; rounding dust goes to the
// delegator.
func FeeSplit(amount *big.Int, feeBps uint32) (net, fee *big.Int) {
	fee = new(big.Int).Mul(amount, big.NewInt(int64(feeBps)))
	fee.Quo(fee, bpsDenominator)
	net = new(big.Int).Sub(amount, fee)
	return net, fee
}

// Reduce applies a slash percentage, returning amount * (100% - slashBps) / 100%.
func Reduce(amount *big.Int, slashBps uint32) *big.Int {
	if slashBps >= archon.MaxSlashBps {
		return new(big.Int)
	}
	kept := new(big.Int).Mul(amount, big.NewInt(int64(archon.MaxSlashBps-slashBps)))
	return kept.Quo(kept, bpsDenominator)
}
