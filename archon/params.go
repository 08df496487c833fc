// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package archon

// Constants of the staking protocol.
const (
	// FullWeightBps is 100% expressed in basis points. Lock tier weights are
	// strictly greater than this value.
	FullWeightBps = uint32(10000)

	// LiquidTierID marks a position as liquid, i.e. not locked into any tier.
	LiquidTierID = uint32(0)

	// MaxSlashBps is the maximum slashable percentage (100%).
	MaxSlashBps = uint32(10000)
)
