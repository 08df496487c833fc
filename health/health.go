// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package health reports liveness of the staking ledger for health checks.
package health

import (
	"github.com/archon-network/archon/ledger"
)

// MaxEpochsBehind is how far the global series may lag the current
// epoch before the node reports unhealthy. Lazy settlement means some
// lag is normal; an unbounded one means nothing is poking the ledger.
const MaxEpochsBehind = uint32(5)

// Status is the JSON presentation of the node's health.
type Status struct {
	Healthy                 bool   `json:"healthy"`
	StakingStarted          bool   `json:"stakingStarted"`
	CurrentEpoch            uint32 `json:"currentEpoch"`
	LastEpochStakingUpdated uint32 `json:"lastEpochStakingUpdated"`
	EpochsBehind            uint32 `json:"epochsBehind"`
}

// Health answers health checks from the ledger's view of the world.
type Health struct {
	led             *ledger.Ledger
	maxEpochsBehind uint32
}

func New(led *ledger.Ledger) *Health {
	return &Health{led: led, maxEpochsBehind: MaxEpochsBehind}
}

// Status reads the global aggregate, so it doubles as a storage liveness check.
func (h *Health) Status() (*Status, error) {
	global, err := h.led.Global()
	if err != nil {
		return nil, err
	}

	current := h.led.CurrentEpoch()
	var behind uint32
	if global.StartEpoch > 0 && current > global.LastEpochStakingUpdated {
		behind = current - global.LastEpochStakingUpdated
	}

	return &Status{
		Healthy:                 behind <= h.maxEpochsBehind,
		StakingStarted:          current > 0,
		CurrentEpoch:            current,
		LastEpochStakingUpdated: global.LastEpochStakingUpdated,
		EpochsBehind:            behind,
	}, nil
}
