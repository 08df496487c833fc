// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package epoch implements the protocol's epoch clock: a pure mapping between
// points in time and epoch numbers. Epoch 1 begins at the configured start
// time; epoch 0 means staking has not started.
package epoch

import "time"

// Clock maps timestamps to epoch numbers and back.
type Clock struct {
	start    uint64 // unix seconds of the beginning of epoch 1
	duration uint64 // epoch size in seconds
}

// NewClock creates a clock with the given start time and epoch duration.
func NewClock(start uint64, duration time.Duration) *Clock {
	secs := uint64(duration / time.Second)
	if secs == 0 {
		secs = 1
	}
	return &Clock{start: start, duration: secs}
}

// At returns the epoch number at the given unix timestamp.
// Timestamps before the start map to epoch 0.
func (c *Clock) At(ts uint64) uint32 {
	if ts < c.start {
		return 0
	}
	return uint32((ts-c.start)/c.duration) + 1
}

// Now returns the current epoch number.
func (c *Clock) Now() uint32 {
	return c.At(uint64(time.Now().Unix()))
}

// Start returns the unix timestamp at which the given epoch begins.
// Epoch 0 has no start; it reports the clock's start time.
func (c *Clock) Start(e uint32) uint64 {
	if e <= 1 {
		return c.start
	}
	return c.start + uint64(e-1)*c.duration
}

// Duration returns the epoch size.
func (c *Clock) Duration() time.Duration {
	return time.Duration(c.duration) * time.Second
}
