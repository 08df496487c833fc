// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockAt(t *testing.T) {
	clock := NewClock(1000, 100*time.Second)

	assert.Equal(t, uint32(0), clock.At(0), "before start staking has not begun")
	assert.Equal(t, uint32(0), clock.At(999))
	assert.Equal(t, uint32(1), clock.At(1000))
	assert.Equal(t, uint32(1), clock.At(1099))
	assert.Equal(t, uint32(2), clock.At(1100))
	assert.Equal(t, uint32(11), clock.At(2000))
}

func TestClockStart(t *testing.T) {
	clock := NewClock(1000, 100*time.Second)

	assert.Equal(t, uint64(1000), clock.Start(1))
	assert.Equal(t, uint64(1100), clock.Start(2))
	assert.Equal(t, uint64(1900), clock.Start(10))

	// round trip
	for e := uint32(1); e < 50; e++ {
		assert.Equal(t, e, clock.At(clock.Start(e)))
	}
}
