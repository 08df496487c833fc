// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/archon-network/archon/archon"
)

func TestStatic(t *testing.T) {
	admin := archon.BytesToAddress([]byte("admin"))
	other := archon.BytesToAddress([]byte("other"))

	auth := NewStatic([]archon.Address{admin}, false)
	assert.True(t, auth.CanSlash(admin))
	assert.False(t, auth.CanSlash(other))
	assert.True(t, auth.CanSetRewards(admin))
	assert.False(t, auth.CanSetRewards(other))
	assert.True(t, auth.CanRegisterNode(admin))
	assert.False(t, auth.CanRegisterNode(other))
	assert.True(t, auth.CanManageTiers(admin))
	assert.False(t, auth.CanManageTiers(other))

	open := NewStatic([]archon.Address{admin}, true)
	assert.True(t, open.CanRegisterNode(other))
	assert.False(t, open.CanSlash(other))
}
