// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRevertCodes(t *testing.T) {
	err := EntityNotFound("position %d", 42)
	assert.Equal(t, "EntityNotFound: position 42", err.Error())
	assert.True(t, Is(err, CodeEntityNotFound))
	assert.False(t, Is(err, CodeInvalidEpoch))
}

func TestIsRevertErr(t *testing.T) {
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(errors.New("plain")))
	assert.True(t, IsRevertErr(InvalidTier("tier inactive")))

	// wrapped reverts are still recognized
	wrapped := errors.Wrap(NotOwner("claimer mismatch"), "claim rewards")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, Is(wrapped, CodeNotOwner))
}
