// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
epoch:
  start: 1700000000
  durationSeconds: 86400
admins:
  - "0x0123456789012345678901234567890123456789"
openRegistration: true
tiers:
  - minStakingAmount: "1000000000000000000"
    lengthEpochs: 26
    weightBps: 12000
  - minStakingAmount: "0x5"
    lengthEpochs: 52
    weightBps: 15000
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, uint64(1700000000), cfg.Epoch.Start)
	assert.Equal(t, 24*time.Hour, cfg.EpochDuration())
	assert.True(t, cfg.OpenRegistration)

	admins := cfg.AdminAddresses()
	require.Len(t, admins, 1)
	assert.Equal(t, "0x0123456789012345678901234567890123456789", admins[0].String())

	require.Len(t, cfg.Tiers, 2)
	assert.Equal(t, "1000000000000000000", (*big.Int)(&cfg.Tiers[0].MinStakingAmount).String())
	assert.Equal(t, "5", (*big.Int)(&cfg.Tiers[1].MinStakingAmount).String())
	assert.Equal(t, uint32(52), cfg.Tiers[1].LengthEpochs)
}

func TestLoadConfigRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		content string
		errLike string
	}{
		{
			name:    "missing epoch start",
			content: "epoch:\n  durationSeconds: 60\nadmins: [\"0x0123456789012345678901234567890123456789\"]\n",
			errLike: "epoch.start",
		},
		{
			name:    "missing duration",
			content: "epoch:\n  start: 100\nadmins: [\"0x0123456789012345678901234567890123456789\"]\n",
			errLike: "durationSeconds",
		},
		{
			name:    "no admins",
			content: "epoch:\n  start: 100\n  durationSeconds: 60\n",
			errLike: "admin",
		},
		{
			name:    "bad admin address",
			content: "epoch:\n  start: 100\n  durationSeconds: 60\nadmins: [\"not-an-address\"]\n",
			errLike: "admin",
		},
		{
			name: "tier weight too low",
			content: "epoch:\n  start: 100\n  durationSeconds: 60\n" +
				"admins: [\"0x0123456789012345678901234567890123456789\"]\n" +
				"tiers:\n  - minStakingAmount: \"1\"\n    lengthEpochs: 4\n    weightBps: 10000\n",
			errLike: "weightBps",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errLike)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
