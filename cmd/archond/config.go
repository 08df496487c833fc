// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/archon-network/archon/archon"
)

// Config describes a staking network: when its epochs tick, who
// administers it and which lock tiers it opens with.
type Config struct {
	Epoch struct {
		// unix timestamp the first epoch starts at
		Start uint64 `yaml:"start"`
		// wall-clock length of one epoch
		DurationSeconds uint64 `yaml:"durationSeconds"`
	} `yaml:"epoch"`

	// addresses allowed to manage tiers, fund rewards and slash nodes
	Admins []string `yaml:"admins"`

	// when false only admins may register nodes
	OpenRegistration bool `yaml:"openRegistration"`

	// tiers seeded on first boot, in order of declaration
	Tiers []TierConfig `yaml:"tiers"`
}

// TierConfig is one lock tier to seed at first boot.
type TierConfig struct {
	MinStakingAmount math.HexOrDecimal256 `yaml:"minStakingAmount"`
	LengthEpochs     uint32               `yaml:"lengthEpochs"`
	WeightBps        uint32               `yaml:"weightBps"`
}

// LoadConfig reads and validates the yaml network configuration at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "parse config file")
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Epoch.Start == 0 {
		return errors.New("epoch.start is required")
	}
	if c.Epoch.DurationSeconds == 0 {
		return errors.New("epoch.durationSeconds is required")
	}
	if len(c.Admins) == 0 {
		return errors.New("at least one admin address is required")
	}
	for _, a := range c.Admins {
		if _, err := archon.ParseAddress(a); err != nil {
			return errors.Wrapf(err, "admin %q", a)
		}
	}
	for i, t := range c.Tiers {
		if t.WeightBps <= archon.FullWeightBps {
			return errors.Errorf("tier %d: weightBps must exceed %d", i, archon.FullWeightBps)
		}
		if t.LengthEpochs == 0 {
			return errors.Errorf("tier %d: lengthEpochs is required", i)
		}
	}
	return nil
}

// EpochDuration returns the configured epoch length.
func (c *Config) EpochDuration() time.Duration {
	return time.Duration(c.Epoch.DurationSeconds) * time.Second
}

// AdminAddresses returns the parsed admin set.
func (c *Config) AdminAddresses() []archon.Address {
	admins := make([]archon.Address, 0, len(c.Admins))
	for _, a := range c.Admins {
		addr, _ := archon.ParseAddress(a)
		admins = append(admins, *addr)
	}
	return admins
}
