// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stats exposes the protocol-wide aggregate over REST, together
// with the reward pool administration.
package stats

import (
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/archon-network/archon/api/restutil"
	"github.com/archon-network/archon/archon"
	"github.com/archon-network/archon/ledger"
)

type Stats struct {
	led *ledger.Ledger
}

func New(led *ledger.Ledger) *Stats {
	return &Stats{led}
}

// Global is the JSON presentation of the global aggregate.
type Global struct {
	Amount                  *math.HexOrDecimal256 `json:"amount"`
	StartEpoch              uint32                `json:"startEpoch"`
	LastEpochStakingUpdated uint32                `json:"lastEpochStakingUpdated"`
	CurrentEpoch            uint32                `json:"currentEpoch"`
	LastRewardsEpoch        uint32                `json:"lastRewardsEpoch"`
}

// EpochAmounts is one epoch's recorded staked amounts.
type EpochAmounts struct {
	Epoch uint32                `json:"epoch"`
	Last  *math.HexOrDecimal256 `json:"last"`
	Min   *math.HexOrDecimal256 `json:"min"`
}

// CatchupRequest is the body of POST /stats/catchup.
type CatchupRequest struct {
	UntilEpoch uint32 `json:"untilEpoch"`
}

// SetRewardsRequest is the body of POST /stats/rewards.
type SetRewardsRequest struct {
	Caller archon.Address        `json:"caller"`
	Epoch  uint32                `json:"epoch"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

func (s *Stats) handleGetGlobal(w http.ResponseWriter, _ *http.Request) error {
	stats, err := s.led.Global()
	if err != nil {
		return err
	}
	lastRewards, err := s.led.LastRewardsEpoch()
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, &Global{
		Amount:                  (*math.HexOrDecimal256)(stats.BaseStakedAmount),
		StartEpoch:              stats.StartEpoch,
		LastEpochStakingUpdated: stats.LastEpochStakingUpdated,
		CurrentEpoch:            s.led.CurrentEpoch(),
		LastRewardsEpoch:        lastRewards,
	})
}

func (s *Stats) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	e, err := parseEpoch(req)
	if err != nil {
		return err
	}
	last, minimum, err := s.led.GlobalEpoch(e)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, &EpochAmounts{
		Epoch: e,
		Last:  (*math.HexOrDecimal256)(last),
		Min:   (*math.HexOrDecimal256)(minimum),
	})
}

func (s *Stats) handleCatchup(w http.ResponseWriter, req *http.Request) error {
	var body CatchupRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := s.led.UpdateGlobalPreviousEpochs(body.UntilEpoch); err != nil {
		return restutil.ConvertRevert(err)
	}
	return s.handleGetGlobal(w, req)
}

func (s *Stats) handleSetRewards(w http.ResponseWriter, req *http.Request) error {
	var body SetRewardsRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("amount: missing"))
	}
	if err := s.led.SetRewards(body.Caller, (*big.Int)(body.Amount), body.Epoch); err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, restutil.M{"epoch": body.Epoch})
}

func (s *Stats) handleGetRewardPool(w http.ResponseWriter, req *http.Request) error {
	e, err := parseEpoch(req)
	if err != nil {
		return err
	}
	pool, err := s.led.RewardPool(e)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, restutil.M{
		"epoch":  e,
		"amount": (*math.HexOrDecimal256)(pool),
	})
}

func parseEpoch(req *http.Request) (uint32, error) {
	e, err := strconv.ParseUint(mux.Vars(req)["epoch"], 10, 32)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "epoch"))
	}
	return uint32(e), nil
}

func (s *Stats) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /stats").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetGlobal))
	sub.Path("/epochs/{epoch}").
		Methods(http.MethodGet).
		Name("GET /stats/epochs/{epoch}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetEpoch))
	sub.Path("/catchup").
		Methods(http.MethodPost).
		Name("POST /stats/catchup").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleCatchup))
	sub.Path("/rewards").
		Methods(http.MethodPost).
		Name("POST /stats/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSetRewards))
	sub.Path("/rewards/{epoch}").
		Methods(http.MethodGet).
		Name("GET /stats/rewards/{epoch}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetRewardPool))
}
