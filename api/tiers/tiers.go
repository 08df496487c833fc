// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package tiers exposes the lock tier registry over REST.
package tiers

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
	ledgertiers "github.com/archon-network/archon/ledger/tiers"
)

type Tiers struct {
	led *ledger.Ledger
}

func New(led *ledger.Ledger) *Tiers {
	return &Tiers{led}
}

// AddRequest is the body of POST /tiers.
type AddRequest struct {
	Caller           archon.Address        `json:"caller"`
	MinStakingAmount *math.HexOrDecimal256 `json:"minStakingAmount"`
	LengthEpochs     uint32                `json:"lengthEpochs"`
	WeightBps        uint32                `json:"weightBps"`
}

// CallerRequest carries the caller of an administrative action.
type CallerRequest struct {
	Caller archon.Address `json:"caller"`
}

// Tier is the JSON presentation of a lock tier.
type Tier struct {
	ID               uint32                `json:"id"`
	MinStakingAmount *math.HexOrDecimal256 `json:"minStakingAmount"`
	LengthEpochs     uint32                `json:"lengthEpochs"`
	WeightBps        uint32                `json:"weightBps"`
	Active           bool                  `json:"active"`
}

func convertTier(tier *ledgertiers.Tier) *Tier {
	return &Tier{
		ID:               tier.ID,
		MinStakingAmount: (*math.HexOrDecimal256)(tier.MinStakingAmount),
		LengthEpochs:     tier.LengthEpochs,
		WeightBps:        tier.WeightBps,
		Active:           tier.Active,
	}
}

func (t *Tiers) handleList(w http.ResponseWriter, _ *http.Request) error {
	list, err := t.led.Tiers().List()
	if err != nil {
		return err
	}
	out := make([]*Tier, 0, len(list))
	for _, tier := range list {
		out = append(out, convertTier(tier))
	}
	return restutil.WriteJSON(w, out)
}

func (t *Tiers) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	tier, err := t.led.Tiers().Get(id)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, convertTier(tier))
}

func (t *Tiers) handleAdd(w http.ResponseWriter, req *http.Request) error {
	var body AddRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	minAmount := new(big.Int)
	if body.MinStakingAmount != nil {
		minAmount = (*big.Int)(body.MinStakingAmount)
	}
	id, err := t.led.AddTier(body.Caller, minAmount, body.LengthEpochs, body.WeightBps)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	tier, err := t.led.Tiers().Get(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertTier(tier))
}

func (t *Tiers) handleDisable(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := t.led.DisableTier(body.Caller, id); err != nil {
		return restutil.ConvertRevert(err)
	}
	tier, err := t.led.Tiers().Get(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertTier(tier))
}

func parseID(req *http.Request) (uint32, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 32)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return uint32(id), nil
}

func (t *Tiers) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /tiers").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleList))
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /tiers").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleAdd))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /tiers/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGet))
	sub.Path("/{id}/disable").
		Methods(http.MethodPost).
		Name("POST /tiers/{id}/disable").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleDisable))
}
