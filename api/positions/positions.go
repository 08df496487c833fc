// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package positions exposes the per-stake operations over REST: creation,
// catch-up, reward claims and withdrawal.
package positions

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

type Positions struct {
	led *ledger.Ledger
}

func New(led *ledger.Ledger) *Positions {
	return &Positions{led}
}

func (p *Positions) handleCreateStake(w http.ResponseWriter, req *http.Request) error {
	var body CreateStakeRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("amount: missing"))
	}
	id, err := p.led.NewStake(body.Owner, (*big.Int)(body.Amount), body.Node, body.Tier)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	pos, err := p.led.Position(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPosition(id, pos))
}

func (p *Positions) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	pos, err := p.led.Position(id)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, convertPosition(id, pos))
}

func (p *Positions) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	e, err := parseEpoch(req)
	if err != nil {
		return err
	}
	last, minimum, err := p.led.PositionEpoch(id, e)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, convertAmounts(e, last, minimum))
}

func (p *Positions) handleCatchup(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body CatchupRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.led.UpdateStakerPreviousEpochs(id, body.UntilEpoch); err != nil {
		return restutil.ConvertRevert(err)
	}
	pos, err := p.led.Position(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPosition(id, pos))
}

func (p *Positions) handleBatchCatchup(w http.ResponseWriter, req *http.Request) error {
	var body BatchCatchupRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := p.led.UpdateAllPreviousEpochs(body.IDs); err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, restutil.M{"updated": len(body.IDs)})
}

func (p *Positions) handleUpdateRewards(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	if err := p.led.UpdateUnclaimedRewards(id); err != nil {
		return restutil.ConvertRevert(err)
	}
	pos, err := p.led.Position(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertPosition(id, pos))
}

func (p *Positions) handleClaimRewards(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := p.led.ClaimRewards(body.Caller, id)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, &AmountResponse{Amount: (*math.HexOrDecimal256)(amount)})
}

func (p *Positions) handleBatchClaim(w http.ResponseWriter, req *http.Request) error {
	var body BatchClaimRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := p.led.ClaimAllRewards(body.Caller, body.IDs)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, &AmountResponse{Amount: (*math.HexOrDecimal256)(amount)})
}

func (p *Positions) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body CallerRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := p.led.WithdrawStake(body.Caller, id)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, &AmountResponse{Amount: (*math.HexOrDecimal256)(amount)})
}

func parseID(req *http.Request) (archon.Bytes32, error) {
	id, err := archon.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return archon.Bytes32{}, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func parseEpoch(req *http.Request) (uint32, error) {
	e, err := strconv.ParseUint(mux.Vars(req)["epoch"], 10, 32)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "epoch"))
	}
	return uint32(e), nil
}

func (p *Positions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /positions").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleCreateStake))
	sub.Path("/catchup").
		Methods(http.MethodPost).
		Name("POST /positions/catchup").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleBatchCatchup))
	sub.Path("/rewards/claim").
		Methods(http.MethodPost).
		Name("POST /positions/rewards/claim").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleBatchClaim))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /positions/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPosition))
	sub.Path("/{id}/epochs/{epoch}").
		Methods(http.MethodGet).
		Name("GET /positions/{id}/epochs/{epoch}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetEpoch))
	sub.Path("/{id}/catchup").
		Methods(http.MethodPost).
		Name("POST /positions/{id}/catchup").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleCatchup))
	sub.Path("/{id}/rewards").
		Methods(http.MethodPost).
		Name("POST /positions/{id}/rewards").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleUpdateRewards))
	sub.Path("/{id}/rewards/claim").
		Methods(http.MethodPost).
		Name("POST /positions/{id}/rewards/claim").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleClaimRewards))
	sub.Path("/{id}/withdraw").
		Methods(http.MethodPost).
		Name("POST /positions/{id}/withdraw").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleWithdraw))
}
