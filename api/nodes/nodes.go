// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package nodes exposes the node aggregates over REST: registration,
// catch-up, slashing and the per-node position listing.
package nodes

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
	"github.com/archon-network/archon/ledger/aggregation"
)

type Nodes struct {
	led *ledger.Ledger
}

func New(led *ledger.Ledger) *Nodes {
	return &Nodes{led}
}

func (n *Nodes) handleRegister(w http.ResponseWriter, req *http.Request) error {
	var body RegisterRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Amount == nil {
		return restutil.BadRequest(errors.New("amount: missing"))
	}
	posID, err := n.led.RegisterNode(body.Operator, body.Node, body.FeeBps, (*big.Int)(body.Amount), body.Tier)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	node, err := n.led.Node(body.Node)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertNode(body.Node, node, posID))
}

func (n *Nodes) handleList(w http.ResponseWriter, _ *http.Request) error {
	out := []*Node{}
	err := n.led.ForEachNode(func(id archon.Address, node *aggregation.Aggregate) error {
		out = append(out, convertNode(id, node, node.OperatorPosition))
		return nil
	})
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, out)
}

func (n *Nodes) handleGetNode(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	node, err := n.led.Node(id)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, convertNode(id, node, node.OperatorPosition))
}

func (n *Nodes) handleGetEpoch(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	e, err := parseEpoch(req)
	if err != nil {
		return err
	}
	last, minimum, err := n.led.NodeEpoch(id, e)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	return restutil.WriteJSON(w, &EpochAmounts{
		Epoch: e,
		Last:  (*math.HexOrDecimal256)(last),
		Min:   (*math.HexOrDecimal256)(minimum),
	})
}

func (n *Nodes) handleGetPositions(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	ids, err := n.led.NodePositions(id)
	if err != nil {
		return restutil.ConvertRevert(err)
	}
	if ids == nil {
		ids = []archon.Bytes32{}
	}
	return restutil.WriteJSON(w, ids)
}

func (n *Nodes) handleCatchup(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body CatchupRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := n.led.UpdateNodePreviousEpochs(id, body.UntilEpoch); err != nil {
		return restutil.ConvertRevert(err)
	}
	node, err := n.led.Node(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertNode(id, node, node.OperatorPosition))
}

func (n *Nodes) handleSlash(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body SlashRequest
	if err := restutil.ParseJSON(req.Body, &body); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if err := n.led.SlashNode(body.Caller, id, body.PercentBps); err != nil {
		return restutil.ConvertRevert(err)
	}
	node, err := n.led.Node(id)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, convertNode(id, node, node.OperatorPosition))
}

func parseID(req *http.Request) (archon.Address, error) {
	id, err := archon.ParseAddress(mux.Vars(req)["id"])
	if err != nil {
		return archon.Address{}, restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	return *id, nil
}

func parseEpoch(req *http.Request) (uint32, error) {
	e, err := strconv.ParseUint(mux.Vars(req)["epoch"], 10, 32)
	if err != nil {
		return 0, restutil.BadRequest(errors.WithMessage(err, "epoch"))
	}
	return uint32(e), nil
}

func (n *Nodes) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /nodes").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleRegister))
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /nodes").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleList))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleGetNode))
	sub.Path("/{id}/epochs/{epoch}").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}/epochs/{epoch}").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleGetEpoch))
	sub.Path("/{id}/positions").
		Methods(http.MethodGet).
		Name("GET /nodes/{id}/positions").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleGetPositions))
	sub.Path("/{id}/catchup").
		Methods(http.MethodPost).
		Name("POST /nodes/{id}/catchup").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleCatchup))
	sub.Path("/{id}/slash").
		Methods(http.MethodPost).
		Name("POST /nodes/{id}/slash").
		HandlerFunc(restutil.WrapHandlerFunc(n.handleSlash))
}
