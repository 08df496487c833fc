// Copyright (c) 2025 The Archon Network developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package client provides an HTTP client for the staking ledger API. It
// offers typed methods for every endpoint plus a websocket event
// subscription.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/archon-network/archon/api/nodes"
	"github.com/archon-network/archon/api/positions"
	"github.com/archon-network/archon/api/stats"
	"github.com/archon-network/archon/api/tiers"
	"github.com/archon-network/archon/archon"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrNot200Status = errors.New("not 200 status code")
)

// Client talks to a staking ledger node over HTTP.
type Client struct {
	url string
	c   *http.Client
}

// New creates a client for the API at the given base URL.
func New(url string) *Client {
	return NewWithHTTP(url, http.DefaultClient)
}

func NewWithHTTP(url string, c *http.Client) *Client {
	return &Client{
		url: strings.TrimSuffix(url, "/"),
		c:   c,
	}
}

// RegisterNode registers a new node and returns its aggregate.
func (c *Client) RegisterNode(req *nodes.RegisterRequest) (*nodes.Node, error) {
	body, err := c.httpPOST("/nodes", req)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to register node")
	}

	var node nodes.Node
	if err = json.Unmarshal(body, &node); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal node")
	}
	return &node, nil
}

// Nodes lists every registered node.
func (c *Client) Nodes() ([]*nodes.Node, error) {
	body, err := c.httpGET("/nodes")
	if err != nil {
		return nil, errors.WithMessage(err, "unable to list nodes")
	}

	var out []*nodes.Node
	if err = json.Unmarshal(body, &out); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal nodes")
	}
	return out, nil
}

// Node retrieves one node aggregate.
func (c *Client) Node(id archon.Address) (*nodes.Node, error) {
	body, err := c.httpGET("/nodes/" + id.String())
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve node")
	}

	var node nodes.Node
	if err = json.Unmarshal(body, &node); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal node")
	}
	return &node, nil
}

// NodeEpoch retrieves a node's settled amounts at the given epoch.
func (c *Client) NodeEpoch(id archon.Address, epoch uint32) (*nodes.EpochAmounts, error) {
	body, err := c.httpGET("/nodes/" + id.String() + "/epochs/" + strconv.FormatUint(uint64(epoch), 10))
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve node epoch")
	}

	var amounts nodes.EpochAmounts
	if err = json.Unmarshal(body, &amounts); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal epoch amounts")
	}
	return &amounts, nil
}

// NodePositions lists the ids of every position delegated to a node.
func (c *Client) NodePositions(id archon.Address) ([]archon.Bytes32, error) {
	body, err := c.httpGET("/nodes/" + id.String() + "/positions")
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve node positions")
	}

	var ids []archon.Bytes32
	if err = json.Unmarshal(body, &ids); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal position ids")
	}
	return ids, nil
}

// CatchupNode settles a node's epoch series up to untilEpoch, 0 meaning
// as far as allowed.
func (c *Client) CatchupNode(id archon.Address, untilEpoch uint32) (*nodes.Node, error) {
	body, err := c.httpPOST("/nodes/"+id.String()+"/catchup", &nodes.CatchupRequest{UntilEpoch: untilEpoch})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to catch up node")
	}

	var node nodes.Node
	if err = json.Unmarshal(body, &node); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal node")
	}
	return &node, nil
}

// SlashNode deactivates a node, docking percentBps from every stake it
// carries.
func (c *Client) SlashNode(id archon.Address, caller archon.Address, percentBps uint32) (*nodes.Node, error) {
	body, err := c.httpPOST("/nodes/"+id.String()+"/slash", &nodes.SlashRequest{Caller: caller, PercentBps: percentBps})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to slash node")
	}

	var node nodes.Node
	if err = json.Unmarshal(body, &node); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal node")
	}
	return &node, nil
}

// CreateStake opens a new stake position and returns it.
func (c *Client) CreateStake(req *positions.CreateStakeRequest) (*positions.Position, error) {
	body, err := c.httpPOST("/positions", req)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to create stake")
	}

	var pos positions.Position
	if err = json.Unmarshal(body, &pos); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal position")
	}
	return &pos, nil
}

// Position retrieves one stake position.
func (c *Client) Position(id archon.Bytes32) (*positions.Position, error) {
	body, err := c.httpGET("/positions/" + id.String())
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve position")
	}

	var pos positions.Position
	if err = json.Unmarshal(body, &pos); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal position")
	}
	return &pos, nil
}

// PositionEpoch retrieves a position's settled amounts at the given epoch.
func (c *Client) PositionEpoch(id archon.Bytes32, epoch uint32) (*positions.EpochAmounts, error) {
	body, err := c.httpGET("/positions/" + id.String() + "/epochs/" + strconv.FormatUint(uint64(epoch), 10))
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve position epoch")
	}

	var amounts positions.EpochAmounts
	if err = json.Unmarshal(body, &amounts); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal epoch amounts")
	}
	return &amounts, nil
}

// CatchupPosition settles a position's epoch series up to untilEpoch, 0
// meaning as far as allowed.
func (c *Client) CatchupPosition(id archon.Bytes32, untilEpoch uint32) (*positions.Position, error) {
	body, err := c.httpPOST("/positions/"+id.String()+"/catchup", &positions.CatchupRequest{UntilEpoch: untilEpoch})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to catch up position")
	}

	var pos positions.Position
	if err = json.Unmarshal(body, &pos); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal position")
	}
	return &pos, nil
}

// CatchupPositions settles several positions in one call. It fails as a
// whole if any id is unknown.
func (c *Client) CatchupPositions(ids []archon.Bytes32) error {
	_, err := c.httpPOST("/positions/catchup", &positions.BatchCatchupRequest{IDs: ids})
	return errors.WithMessage(err, "unable to catch up positions")
}

// UpdateRewards accrues a position's pending rewards as far as funded
// pools allow.
func (c *Client) UpdateRewards(id archon.Bytes32) (*positions.Position, error) {
	body, err := c.httpPOST("/positions/"+id.String()+"/rewards", nil)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to update rewards")
	}

	var pos positions.Position
	if err = json.Unmarshal(body, &pos); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal position")
	}
	return &pos, nil
}

// ClaimRewards pays out a position's accrued rewards and returns the
// paid amount.
func (c *Client) ClaimRewards(id archon.Bytes32, caller archon.Address) (*big.Int, error) {
	body, err := c.httpPOST("/positions/"+id.String()+"/rewards/claim", &positions.CallerRequest{Caller: caller})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to claim rewards")
	}
	return unmarshalAmount(body)
}

// ClaimAllRewards claims rewards across several positions of one owner
// and returns the total paid.
func (c *Client) ClaimAllRewards(caller archon.Address, ids []archon.Bytes32) (*big.Int, error) {
	body, err := c.httpPOST("/positions/rewards/claim", &positions.BatchClaimRequest{Caller: caller, IDs: ids})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to claim rewards")
	}
	return unmarshalAmount(body)
}

// WithdrawStake closes a position, paying out principal plus rewards,
// and returns the returned principal.
func (c *Client) WithdrawStake(id archon.Bytes32, caller archon.Address) (*big.Int, error) {
	body, err := c.httpPOST("/positions/"+id.String()+"/withdraw", &positions.CallerRequest{Caller: caller})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to withdraw stake")
	}
	return unmarshalAmount(body)
}

// Stats retrieves the global staking aggregate.
func (c *Client) Stats() (*stats.Global, error) {
	body, err := c.httpGET("/stats")
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve stats")
	}

	var global stats.Global
	if err = json.Unmarshal(body, &global); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal stats")
	}
	return &global, nil
}

// StatsEpoch retrieves the global settled amounts at the given epoch.
func (c *Client) StatsEpoch(epoch uint32) (*stats.EpochAmounts, error) {
	body, err := c.httpGET("/stats/epochs/" + strconv.FormatUint(uint64(epoch), 10))
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve stats epoch")
	}

	var amounts stats.EpochAmounts
	if err = json.Unmarshal(body, &amounts); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal epoch amounts")
	}
	return &amounts, nil
}

// CatchupGlobal settles the global epoch series up to untilEpoch, 0
// meaning as far as allowed.
func (c *Client) CatchupGlobal(untilEpoch uint32) (*stats.Global, error) {
	body, err := c.httpPOST("/stats/catchup", &stats.CatchupRequest{UntilEpoch: untilEpoch})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to catch up global stats")
	}

	var global stats.Global
	if err = json.Unmarshal(body, &global); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal stats")
	}
	return &global, nil
}

// SetRewards funds the reward pool of the given epoch.
func (c *Client) SetRewards(caller archon.Address, epoch uint32, amount *big.Int) error {
	_, err := c.httpPOST("/stats/rewards", &stats.SetRewardsRequest{
		Caller: caller,
		Epoch:  epoch,
		Amount: (*math.HexOrDecimal256)(amount),
	})
	return errors.WithMessage(err, "unable to set rewards")
}

// RewardPool retrieves the reward pool funded for the given epoch.
func (c *Client) RewardPool(epoch uint32) (*big.Int, error) {
	body, err := c.httpGET("/stats/rewards/" + strconv.FormatUint(uint64(epoch), 10))
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve reward pool")
	}

	var pool struct {
		Epoch  uint32                `json:"epoch"`
		Amount *math.HexOrDecimal256 `json:"amount"`
	}
	if err = json.Unmarshal(body, &pool); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal reward pool")
	}
	return (*big.Int)(pool.Amount), nil
}

// Tiers lists every lock tier, disabled ones included.
func (c *Client) Tiers() ([]*tiers.Tier, error) {
	body, err := c.httpGET("/tiers")
	if err != nil {
		return nil, errors.WithMessage(err, "unable to list tiers")
	}

	var out []*tiers.Tier
	if err = json.Unmarshal(body, &out); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal tiers")
	}
	return out, nil
}

// Tier retrieves one lock tier.
func (c *Client) Tier(id uint32) (*tiers.Tier, error) {
	body, err := c.httpGET("/tiers/" + strconv.FormatUint(uint64(id), 10))
	if err != nil {
		return nil, errors.WithMessage(err, "unable to retrieve tier")
	}

	var tier tiers.Tier
	if err = json.Unmarshal(body, &tier); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal tier")
	}
	return &tier, nil
}

// AddTier registers a new lock tier.
func (c *Client) AddTier(req *tiers.AddRequest) (*tiers.Tier, error) {
	body, err := c.httpPOST("/tiers", req)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to add tier")
	}

	var tier tiers.Tier
	if err = json.Unmarshal(body, &tier); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal tier")
	}
	return &tier, nil
}

// DisableTier closes a tier to new stakes.
func (c *Client) DisableTier(id uint32, caller archon.Address) (*tiers.Tier, error) {
	body, err := c.httpPOST("/tiers/"+strconv.FormatUint(uint64(id), 10)+"/disable", &tiers.CallerRequest{Caller: caller})
	if err != nil {
		return nil, errors.WithMessage(err, "unable to disable tier")
	}

	var tier tiers.Tier
	if err = json.Unmarshal(body, &tier); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal tier")
	}
	return &tier, nil
}

func unmarshalAmount(body []byte) (*big.Int, error) {
	var res positions.AmountResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errors.WithMessage(err, "unable to unmarshal amount")
	}
	if res.Amount == nil {
		return new(big.Int), nil
	}
	return (*big.Int)(res.Amount), nil
}

func (c *Client) httpGET(path string) ([]byte, error) {
	return c.rawHTTPRequest(http.MethodGet, c.url+path, nil)
}

func (c *Client) httpPOST(path string, payload any) ([]byte, error) {
	var buf bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&buf).Encode(payload); err != nil {
			return nil, errors.WithMessage(err, "unable to marshal payload")
		}
	}
	return c.rawHTTPRequest(http.MethodPost, c.url+path, &buf)
}

func (c *Client) rawHTTPRequest(method, url string, payload io.Reader) ([]byte, error) {
	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to create request")
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to perform request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithMessage(err, "unable to read response body")
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, strings.TrimSpace(string(body)))
	default:
		return nil, fmt.Errorf("%w: %d %s", ErrNot200Status, resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
