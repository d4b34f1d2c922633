// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/api/utils"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/node"
)

// maxMine bounds periods mined by one request.
const maxMine = 100_000

type Node struct {
	node *node.Node
	solo bool
}

// New creates the node endpoints. Mining is only served when solo is set.
func New(n *node.Node, solo bool) *Node {
	return &Node{n, solo}
}

type Info struct {
	GenesisID    cgfy.Bytes32 `json:"genesisId"`
	Period       uint64       `json:"period"`
	LastSequence uint64       `json:"lastSequence"`
	Automine     bool         `json:"automine"`
	Faucet       bool         `json:"faucet"`
}

type MineRequest struct {
	Count uint64 `json:"count"`
}

type MineResult struct {
	Period uint64 `json:"period"`
}

func (n *Node) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info := n.node.Info()
	return utils.WriteJSON(w, &Info{
		GenesisID:    info.GenesisID,
		Period:       info.Period,
		LastSequence: info.LastSequence,
		Automine:     info.Options.Automine,
		Faucet:       info.Options.Faucet,
	})
}

func (n *Node) handleMine(w http.ResponseWriter, req *http.Request) error {
	if !n.solo {
		return utils.Forbidden(errors.New("mining is only available in solo mode"))
	}
	var body MineRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if body.Count == 0 || body.Count > maxMine {
		return utils.BadRequest(errors.Errorf("count: must be in [1, %d]", maxMine))
	}
	p, err := n.node.Mine(body.Count)
	if err != nil {
		if errors.Is(err, node.ErrNotManualClock) {
			return utils.Forbidden(err)
		}
		return err
	}
	return utils.WriteJSON(w, &MineResult{Period: p})
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleGetInfo))
	sub.Path("/mine").
		Methods(http.MethodPost).
		Name("POST /node/mine").
		HandlerFunc(utils.WrapHandlerFunc(n.handleMine))
}
