// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package tokens

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/api/utils"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/node"
)

var revertStatuses = map[error]int{
	node.ErrUnknownToken:   http.StatusNotFound,
	node.ErrFaucetDisabled: http.StatusForbidden,
}

type Tokens struct {
	node *node.Node
}

func New(n *node.Node) *Tokens {
	return &Tokens{n}
}

type ApproveRequest struct {
	Owner   cgfy.Address          `json:"owner"`
	Spender cgfy.Address          `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type TransferRequest struct {
	From   cgfy.Address          `json:"from"`
	To     cgfy.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type MintRequest struct {
	To     cgfy.Address          `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type Allowance struct {
	Token     cgfy.Address          `json:"token"`
	Owner     cgfy.Address          `json:"owner"`
	Spender   cgfy.Address          `json:"spender"`
	Allowance *math.HexOrDecimal256 `json:"allowance"`
}

func parseAddress(name, s string) (cgfy.Address, error) {
	addr, err := cgfy.ParseAddress(s)
	if err != nil {
		return cgfy.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

func (t *Tokens) handleGetBalances(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	bals, err := t.node.Balances(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertBalances(bals))
}

func (t *Tokens) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	token, err := parseAddress("token", mux.Vars(req)["token"])
	if err != nil {
		return err
	}
	owner, err := parseAddress("owner", req.URL.Query().Get("owner"))
	if err != nil {
		return err
	}
	spender, err := parseAddress("spender", req.URL.Query().Get("spender"))
	if err != nil {
		return err
	}
	allowance, err := t.node.Allowance(token, owner, spender)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, &Allowance{
		Token:     token,
		Owner:     owner,
		Spender:   spender,
		Allowance: types.Amount(allowance),
	})
}

func (t *Tokens) handleApprove(w http.ResponseWriter, req *http.Request) error {
	token, err := parseAddress("token", mux.Vars(req)["token"])
	if err != nil {
		return err
	}
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := types.ParseAmount("amount", body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := t.node.Approve(req.Context(), token, body.Owner, body.Spender, amount)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (t *Tokens) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	token, err := parseAddress("token", mux.Vars(req)["token"])
	if err != nil {
		return err
	}
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := types.ParseAmount("amount", body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := t.node.Transfer(req.Context(), token, body.From, body.To, amount)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (t *Tokens) handleMint(w http.ResponseWriter, req *http.Request) error {
	token, err := parseAddress("token", mux.Vars(req)["token"])
	if err != nil {
		return err
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	amount, err := types.ParseAmount("amount", body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := t.node.Mint(req.Context(), token, body.To, amount)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalances))
	sub.Path("/{token}/allowance").
		Methods(http.MethodGet).
		Name("GET /tokens/{token}/allowance").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/{token}/approve").
		Methods(http.MethodPost).
		Name("POST /tokens/{token}/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
	sub.Path("/{token}/transfer").
		Methods(http.MethodPost).
		Name("POST /tokens/{token}/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/{token}/mint").
		Methods(http.MethodPost).
		Name("POST /tokens/{token}/mint").
		HandlerFunc(utils.WrapHandlerFunc(t.handleMint))
}
