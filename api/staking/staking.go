// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package staking

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/api/utils"
	"github.com/vechain/stakeshare/builtin/staker"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/node"
)

var revertStatuses = map[error]int{
	staker.ErrUnauthorized: http.StatusForbidden,
}

type Staking struct {
	node *node.Node
}

func New(n *node.Node) *Staking {
	return &Staking{n}
}

type AmountRequest struct {
	Participant cgfy.Address          `json:"participant"`
	Amount      *math.HexOrDecimal256 `json:"amount"`
}

type ClaimRequest struct {
	Participant cgfy.Address `json:"participant"`
}

type RescueRequest struct {
	Caller cgfy.Address `json:"caller"`
	To     cgfy.Address `json:"to"`
}

type AdminRequest struct {
	Caller   cgfy.Address `json:"caller"`
	NewAdmin cgfy.Address `json:"newAdmin"`
}

func (s *Staking) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	pool, now, err := s.node.Pool()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertPool(pool, now))
}

func (s *Staking) handleGetResidual(w http.ResponseWriter, _ *http.Request) error {
	residual, err := s.node.Residual()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.M{"residual": types.Amount(residual)})
}

func (s *Staking) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := cgfy.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	pos, err := s.node.Position(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, types.ConvertPosition(addr, pos))
}

func parseAmountRequest(req *http.Request) (*AmountRequest, error) {
	var body AmountRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return &body, nil
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	body, err := parseAmountRequest(req)
	if err != nil {
		return err
	}
	amount, err := types.ParseAmount("amount", body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := s.node.Stake(req.Context(), body.Participant, amount)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	body, err := parseAmountRequest(req)
	if err != nil {
		return err
	}
	amount, err := types.ParseAmount("amount", body.Amount)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := s.node.Withdraw(req.Context(), body.Participant, amount)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (s *Staking) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.Claim(req.Context(), body.Participant)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (s *Staking) handleRescue(w http.ResponseWriter, req *http.Request) error {
	var body RescueRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.Rescue(req.Context(), body.Caller, body.To)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (s *Staking) handleSetAdmin(w http.ResponseWriter, req *http.Request) error {
	var body AdminRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	receipt, err := s.node.SetAdmin(req.Context(), body.Caller, body.NewAdmin)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /staking/pool").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/pool/residual").
		Methods(http.MethodGet).
		Name("GET /staking/pool/residual").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetResidual))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /staking/stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /staking/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(s.handleWithdraw))
	sub.Path("/claim").
		Methods(http.MethodPost).
		Name("POST /staking/claim").
		HandlerFunc(utils.WrapHandlerFunc(s.handleClaim))
	sub.Path("/rescue").
		Methods(http.MethodPost).
		Name("POST /staking/rescue").
		HandlerFunc(utils.WrapHandlerFunc(s.handleRescue))
	sub.Path("/admin").
		Methods(http.MethodPost).
		Name("POST /staking/admin").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSetAdmin))
}
