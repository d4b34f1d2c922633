// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package market

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/api/utils"
	"github.com/vechain/stakeshare/builtin/market"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/node"
)

var revertStatuses = map[error]int{
	market.ErrModelNotFound: http.StatusNotFound,
}

type Market struct {
	node  *node.Node
	limit uint64
}

func New(n *node.Node, limit uint64) *Market {
	return &Market{n, limit}
}

type UploadRequest struct {
	Creator cgfy.Address          `json:"creator"`
	Name    string                `json:"name"`
	URL     string                `json:"url"`
	Price   *math.HexOrDecimal256 `json:"price"`
}

type UploadResult struct {
	ID      uint64         `json:"id"`
	Receipt *types.Receipt `json:"receipt"`
}

type BuyRequest struct {
	Buyer cgfy.Address          `json:"buyer"`
	Value *math.HexOrDecimal256 `json:"value"`
}

func parseID(req *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func (m *Market) handleGetModels(w http.ResponseWriter, req *http.Request) error {
	query := req.URL.Query()
	offset, err := utils.ParseUint(query.Get("offset"), 0)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "offset"))
	}
	limit, err := utils.ParseUint(query.Get("limit"), m.limit)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "limit"))
	}
	if limit > m.limit {
		return utils.Forbidden(errors.Errorf("limit exceeds the maximum allowed value of %d", m.limit))
	}
	models, err := m.node.Models(offset, limit)
	if err != nil {
		return err
	}
	out := make([]*types.Model, 0, len(models))
	for _, model := range models {
		out = append(out, types.ConvertModel(model))
	}
	return utils.WriteJSON(w, out)
}

func (m *Market) handleGetModel(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	model, err := m.node.Model(id)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertModel(model))
}

func (m *Market) handleUpload(w http.ResponseWriter, req *http.Request) error {
	var body UploadRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	price, err := types.ParseAmount("price", body.Price)
	if err != nil {
		return utils.BadRequest(err)
	}
	id, receipt, err := m.node.UploadModel(req.Context(), body.Creator, body.Name, body.URL, price)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, &UploadResult{ID: id, Receipt: types.ConvertReceipt(receipt)})
}

func (m *Market) handleBuy(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var body BuyRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	value, err := types.ParseAmount("value", body.Value)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := m.node.BuyModel(req.Context(), body.Buyer, id, value)
	if err != nil {
		return utils.Revert(err, revertStatuses)
	}
	return utils.WriteJSON(w, types.ConvertReceipt(receipt))
}

func (m *Market) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/models").
		Methods(http.MethodGet).
		Name("GET /market/models").
		HandlerFunc(utils.WrapHandlerFunc(m.handleGetModels))
	sub.Path("/models").
		Methods(http.MethodPost).
		Name("POST /market/models").
		HandlerFunc(utils.WrapHandlerFunc(m.handleUpload))
	sub.Path("/models/{id}").
		Methods(http.MethodGet).
		Name("GET /market/models/{id}").
		HandlerFunc(utils.WrapHandlerFunc(m.handleGetModel))
	sub.Path("/models/{id}/buy").
		Methods(http.MethodPost).
		Name("POST /market/models/{id}/buy").
		HandlerFunc(utils.WrapHandlerFunc(m.handleBuy))
}
