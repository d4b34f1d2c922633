// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package events

import (
	"context"
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/api/types"
	"github.com/vechain/stakeshare/api/utils"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/eventdb"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/node"
)

type Range struct {
	From *uint64 `json:"from"`
	To   *uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	Contract    *cgfy.Address `json:"contract"`
	Participant *cgfy.Address `json:"participant"`
	Kinds       []events.Kind `json:"kinds"`
	ModelID     *uint64       `json:"modelId"`
	Range       *Range        `json:"range"`
	Options     *Options      `json:"options"`
	Order       eventdb.Order `json:"order"`
}

func convertFilter(f *EventFilter) (*eventdb.Filter, error) {
	out := &eventdb.Filter{
		Contract:    f.Contract,
		Participant: f.Participant,
		ModelID:     f.ModelID,
		Order:       f.Order,
	}
	switch f.Order {
	case "", eventdb.ASC, eventdb.DESC:
	default:
		return nil, fmt.Errorf("order: unsupported value %q", f.Order)
	}
	for i, kind := range f.Kinds {
		if !kind.Valid() {
			return nil, fmt.Errorf("kinds[%d]: unknown kind %q", i, kind)
		}
		out.Kinds = append(out.Kinds, string(kind))
	}
	if f.Range != nil {
		r := &eventdb.Range{To: math.MaxInt64}
		if f.Range.From != nil {
			r.From = *f.Range.From
		}
		if f.Range.To != nil {
			r.To = *f.Range.To
		}
		if r.From > r.To {
			return nil, errors.New("range.to must be greater than or equal to range.from")
		}
		out.Range = r
	}
	if f.Options != nil {
		out.Options = &eventdb.Options{Offset: f.Options.Offset, Limit: f.Options.Limit}
	}
	return out, nil
}

type Events struct {
	node  *node.Node
	limit uint64
}

func New(n *node.Node, limit uint64) *Events {
	return &Events{n, limit}
}

func (e *Events) filter(ctx context.Context, ef *EventFilter) ([]*types.Event, error) {
	filter, err := convertFilter(ef)
	if err != nil {
		return nil, utils.BadRequest(err)
	}
	evs, err := e.node.FilterEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	return types.ConvertEvents(evs), nil
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > e.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	if filter.Options == nil {
		// one over the limit tells whether the result was truncated
		filter.Options = &Options{Limit: e.limit + 1}
	}

	evs, err := e.filter(req.Context(), &filter)
	if err != nil {
		return err
	}
	if len(evs) > int(e.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", e.limit))
	}
	return utils.WriteJSON(w, evs)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /events").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
