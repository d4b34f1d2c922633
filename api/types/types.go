// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package types

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/builtin/market"
	"github.com/vechain/stakeshare/builtin/staker"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/node"
)

// Amount converts v to its json form.
func Amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

// ParseAmount validates a required non-negative amount from a request.
func ParseAmount(name string, v *math.HexOrDecimal256) (*big.Int, error) {
	if v == nil {
		return nil, errors.Errorf("%s: required", name)
	}
	amount := (*big.Int)(v)
	if amount.Sign() < 0 {
		return nil, errors.Errorf("%s: must not be negative", name)
	}
	return new(big.Int).Set(amount), nil
}

type Event struct {
	Contract    cgfy.Address          `json:"contract"`
	Kind        events.Kind           `json:"kind"`
	Participant *cgfy.Address         `json:"participant,omitempty"`
	Amount      *math.HexOrDecimal256 `json:"amount"`
	ModelID     uint64                `json:"modelId,omitempty"`
	Period      uint64                `json:"period"`
	Sequence    uint64                `json:"sequence"`
}

func ConvertEvent(ev *events.Event) *Event {
	out := &Event{
		Contract: ev.Contract,
		Kind:     ev.Kind,
		Amount:   Amount(ev.Amount),
		ModelID:  ev.ModelID,
		Period:   ev.Period,
		Sequence: ev.Sequence,
	}
	if !ev.Participant.IsZero() {
		p := ev.Participant
		out.Participant = &p
	}
	return out
}

func ConvertEvents(evs []*events.Event) []*Event {
	out := make([]*Event, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ConvertEvent(ev))
	}
	return out
}

// Receipt is the result of a committed write.
type Receipt struct {
	Period uint64   `json:"period"`
	Events []*Event `json:"events"`
}

func ConvertReceipt(r *node.Receipt) *Receipt {
	return &Receipt{Period: r.Period, Events: ConvertEvents(r.Events)}
}

type Pool struct {
	Period              uint64                `json:"period"`
	Phase               string                `json:"phase"`
	Admin               cgfy.Address          `json:"admin"`
	RewardPerPeriod     *math.HexOrDecimal256 `json:"rewardPerPeriod"`
	StartPeriod         uint64                `json:"startPeriod"`
	EndPeriod           uint64                `json:"endPeriod"`
	LastRewardPeriod    uint64                `json:"lastRewardPeriod"`
	TotalStaked         *math.HexOrDecimal256 `json:"totalStaked"`
	Participants        uint64                `json:"participants"`
	AccRewardPerShare   *math.HexOrDecimal256 `json:"accRewardPerShare"`
	AccRevSharePerShare *math.HexOrDecimal256 `json:"accRevSharePerShare"`
	RewardCredited      *math.HexOrDecimal256 `json:"rewardCredited"`
	RewardPaid          *math.HexOrDecimal256 `json:"rewardPaid"`
	RevShareDeposited   *math.HexOrDecimal256 `json:"revShareDeposited"`
	RevSharePaid        *math.HexOrDecimal256 `json:"revSharePaid"`
	RevShareReserve     *math.HexOrDecimal256 `json:"revShareReserve"`
}

func ConvertPool(p *staker.Pool, now uint64) *Pool {
	return &Pool{
		Period:              now,
		Phase:               p.Phase(now).String(),
		Admin:               p.Admin,
		RewardPerPeriod:     Amount(p.RewardPerPeriod),
		StartPeriod:         p.StartPeriod,
		EndPeriod:           p.EndPeriod,
		LastRewardPeriod:    p.LastRewardPeriod,
		TotalStaked:         Amount(p.TotalStaked),
		Participants:        p.Participants,
		AccRewardPerShare:   Amount(p.AccRewardPerShare),
		AccRevSharePerShare: Amount(p.AccRevSharePerShare),
		RewardCredited:      Amount(p.RewardCredited),
		RewardPaid:          Amount(p.RewardPaid),
		RevShareDeposited:   Amount(p.RevShareDeposited),
		RevSharePaid:        Amount(p.RevSharePaid),
		RevShareReserve:     Amount(p.RevShareReserve),
	}
}

type Position struct {
	Address         cgfy.Address          `json:"address"`
	Amount          *math.HexOrDecimal256 `json:"amount"`
	RewardDebt      *math.HexOrDecimal256 `json:"rewardDebt"`
	RevShareDebt    *math.HexOrDecimal256 `json:"revShareDebt"`
	PendingReward   *math.HexOrDecimal256 `json:"pendingReward"`
	PendingRevShare *math.HexOrDecimal256 `json:"pendingRevShare"`
}

func ConvertPosition(addr cgfy.Address, p *node.Position) *Position {
	return &Position{
		Address:         addr,
		Amount:          Amount(p.Account.Amount),
		RewardDebt:      Amount(p.Account.RewardDebt),
		RevShareDebt:    Amount(p.Account.RevShareDebt),
		PendingReward:   Amount(p.PendingReward),
		PendingRevShare: Amount(p.PendingRevShare),
	}
}

type Model struct {
	ID        uint64                `json:"id"`
	Name      string                `json:"name"`
	URL       string                `json:"url"`
	Creator   cgfy.Address          `json:"creator"`
	Price     *math.HexOrDecimal256 `json:"price"`
	Purchases uint64                `json:"purchases"`
}

func ConvertModel(m *market.Model) *Model {
	return &Model{
		ID:        m.ID,
		Name:      m.Name,
		URL:       m.URL,
		Creator:   m.Creator,
		Price:     Amount(m.Price),
		Purchases: m.Purchases,
	}
}

type Balance struct {
	Token   cgfy.Address          `json:"token"`
	Symbol  string                `json:"symbol"`
	Balance *math.HexOrDecimal256 `json:"balance"`
}

func ConvertBalances(bals []node.Balance) []*Balance {
	out := make([]*Balance, 0, len(bals))
	for _, b := range bals {
		out = append(out, &Balance{Token: b.Token, Symbol: b.Symbol, Balance: Amount(b.Balance)})
	}
	return out
}
