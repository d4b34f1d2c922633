// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package builtin

import (
	"github.com/vechain/stakeshare/builtin/market"
	"github.com/vechain/stakeshare/builtin/staker"
	"github.com/vechain/stakeshare/builtin/token"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/state"
)

// Builtin contract addresses.
var (
	TokenAddress  = cgfy.BytesToAddress([]byte("CognifyToken"))
	CoinAddress   = cgfy.BytesToAddress([]byte("Coin"))
	StakerAddress = cgfy.BytesToAddress([]byte("StakingRewards"))
	MarketAddress = cgfy.BytesToAddress([]byte("ModelMarket"))
)

// Contracts binds all builtin contracts to one state and one event recorder.
type Contracts struct {
	Token  *token.Token // staked and reward asset
	Coin   *token.Token // payment and revenue share asset
	Staker *staker.Staker
	Market *market.Market
}

// New wires the builtin contracts. The staker keeps custody of both tokens at its
// own address, and the market pays in coin and routes its cut to the staker.
func New(st *state.State, recorder *events.Recorder) *Contracts {
	tok := token.New(TokenAddress, "CGFY", st)
	coin := token.New(CoinAddress, "COIN", st)
	stk := staker.New(StakerAddress, st, staker.Assets{
		Staked:   tok.Vault(StakerAddress),
		Reward:   tok.Vault(StakerAddress),
		RevShare: coin.Vault(StakerAddress),
	}, recorder)
	return &Contracts{
		Token:  tok,
		Coin:   coin,
		Staker: stk,
		Market: market.New(MarketAddress, st, coin, stk, recorder),
	}
}

// TokenBySymbol returns the token with given symbol, or nil.
func (c *Contracts) TokenBySymbol(symbol string) *token.Token {
	switch symbol {
	case c.Token.Symbol():
		return c.Token
	case c.Coin.Symbol():
		return c.Coin
	}
	return nil
}

// TokenByAddress returns the token deployed at addr, or nil.
func (c *Contracts) TokenByAddress(addr cgfy.Address) *token.Token {
	switch addr {
	case c.Token.Address():
		return c.Token
	case c.Coin.Address():
		return c.Coin
	}
	return nil
}
