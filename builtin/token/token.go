// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/builtin/solidity"
	"github.com/vechain/stakeshare/builtin/staker/reverts"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/state"
)

var (
	logger = log.WithContext("pkg", "token")

	ErrInsufficientBalance   = reverts.New("insufficient balance")
	ErrInsufficientAllowance = reverts.New("insufficient allowance")
	ErrZeroAddress           = reverts.New("zero address")

	slotTotalSupply = cgfy.BytesToBytes32([]byte("total-supply"))
	slotBalances    = cgfy.BytesToBytes32([]byte("balances"))
	slotAllowances  = cgfy.BytesToBytes32([]byte("allowances"))
)

type allowanceKey struct {
	owner   cgfy.Address
	spender cgfy.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Token is a fungible token living in contract storage.
type Token struct {
	addr   cgfy.Address
	symbol string

	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[cgfy.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
}

// New create a token bound to the contract address.
func New(addr cgfy.Address, symbol string, state *state.State) *Token {
	sctx := solidity.NewContext(addr, state)
	return &Token{
		addr:        addr,
		symbol:      symbol,
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		balances:    solidity.NewMapping[cgfy.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
	}
}

func (t *Token) Address() cgfy.Address { return t.addr }
func (t *Token) Symbol() string        { return t.symbol }

// TotalSupply returns the amount ever minted.
func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

// BalanceOf returns balance of the account.
func (t *Token) BalanceOf(addr cgfy.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

func (t *Token) setBalance(addr cgfy.Address, bal *big.Int) error {
	if err := solidity.CheckUint256(bal); err != nil {
		return err
	}
	return t.balances.Set(addr, bal)
}

// Mint creates amount of new tokens for the recipient.
func (t *Token) Mint(to cgfy.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return errors.Wrap(err, "mint")
	}
	bal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	if err := t.setBalance(to, bal.Add(bal, amount)); err != nil {
		return err
	}
	logger.Debug("minted", "symbol", t.symbol, "to", to, "amount", amount)

	supply, err := t.totalSupply.Get()
	if err != nil {
		return err
	}
	metricSupply().SetWithLabel(new(big.Int).Quo(supply, cgfy.Ether).Int64(), map[string]string{"symbol": t.symbol})
	return nil
}

// Transfer moves amount from sender to recipient.
func (t *Token) Transfer(from, to cgfy.Address, amount *big.Int) error {
	if to.IsZero() {
		return ErrZeroAddress
	}
	if amount.Sign() < 0 {
		return ErrInsufficientBalance
	}
	fromBal, err := t.balances.Get(from)
	if err != nil {
		return err
	}
	if fromBal.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	if err := t.setBalance(from, fromBal.Sub(fromBal, amount)); err != nil {
		return err
	}
	toBal, err := t.balances.Get(to)
	if err != nil {
		return err
	}
	return t.setBalance(to, toBal.Add(toBal, amount))
}

// Approve sets the amount spender may move on behalf of owner.
func (t *Token) Approve(owner, spender cgfy.Address, amount *big.Int) error {
	if spender.IsZero() {
		return ErrZeroAddress
	}
	if err := solidity.CheckUint256(amount); err != nil {
		return err
	}
	return t.allowances.Set(allowanceKey{owner, spender}, amount)
}

// Allowance returns the remaining amount spender may move for owner.
func (t *Token) Allowance(owner, spender cgfy.Address) (*big.Int, error) {
	return t.allowances.Get(allowanceKey{owner, spender})
}

// TransferFrom moves amount from owner to recipient consuming the spender's allowance.
func (t *Token) TransferFrom(spender, from, to cgfy.Address, amount *big.Int) error {
	key := allowanceKey{from, spender}
	allowed, err := t.allowances.Get(key)
	if err != nil {
		return err
	}
	if allowed.Cmp(amount) < 0 {
		return ErrInsufficientAllowance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	return t.allowances.Set(key, allowed.Sub(allowed, amount))
}
