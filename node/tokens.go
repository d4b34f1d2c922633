// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node

import (
	"context"
	"math/big"

	"github.com/vechain/stakeshare/builtin/token"
	"github.com/vechain/stakeshare/cgfy"
)

// Balance is an account's holding of one token.
type Balance struct {
	Token   cgfy.Address
	Symbol  string
	Balance *big.Int
}

func (n *Node) token(addr cgfy.Address) (*token.Token, error) {
	tok := n.contracts.TokenByAddress(addr)
	if tok == nil {
		return nil, ErrUnknownToken
	}
	return tok, nil
}

// Balances returns holdings of addr in every builtin token.
func (n *Node) Balances(addr cgfy.Address) ([]Balance, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	var out []Balance
	for _, tok := range []*token.Token{n.contracts.Token, n.contracts.Coin} {
		bal, err := tok.BalanceOf(addr)
		if err != nil {
			return nil, err
		}
		out = append(out, Balance{Token: tok.Address(), Symbol: tok.Symbol(), Balance: bal})
	}
	return out, nil
}

// Allowance returns what spender may pull from owner.
func (n *Node) Allowance(tokenAddr, owner, spender cgfy.Address) (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	tok, err := n.token(tokenAddr)
	if err != nil {
		return nil, err
	}
	return tok.Allowance(owner, spender)
}

// Approve sets the allowance of spender over owner's tokens.
func (n *Node) Approve(ctx context.Context, tokenAddr, owner, spender cgfy.Address, amount *big.Int) (*Receipt, error) {
	return n.write(ctx, "approve", func(uint64) error {
		tok, err := n.token(tokenAddr)
		if err != nil {
			return err
		}
		return tok.Approve(owner, spender, amount)
	})
}

// Transfer moves tokens between accounts.
func (n *Node) Transfer(ctx context.Context, tokenAddr, from, to cgfy.Address, amount *big.Int) (*Receipt, error) {
	return n.write(ctx, "transfer", func(uint64) error {
		tok, err := n.token(tokenAddr)
		if err != nil {
			return err
		}
		return tok.Transfer(from, to, amount)
	})
}

// Mint creates tokens for 'to'. Only available with the faucet enabled.
func (n *Node) Mint(ctx context.Context, tokenAddr, to cgfy.Address, amount *big.Int) (*Receipt, error) {
	if !n.opts.Faucet {
		return nil, ErrFaucetDisabled
	}
	return n.write(ctx, "mint", func(uint64) error {
		tok, err := n.token(tokenAddr)
		if err != nil {
			return err
		}
		return tok.Mint(to, amount)
	})
}
