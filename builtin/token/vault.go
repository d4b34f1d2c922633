// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package token

import (
	"math/big"

	"github.com/vechain/stakeshare/cgfy"
)

// Vault lets a custody contract move the token in and out of its own balance.
type Vault struct {
	token   *Token
	custody cgfy.Address
}

// Vault returns a vault holding funds at the custody address.
func (t *Token) Vault(custody cgfy.Address) *Vault {
	return &Vault{token: t, custody: custody}
}

// Token returns the underlying token.
func (v *Vault) Token() *Token {
	return v.token
}

// TransferIn pulls amount from the owner into custody, spending the allowance
// the owner granted to the custody address.
func (v *Vault) TransferIn(from cgfy.Address, amount *big.Int) error {
	return v.token.TransferFrom(v.custody, from, v.custody, amount)
}

// TransferOut pays amount from custody to the recipient.
func (v *Vault) TransferOut(to cgfy.Address, amount *big.Int) error {
	return v.token.Transfer(v.custody, to, amount)
}

// BalanceOf returns the token balance of addr.
func (v *Vault) BalanceOf(addr cgfy.Address) (*big.Int, error) {
	return v.token.BalanceOf(addr)
}

// AssetID identifies the token moved by the vault.
func (v *Vault) AssetID() cgfy.Address {
	return v.token.addr
}
