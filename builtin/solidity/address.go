// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package solidity

import (
	"github.com/vechain/stakeshare/cgfy"
)

// Address is a wrapper for storage and retrieval of an address state variable.
type Address struct {
	context *Context
	pos     cgfy.Bytes32
}

func NewAddress(context *Context, pos cgfy.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (cgfy.Address, error) {
	raw, err := a.context.state.GetRawStorage(a.context.address, a.pos)
	if err != nil {
		return cgfy.Address{}, err
	}
	return cgfy.BytesToAddress(raw), nil
}

func (a *Address) Set(addr cgfy.Address) {
	var raw []byte
	if !addr.IsZero() {
		raw = addr.Bytes()
	}
	a.context.state.SetRawStorage(a.context.address, a.pos, raw)
}
