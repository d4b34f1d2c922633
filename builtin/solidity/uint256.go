// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package solidity

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/cgfy"
)

// ErrOverflow is returned when a value does not fit into an uint256.
var ErrOverflow = errors.New("uint256 overflow")

// CheckUint256 ensures v is within the uint256 range.
func CheckUint256(v *big.Int) error {
	if v.Sign() < 0 {
		return errors.WithMessage(ErrOverflow, "negative value")
	}
	if _, overflow := uint256.FromBig(v); overflow {
		return ErrOverflow
	}
	return nil
}

// Uint256 is a wrapper for storage and retrieval of an uint256, like an uint256 state variable.
type Uint256 struct {
	context *Context
	pos     cgfy.Bytes32
}

func NewUint256(context *Context, pos cgfy.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	raw, err := u.context.state.GetRawStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// Set stores value, rejecting anything outside the uint256 range.
func (u *Uint256) Set(value *big.Int) error {
	if err := CheckUint256(value); err != nil {
		return err
	}
	u.context.state.SetRawStorage(u.context.address, u.pos, value.Bytes())
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Add(v, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	v, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(v.Sub(v, value))
}
