// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/builtin"
	"github.com/vechain/stakeshare/builtin/staker"
	"github.com/vechain/stakeshare/cgfy"
)

// Genesis describes the emission window, the market cut and the initial balances.
type Genesis struct {
	Admin               cgfy.Address          `yaml:"admin" json:"admin"`
	RewardPerPeriod     *math.HexOrDecimal256 `yaml:"rewardPerPeriod" json:"rewardPerPeriod"`
	StartPeriod         uint64                `yaml:"startPeriod" json:"startPeriod"`
	EndPeriod           uint64                `yaml:"endPeriod" json:"endPeriod"`
	RevShareBasisPoints uint64                `yaml:"revShareBasisPoints" json:"revShareBasisPoints"`
	StakingFund         *math.HexOrDecimal256 `yaml:"stakingFund" json:"stakingFund"`
	Accounts            []Account             `yaml:"accounts" json:"accounts"`
}

// Account is an initial allocation.
type Account struct {
	Address cgfy.Address          `yaml:"address" json:"address"`
	Tokens  *math.HexOrDecimal256 `yaml:"tokens,omitempty" json:"tokens,omitempty"`
	Coins   *math.HexOrDecimal256 `yaml:"coins,omitempty" json:"coins,omitempty"`
}

// Validate checks the genesis is buildable.
func (g *Genesis) Validate() error {
	if g.Admin.IsZero() {
		return errors.New("admin must be set")
	}
	if g.RewardPerPeriod == nil || (*big.Int)(g.RewardPerPeriod).Sign() < 0 {
		return errors.New("rewardPerPeriod must be a non-negative integer")
	}
	if g.EndPeriod < g.StartPeriod {
		return errors.New("endPeriod must not be before startPeriod")
	}
	if g.RevShareBasisPoints > cgfy.BasisPoints {
		return errors.Errorf("revShareBasisPoints must not exceed %d", cgfy.BasisPoints)
	}
	if g.StakingFund != nil && (*big.Int)(g.StakingFund).Sign() < 0 {
		return errors.New("stakingFund must be a non-negative integer")
	}
	for _, a := range g.Accounts {
		if a.Address.IsZero() {
			return errors.New("account address must be set")
		}
		if a.Tokens != nil && (*big.Int)(a.Tokens).Sign() < 0 {
			return errors.Errorf("%s: tokens must be a non-negative integer", a.Address)
		}
		if a.Coins != nil && (*big.Int)(a.Coins).Sign() < 0 {
			return errors.Errorf("%s: coins must be a non-negative integer", a.Address)
		}
	}
	return nil
}

// ID identifies the genesis content.
func (g *Genesis) ID() (cgfy.Bytes32, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return cgfy.Bytes32{}, err
	}
	return cgfy.Blake2b(data), nil
}

// Build initializes the builtin contracts and allocates the initial balances.
func (g *Genesis) Build(c *builtin.Contracts) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if err := c.Staker.Initialize(staker.Config{
		Admin:           g.Admin,
		RewardPerPeriod: (*big.Int)(g.RewardPerPeriod),
		StartPeriod:     g.StartPeriod,
		EndPeriod:       g.EndPeriod,
	}); err != nil {
		return errors.WithMessage(err, "initialize staker")
	}
	if err := c.Market.Initialize(g.RevShareBasisPoints); err != nil {
		return errors.WithMessage(err, "initialize market")
	}
	if g.StakingFund != nil {
		if err := c.Token.Mint(c.Staker.Address(), (*big.Int)(g.StakingFund)); err != nil {
			return errors.WithMessage(err, "fund staker")
		}
	}
	for _, a := range g.Accounts {
		if a.Tokens != nil {
			if err := c.Token.Mint(a.Address, (*big.Int)(a.Tokens)); err != nil {
				return errors.WithMessagef(err, "%s: tokens", a.Address)
			}
		}
		if a.Coins != nil {
			if err := c.Coin.Mint(a.Address, (*big.Int)(a.Coins)); err != nil {
				return errors.WithMessagef(err, "%s: coins", a.Address)
			}
		}
	}
	return nil
}
