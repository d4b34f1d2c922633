// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package staker

import (
	"math/big"

	"github.com/vechain/stakeshare/cgfy"
)

// Phase is the emission window state, driven purely by the period.
type Phase uint8

const (
	NotStarted Phase = iota
	Active
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "notStarted"
	case Active:
		return "active"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// Pool is the global accounting state of the staker.
type Pool struct {
	Admin           cgfy.Address
	RewardPerPeriod *big.Int
	StartPeriod     uint64
	EndPeriod       uint64

	LastRewardPeriod    uint64
	TotalStaked         *big.Int
	AccRewardPerShare   *big.Int // scaled by cgfy.Precision
	AccRevSharePerShare *big.Int // scaled by cgfy.Precision
	Participants        uint64

	RewardCredited    *big.Int
	RewardPaid        *big.Int
	RevShareDeposited *big.Int
	RevSharePaid      *big.Int
	RevShareReserve   *big.Int // notified while nothing was staked
}

// Initialized reports whether the pool was configured.
func (p *Pool) Initialized() bool {
	return p.RewardPerPeriod != nil
}

// Phase returns the emission phase at the given period.
func (p *Pool) Phase(now uint64) Phase {
	switch {
	case now < p.StartPeriod:
		return NotStarted
	case now <= p.EndPeriod:
		return Active
	default:
		return Ended
	}
}

func (p *Pool) copy() *Pool {
	cpy := *p
	return &cpy
}

// Account is the per participant ledger entry.
type Account struct {
	Amount       *big.Int
	RewardDebt   *big.Int
	RevShareDebt *big.Int
}

func newAccount() *Account {
	return &Account{
		Amount:       new(big.Int),
		RewardDebt:   new(big.Int),
		RevShareDebt: new(big.Int),
	}
}

// normalize fills fields of an account never written.
func (a *Account) normalize() *Account {
	if a.Amount == nil {
		a.Amount = new(big.Int)
	}
	if a.RewardDebt == nil {
		a.RewardDebt = new(big.Int)
	}
	if a.RevShareDebt == nil {
		a.RevShareDebt = new(big.Int)
	}
	return a
}

// IsEmpty returns true when nothing is staked.
func (a *Account) IsEmpty() bool {
	return a.Amount.Sign() == 0
}

// Config configures a new pool.
type Config struct {
	Admin           cgfy.Address
	RewardPerPeriod *big.Int
	StartPeriod     uint64
	EndPeriod       uint64
}
