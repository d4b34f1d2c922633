// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node

import (
	"context"
	"math/big"

	"github.com/vechain/stakeshare/builtin/staker"
	"github.com/vechain/stakeshare/cgfy"
)

// Position is a participant's ledger entry with what it could claim now.
type Position struct {
	Account         *staker.Account
	PendingReward   *big.Int
	PendingRevShare *big.Int
}

// Stake pulls amount of the staked token from participant into the pool.
// The participant must have approved the staker beforehand.
func (n *Node) Stake(ctx context.Context, participant cgfy.Address, amount *big.Int) (*Receipt, error) {
	return n.write(ctx, "stake", func(now uint64) error {
		return n.contracts.Staker.Stake(now, participant, amount)
	})
}

// Withdraw returns amount of principal to participant, paying pending rewards first.
func (n *Node) Withdraw(ctx context.Context, participant cgfy.Address, amount *big.Int) (*Receipt, error) {
	return n.write(ctx, "withdraw", func(now uint64) error {
		return n.contracts.Staker.Withdraw(now, participant, amount)
	})
}

// Claim pays out both pending streams of participant.
func (n *Node) Claim(ctx context.Context, participant cgfy.Address) (*Receipt, error) {
	return n.write(ctx, "claim", func(now uint64) error {
		_, _, err := n.contracts.Staker.ClaimRewards(now, participant)
		return err
	})
}

// Rescue sends the undistributed reward residual to 'to' once the emission ended.
func (n *Node) Rescue(ctx context.Context, caller, to cgfy.Address) (*Receipt, error) {
	return n.write(ctx, "rescue", func(now uint64) error {
		_, err := n.contracts.Staker.RescueTokens(now, caller, to)
		return err
	})
}

// SetAdmin hands the staker administrator role over.
func (n *Node) SetAdmin(ctx context.Context, caller, newAdmin cgfy.Address) (*Receipt, error) {
	return n.write(ctx, "setAdmin", func(uint64) error {
		return n.contracts.Staker.SetAdmin(caller, newAdmin)
	})
}

// Pool returns the pool advanced to the current period, and that period.
func (n *Node) Pool() (*staker.Pool, uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	now := n.clock.Now()
	pool, err := n.contracts.Staker.PoolAt(now)
	if err != nil {
		return nil, 0, err
	}
	return pool, now, nil
}

// Residual returns what RescueTokens would transfer now.
func (n *Node) Residual() (*big.Int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.contracts.Staker.Residual(n.clock.Now())
}

// Position returns the ledger entry and pending amounts of participant.
func (n *Node) Position(participant cgfy.Address) (*Position, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	acc, err := n.contracts.Staker.AccountOf(participant)
	if err != nil {
		return nil, err
	}
	reward, revShare, err := n.contracts.Staker.Pending(n.clock.Now(), participant)
	if err != nil {
		return nil, err
	}
	return &Position{Account: acc, PendingReward: reward, PendingRevShare: revShare}, nil
}
