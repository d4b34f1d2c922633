// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package staker

import (
	"math/big"

	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
)

type payout struct {
	reward   *big.Int
	revShare *big.Int
}

// settle books both pending amounts of the account as paid and resets its debts.
// The pool must already be advanced. Nothing is transferred until pay.
func (s *Staker) settle(pool *Pool, acc *Account) payout {
	reward, revShare := pool.pending(acc)
	pool.resetDebts(acc)
	if reward.Sign() > 0 {
		pool.RewardPaid = new(big.Int).Add(pool.RewardPaid, reward)
	}
	if revShare.Sign() > 0 {
		pool.RevSharePaid = new(big.Int).Add(pool.RevSharePaid, revShare)
	}
	return payout{reward, revShare}
}

// pay transfers the settled amounts, reward first.
func (s *Staker) pay(participant cgfy.Address, p payout) error {
	if p.reward.Sign() > 0 {
		if err := s.transferOut(s.assets.Reward, participant, p.reward); err != nil {
			return err
		}
		s.emit(events.RewardPaid, participant, p.reward)
	}
	if p.revShare.Sign() > 0 {
		if err := s.transferOut(s.assets.RevShare, participant, p.revShare); err != nil {
			return err
		}
		s.emit(events.RevSharePaid, participant, p.revShare)
	}
	return nil
}

// ClaimRewards pays out both pending amounts of the participant.
// It is a no-op for a participant with nothing staked.
func (s *Staker) ClaimRewards(now uint64, participant cgfy.Address) (reward, revShare *big.Int, err error) {
	logger.Debug("claiming", "participant", participant, "period", now)
	err = s.atomic("claim", func() error {
		pool, err := s.advance(now)
		if err != nil {
			return err
		}
		acc, err := s.getAccount(participant)
		if err != nil {
			return err
		}
		if acc.IsEmpty() {
			reward, revShare = new(big.Int), new(big.Int)
			return s.pool.Set(pool)
		}
		p := s.settle(pool, acc)
		if err := s.save(pool, participant, acc); err != nil {
			return err
		}
		if err := s.pay(participant, p); err != nil {
			return err
		}
		reward, revShare = p.reward, p.revShare
		return nil
	})
	if err != nil {
		logger.Debug("claim failed", "participant", participant, "err", err)
		return nil, nil, err
	}
	if reward.Sign() > 0 || revShare.Sign() > 0 {
		logger.Info("claimed", "participant", participant, "reward", reward, "revShare", revShare)
	}
	return reward, revShare, nil
}
