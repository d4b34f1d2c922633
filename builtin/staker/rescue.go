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

// Residual returns the reward asset balance not owed to anyone at now:
// custody balance minus staked principal (when staked in the same asset),
// minus credited but unpaid emission, minus undistributed revenue share
// (when paid in the same asset).
func (s *Staker) Residual(now uint64) (*big.Int, error) {
	pool, err := s.PoolAt(now)
	if err != nil {
		return nil, err
	}
	return s.residual(pool)
}

func (s *Staker) residual(pool *Pool) (*big.Int, error) {
	balance, err := s.assets.Reward.BalanceOf(s.addr)
	if err != nil {
		return nil, err
	}
	residual := new(big.Int).Set(balance)
	if sameAsset(s.assets.Reward, s.assets.Staked) {
		residual.Sub(residual, pool.TotalStaked)
	}
	residual.Sub(residual, pool.RewardCredited)
	residual.Add(residual, pool.RewardPaid)
	if sameAsset(s.assets.Reward, s.assets.RevShare) {
		residual.Sub(residual, pool.RevShareDeposited)
		residual.Sub(residual, pool.RevShareReserve)
		residual.Add(residual, pool.RevSharePaid)
	}
	if residual.Sign() < 0 {
		return new(big.Int), nil
	}
	return residual, nil
}

// RescueTokens lets the administrator recover the residual reward asset once
// the emission window has ended. It returns the amount sent to the recipient.
// Principal, unclaimed rewards and revenue share still owed to stakers stay in
// custody. A revenue share reserve stranded without stakers is kept as well, so a
// later stake can still receive it.
func (s *Staker) RescueTokens(now uint64, caller, to cgfy.Address) (*big.Int, error) {
	logger.Debug("rescuing", "caller", caller, "to", to, "period", now)

	var rescued *big.Int
	err := s.atomic("rescue", func() error {
		pool, err := s.getPool()
		if err != nil {
			return err
		}
		if caller != pool.Admin {
			return ErrUnauthorized
		}
		if pool.Phase(now) != Ended {
			return ErrNotEnded
		}
		if to.IsZero() {
			return ErrZeroAddress
		}
		// credit the tail of the window before measuring what is owed
		if err := pool.accumulate(now); err != nil {
			return err
		}
		if err := s.pool.Set(pool); err != nil {
			return err
		}

		if rescued, err = s.residual(pool); err != nil {
			return err
		}
		if rescued.Sign() > 0 {
			if err := s.transferOut(s.assets.Reward, to, rescued); err != nil {
				return err
			}
		}
		s.emit(events.Rescued, to, rescued)
		return nil
	})
	if err != nil {
		logger.Debug("rescue failed", "caller", caller, "err", err)
		return nil, err
	}
	logger.Info("rescued residual", "to", to, "amount", rescued)
	return rescued, nil
}
