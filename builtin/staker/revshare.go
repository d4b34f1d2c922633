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

// NotifyRevShare distributes value of the revenue share asset, already held in
// custody, over the current stake. It never touches the emission accumulator.
// Value notified while nothing is staked is reserved and joins the next
// distribution.
func (s *Staker) NotifyRevShare(value *big.Int) error {
	if value == nil || value.Sign() < 0 {
		return ErrInvalidAmount
	}
	if value.Sign() == 0 {
		return nil
	}
	return s.atomic("notifyRevShare", func() error {
		pool, err := s.getPool()
		if err != nil {
			return err
		}
		total := new(big.Int).Add(value, pool.RevShareReserve)
		if err := checkUint256(total); err != nil {
			return err
		}

		if pool.TotalStaked.Sign() == 0 {
			pool.RevShareReserve = total
			logger.Debug("revenue share reserved", "value", value, "reserve", total)
		} else {
			scaled := new(big.Int).Mul(total, cgfy.Precision)
			if err := checkUint256(scaled); err != nil {
				return err
			}
			acc := new(big.Int).Add(pool.AccRevSharePerShare, scaled.Quo(scaled, pool.TotalStaked))
			deposited := new(big.Int).Add(pool.RevShareDeposited, total)
			if err := checkUint256(acc, deposited); err != nil {
				return err
			}
			pool.AccRevSharePerShare = acc
			pool.RevShareDeposited = deposited
			pool.RevShareReserve = new(big.Int)
			logger.Debug("revenue share distributed", "value", total, "totalStaked", pool.TotalStaked)
		}
		if err := s.pool.Set(pool); err != nil {
			return err
		}
		s.emit(events.RevShareNotified, cgfy.Address{}, value)
		return nil
	})
}
