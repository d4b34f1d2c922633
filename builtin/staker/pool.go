// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package staker

import (
	"math/big"

	"github.com/vechain/stakeshare/cgfy"
)

// accumulate brings the reward accumulator up to min(now, EndPeriod).
// Periods with nothing staked are skipped without emission.
func (p *Pool) accumulate(now uint64) error {
	current := min(now, p.EndPeriod)
	if current <= p.LastRewardPeriod {
		return nil
	}
	if p.TotalStaked.Sign() > 0 {
		elapsed := new(big.Int).SetUint64(current - p.LastRewardPeriod)
		emitted := elapsed.Mul(elapsed, p.RewardPerPeriod)

		scaled := new(big.Int).Mul(emitted, cgfy.Precision)
		if err := checkUint256(scaled); err != nil {
			return err
		}
		acc := new(big.Int).Add(p.AccRewardPerShare, scaled.Quo(scaled, p.TotalStaked))
		credited := new(big.Int).Add(p.RewardCredited, emitted)
		if err := checkUint256(acc, credited); err != nil {
			return err
		}
		p.AccRewardPerShare = acc
		p.RewardCredited = credited
	}
	p.LastRewardPeriod = current
	return nil
}

// pending returns what the account has earned since its debts were last reset.
func (p *Pool) pending(acc *Account) (reward, revShare *big.Int) {
	return owed(acc.Amount, p.AccRewardPerShare, acc.RewardDebt),
		owed(acc.Amount, p.AccRevSharePerShare, acc.RevShareDebt)
}

// resetDebts snapshots both accumulators as the account's debts.
func (p *Pool) resetDebts(acc *Account) {
	acc.RewardDebt = new(big.Int).Set(p.AccRewardPerShare)
	acc.RevShareDebt = new(big.Int).Set(p.AccRevSharePerShare)
}

// owed is amount*(accPerShare-debt)/Precision, truncated.
func owed(amount, accPerShare, debt *big.Int) *big.Int {
	delta := new(big.Int).Sub(accPerShare, debt)
	if delta.Sign() <= 0 || amount.Sign() == 0 {
		return new(big.Int)
	}
	delta.Mul(delta, amount)
	return delta.Quo(delta, cgfy.Precision)
}
