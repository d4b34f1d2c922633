// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package cgfy

import (
	"math/big"
)

// Constants of the staking pool.
const (
	// PeriodInterval is the default wall-clock length of one reward period in seconds.
	PeriodInterval uint64 = 12

	// BasisPoints is the denominator of basis-point ratios.
	BasisPoints uint64 = 10_000

	// InitialRevShareBasisPoints is the marketplace cut routed to stakers, 5%.
	InitialRevShareBasisPoints uint64 = 500

	// PeriodsPerYear at the default period interval.
	PeriodsPerYear uint64 = 365 * 24 * 3600 / PeriodInterval
)

var (
	// Precision scales both reward accumulators.
	Precision = big.NewInt(1e12)

	// Ether is 10^18, one whole token in its smallest unit.
	Ether = big.NewInt(1e18)

	// InitialRewardPerPeriod is 22.5 CGFY per period.
	InitialRewardPerPeriod = new(big.Int).Mul(big.NewInt(225), big.NewInt(1e17))

	// InitialTokenSupply is 1 billion CGFY.
	InitialTokenSupply = new(big.Int).Mul(big.NewInt(1e9), Ether)
)

// Tokens converts a whole-token count into its smallest unit.
func Tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), Ether)
}
