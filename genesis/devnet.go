// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/stakeshare/cgfy"
)

// DevAccount account for development.
type DevAccount struct {
	Address    cgfy.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for solo mode.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{cgfy.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

const (
	devEmissionYears = 5
	devAccountTokens = 1_000_000
	devAccountCoins  = 1_000
)

// NewDevnet creates the solo mode genesis. The first dev account is the admin and
// keeps the supply not allocated elsewhere. 30% of the supply funds the staker, and
// the emission lasts five years of 12 second periods.
func NewDevnet() *Genesis {
	accs := DevAccounts()

	fund := new(big.Int).Div(new(big.Int).Mul(cgfy.InitialTokenSupply, big.NewInt(30)), big.NewInt(100))
	adminTokens := new(big.Int).Sub(cgfy.InitialTokenSupply, fund)

	gen := &Genesis{
		Admin:               accs[0].Address,
		RewardPerPeriod:     (*math.HexOrDecimal256)(new(big.Int).Set(cgfy.InitialRewardPerPeriod)),
		StartPeriod:         1,
		EndPeriod:           1 + cgfy.PeriodsPerYear*devEmissionYears,
		RevShareBasisPoints: cgfy.InitialRevShareBasisPoints,
		StakingFund:         (*math.HexOrDecimal256)(fund),
	}
	others := make([]Account, 0, len(accs)-1)
	for _, acc := range accs[1:] {
		tokens := cgfy.Tokens(devAccountTokens)
		adminTokens.Sub(adminTokens, tokens)
		others = append(others, Account{
			Address: acc.Address,
			Tokens:  (*math.HexOrDecimal256)(tokens),
			Coins:   (*math.HexOrDecimal256)(cgfy.Tokens(devAccountCoins)),
		})
	}
	gen.Accounts = append([]Account{{
		Address: accs[0].Address,
		Tokens:  (*math.HexOrDecimal256)(adminTokens),
		Coins:   (*math.HexOrDecimal256)(cgfy.Tokens(devAccountCoins)),
	}}, others...)
	return gen
}
