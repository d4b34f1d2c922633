// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package market

import (
	"encoding/binary"
	"math/big"

	"github.com/vechain/stakeshare/cgfy"
)

// Model is a listed item. The content itself lives off-ledger at URL.
type Model struct {
	ID        uint64
	Name      string
	URL       string
	Creator   cgfy.Address
	Price     *big.Int
	Purchases uint64
}

// Exists reports whether the model was ever uploaded.
func (m *Model) Exists() bool {
	return m.ID != 0
}

type modelKey uint64

func (k modelKey) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

type settings struct {
	RevShareBasisPoints uint64
	Count               uint64
}
