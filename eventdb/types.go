// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package eventdb

import "github.com/vechain/stakeshare/cgfy"

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive period range. To < From means unbounded above.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Filter selects indexed events. Zero fields match everything.
type Filter struct {
	Contract    *cgfy.Address
	Participant *cgfy.Address
	Kinds       []string
	ModelID     *uint64
	Range       *Range
	Options     *Options
	Order       Order
}
