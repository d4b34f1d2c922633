// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package testnode

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/eventdb"
	"github.com/vechain/stakeshare/genesis"
	"github.com/vechain/stakeshare/kv"
	"github.com/vechain/stakeshare/lvldb"
	"github.com/vechain/stakeshare/node"
	"github.com/vechain/stakeshare/period"
)

// Accounts allocated by the default genesis.
var (
	Admin = cgfy.BytesToAddress([]byte("admin"))
	Alice = cgfy.BytesToAddress([]byte("alice"))
	Bob   = cgfy.BytesToAddress([]byte("bob"))
)

// DefaultGenesis emits 10 tokens per period over [1, 101] from a fund covering
// the whole window, with a 5% market cut. Alice and Bob hold 100 tokens and
// 10 coins each.
func DefaultGenesis() *genesis.Genesis {
	amount := func(n int64) *math.HexOrDecimal256 {
		return (*math.HexOrDecimal256)(cgfy.Tokens(n))
	}
	return &genesis.Genesis{
		Admin:               Admin,
		RewardPerPeriod:     amount(10),
		StartPeriod:         1,
		EndPeriod:           101,
		RevShareBasisPoints: cgfy.InitialRevShareBasisPoints,
		StakingFund:         amount(1000),
		Accounts: []genesis.Account{
			{Address: Alice, Tokens: amount(100), Coins: amount(10)},
			{Address: Bob, Tokens: amount(100), Coins: amount(10)},
		},
	}
}

// NodeBuilder implements the builder pattern for creating a test node instance.
type NodeBuilder struct {
	gen   *genesis.Genesis
	opts  node.Options
	start uint64
}

// NewNodeBuilder creates a builder for an automining node over the default genesis.
func NewNodeBuilder() *NodeBuilder {
	return &NodeBuilder{
		gen:  DefaultGenesis(),
		opts: node.Options{Automine: true},
	}
}

func (b *NodeBuilder) WithGenesis(gen *genesis.Genesis) *NodeBuilder {
	b.gen = gen
	return b
}

func (b *NodeBuilder) WithOptions(opts node.Options) *NodeBuilder {
	b.opts = opts
	return b
}

// AtPeriod sets the period the manual clock starts at.
func (b *NodeBuilder) AtPeriod(p uint64) *NodeBuilder {
	b.start = p
	return b
}

// Build creates the node over in-memory stores.
func (b *NodeBuilder) Build() (*Node, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	edb, err := eventdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}
	clock := period.NewManual(b.start)
	n, err := node.New(db, b.gen, clock, edb, b.opts)
	if err != nil {
		db.Close()
		edb.Close()
		return nil, err
	}
	return &Node{Node: n, Clock: clock, store: db, eventDB: edb}, nil
}

// NewDefaultNode creates a node with default configuration.
func NewDefaultNode() (*Node, error) {
	return NewNodeBuilder().Build()
}

// Node is a node over in-memory stores with a manual clock.
type Node struct {
	*node.Node
	Clock *period.Manual

	store   kv.StoreCloser
	eventDB *eventdb.EventDB
}

// Close releases the stores.
func (n *Node) Close() error {
	n.eventDB.Close()
	return n.store.Close()
}
