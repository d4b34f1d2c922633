// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node_test

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/builtin"
	"github.com/vechain/stakeshare/builtin/market"
	"github.com/vechain/stakeshare/builtin/staker"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/eventdb"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/genesis"
	"github.com/vechain/stakeshare/kv"
	"github.com/vechain/stakeshare/lvldb"
	"github.com/vechain/stakeshare/node"
	"github.com/vechain/stakeshare/period"
)

var (
	admin = cgfy.BytesToAddress([]byte("admin"))
	alice = cgfy.BytesToAddress([]byte("alice"))
	bob   = cgfy.BytesToAddress([]byte("bob"))
)

func amount(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(v)
}

// testGenesis mirrors the original test deployment: 10 tokens per period over
// periods [1, 101], the pool funded for the full window, alice holding 100 tokens.
func testGenesis() *genesis.Genesis {
	return &genesis.Genesis{
		Admin:               admin,
		RewardPerPeriod:     amount(cgfy.Tokens(10)),
		StartPeriod:         1,
		EndPeriod:           101,
		RevShareBasisPoints: 500,
		StakingFund:         amount(cgfy.Tokens(1000)),
		Accounts: []genesis.Account{
			{Address: alice, Tokens: amount(cgfy.Tokens(100))},
			{Address: bob, Tokens: amount(cgfy.Tokens(100)), Coins: amount(cgfy.Tokens(10))},
		},
	}
}

type testNode struct {
	*node.Node
	clock *period.Manual
	db    *eventdb.EventDB
}

func newTestNode(t *testing.T, store kv.Store, opts node.Options) *testNode {
	if store == nil {
		db, err := lvldb.NewMem()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		store = db
	}
	edb, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { edb.Close() })

	clock := period.NewManual(0)
	n, err := node.New(store, testGenesis(), clock, edb, opts)
	require.NoError(t, err)
	return &testNode{Node: n, clock: clock, db: edb}
}

func (n *testNode) balance(t *testing.T, addr cgfy.Address) *big.Int {
	bal, err := n.Contracts().Token.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

func kinds(evs []*events.Event) []events.Kind {
	out := make([]events.Kind, 0, len(evs))
	for _, ev := range evs {
		out = append(out, ev.Kind)
	}
	return out
}

func TestAutomineWithdraw(t *testing.T) {
	n := newTestNode(t, nil, node.Options{Automine: true})
	ctx := context.Background()

	_, err := n.Approve(ctx, builtin.TokenAddress, alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	receipt, err := n.Stake(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), receipt.Period)
	assert.Equal(t, "0", n.balance(t, alice).String())

	// mine 5 periods, plus 1 for the withdrawal itself
	now, err := n.Mine(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), now)

	receipt, err = n.Withdraw(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(8), receipt.Period)
	assert.Equal(t, cgfy.Tokens(160).String(), n.balance(t, alice).String())
	assert.ElementsMatch(t, []events.Kind{events.RewardPaid, events.Withdrawn}, kinds(receipt.Events))
}

func TestManualClockWithdraw(t *testing.T) {
	n := newTestNode(t, nil, node.Options{})
	ctx := context.Background()

	n.clock.Advance(10)
	_, err := n.Approve(ctx, builtin.TokenAddress, alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)

	n.clock.Advance(5)
	pos, err := n.Position(alice)
	require.NoError(t, err)
	assert.Equal(t, cgfy.Tokens(50).String(), pos.PendingReward.String())
	assert.Equal(t, cgfy.Tokens(100).String(), pos.Account.Amount.String())

	_, err = n.Withdraw(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)
	assert.Equal(t, cgfy.Tokens(150).String(), n.balance(t, alice).String())
}

func TestEventsPublishedAndIndexed(t *testing.T) {
	n := newTestNode(t, nil, node.Options{Automine: true})
	ctx := context.Background()
	cur := n.Subscribe()

	_, err := n.Approve(ctx, builtin.TokenAddress, alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, alice, cgfy.Tokens(40))
	require.NoError(t, err)

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	ev, err := cur.Next(waitCtx)
	require.NoError(t, err)
	assert.Equal(t, events.Staked, ev.Kind)
	assert.Equal(t, alice, ev.Participant)
	assert.Equal(t, uint64(2), ev.Period)
	assert.Equal(t, uint64(1), ev.Sequence)
	assert.Equal(t, builtin.StakerAddress, ev.Contract)

	indexed, err := n.FilterEvents(ctx, &eventdb.Filter{Participant: &alice})
	require.NoError(t, err)
	require.Len(t, indexed, 1)
	assert.Equal(t, ev.Sequence, indexed[0].Sequence)
	assert.Equal(t, cgfy.Tokens(40).String(), indexed[0].Amount.String())
}

func TestFailedWriteHasNoEffect(t *testing.T) {
	n := newTestNode(t, nil, node.Options{Automine: true})
	ctx := context.Background()

	// no allowance
	_, err := n.Stake(ctx, alice, cgfy.Tokens(10))
	assert.ErrorIs(t, err, staker.ErrTransferFailed)
	assert.Equal(t, cgfy.Tokens(100).String(), n.balance(t, alice).String())

	pos, err := n.Position(alice)
	require.NoError(t, err)
	assert.Equal(t, "0", pos.Account.Amount.String())

	all, err := n.FilterEvents(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)

	_, err = n.Approve(ctx, builtin.TokenAddress, alice, builtin.StakerAddress, cgfy.Tokens(10))
	require.NoError(t, err)
	receipt, err := n.Stake(ctx, alice, cgfy.Tokens(10))
	require.NoError(t, err)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, uint64(1), receipt.Events[0].Sequence)
}

func TestMarketRevShare(t *testing.T) {
	n := newTestNode(t, nil, node.Options{Automine: true})
	ctx := context.Background()

	_, err := n.Approve(ctx, builtin.TokenAddress, alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)

	id, _, err := n.UploadModel(ctx, alice, "lora", "ipfs://lora", cgfy.Tokens(1))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	_, err = n.BuyModel(ctx, bob, id, cgfy.Tokens(2))
	assert.ErrorIs(t, err, market.ErrWrongPayment)

	receipt, err := n.BuyModel(ctx, bob, id, cgfy.Tokens(1))
	require.NoError(t, err)
	assert.ElementsMatch(t, []events.Kind{events.RevShareNotified, events.ModelPurchased}, kinds(receipt.Events))

	// 5% of 1 coin
	pos, err := n.Position(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5e16).String(), pos.PendingRevShare.String())

	m, err := n.Model(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), m.Purchases)

	models, err := n.Models(0, 10)
	require.NoError(t, err)
	assert.Len(t, models, 1)

	_, err = n.Model(2)
	assert.ErrorIs(t, err, market.ErrModelNotFound)

	bals, err := n.Balances(alice)
	require.NoError(t, err)
	require.Len(t, bals, 2)
	assert.Equal(t, "COIN", bals[1].Symbol)
	assert.Equal(t, big.NewInt(95e16).String(), bals[1].Balance.String())
}

func TestRescueAfterEnd(t *testing.T) {
	n := newTestNode(t, nil, node.Options{})
	ctx := context.Background()

	_, err := n.Rescue(ctx, admin, admin)
	assert.ErrorIs(t, err, staker.ErrNotEnded)

	n.clock.Advance(200)
	_, err = n.Rescue(ctx, alice, alice)
	assert.ErrorIs(t, err, staker.ErrUnauthorized)

	residual, err := n.Residual()
	require.NoError(t, err)
	assert.Equal(t, cgfy.Tokens(1000).String(), residual.String())

	receipt, err := n.Rescue(ctx, admin, admin)
	require.NoError(t, err)
	assert.Equal(t, []events.Kind{events.Rescued}, kinds(receipt.Events))
	assert.Equal(t, cgfy.Tokens(1000).String(), n.balance(t, admin).String())
}

func TestFaucetAndTokens(t *testing.T) {
	ctx := context.Background()

	closed := newTestNode(t, nil, node.Options{})
	_, err := closed.Mint(ctx, builtin.TokenAddress, alice, cgfy.Tokens(1))
	assert.ErrorIs(t, err, node.ErrFaucetDisabled)

	n := newTestNode(t, nil, node.Options{Faucet: true})
	_, err = n.Mint(ctx, builtin.TokenAddress, alice, cgfy.Tokens(1))
	require.NoError(t, err)
	assert.Equal(t, cgfy.Tokens(101).String(), n.balance(t, alice).String())

	_, err = n.Mint(ctx, cgfy.BytesToAddress([]byte("nope")), alice, cgfy.Tokens(1))
	assert.ErrorIs(t, err, node.ErrUnknownToken)

	_, err = n.Transfer(ctx, builtin.TokenAddress, alice, bob, cgfy.Tokens(1))
	require.NoError(t, err)
	assert.Equal(t, cgfy.Tokens(101).String(), n.balance(t, bob).String())

	_, err = n.Approve(ctx, builtin.CoinAddress, bob, alice, cgfy.Tokens(3))
	require.NoError(t, err)
	allowed, err := n.Allowance(builtin.CoinAddress, bob, alice)
	require.NoError(t, err)
	assert.Equal(t, cgfy.Tokens(3).String(), allowed.String())
}

func TestSetAdmin(t *testing.T) {
	n := newTestNode(t, nil, node.Options{})
	ctx := context.Background()

	_, err := n.SetAdmin(ctx, alice, alice)
	assert.ErrorIs(t, err, staker.ErrUnauthorized)
	_, err = n.SetAdmin(ctx, admin, bob)
	require.NoError(t, err)

	pool, _, err := n.Pool()
	require.NoError(t, err)
	assert.Equal(t, bob, pool.Admin)
}

func TestRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	ctx := context.Background()

	db, err := lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	n := newTestNode(t, db, node.Options{Automine: true})
	_, err = n.Approve(ctx, builtin.TokenAddress, alice, builtin.StakerAddress, cgfy.Tokens(100))
	require.NoError(t, err)
	_, err = n.Stake(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = lvldb.New(path, lvldb.Options{})
	require.NoError(t, err)
	defer db.Close()

	clock := period.NewManual(0)
	reopened, err := node.New(db, testGenesis(), clock, nil, node.Options{Automine: true})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), clock.Now())

	receipt, err := reopened.Withdraw(ctx, alice, cgfy.Tokens(100))
	require.NoError(t, err)
	for _, ev := range receipt.Events {
		assert.Greater(t, ev.Sequence, uint64(1))
	}
	_, err = reopened.FilterEvents(ctx, nil)
	assert.ErrorIs(t, err, node.ErrNoEventDB)

	other := testGenesis()
	other.EndPeriod++
	_, err = node.New(db, other, period.NewManual(0), nil, node.Options{})
	assert.ErrorIs(t, err, node.ErrGenesisMismatch)
}

func TestWallClock(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	fake := clockwork.NewFakeClockAt(time.Unix(1_000, 0))
	wall := period.NewWall(fake, time.Unix(1_000, 0), 12*time.Second)

	_, err = node.New(db, testGenesis(), wall, nil, node.Options{Automine: true})
	assert.ErrorIs(t, err, node.ErrNotManualClock)

	n, err := node.New(db, testGenesis(), wall, nil, node.Options{})
	require.NoError(t, err)
	_, err = n.Mine(1)
	assert.ErrorIs(t, err, node.ErrNotManualClock)

	fake.Advance(36 * time.Second)
	assert.Equal(t, uint64(3), n.Now())
}
