// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package staker

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/builtin/token"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/lvldb"
	"github.com/vechain/stakeshare/state"
)

var (
	stakerAddr = cgfy.BytesToAddress([]byte("staker"))
	tokenAddr  = cgfy.BytesToAddress([]byte("cgfy"))
	coinAddr   = cgfy.BytesToAddress([]byte("coin"))
	admin      = cgfy.BytesToAddress([]byte("admin"))
	alice      = cgfy.BytesToAddress([]byte("alice"))
	bob        = cgfy.BytesToAddress([]byte("bob"))
	carol      = cgfy.BytesToAddress([]byte("carol"))
)

type testEnv struct {
	state    *state.State
	staker   *Staker
	token    *token.Token // staked and reward asset
	coin     *token.Token // revenue share asset
	recorder *events.Recorder
}

type envConfig struct {
	Config
	revShareInToken bool
}

type envOption func(*envConfig)

func withWindow(start, end uint64) envOption {
	return func(c *envConfig) {
		c.StartPeriod = start
		c.EndPeriod = end
	}
}

func withRate(rate *big.Int) envOption {
	return func(c *envConfig) {
		c.RewardPerPeriod = rate
	}
}

// withRevShareInToken pays revenue share in the staked token instead of a second token.
func withRevShareInToken() envOption {
	return func(c *envConfig) {
		c.revShareInToken = true
	}
}

// newTestEnv creates a staker over an in-memory store, staking and rewarding the
// same token, with revenue share paid in a second token.
// Defaults: window [10, 1000], 10 tokens per period, 10k tokens of reward fund.
func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	tok := token.New(tokenAddr, "CGFY", st)
	coin := token.New(coinAddr, "COIN", st)
	rec := &events.Recorder{}

	cfg := envConfig{Config: Config{
		Admin:           admin,
		RewardPerPeriod: cgfy.Tokens(10),
		StartPeriod:     10,
		EndPeriod:       1000,
	}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.revShareInToken {
		coin = tok
	}

	stk := New(stakerAddr, st, Assets{
		Staked:   tok.Vault(stakerAddr),
		Reward:   tok.Vault(stakerAddr),
		RevShare: coin.Vault(stakerAddr),
	}, rec)
	require.NoError(t, stk.Initialize(cfg.Config))
	require.NoError(t, tok.Mint(stakerAddr, cgfy.Tokens(10_000)))

	for _, who := range []cgfy.Address{alice, bob, carol} {
		require.NoError(t, tok.Mint(who, cgfy.Tokens(1_000)))
		require.NoError(t, tok.Approve(who, stakerAddr, cgfy.Tokens(1_000_000)))
	}
	return &testEnv{state: st, staker: stk, token: tok, coin: coin, recorder: rec}
}

// depositRevShare moves value of coin into custody and notifies the staker, as the market does.
func (e *testEnv) depositRevShare(t *testing.T, value *big.Int) {
	require.NoError(t, e.coin.Mint(stakerAddr, value))
	require.NoError(t, e.staker.NotifyRevShare(value))
}

func (e *testEnv) balance(t *testing.T, tok *token.Token, addr cgfy.Address) *big.Int {
	bal, err := tok.BalanceOf(addr)
	require.NoError(t, err)
	return bal
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Stake(addr cgfy.Address, amount *big.Int, period uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.Stake(period, addr, amount); err != nil {
			t.Fatalf("failed to stake %s for %s: %v", amount, addr, err)
		}
		t.Logf("staked %s for %s at %d", amount, addr, period)
	})
}

func (st *TestSequence) Withdraw(addr cgfy.Address, amount *big.Int, period uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.Withdraw(period, addr, amount); err != nil {
			t.Fatalf("failed to withdraw %s for %s: %v", amount, addr, err)
		}
		t.Logf("withdrew %s for %s at %d", amount, addr, period)
	})
}

func (st *TestSequence) Claim(addr cgfy.Address, period uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		reward, revShare, err := st.env.staker.ClaimRewards(period, addr)
		if err != nil {
			t.Fatalf("failed to claim for %s: %v", addr, err)
		}
		t.Logf("claimed %s reward and %s revenue share for %s at %d", reward, revShare, addr, period)
	})
}

func (st *TestSequence) Deposit(value *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.env.depositRevShare(t, value)
		t.Logf("deposited %s revenue share", value)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}

type AccountAssertions struct {
	env    *testEnv
	addr   cgfy.Address
	period uint64

	amount          *big.Int
	pendingReward   *big.Int
	pendingRevShare *big.Int
	tokenBalance    *big.Int
	coinBalance     *big.Int
}

func AssertAccount(env *testEnv, addr cgfy.Address, period uint64) *AccountAssertions {
	return &AccountAssertions{env: env, addr: addr, period: period}
}

func (aa *AccountAssertions) Amount(expected *big.Int) *AccountAssertions {
	aa.amount = expected
	return aa
}

func (aa *AccountAssertions) PendingReward(expected *big.Int) *AccountAssertions {
	aa.pendingReward = expected
	return aa
}

func (aa *AccountAssertions) PendingRevShare(expected *big.Int) *AccountAssertions {
	aa.pendingRevShare = expected
	return aa
}

func (aa *AccountAssertions) TokenBalance(expected *big.Int) *AccountAssertions {
	aa.tokenBalance = expected
	return aa
}

func (aa *AccountAssertions) CoinBalance(expected *big.Int) *AccountAssertions {
	aa.coinBalance = expected
	return aa
}

func (aa *AccountAssertions) Assert(t *testing.T) {
	t.Helper()
	acc, err := aa.env.staker.AccountOf(aa.addr)
	require.NoError(t, err, "failed to get account %s", aa.addr)
	reward, revShare, err := aa.env.staker.Pending(aa.period, aa.addr)
	require.NoError(t, err, "failed to get pending of %s", aa.addr)

	if aa.amount != nil {
		assertBig(t, aa.amount, acc.Amount, "account %s amount mismatch", aa.addr)
	}
	if aa.pendingReward != nil {
		assertBig(t, aa.pendingReward, reward, "account %s pending reward mismatch", aa.addr)
	}
	if aa.pendingRevShare != nil {
		assertBig(t, aa.pendingRevShare, revShare, "account %s pending revenue share mismatch", aa.addr)
	}
	if aa.tokenBalance != nil {
		assertBig(t, aa.tokenBalance, aa.env.balance(t, aa.env.token, aa.addr), "account %s token balance mismatch", aa.addr)
	}
	if aa.coinBalance != nil {
		assertBig(t, aa.coinBalance, aa.env.balance(t, aa.env.coin, aa.addr), "account %s coin balance mismatch", aa.addr)
	}
}

// assertBig compares values, not the internal representation of big.Int.
func assertBig(t *testing.T, expected, actual *big.Int, msgAndArgs ...any) bool {
	t.Helper()
	if expected == nil || actual == nil {
		return assert.Equal(t, expected, actual, msgAndArgs...)
	}
	return assert.Equal(t, expected.String(), actual.String(), msgAndArgs...)
}
