// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/lvldb"
	"github.com/vechain/stakeshare/state"
)

type testStruct struct {
	Amount *big.Int
	Addr   cgfy.Address
	Count  uint64
}

func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(cgfy.Address{1}, state.New(db))
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[cgfy.Address, *testStruct](ctx, cgfy.Bytes32{1})
	other := NewMapping[cgfy.Address, *testStruct](ctx, cgfy.Bytes32{2})

	key := cgfy.Address{0xaa}

	v, err := m.Get(key)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Nil(t, v.Amount)

	has, err := m.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	want := &testStruct{Amount: big.NewInt(100), Addr: cgfy.Address{2}, Count: 3}
	require.NoError(t, m.Set(key, want))

	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, v)

	has, err = m.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	// distinct base positions do not collide
	v, err = other.Get(key)
	require.NoError(t, err)
	assert.Nil(t, v.Amount)
}

func TestValue(t *testing.T) {
	ctx := newTestContext(t)
	val := NewValue[testStruct](ctx, cgfy.BytesToBytes32([]byte("pool")))

	set, err := val.IsSet()
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, val.Set(testStruct{Amount: big.NewInt(5), Count: 1}))
	got, err := val.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5), got.Amount)
	assert.Equal(t, uint64(1), got.Count)

	set, err = val.IsSet()
	require.NoError(t, err)
	assert.True(t, set)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, cgfy.Bytes32{9})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	require.NoError(t, u.Add(big.NewInt(10)))
	require.NoError(t, u.Sub(big.NewInt(4)))
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(6), v)

	assert.ErrorIs(t, u.Sub(big.NewInt(7)), ErrOverflow)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, u.Set(max))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), ErrOverflow)

	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, max, v)
}

func TestAddress(t *testing.T) {
	ctx := newTestContext(t)
	a := NewAddress(ctx, cgfy.Bytes32{3})

	got, err := a.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	addr := cgfy.MustParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	a.Set(addr)
	got, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}
