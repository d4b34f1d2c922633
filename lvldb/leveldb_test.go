// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakeshare/kv"
)

func TestLevelDB(t *testing.T) {
	persistent, err := New(filepath.Join(t.TempDir(), "main.db"), Options{16, 16})
	require.NoError(t, err)
	defer persistent.Close()

	mem, err := NewMem()
	require.NoError(t, err)
	defer mem.Close()

	var (
		key        = []byte("123")
		value      = []byte("456")
		invalidKey = []byte("abc")
	)

	for _, db := range []*LevelDB{persistent, mem} {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		assert.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		assert.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(invalidKey)
		assert.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestBulkAndSnapshot(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("a"), []byte("1")))
	snap := db.Snapshot()
	defer snap.Release()

	bulk := db.Bulk()
	require.NoError(t, bulk.Put([]byte("a"), []byte("2")))
	require.NoError(t, bulk.Put([]byte("b"), []byte("3")))

	// nothing visible before Write
	has, err := db.Has([]byte("b"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, bulk.Write())

	got, err := db.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), got)

	// snapshot still sees the old value
	old, err := snap.Get([]byte("a"))
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), old)
	_, err = snap.Get([]byte("b"))
	assert.True(t, snap.IsNotFound(err))
}

func TestBucketIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	accounts := kv.Bucket("a").NewStore(db)
	meta := kv.Bucket("m").NewStore(db)

	require.NoError(t, accounts.Put([]byte("1"), []byte("x")))
	require.NoError(t, accounts.Put([]byte("2"), []byte("y")))
	require.NoError(t, meta.Put([]byte("1"), []byte("z")))

	iter := accounts.Iterate(kv.Range{})
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	require.NoError(t, iter.Error())
	assert.Equal(t, []string{"1", "2"}, keys)

	got, err := meta.Get([]byte("1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("z"), got)

	_, err = meta.Get([]byte("2"))
	assert.True(t, meta.IsNotFound(err))
}
