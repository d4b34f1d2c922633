// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package state

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/kv"
	"github.com/vechain/stakeshare/stackedmap"
)

// StorageBucket is the kv bucket holding committed contract storage.
const StorageBucket = kv.Bucket("s")

const defaultCacheSize = 4096

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Cause returns the underlying failure.
func (e *Error) Cause() error {
	return e.cause
}

// Unwrap supports errors.Is/As.
func (e *Error) Unwrap() error {
	return e.cause
}

type storageKey struct {
	addr cgfy.Address
	key  cgfy.Bytes32
}

func (k storageKey) dbKey() []byte {
	return append(k.addr.Bytes(), k.key[:]...)
}

// State manages contract storage of all builtin contracts.
// Writes stay in a journal until Stage().Commit() flushes them to the store.
type State struct {
	store kv.Store
	cache *lru.Cache // committed values, keyed by storageKey
	sm    *stackedmap.StackedMap[storageKey, []byte]
}

// New create state object over the given store.
func New(store kv.Store) *State {
	cache, _ := lru.New(defaultCacheSize)
	s := &State{
		store: StorageBucket.NewStore(store),
		cache: cache,
	}
	s.reset()
	return s
}

func (s *State) reset() {
	s.sm = stackedmap.New(s.committed)
}

// committed implements stackedmap.MapGetter over the store.
func (s *State) committed(key storageKey) ([]byte, bool, error) {
	if v, ok := s.cache.Get(key); ok {
		metricStorageRead().AddWithLabel(1, map[string]string{"source": "cache"})
		return v.([]byte), true, nil
	}
	metricStorageRead().AddWithLabel(1, map[string]string{"source": "store"})

	val, err := s.store.Get(key.dbKey())
	if err != nil {
		if !s.store.IsNotFound(err) {
			return nil, false, err
		}
		val = nil
	}
	s.cache.Add(key, val)
	return val, true, nil
}

// GetRawStorage returns the raw storage value for given address and key.
// A missing slot reads as empty.
func (s *State) GetRawStorage(addr cgfy.Address, key cgfy.Bytes32) ([]byte, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set raw storage value. Empty value clears the slot.
func (s *State) SetRawStorage(addr cgfy.Address, key cgfy.Bytes32, raw []byte) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
func (s *State) EncodeStorage(addr cgfy.Address, key cgfy.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// dec is called with empty data for an unset slot.
func (s *State) DecodeStorage(addr cgfy.Address, key cgfy.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
	if s.sm.Depth() == 0 {
		s.sm.Push()
	}
}

// Stage collects the latest value of every key written since the last commit.
func (s *State) Stage() *Stage {
	changes := make(map[storageKey][]byte)
	var order []storageKey
	s.sm.Journal(func(k storageKey, v []byte) bool {
		if _, ok := changes[k]; !ok {
			order = append(order, k)
		}
		changes[k] = v
		return true
	})
	return &Stage{state: s, order: order, changes: changes}
}

// Stage abstracts the pending changes of a state.
type Stage struct {
	state   *State
	order   []storageKey
	changes map[storageKey][]byte
}

// Len returns count of changed slots.
func (st *Stage) Len() int {
	return len(st.order)
}

// Hash computes digest of the changes, which identifies the staged write set.
func (st *Stage) Hash() cgfy.Bytes32 {
	data := make([][]byte, 0, len(st.order)*2)
	for _, k := range st.order {
		data = append(data, k.dbKey(), st.changes[k])
	}
	return cgfy.Blake2b(data...)
}

// Commit writes all changes into the store atomically and resets the journal.
func (st *Stage) Commit() error {
	s := st.state
	bulk := s.store.Bulk()
	for _, k := range st.order {
		v := st.changes[k]
		var err error
		if len(v) == 0 {
			err = bulk.Delete(k.dbKey())
		} else {
			err = bulk.Put(k.dbKey(), v)
		}
		if err != nil {
			return &Error{errors.Wrap(err, "stage")}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{errors.Wrap(err, "commit")}
	}
	for _, k := range st.order {
		s.cache.Add(k, st.changes[k])
	}
	s.reset()
	metricCommitSize().Observe(int64(len(st.order)))
	return nil
}
