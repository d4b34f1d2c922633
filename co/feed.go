// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package co

import (
	"context"
	"errors"
	"sync"
)

// ErrLagged is returned by Cursor.Next when the cursor fell behind the
// feed's retained history. The cursor is moved to the oldest retained item.
var ErrLagged = errors.New("co: subscriber lagged behind feed")

// Feed is a broadcast channel with a bounded history. Senders never block;
// every subscriber reads each item at its own pace.
type Feed[T any] struct {
	mu    sync.Mutex
	ring  []T
	next  uint64        // position of the next item sent
	ch    chan struct{} // closed and replaced on every send
	depth int
}

// NewFeed creates a feed retaining up to depth items.
func NewFeed[T any](depth int) *Feed[T] {
	if depth < 1 {
		depth = 1
	}
	return &Feed[T]{
		ring:  make([]T, depth),
		ch:    make(chan struct{}),
		depth: depth,
	}
}

// Send publishes v to all subscribers.
func (f *Feed[T]) Send(v T) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ring[f.next%uint64(f.depth)] = v
	f.next++
	close(f.ch)
	f.ch = make(chan struct{})
}

// Head returns the position the next sent item will occupy.
func (f *Feed[T]) Head() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.next
}

// Subscribe returns a cursor that yields items sent from now on.
func (f *Feed[T]) Subscribe() *Cursor[T] {
	return &Cursor[T]{feed: f, pos: f.Head()}
}

func (f *Feed[T]) read(pos uint64) (v T, ok bool, lagged bool, newPos uint64, wait <-chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	oldest := uint64(0)
	if f.next > uint64(f.depth) {
		oldest = f.next - uint64(f.depth)
	}
	if pos < oldest {
		return v, false, true, oldest, nil
	}
	if pos < f.next {
		return f.ring[pos%uint64(f.depth)], true, false, pos + 1, nil
	}
	return v, false, false, pos, f.ch
}

// Cursor reads a feed sequentially. A cursor is not safe for concurrent use.
type Cursor[T any] struct {
	feed *Feed[T]
	pos  uint64
}

// Next blocks until an item is available or ctx is done.
func (c *Cursor[T]) Next(ctx context.Context) (T, error) {
	for {
		v, ok, lagged, pos, wait := c.feed.read(c.pos)
		c.pos = pos
		if lagged {
			var zero T
			return zero, ErrLagged
		}
		if ok {
			return v, nil
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-wait:
		}
	}
}
