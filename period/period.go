// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
// Package period provides the reward period clocks.
// A period is an unsigned index that only moves forward.
package period

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Clock reports the current period.
type Clock interface {
	Now() uint64
}

// Manual is a clock moved explicitly, like a dev chain mining on demand.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

// NewManual creates a manual clock at start.
func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock n periods forward and returns the new period.
func (m *Manual) Advance(n uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += n
	return m.now
}

// Wall derives periods from elapsed wall time since genesis.
type Wall struct {
	clock    clockwork.Clock
	genesis  time.Time
	interval time.Duration
}

// NewWall creates a wall clock. A nil clock uses the real time.
func NewWall(clock clockwork.Clock, genesis time.Time, interval time.Duration) *Wall {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Wall{clock: clock, genesis: genesis, interval: interval}
}

// Now returns count of whole intervals elapsed since genesis, 0 before genesis.
func (w *Wall) Now() uint64 {
	elapsed := w.clock.Since(w.genesis)
	if elapsed < 0 {
		return 0
	}
	return uint64(elapsed / w.interval)
}

// Start returns the time period p begins.
func (w *Wall) Start(p uint64) time.Time {
	return w.genesis.Add(time.Duration(p) * w.interval)
}

// Run calls onPeriod with each new period until ctx is done.
func (w *Wall) Run(ctx context.Context, onPeriod func(uint64)) {
	for {
		next := w.Now() + 1
		select {
		case <-ctx.Done():
			return
		case <-w.clock.After(w.clock.Until(w.Start(next))):
			onPeriod(w.Now())
		}
	}
}
