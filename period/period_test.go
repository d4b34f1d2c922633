// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package period

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual(t *testing.T) {
	m := NewManual(5)
	assert.Equal(t, uint64(5), m.Now())
	assert.Equal(t, uint64(8), m.Advance(3))
	assert.Equal(t, uint64(8), m.Advance(0))
	assert.Equal(t, uint64(8), m.Now())
}

func TestWallNow(t *testing.T) {
	genesis := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := clockwork.NewFakeClockAt(genesis.Add(-time.Minute))
	w := NewWall(fake, genesis, 12*time.Second)

	assert.Equal(t, uint64(0), w.Now())

	fake.Advance(time.Minute)
	assert.Equal(t, uint64(0), w.Now())

	fake.Advance(11 * time.Second)
	assert.Equal(t, uint64(0), w.Now())

	fake.Advance(time.Second)
	assert.Equal(t, uint64(1), w.Now())

	fake.Advance(time.Hour)
	assert.Equal(t, uint64(301), w.Now())
	assert.Equal(t, genesis.Add(time.Minute), w.Start(5))
}

func TestWallRun(t *testing.T) {
	genesis := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fake := clockwork.NewFakeClockAt(genesis)
	w := NewWall(fake, genesis, 12*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seen := make(chan uint64, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx, func(p uint64) { seen <- p })
	}()

	for want := uint64(1); want <= 3; want++ {
		require.NoError(t, fake.BlockUntilContext(ctx, 1))
		fake.Advance(12 * time.Second)
		assert.Equal(t, want, <-seen)
	}
	cancel()
	<-done
}
