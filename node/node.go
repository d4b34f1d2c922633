// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package node

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakeshare/builtin"
	"github.com/vechain/stakeshare/builtin/solidity"
	"github.com/vechain/stakeshare/builtin/staker/reverts"
	"github.com/vechain/stakeshare/cgfy"
	"github.com/vechain/stakeshare/co"
	"github.com/vechain/stakeshare/eventdb"
	"github.com/vechain/stakeshare/events"
	"github.com/vechain/stakeshare/genesis"
	"github.com/vechain/stakeshare/kv"
	"github.com/vechain/stakeshare/log"
	"github.com/vechain/stakeshare/period"
	"github.com/vechain/stakeshare/state"
)

var (
	logger = log.WithContext("pkg", "node")

	ErrUnknownToken   = reverts.New("unknown token")
	ErrFaucetDisabled = reverts.New("faucet disabled")

	ErrGenesisMismatch = errors.New("stored genesis does not match")
	ErrNotManualClock  = errors.New("clock can not be advanced manually")
	ErrNoEventDB       = errors.New("event db not enabled")

	metaAddress  = cgfy.BytesToAddress([]byte("node"))
	slotGenesis  = cgfy.BytesToBytes32([]byte("genesis"))
	slotSequence = cgfy.BytesToBytes32([]byte("sequence"))
	slotPeriod   = cgfy.BytesToBytes32([]byte("period"))
)

const feedDepth = 1024

// Options for Node.
type Options struct {
	// Automine advances a manual clock by one period before every write,
	// so each operation lands in its own period.
	Automine bool
	// Faucet enables minting through the node.
	Faucet bool
}

// Receipt describes a committed write.
type Receipt struct {
	Period uint64
	Events []*events.Event
}

// Node hosts the builtin contracts. Writes are serialized into a total order; each
// write is committed to the store before its events are indexed and published.
type Node struct {
	mu sync.RWMutex

	state     *state.State
	recorder  *events.Recorder
	contracts *builtin.Contracts
	clock     period.Clock
	manual    *period.Manual
	eventDB   *eventdb.EventDB
	feed      *co.Feed[*events.Event]
	opts      Options

	genesisID *solidity.Value[cgfy.Bytes32]
	sequence  *solidity.Value[uint64]
	period    *solidity.Value[uint64]
	lastSeq   uint64
	id        cgfy.Bytes32
}

// Info summarizes the running node.
type Info struct {
	GenesisID    cgfy.Bytes32
	Period       uint64
	LastSequence uint64
	Options      Options
}

// New opens the node over store. An empty store is initialized from gen, otherwise
// the stored genesis must match gen. eventDB may be nil.
func New(store kv.Store, gen *genesis.Genesis, clock period.Clock, eventDB *eventdb.EventDB, opts Options) (*Node, error) {
	manual, _ := clock.(*period.Manual)
	if opts.Automine && manual == nil {
		return nil, errors.WithMessage(ErrNotManualClock, "automine")
	}

	st := state.New(store)
	recorder := &events.Recorder{}
	sctx := solidity.NewContext(metaAddress, st)
	n := &Node{
		state:     st,
		recorder:  recorder,
		contracts: builtin.New(st, recorder),
		clock:     clock,
		manual:    manual,
		eventDB:   eventDB,
		feed:      co.NewFeed[*events.Event](feedDepth),
		opts:      opts,
		genesisID: solidity.NewValue[cgfy.Bytes32](sctx, slotGenesis),
		sequence:  solidity.NewValue[uint64](sctx, slotSequence),
		period:    solidity.NewValue[uint64](sctx, slotPeriod),
	}
	if err := n.init(gen); err != nil {
		return nil, err
	}
	return n, nil
}

func (n *Node) init(gen *genesis.Genesis) error {
	id, err := gen.ID()
	if err != nil {
		return err
	}
	n.id = id
	set, err := n.genesisID.IsSet()
	if err != nil {
		return err
	}
	if !set {
		if err := gen.Build(n.contracts); err != nil {
			return errors.WithMessage(err, "build genesis")
		}
		// genesis allocations are not published
		n.recorder.Take()
		if err := n.genesisID.Set(id); err != nil {
			return err
		}
		if err := n.state.Stage().Commit(); err != nil {
			return err
		}
		logger.Info("initialized genesis", "id", id)
		return nil
	}

	stored, err := n.genesisID.Get()
	if err != nil {
		return err
	}
	if stored != id {
		return errors.WithMessagef(ErrGenesisMismatch, "want %v, have %v", stored, id)
	}
	if n.lastSeq, err = n.sequence.Get(); err != nil {
		return err
	}
	last, err := n.period.Get()
	if err != nil {
		return err
	}
	// a manual clock resumes where the previous run stopped
	if n.manual != nil && n.manual.Now() < last {
		n.manual.Advance(last - n.manual.Now())
	}
	logger.Info("opened existing state", "genesis", id, "sequence", n.lastSeq, "period", last)
	return nil
}

// Info returns the genesis id, the current period and the last assigned sequence.
func (n *Node) Info() Info {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return Info{
		GenesisID:    n.id,
		Period:       n.clock.Now(),
		LastSequence: n.lastSeq,
		Options:      n.opts,
	}
}

// Contracts returns the builtin contracts. Callers must not write through them.
func (n *Node) Contracts() *builtin.Contracts {
	return n.contracts
}

// Now returns the current period.
func (n *Node) Now() uint64 {
	return n.clock.Now()
}

// Mine advances a manual clock by count periods and returns the new period.
func (n *Node) Mine(count uint64) (uint64, error) {
	if n.manual == nil {
		return 0, ErrNotManualClock
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.manual.Advance(count), nil
}

// Subscribe returns a cursor over events published from now on.
func (n *Node) Subscribe() *co.Cursor[*events.Event] {
	return n.feed.Subscribe()
}

// FilterEvents queries indexed events.
func (n *Node) FilterEvents(ctx context.Context, filter *eventdb.Filter) ([]*events.Event, error) {
	if n.eventDB == nil {
		return nil, ErrNoEventDB
	}
	return n.eventDB.Filter(ctx, filter)
}

// write runs fn as one atomic operation at the current period and commits it.
func (n *Node) write(ctx context.Context, op string, fn func(now uint64) error) (*Receipt, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.opts.Automine {
		n.manual.Advance(1)
	}
	now := n.clock.Now()

	n.recorder.Take()
	checkpoint := n.state.NewCheckpoint()
	if err := fn(now); err != nil {
		n.state.RevertTo(checkpoint)
		n.recorder.Take()
		metricWrites().AddWithLabel(1, map[string]string{"op": op, "result": result(err)})
		return nil, err
	}

	evs := n.recorder.Take()
	seq := n.lastSeq
	for _, ev := range evs {
		seq++
		ev.Period = now
		ev.Sequence = seq
	}
	if err := n.commit(now, seq); err != nil {
		n.state.RevertTo(checkpoint)
		metricWrites().AddWithLabel(1, map[string]string{"op": op, "result": "error"})
		return nil, err
	}
	n.lastSeq = seq
	metricWrites().AddWithLabel(1, map[string]string{"op": op, "result": "ok"})

	if n.eventDB != nil {
		// state is already durable; a lost index entry must not fail the write
		if err := n.eventDB.Insert(ctx, evs); err != nil {
			logger.Error("failed to index events", "op", op, "err", err)
		}
	}
	for _, ev := range evs {
		n.feed.Send(ev)
	}
	logger.Debug("committed", "op", op, "period", now, "events", len(evs))
	return &Receipt{Period: now, Events: evs}, nil
}

func (n *Node) commit(now, seq uint64) error {
	if err := n.sequence.Set(seq); err != nil {
		return err
	}
	if err := n.period.Set(now); err != nil {
		return err
	}
	return n.state.Stage().Commit()
}

func result(err error) string {
	if reverts.IsRevertErr(err) {
		return "reverted"
	}
	return "error"
}
