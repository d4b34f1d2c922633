// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>
package events

import (
	"math/big"

	"github.com/vechain/stakeshare/cgfy"
)

// Kind names an event type.
type Kind string

const (
	Staked           Kind = "Staked"
	Withdrawn        Kind = "Withdrawn"
	RewardPaid       Kind = "RewardPaid"
	RevSharePaid     Kind = "RevSharePaid"
	RevShareNotified Kind = "RevShareNotified"
	Rescued          Kind = "Rescued"
	ModelUploaded    Kind = "ModelUploaded"
	ModelPurchased   Kind = "ModelPurchased"
)

// Kinds lists all known kinds.
var Kinds = []Kind{
	Staked, Withdrawn, RewardPaid, RevSharePaid, RevShareNotified, Rescued, ModelUploaded, ModelPurchased,
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Event is emitted by a builtin contract when an operation succeeds.
type Event struct {
	Contract    cgfy.Address // emitting contract
	Kind        Kind
	Participant cgfy.Address
	Amount      *big.Int
	ModelID     uint64 // market events only

	// assigned by the node once the operation is committed
	Period   uint64
	Sequence uint64
}

// Recorder collects events emitted during one operation.
type Recorder struct {
	events []*Event
}

// Emit appends an event.
func (r *Recorder) Emit(ev *Event) {
	if r == nil {
		return
	}
	r.events = append(r.events, ev)
}

// Len returns count of recorded events.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	return len(r.events)
}

// Truncate drops events recorded after the first n.
func (r *Recorder) Truncate(n int) {
	if r == nil || n >= len(r.events) {
		return
	}
	r.events = r.events[:n]
}

// Take returns the recorded events and clears the recorder.
func (r *Recorder) Take() []*Event {
	if r == nil {
		return nil
	}
	evs := r.events
	r.events = nil
	return evs
}
