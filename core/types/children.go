package types

import "github.com/bragov4ik/go-hashgraph/common"

// SelfChild tracks the events of the same author that claim an event as
// their self-parent. One entry is the honest case; a second entry is the
// proof of a fork and the record degrades to forking permanently.
type SelfChild struct {
	hashes []common.Hash
}

// Add records a new self-child and reports whether the parent is now
// forking, i.e. has more than one self-child.
func (s *SelfChild) Add(h common.Hash) (forking bool) {
	s.hashes = append(s.hashes, h)
	return len(s.hashes) > 1
}

// Forking reports whether more than one self-child has been recorded.
func (s *SelfChild) Forking() bool { return len(s.hashes) > 1 }

// Empty reports whether no self-child has been recorded yet.
func (s *SelfChild) Empty() bool { return len(s.hashes) == 0 }

// Hashes returns the recorded self-children in insertion order. The slice
// is shared with the record and must not be mutated by callers.
func (s *SelfChild) Hashes() []common.Hash { return s.hashes }

// Children is the mutable navigation record the store keeps next to each
// immutable event.
type Children struct {
	// Self holds children by the same author.
	Self SelfChild
	// Other holds children created by different peers.
	Other []common.Hash
}

// All returns self and other children as one slice.
func (c *Children) All() []common.Hash {
	out := make([]common.Hash, 0, len(c.Self.hashes)+len(c.Other))
	out = append(out, c.Self.hashes...)
	out = append(out, c.Other...)
	return out
}

// EventWrapper pairs an immutable signed event with its navigation record.
// The graph store is the single owner of wrappers; events handed out to
// callers are read-only.
type EventWrapper struct {
	Children Children
	event    *SignedEvent
}

// NewWrapper wraps a signed event with empty child pointers.
func NewWrapper(ev *SignedEvent) *EventWrapper {
	return &EventWrapper{event: ev}
}

// Event returns the wrapped signed event.
func (w *EventWrapper) Event() *SignedEvent { return w.event }

// Hash returns the wrapped event's digest.
func (w *EventWrapper) Hash() common.Hash { return w.event.Hash() }

// Author returns the wrapped event's author.
func (w *EventWrapper) Author() common.PeerID { return w.event.Author() }

// Parents returns the wrapped event's parent references, nil for a genesis.
func (w *EventWrapper) Parents() *Parents { return w.event.Parents() }

// IsGenesis reports whether the wrapped event is a genesis.
func (w *EventWrapper) IsGenesis() bool { return w.event.IsGenesis() }
