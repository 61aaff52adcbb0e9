// Package sync computes the jobs needed to bring a peer up to date: the
// minimal, topologically ordered list of events reachable from the local
// tips that the peer does not already know.
package sync

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	"github.com/sirupsen/logrus"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/core/types"
)

var log = logrus.WithField("prefix", "hashgraph/sync")

var (
	// ErrIncorrectTip is returned when a provided tip is unknown to the
	// local state.
	ErrIncorrectTip = errors.New("sync: tip unknown in this state")
	// ErrUnknownEvent is returned when a hash selected for a job cannot be
	// resolved to an event.
	ErrUnknownEvent = errors.New("sync: unknown event")
)

// Directed is the capability the generator needs from the local graph:
// neighbor access in both edge directions, with edges read parent → child.
// The generator takes no ownership of the state.
type Directed interface {
	// InNeighbors returns the edges pointing into the node (its parents).
	// ok is false when the node is not part of the state.
	InNeighbors(h common.Hash) ([]common.Hash, bool)
	// OutNeighbors returns the edges leaving the node (its children).
	OutNeighbors(h common.Hash) ([]common.Hash, bool)
}

// reversed is a view of a Directed state with every edge flipped.
type reversed struct {
	inner Directed
}

func (r reversed) InNeighbors(h common.Hash) ([]common.Hash, bool)  { return r.inner.OutNeighbors(h) }
func (r reversed) OutNeighbors(h common.Hash) ([]common.Hash, bool) { return r.inner.InNeighbors(h) }

// Reversed returns a view of state with the direction of every edge
// flipped. Tips of the original graph are sources of the reversed one.
func Reversed(state Directed) Directed { return reversed{inner: state} }

// Jobs is a topologically ordered list of events: every parent precedes
// each of its children present in the list.
type Jobs struct {
	events []*types.SignedEvent
}

// Events returns the ordered events. The slice is owned by the Jobs value.
func (j *Jobs) Events() []*types.SignedEvent { return j.events }

// Len returns the number of events in the job list.
func (j *Jobs) Len() int { return len(j.events) }

// Generate computes the jobs a peer must apply to reach at least the local
// state. tips are the hashes of local events without children; peerKnows
// answers membership in the peer's known set; getEvent resolves hashes to
// events.
//
// The ordering is found as a reverse topological sort: with every edge
// flipped, tips become sources, a BFS from the unknown sources emits nodes
// once all of their reversed in-neighbors were emitted, and flipping the
// resulting order yields a forward topological sort of the unknown
// subgraph. Runs in O(V+E) of that subgraph; the state is assumed acyclic.
func Generate(state Directed, peerKnows func(common.Hash) bool,
	tips []common.Hash, getEvent func(common.Hash) (*types.SignedEvent, bool)) (*Jobs, error) {

	rev := Reversed(state)

	// Validate the tips and keep the true sources of the reversed graph.
	var sources []common.Hash
	for _, tip := range tips {
		in, ok := rev.InNeighbors(tip)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrIncorrectTip, tip.TerminalString())
		}
		if len(in) != 0 {
			continue // has children, not a true source
		}
		// A tip the peer knows implies it knows all of the tip's ancestors.
		if peerKnows(tip) {
			continue
		}
		sources = append(sources, tip)
	}
	log.WithField("sources", len(sources)).Trace("Starting reverse traversal")

	var (
		toVisit = append([]common.Hash(nil), sources...)
		queued  = mapset.NewThreadUnsafeSet()
		visited = mapset.NewThreadUnsafeSet()
		sorted  []common.Hash
	)
	for len(toVisit) > 0 {
		next := toVisit[0]
		toVisit = toVisit[1:]
		if visited.Contains(next) {
			continue
		}
		visited.Add(next)
		neighbors, ok := rev.OutNeighbors(next)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, next.TerminalString())
		}
		for _, neighbor := range neighbors {
			if queued.Contains(neighbor) || peerKnows(neighbor) {
				continue
			}
			in, ok := rev.InNeighbors(neighbor)
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, neighbor.TerminalString())
			}
			ready := true
			for _, dependency := range in {
				if !visited.Contains(dependency) {
					ready = false
					break
				}
			}
			if ready && !visited.Contains(neighbor) {
				queued.Add(neighbor)
				toVisit = append(toVisit, neighbor)
			}
		}
		sorted = append(sorted, next)
	}

	// Flip the reverse ordering into a forward topological sort.
	for i, j := 0, len(sorted)-1; i < j; i, j = i+1, j-1 {
		sorted[i], sorted[j] = sorted[j], sorted[i]
	}

	events := make([]*types.SignedEvent, len(sorted))
	for i, hash := range sorted {
		ev, ok := getEvent(hash)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, hash.TerminalString())
		}
		events[i] = ev
	}
	return &Jobs{events: events}, nil
}
