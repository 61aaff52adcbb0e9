// Package hashgraph implements the core of a hashgraph consensus engine: a
// content-addressed store of signed gossip events with per-peer lanes, round
// assignment, witness detection, and fame election by virtual voting.
//
// A Graph instance has a single logical owner. Ingestion (CreateEvent,
// CreateGenesis, InsertEvent) must be serialized by the host; read-only
// queries may run concurrently with each other but not with ingestion.
package hashgraph

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/core/types"
	"github.com/bragov4ik/go-hashgraph/crypto"
)

var log = logrus.WithField("prefix", "hashgraph")

const (
	// inmemorySeen is the size of the see-relation verdict cache.
	inmemorySeen = 16384
	// inmemoryStrongSeen is the size of the strongly-see verdict cache.
	inmemoryStrongSeen = 4096
)

// relationKey identifies a directed (observer, target) relation query.
type relationKey struct {
	observer common.Hash
	target   common.Hash
}

// Fame is the witness election state kept in the witness registry.
type Fame int

const (
	// FameUndecided means the election has not produced a decision yet.
	FameUndecided Fame = iota
	// FameFamous means the witness was decided famous.
	FameFamous
	// FameNotFamous means the witness was decided not famous.
	FameNotFamous
)

func (f Fame) String() string {
	switch f {
	case FameFamous:
		return "famous"
	case FameNotFamous:
		return "not famous"
	default:
		return "undecided"
	}
}

// Graph owns the event store, the peer index, the round index and the
// witness registry. Events are immutable once admitted; only their child
// pointers and the cached consensus state mutate.
type Graph struct {
	events    map[common.Hash]*types.EventWrapper
	peers     map[common.PeerID]*peerIndexEntry
	rounds    []mapset.Set           // round number → set of common.Hash
	witnesses map[common.Hash]Fame   // entries exist for witnesses only
	roundOf   map[common.Hash]uint64 // memoized at insertion, never recomputed

	sees       *lru.ARCCache // relationKey → bool
	strongSees *lru.ARCCache // relationKey → bool

	selfID        common.PeerID
	coinFrequency uint64
	signer        crypto.SignerFn
	verify        crypto.VerifyFn
	clock         uint64 // source of locally authored timestamps
}

// New creates a graph seeded with the local peer's genesis event.
// coinFrequency controls how often fame elections fall back to the coin
// round; a frequency of 1 makes every round a coin round, which starves the
// deciding branch, so callers should pass at least 2.
func New(selfID common.PeerID, genesisPayload []byte, coinFrequency uint64,
	signer crypto.SignerFn, verify crypto.VerifyFn) (*Graph, error) {

	if coinFrequency == 0 {
		return nil, errors.New("hashgraph: coin frequency must be positive")
	}
	if coinFrequency == 1 {
		log.Warn("Coin frequency 1 makes every election round a coin round; fame never decides")
	}
	if signer == nil || verify == nil {
		return nil, errors.New("hashgraph: signer and verifier are required")
	}
	sees, _ := lru.NewARC(inmemorySeen)
	strongSees, _ := lru.NewARC(inmemoryStrongSeen)
	g := &Graph{
		events:        make(map[common.Hash]*types.EventWrapper),
		peers:         make(map[common.PeerID]*peerIndexEntry),
		witnesses:     make(map[common.Hash]Fame),
		roundOf:       make(map[common.Hash]uint64),
		sees:          sees,
		strongSees:    strongSees,
		selfID:        selfID,
		coinFrequency: coinFrequency,
		signer:        signer,
		verify:        verify,
	}
	if _, err := g.CreateGenesis(genesisPayload, selfID); err != nil {
		return nil, err
	}
	return g, nil
}

// SelfID returns the local peer identifier.
func (g *Graph) SelfID() common.PeerID { return g.selfID }

// CreateGenesis authors and admits a genesis event for the given peer.
func (g *Graph) CreateGenesis(payload []byte, author common.PeerID) (common.Hash, error) {
	ev, err := types.NewSigned(types.EventFields{
		Payload:   payload,
		Author:    author,
		Timestamp: g.nextTimestamp(),
	}, g.signer)
	if err != nil {
		return common.Hash{}, err
	}
	return g.insert(ev, true)
}

// CreateEvent authors and admits a regular event at the end of author's
// lane: the self parent is the author's current tip, the other parent is
// the event whose arrival is being recorded.
func (g *Graph) CreateEvent(payload []byte, otherParent common.Hash, author common.PeerID) (common.Hash, error) {
	entry, ok := g.peers[author]
	if !ok {
		return common.Hash{}, fmt.Errorf("%w: peer %d", ErrPeerNotFound, author)
	}
	ev, err := types.NewSigned(types.EventFields{
		Payload: payload,
		Parents: &types.Parents{
			SelfParent:  entry.Latest,
			OtherParent: otherParent,
		},
		Author:    author,
		Timestamp: g.nextTimestamp(),
	}, g.signer)
	if err != nil {
		return common.Hash{}, err
	}
	return g.insert(ev, true)
}

// InsertEvent admits an event received from another peer, typically as a
// sync job. The signature is verified against the claimed author before any
// validation. Unlike local creation, a remote event may name a self parent
// that already has a self child: the event is still admitted and the author
// is marked as forking — dishonesty is recorded, not censored.
func (g *Graph) InsertEvent(ev *types.SignedEvent) (common.Hash, error) {
	if !g.verify(ev.Hash(), ev.Signature(), ev.Author()) {
		return common.Hash{}, types.ErrInvalidSignature
	}
	return g.insert(ev, false)
}

// insert validates the event against the store and, if all checks pass,
// commits it atomically: wrapper insertion, child-pointer updates, peer tip
// advance, round computation and witness registration. No state is touched
// until every check has passed.
func (g *Graph) insert(ev *types.SignedEvent, local bool) (common.Hash, error) {
	hash := ev.Hash()
	if _, ok := g.events[hash]; ok {
		return common.Hash{}, fmt.Errorf("%w: %s", ErrNodeAlreadyExists, hash.TerminalString())
	}

	var (
		selfParent  *types.EventWrapper
		otherParent *types.EventWrapper
		entry       *peerIndexEntry
	)
	if ev.IsGenesis() {
		if _, ok := g.peers[ev.Author()]; ok {
			return common.Hash{}, fmt.Errorf("%w: peer %d", ErrGenesisAlreadyExists, ev.Author())
		}
	} else {
		parents := ev.Parents()
		var ok bool
		if selfParent, ok = g.events[parents.SelfParent]; !ok {
			return common.Hash{}, fmt.Errorf("%w: %s", ErrNoParent, parents.SelfParent.TerminalString())
		}
		if otherParent, ok = g.events[parents.OtherParent]; !ok {
			return common.Hash{}, fmt.Errorf("%w: %s", ErrNoParent, parents.OtherParent.TerminalString())
		}
		if selfParent.Author() != ev.Author() {
			return common.Hash{}, fmt.Errorf("%w: have %d, self parent by %d",
				ErrIncorrectAuthor, ev.Author(), selfParent.Author())
		}
		if entry, ok = g.peers[ev.Author()]; !ok {
			return common.Hash{}, fmt.Errorf("%w: peer %d", ErrPeerNotFound, ev.Author())
		}
		if local && !selfParent.Children.Self.Empty() {
			// Local creation always chains off the tip; an occupied self
			// child here is an internal inconsistency, not a fork.
			return common.Hash{}, fmt.Errorf("%w: %s", ErrSelfChildAlreadyExists,
				selfParent.Hash().TerminalString())
		}
	}

	// All checks passed; commit.
	w := types.NewWrapper(ev)
	g.events[hash] = w
	if ev.IsGenesis() {
		g.peers[ev.Author()] = newPeerIndexEntry(hash)
	} else {
		if forking := selfParent.Children.Self.Add(hash); forking {
			entry.Forking = true
			log.WithFields(logrus.Fields{
				"author": ev.Author(),
				"parent": selfParent.Hash().TerminalString(),
			}).Warn("Fork detected, author flagged")
		}
		otherParent.Children.Other = append(otherParent.Children.Other, hash)
		if parents := ev.Parents(); parents.SelfParent == entry.Latest {
			entry.Latest = hash
		}
	}

	r := g.determineRound(hash)
	g.roundOf[hash] = r
	for uint64(len(g.rounds)) <= r {
		g.rounds = append(g.rounds, mapset.NewThreadUnsafeSet())
	}
	g.rounds[r].Add(hash)

	if g.isWitness(w, r) {
		g.witnesses[hash] = FameUndecided
	}
	return hash, nil
}

// Has reports whether the event is in the store.
func (g *Graph) Has(hash common.Hash) bool {
	_, ok := g.events[hash]
	return ok
}

// Event returns the payload of the event, if present.
func (g *Graph) Event(hash common.Hash) ([]byte, bool) {
	w, ok := g.events[hash]
	if !ok {
		return nil, false
	}
	return w.Event().Payload(), true
}

// SignedEvent returns the immutable signed event, if present.
func (g *Graph) SignedEvent(hash common.Hash) (*types.SignedEvent, bool) {
	w, ok := g.events[hash]
	if !ok {
		return nil, false
	}
	return w.Event(), true
}

// InNeighbors returns the parents of the event: the edges pointing into it
// when the graph is read parent → child. Empty for a genesis.
func (g *Graph) InNeighbors(hash common.Hash) ([]common.Hash, bool) {
	w, ok := g.events[hash]
	if !ok {
		return nil, false
	}
	p := w.Parents()
	if p == nil {
		return nil, true
	}
	return []common.Hash{p.SelfParent, p.OtherParent}, true
}

// OutNeighbors returns the children of the event recorded so far.
func (g *Graph) OutNeighbors(hash common.Hash) ([]common.Hash, bool) {
	w, ok := g.events[hash]
	if !ok {
		return nil, false
	}
	return w.Children.All(), true
}

// Tips returns the hashes of events that have no children yet.
func (g *Graph) Tips() []common.Hash {
	var out []common.Hash
	for hash, w := range g.events {
		if w.Children.Self.Empty() && len(w.Children.Other) == 0 {
			out = append(out, hash)
		}
	}
	return out
}

// isSupermajority reports whether count clears the strict >2n/3 threshold
// over the current membership, with integer division.
func (g *Graph) isSupermajority(count int) bool {
	return count > 2*len(g.peers)/3
}

func (g *Graph) nextTimestamp() common.Timestamp {
	g.clock++
	return common.TimestampFromUint64(g.clock)
}
