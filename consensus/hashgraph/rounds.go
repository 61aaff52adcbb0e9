package hashgraph

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/core/types"
)

// determineRound computes the round of an already stored event. A genesis
// is round 0. A regular event starts from the maximum of its parents'
// rounds r and is promoted to r+1 when it strongly sees round-r witnesses
// of more than 2n/3 distinct authors.
func (g *Graph) determineRound(hash common.Hash) uint64 {
	w := g.events[hash]
	if w.IsGenesis() {
		return 0
	}
	if r, ok := g.roundOf[hash]; ok {
		return r
	}
	parents := w.Parents()
	r := g.determineRound(parents.SelfParent)
	if other := g.determineRound(parents.OtherParent); other > r {
		r = other
	}

	authors := mapset.NewThreadUnsafeSet()
	if r < uint64(len(g.rounds)) {
		g.rounds[r].Each(func(v interface{}) bool {
			wh := v.(common.Hash)
			if wh == hash {
				return false
			}
			if _, isWitness := g.witnesses[wh]; !isWitness {
				return false
			}
			if g.stronglySee(hash, wh) {
				authors.Add(g.events[wh].Author())
			}
			return false
		})
	}
	if g.isSupermajority(authors.Cardinality()) {
		return r + 1
	}
	return r
}

// isWitness reports whether the stored event at round r is a witness: a
// genesis, or the first event on its lane to advance past its self parent's
// round.
func (g *Graph) isWitness(w *types.EventWrapper, r uint64) bool {
	if w.IsGenesis() {
		return true
	}
	return r > g.roundOf[w.Parents().SelfParent]
}

// RoundOf returns the round the event was assigned at insertion.
func (g *Graph) RoundOf(hash common.Hash) (uint64, error) {
	r, ok := g.roundOf[hash]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrEventNotFound, hash.TerminalString())
	}
	return r, nil
}

// LastRound returns the highest round number assigned so far.
func (g *Graph) LastRound() uint64 {
	if len(g.rounds) == 0 {
		return 0
	}
	return uint64(len(g.rounds)) - 1
}

// RoundEvents returns the hashes assigned to round r.
func (g *Graph) RoundEvents(r uint64) []common.Hash {
	if r >= uint64(len(g.rounds)) {
		return nil
	}
	out := make([]common.Hash, 0, g.rounds[r].Cardinality())
	g.rounds[r].Each(func(v interface{}) bool {
		out = append(out, v.(common.Hash))
		return false
	})
	return out
}

// roundWitnesses returns the hashes of round-r events present in the
// witness registry.
func (g *Graph) roundWitnesses(r uint64) []common.Hash {
	var out []common.Hash
	for _, hash := range g.RoundEvents(r) {
		if _, ok := g.witnesses[hash]; ok {
			out = append(out, hash)
		}
	}
	return out
}

// DetermineWitness reports whether the event is a witness.
func (g *Graph) DetermineWitness(hash common.Hash) (bool, error) {
	if _, ok := g.events[hash]; !ok {
		return false, fmt.Errorf("%w: %s", ErrEventNotFound, hash.TerminalString())
	}
	_, ok := g.witnesses[hash]
	return ok, nil
}

// Witnesses returns the hashes of all witnesses detected so far.
func (g *Graph) Witnesses() []common.Hash {
	out := make([]common.Hash, 0, len(g.witnesses))
	for hash := range g.witnesses {
		out = append(out, hash)
	}
	return out
}
