package hashgraph

import (
	mapset "github.com/deckarep/golang-set"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/core/types"
)

// AncestorIter lazily walks the ancestor set of an event, the event itself
// included. Self-ancestors of the current frontier are visited before the
// walk reaches through other-parent links, and every ancestor is yielded at
// most once. The iterator holds references into the store; it must not
// outlive a mutation of the graph.
type AncestorIter struct {
	g       *Graph
	stack   []*types.EventWrapper
	visited mapset.Set
}

// Ancestors returns an iterator over the ancestors of start.
func (g *Graph) Ancestors(start common.Hash) (*AncestorIter, bool) {
	w, ok := g.events[start]
	if !ok {
		return nil, false
	}
	it := &AncestorIter{g: g, visited: mapset.NewThreadUnsafeSet()}
	it.pushSelfAncestors(w)
	return it, true
}

// pushSelfAncestors pushes w and its chain of self parents onto the stack,
// stopping at a genesis or at an already visited event.
func (it *AncestorIter) pushSelfAncestors(w *types.EventWrapper) {
	for {
		if it.visited.Contains(w.Hash()) {
			return
		}
		it.stack = append(it.stack, w)
		it.visited.Add(w.Hash())
		parents := w.Parents()
		if parents == nil {
			return
		}
		next, ok := it.g.events[parents.SelfParent]
		if !ok {
			// Store invariant: parents of admitted events exist.
			return
		}
		w = next
	}
}

// Next pops the next ancestor. When the popped event has an other parent,
// that parent's self-ancestor chain becomes part of the frontier.
func (it *AncestorIter) Next() (*types.EventWrapper, bool) {
	n := len(it.stack)
	if n == 0 {
		return nil, false
	}
	w := it.stack[n-1]
	it.stack = it.stack[:n-1]
	if parents := w.Parents(); parents != nil {
		if other, ok := it.g.events[parents.OtherParent]; ok {
			it.pushSelfAncestors(other)
		}
	}
	return w, true
}

// ancestor reports whether potentialAncestor is reachable from event
// through parent links. The relation is reflexive.
func (g *Graph) ancestor(event, potentialAncestor common.Hash) bool {
	it, ok := g.Ancestors(event)
	if !ok {
		return false
	}
	for w, more := it.Next(); more; w, more = it.Next() {
		if w.Hash() == potentialAncestor {
			return true
		}
	}
	return false
}

// see reports whether observer sees target: target is an ancestor of
// observer and no fork of target's author undermines the observation. When
// the author has produced forks, the author's events inside observer's
// ancestor cone must form a single self-ancestor chain; two conflicting
// events of one author cannot both be witnessed.
func (g *Graph) see(observer, target common.Hash) bool {
	key := relationKey{observer: observer, target: target}
	if v, ok := g.sees.Get(key); ok {
		return v.(bool)
	}
	res := g.computeSee(observer, target)
	g.sees.Add(key, res)
	return res
}

func (g *Graph) computeSee(observer, target common.Hash) bool {
	tw, ok := g.events[target]
	if !ok {
		return false
	}
	if !g.ancestor(observer, target) {
		return false
	}
	entry, ok := g.peers[tw.Author()]
	if !ok || !entry.Forking {
		// Fast path: the author has never forked, so its events in any
		// cone form a single lane by construction.
		return true
	}
	var lane []*types.EventWrapper
	it, _ := g.Ancestors(observer)
	for w, more := it.Next(); more; w, more = it.Next() {
		if w.Author() == tw.Author() {
			lane = append(lane, w)
		}
	}
	return g.isSelfAncestorChain(lane)
}

// isSelfAncestorChain reports whether all events in lane lie on one
// self-parent chain, i.e. some element's self-ancestry covers the whole set.
func (g *Graph) isSelfAncestorChain(lane []*types.EventWrapper) bool {
	if len(lane) <= 1 {
		return true
	}
	members := make(map[common.Hash]struct{}, len(lane))
	for _, w := range lane {
		members[w.Hash()] = struct{}{}
	}
	for _, w := range lane {
		count := 0
		for cur := w; ; {
			if _, ok := members[cur.Hash()]; ok {
				count++
			}
			parents := cur.Parents()
			if parents == nil {
				break
			}
			next, ok := g.events[parents.SelfParent]
			if !ok {
				break
			}
			cur = next
		}
		if count == len(lane) {
			return true
		}
	}
	return false
}

// stronglySee reports whether observer strongly sees target: the authors of
// observer's ancestors that see target cover more than 2n/3 of the members.
func (g *Graph) stronglySee(observer, target common.Hash) bool {
	key := relationKey{observer: observer, target: target}
	if v, ok := g.strongSees.Get(key); ok {
		return v.(bool)
	}
	authors := mapset.NewThreadUnsafeSet()
	it, ok := g.Ancestors(observer)
	if !ok {
		return false
	}
	for w, more := it.Next(); more; w, more = it.Next() {
		if g.see(w.Hash(), target) {
			authors.Add(w.Author())
		}
	}
	res := g.isSupermajority(authors.Cardinality())
	g.strongSees.Add(key, res)
	return res
}
