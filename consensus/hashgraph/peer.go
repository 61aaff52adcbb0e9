package hashgraph

import "github.com/bragov4ik/go-hashgraph/common"

// peerIndexEntry is the per-author metadata kept by the graph: the author's
// genesis, its current tip, and whether the author has ever produced two
// events sharing a self parent. Forking is monotone; it is never cleared.
type peerIndexEntry struct {
	Genesis common.Hash
	Latest  common.Hash
	Forking bool
}

func newPeerIndexEntry(genesis common.Hash) *peerIndexEntry {
	return &peerIndexEntry{Genesis: genesis, Latest: genesis}
}

// PeerGenesis returns the hash of the peer's genesis event.
func (g *Graph) PeerGenesis(peer common.PeerID) (common.Hash, bool) {
	entry, ok := g.peers[peer]
	if !ok {
		return common.Hash{}, false
	}
	return entry.Genesis, true
}

// PeerLatestEvent returns the hash of the peer's current tip: the newest
// event of that author the graph has admitted along its honest lane.
func (g *Graph) PeerLatestEvent(peer common.PeerID) (common.Hash, bool) {
	entry, ok := g.peers[peer]
	if !ok {
		return common.Hash{}, false
	}
	return entry.Latest, true
}

// PeerForking reports whether the peer has been caught forking.
func (g *Graph) PeerForking(peer common.PeerID) bool {
	entry, ok := g.peers[peer]
	return ok && entry.Forking
}

// MembersCount returns the number of peers with at least one event in the
// graph. The >2n/3 supermajority thresholds use this count.
func (g *Graph) MembersCount() int { return len(g.peers) }

// Peers returns the known peer identifiers in unspecified order.
func (g *Graph) Peers() []common.PeerID {
	out := make([]common.PeerID, 0, len(g.peers))
	for id := range g.peers {
		out = append(out, id)
	}
	return out
}
