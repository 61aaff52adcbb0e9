package hashgraph

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/crypto"
)

// fixture is a graph built from a readable event table, with lanes and event
// names kept around so assertions can speak in terms of the diagrams.
type fixture struct {
	g       *Graph
	authors map[string]common.PeerID
	lanes   map[string][]common.Hash // author name → events, genesis first
	byName  map[string]common.Hash   // event name → hash
	names   map[common.Hash]string   // hash → event or author name
}

// buildFixture creates a graph owned by self and replays the event table.
// Each row is (event name, author name, other parent): the other parent is
// either the name of an earlier event or an author name for its genesis.
func buildFixture(t *testing.T, authors map[string]common.PeerID, self string,
	coinFrequency uint64, events [][3]string) *fixture {
	t.Helper()

	g, err := New(authors[self], []byte("genesis:"+self), coinFrequency,
		crypto.IdentitySigner, crypto.IdentityVerify)
	require.NoError(t, err)

	f := &fixture{
		g:       g,
		authors: authors,
		lanes:   make(map[string][]common.Hash),
		byName:  make(map[string]common.Hash),
		names:   make(map[common.Hash]string),
	}

	sorted := make([]string, 0, len(authors))
	for name := range authors {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	for _, name := range sorted {
		var hash common.Hash
		if name == self {
			var ok bool
			hash, ok = g.PeerGenesis(authors[name])
			require.True(t, ok, "own genesis missing")
		} else {
			hash, err = g.CreateGenesis([]byte("genesis:"+name), authors[name])
			require.NoError(t, err, "genesis for %s", name)
		}
		f.lanes[name] = []common.Hash{hash}
		f.names[hash] = name
	}

	for _, row := range events {
		name, author, otherRef := row[0], row[1], row[2]
		var other common.Hash
		if _, isAuthor := authors[otherRef]; isAuthor {
			other = f.lanes[otherRef][0]
		} else {
			var ok bool
			other, ok = f.byName[otherRef]
			require.True(t, ok, "unknown other parent %q for %s", otherRef, name)
		}
		hash, err := g.CreateEvent([]byte(name), other, authors[author])
		require.NoError(t, err, "event %s", name)
		f.lanes[author] = append(f.lanes[author], hash)
		f.byName[name] = hash
		f.names[hash] = name
	}
	return f
}

// ev returns the i-th event of the author's lane (0 = genesis).
func (f *fixture) ev(author string, i int) common.Hash { return f.lanes[author][i] }

// lane returns a sub-slice of the author's lane, [from, to).
func (f *fixture) lane(author string, from, to int) []common.Hash {
	return f.lanes[author][from:to]
}

func (f *fixture) name(h common.Hash) string {
	if n, ok := f.names[h]; ok {
		return n
	}
	return h.TerminalString()
}

/* chainFixture builds, for three members g1..g3:

   |  o__|  -- e7
   |__|__o  -- e6
   o__|  |  -- e5
   |  o__|  -- e4
   |  |__o  -- e3
   |__o  |  -- e2
   o__|  |  -- e1
   o  o  o  -- (g1,g2,g3)
*/
func chainFixture(t *testing.T, coinFrequency uint64) *fixture {
	authors := map[string]common.PeerID{"g1": 0, "g2": 1, "g3": 2}
	return buildFixture(t, authors, "g1", coinFrequency, [][3]string{
		{"e1", "g1", "g2"},
		{"e2", "g2", "e1"},
		{"e3", "g3", "e2"},
		{"e4", "g2", "e3"},
		{"e5", "g1", "e4"},
		{"e6", "g3", "e5"},
		{"e7", "g2", "e6"},
	})
}

// paperFixture builds the five-member example graph from the hashgraph
// paper.
func paperFixture(t *testing.T, coinFrequency uint64) *fixture {
	authors := map[string]common.PeerID{"a": 0, "b": 1, "c": 2, "d": 3, "e": 4}
	return buildFixture(t, authors, "a", coinFrequency, [][3]string{
		{"c2", "c", "d"},
		{"e2", "e", "b"},
		{"b2", "b", "c2"},
		{"c3", "c", "e2"},
		{"d2", "d", "c3"},
		{"a2", "a", "b2"},
		{"b3", "b", "c3"},
		{"c4", "c", "d2"},
		{"a3", "a", "b3"},
		{"c5", "c", "e2"},
		{"c6", "c", "a3"},
	})
}

// detailedFixture builds the four-member, thirty-event graph from the
// "Hashgraph consensus: detailed examples" technical report
// (SWIRLDS-TR-2016-02).
func detailedFixture(t *testing.T, coinFrequency uint64) *fixture {
	authors := map[string]common.PeerID{"a": 0, "b": 1, "c": 2, "d": 3}
	return buildFixture(t, authors, "a", coinFrequency, [][3]string{
		// round 1 of the report
		{"d1_1", "d", "b"},
		{"b1_1", "b", "d1_1"},
		{"d1_2", "d", "b1_1"},
		{"b1_2", "b", "c"},
		{"a1_1", "a", "b1_1"},
		{"d1_3", "d", "b1_2"},
		{"c1_1", "c", "b1_2"},
		{"b1_3", "b", "d1_3"},
		// round 2
		{"d2", "d", "a1_1"},
		{"a2", "a", "d2"},
		{"b2", "b", "d2"},
		{"a2_1", "a", "c1_1"},
		{"c2", "c", "a2_1"},
		{"d2_1", "d", "b2"},
		{"a2_2", "a", "b2"},
		{"d2_2", "d", "a2_2"},
		{"b2_1", "b", "a2_2"},
		// round 3
		{"b3", "b", "d2_2"},
		{"a3", "a", "b3"},
		{"d3", "d", "b3"},
		{"d3_1", "d", "c2"},
		{"c3", "c", "d3_1"},
		{"b3_1", "b", "a3"},
		{"b3_2", "b", "a3"},
		{"a3_1", "a", "b3_2"},
		{"b3_3", "b", "d3_1"},
		{"a3_2", "a", "b3_3"},
		{"b3_4", "b", "a3_2"},
		{"d3_2", "d", "b3_3"},
		// round 4
		{"d4", "d", "c3"},
		{"b4", "b", "d4"},
	})
}

func concat(slices ...[]common.Hash) []common.Hash {
	var out []common.Hash
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}
