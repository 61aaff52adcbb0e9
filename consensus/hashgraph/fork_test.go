package hashgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/core/types"
	"github.com/bragov4ik/go-hashgraph/crypto"
)

// forkedFixture builds a two-peer graph where peer a forks: a1 and a1' both
// claim a's genesis as their self parent. a1 arrives through the honest
// lane, a1' through remote ingestion.
//
//	b2  (b, other a1')
//	b1  (b, other a1)
//	a1  a1'           -- both self-children of aGen
//	aGen  bGen
func forkedFixture(t *testing.T) (g *Graph, aGen, a1, a1Fork, b1, b2 common.Hash) {
	t.Helper()
	const aID, bID = common.PeerID(0), common.PeerID(1)

	g, err := New(aID, []byte("genesis:a"), 15, crypto.IdentitySigner, crypto.IdentityVerify)
	require.NoError(t, err)
	bGen, err := g.CreateGenesis([]byte("genesis:b"), bID)
	require.NoError(t, err)
	aGen, _ = g.PeerGenesis(aID)

	a1, err = g.CreateEvent([]byte("a1"), bGen, aID)
	require.NoError(t, err)

	forkEvent, err := types.NewSigned(types.EventFields{
		Payload:   []byte("a1-fork"),
		Parents:   &types.Parents{SelfParent: aGen, OtherParent: bGen},
		Author:    aID,
		Timestamp: common.TimestampFromUint64(1 << 40),
	}, crypto.IdentitySigner)
	require.NoError(t, err)
	a1Fork, err = g.InsertEvent(forkEvent)
	require.NoError(t, err, "fork must be admitted, not censored")

	b1, err = g.CreateEvent([]byte("b1"), a1, bID)
	require.NoError(t, err)
	b2, err = g.CreateEvent([]byte("b2"), a1Fork, bID)
	require.NoError(t, err)
	return g, aGen, a1, a1Fork, b1, b2
}

func TestForkAdmittedAndFlagged(t *testing.T) {
	g, aGen, a1, a1Fork, _, _ := forkedFixture(t)

	if !g.PeerForking(0) {
		t.Error("author not flagged as forking")
	}
	if g.PeerForking(1) {
		t.Error("honest peer flagged as forking")
	}

	// The honest tip is kept: the fork does not advance the lane.
	latest, ok := g.PeerLatestEvent(0)
	require.True(t, ok)
	if latest != a1 {
		t.Errorf("latest of forking author: got %s want a1", latest.TerminalString())
	}

	// Both branches hang off the genesis.
	children, ok := g.OutNeighbors(aGen)
	require.True(t, ok)
	require.ElementsMatch(t, []common.Hash{a1, a1Fork}, children)
}

func TestForkLocalCreationGuard(t *testing.T) {
	// Local creation chains off the tip, so an occupied self child on the
	// tip can only mean internal inconsistency and is rejected; remote
	// ingestion does not apply this guard. Here we exercise the error path
	// directly.
	g, _, a1, _, _, _ := forkedFixture(t)

	// Manually force the inconsistency: wrapper of the tip gains a child,
	// then a local event is created on the same tip.
	w := g.events[a1]
	w.Children.Self.Add(crypto.Blake2b512([]byte("phantom")))
	_, err := g.CreateEvent([]byte("late"), g.peers[1].Latest, 0)
	require.ErrorIs(t, err, ErrSelfChildAlreadyExists)
}

func TestSeeRejectsForks(t *testing.T) {
	g, aGen, a1, a1Fork, b1, b2 := forkedFixture(t)

	// b1 has only the a1 branch in its past: the observation stands.
	if !g.see(b1, aGen) {
		t.Error("b1 should see a's genesis")
	}
	if !g.see(b1, a1) {
		t.Error("b1 should see a1")
	}

	// b2 has both branches in its past: no event of the forking author is
	// seen any more, even though ancestry still holds.
	if !g.ancestor(b2, aGen) {
		t.Error("ancestry must be unaffected by the fork")
	}
	if g.see(b2, aGen) {
		t.Error("b2 must not see a's genesis across a fork")
	}
	if g.see(b2, a1) {
		t.Error("b2 must not see a1 across a fork")
	}
	if g.see(b2, a1Fork) {
		t.Error("b2 must not see the fork branch either")
	}

	// Observations of the honest peer's events are unaffected.
	if !g.see(b2, g.peers[1].Genesis) {
		t.Error("b2 should still see b's genesis")
	}
}
