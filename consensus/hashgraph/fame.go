package hashgraph

import (
	"fmt"

	"github.com/bragov4ik/go-hashgraph/common"
)

// IsFamousWitness runs the fame election for a witness. A decision already
// committed by DecideFame is final and returned as is; otherwise the
// election is evaluated against the rounds known so far. Calling it for a
// non-witness returns ErrNotWitness.
func (g *Graph) IsFamousWitness(hash common.Hash) (Fame, error) {
	fame, ok := g.witnesses[hash]
	if !ok {
		if _, exists := g.events[hash]; !exists {
			return FameUndecided, fmt.Errorf("%w: %s", ErrEventNotFound, hash.TerminalString())
		}
		return FameUndecided, fmt.Errorf("%w: %s", ErrNotWitness, hash.TerminalString())
	}
	if fame != FameUndecided {
		return fame, nil
	}
	return g.electFame(hash), nil
}

// DecideFame runs the election and commits the outcome into the witness
// registry. Once a witness is recorded Famous or NotFamous the decision is
// final; repeated calls return it unchanged.
func (g *Graph) DecideFame(hash common.Hash) (Fame, error) {
	fame, err := g.IsFamousWitness(hash)
	if err != nil {
		return FameUndecided, err
	}
	g.witnesses[hash] = fame
	return fame, nil
}

// electFame decides fame for witness x by virtual voting. Witnesses of
// round r+1 vote whether they see x. Each later round's witnesses tally the
// votes of the previous-round witnesses they strongly see; a supermajority
// in a normal round decides the election with the majority value. Coin
// rounds (every coinFrequency-th voting round) never decide: a
// supermajority there only casts a vote, and without one the voter falls
// back to the middle bit of x's hash as a deterministic tiebreak.
func (g *Graph) electFame(x common.Hash) Fame {
	r := g.roundOf[x]
	last := g.LastRound()
	if last < r+1 {
		return FameUndecided
	}

	prevVotes := make(map[common.Hash]bool)
	for _, y := range g.roundWitnesses(r + 1) {
		prevVotes[y] = g.see(y, x)
	}

	coin := middleBit(x)
	for d := uint64(2); r+d <= last; d++ {
		voterRound := r + d
		thisVotes := make(map[common.Hash]bool)
		for _, y := range g.roundWitnesses(voterRound) {
			yes, no := 0, 0
			for _, prev := range g.roundWitnesses(voterRound - 1) {
				if !g.stronglySee(y, prev) {
					continue
				}
				v, ok := prevVotes[prev]
				if !ok {
					// A strongly seen witness without a recorded vote means
					// the registry drifted; skip it rather than abort.
					log.WithField("witness", prev.TerminalString()).
						Warn("Previous-round witness missing a vote")
					continue
				}
				if v {
					yes++
				} else {
					no++
				}
			}
			v := yes >= no // ties favour yes
			t := yes
			if no > t {
				t = no
			}
			if d%g.coinFrequency != 0 {
				if g.isSupermajority(t) {
					if v {
						return FameFamous
					}
					return FameNotFamous
				}
				thisVotes[y] = v
			} else {
				if g.isSupermajority(t) {
					thisVotes[y] = v
				} else {
					thisVotes[y] = coin
				}
			}
		}
		prevVotes = thisVotes
	}
	return FameUndecided
}

// middleBit extracts the bit at half the hash's bit length: bit 256 of a
// 512-bit digest, i.e. the lowest bit of byte 32. It is the deterministic
// coin used when an election round fails to reach a supermajority.
func middleBit(h common.Hash) bool {
	idx := common.HashLength * 8 / 2
	return (h[idx/8]>>(idx%8))&1 != 0
}
