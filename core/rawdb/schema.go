// Package rawdb contains the low-level accessors that persist admitted
// events and per-peer tips into a hashdb backend.
package rawdb

import (
	"encoding/binary"

	"github.com/bragov4ik/go-hashgraph/common"
)

// Key prefixes of the persisted schema. Events are content addressed; the
// peer table maps a member to the hash of its latest known event.
var (
	eventPrefix   = []byte("hg-e-") // eventPrefix + hash → canonical event
	peerTipPrefix = []byte("hg-t-") // peerTipPrefix + peer id → hash
)

// eventKey = eventPrefix + hash.
func eventKey(hash common.Hash) []byte {
	return append(append([]byte(nil), eventPrefix...), hash.Bytes()...)
}

// peerTipKey = peerTipPrefix + big-endian peer id.
func peerTipKey(peer common.PeerID) []byte {
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], uint64(peer))
	return append(append([]byte(nil), peerTipPrefix...), id[:]...)
}
