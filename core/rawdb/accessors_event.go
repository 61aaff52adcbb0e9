package rawdb

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/core/types"
	"github.com/bragov4ik/go-hashgraph/hashdb"
)

var log = logrus.WithField("prefix", "rawdb")

// ReadEvent retrieves the event stored under the given hash, or nil when it
// is absent or fails to decode. A decode failure is logged: content
// addressing makes it corruption by definition.
func ReadEvent(db hashdb.KeyValueReader, hash common.Hash) *types.SignedEvent {
	data, _ := db.Get(eventKey(hash))
	if len(data) == 0 {
		return nil
	}
	ev, err := types.DecodeEvent(data)
	if err != nil {
		log.WithError(err).WithField("event", hash.TerminalString()).
			Error("Invalid event in database")
		return nil
	}
	if ev.Hash() != hash {
		log.WithFields(logrus.Fields{
			"stored": hash.TerminalString(),
			"actual": ev.Hash().TerminalString(),
		}).Error("Event stored under a foreign hash")
		return nil
	}
	return ev
}

// HasEvent checks if an event corresponding to the hash is present in db.
func HasEvent(db hashdb.KeyValueReader, hash common.Hash) bool {
	ok, _ := db.Has(eventKey(hash))
	return ok
}

// WriteEvent stores an event under its canonical hash.
func WriteEvent(db hashdb.KeyValueWriter, ev *types.SignedEvent) error {
	if err := db.Put(eventKey(ev.Hash()), ev.Encode()); err != nil {
		return errors.Wrap(err, "rawdb: storing event")
	}
	return nil
}

// DeleteEvent removes the event stored under the given hash.
func DeleteEvent(db hashdb.KeyValueWriter, hash common.Hash) error {
	return errors.Wrap(db.Delete(eventKey(hash)), "rawdb: deleting event")
}

// ReadPeerTip retrieves the persisted tip of a peer's lane.
func ReadPeerTip(db hashdb.KeyValueReader, peer common.PeerID) (common.Hash, bool) {
	data, _ := db.Get(peerTipKey(peer))
	if len(data) != common.HashLength {
		return common.Hash{}, false
	}
	return common.BytesToHash(data), true
}

// WritePeerTip stores the tip of a peer's lane.
func WritePeerTip(db hashdb.KeyValueWriter, peer common.PeerID, hash common.Hash) error {
	if err := db.Put(peerTipKey(peer), hash.Bytes()); err != nil {
		return errors.Wrap(err, "rawdb: storing peer tip")
	}
	return nil
}
