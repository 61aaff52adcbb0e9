// Package types contains the event model of the hashgraph: the immutable
// signed event, its canonical encoding, and the mutable navigation records
// (child pointers) the graph store keeps alongside each event.
package types

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bragov4ik/go-hashgraph/common"
	"github.com/bragov4ik/go-hashgraph/crypto"
)

var (
	// ErrInvalidSignature is returned when a provided signature does not
	// match the event contents and author.
	ErrInvalidSignature = errors.New("types: signature does not match event contents and author")
	// ErrCorruptEncoding is returned when a decoded event's stored digest
	// does not match the digest recomputed from its fields.
	ErrCorruptEncoding = errors.New("types: stored digest does not match event fields")
)

// Canonical encoding variant tags for the event kind.
const (
	kindTagGenesis uint32 = 0
	kindTagRegular uint32 = 1
)

// Parents are the two back references of a regular event. SelfParent is the
// author's previous event; OtherParent is the event learned from another
// peer that triggered this one.
type Parents struct {
	SelfParent  common.Hash
	OtherParent common.Hash
}

// EventFields is the signed portion of an event. Parents is nil for a
// genesis event. Fields are hashed in declared order.
type EventFields struct {
	Payload   []byte
	Parents   *Parents
	Author    common.PeerID
	Timestamp common.Timestamp
}

// IsGenesis reports whether the fields describe a genesis event.
func (f *EventFields) IsGenesis() bool { return f.Parents == nil }

// digest returns the canonical byte encoding of the fields: payload
// (length-prefixed), kind tag with parents, author and timestamp, all
// little-endian. The encoding is deterministic across implementations.
func (f *EventFields) digest() []byte {
	var buf bytes.Buffer
	writeBytes(&buf, f.Payload)
	if f.Parents == nil {
		writeUint32(&buf, kindTagGenesis)
	} else {
		writeUint32(&buf, kindTagRegular)
		buf.Write(f.Parents.SelfParent[:])
		buf.Write(f.Parents.OtherParent[:])
	}
	writeUint64(&buf, uint64(f.Author))
	buf.Write(f.Timestamp[:])
	return buf.Bytes()
}

// Hash computes the Blake2b-512 digest of the canonical field encoding.
func (f *EventFields) Hash() common.Hash {
	return crypto.Blake2b512(f.digest())
}

// SignedEvent is an immutable event: fields, their digest, and the author's
// signature over the digest. Instances are only created through NewSigned,
// WithSignature or DecodeEvent, so a SignedEvent always carries a consistent
// hash.
type SignedEvent struct {
	fields    EventFields
	hash      common.Hash
	signature common.Signature
}

// NewSigned constructs an event, computes its canonical digest and obtains a
// signature from the author's signer.
func NewSigned(fields EventFields, sign crypto.SignerFn) (*SignedEvent, error) {
	hash := fields.Hash()
	sig, err := sign(hash)
	if err != nil {
		return nil, fmt.Errorf("types: signing event: %w", err)
	}
	return &SignedEvent{fields: fields, hash: hash, signature: sig}, nil
}

// WithSignature assembles an event from fields and an externally produced
// signature, rejecting it with ErrInvalidSignature when verification against
// the author fails.
func WithSignature(fields EventFields, sig common.Signature, verify crypto.VerifyFn) (*SignedEvent, error) {
	hash := fields.Hash()
	if !verify(hash, sig, fields.Author) {
		return nil, ErrInvalidSignature
	}
	return &SignedEvent{fields: fields, hash: hash, signature: sig}, nil
}

// Hash returns the canonical digest identifying the event.
func (e *SignedEvent) Hash() common.Hash { return e.hash }

// Signature returns the author's signature over the event hash.
func (e *SignedEvent) Signature() common.Signature { return e.signature }

// Payload returns the opaque payload carried by the event.
func (e *SignedEvent) Payload() []byte { return e.fields.Payload }

// Author returns the peer that produced the event.
func (e *SignedEvent) Author() common.PeerID { return e.fields.Author }

// Timestamp returns the author-set creation timestamp.
func (e *SignedEvent) Timestamp() common.Timestamp { return e.fields.Timestamp }

// Parents returns the event's parent references, or nil for a genesis.
func (e *SignedEvent) Parents() *Parents { return e.fields.Parents }

// IsGenesis reports whether the event is its author's genesis.
func (e *SignedEvent) IsGenesis() bool { return e.fields.IsGenesis() }

// SelfParent returns the self-parent hash. ok is false for a genesis.
func (e *SignedEvent) SelfParent() (common.Hash, bool) {
	if e.fields.Parents == nil {
		return common.Hash{}, false
	}
	return e.fields.Parents.SelfParent, true
}

// OtherParent returns the other-parent hash. ok is false for a genesis.
func (e *SignedEvent) OtherParent() (common.Hash, bool) {
	if e.fields.Parents == nil {
		return common.Hash{}, false
	}
	return e.fields.Parents.OtherParent, true
}

// Encode serializes the event in its canonical wire form: the field
// encoding followed by the 64-byte hash and 64-byte signature.
func (e *SignedEvent) Encode() []byte {
	var buf bytes.Buffer
	buf.Write(e.fields.digest())
	buf.Write(e.hash[:])
	buf.Write(e.signature[:])
	return buf.Bytes()
}

// DecodeEvent parses a canonical wire-form event. The digest is recomputed
// from the decoded fields and must match the stored hash; the compact
// fingerprint is implicitly recomputed since hashes derive it on demand.
// The signature is NOT verified here — ingestion does that against the
// author's key.
func DecodeEvent(data []byte) (*SignedEvent, error) {
	r := bytes.NewReader(data)
	var fields EventFields
	var err error
	if fields.Payload, err = readBytes(r); err != nil {
		return nil, fmt.Errorf("types: decoding payload: %w", err)
	}
	tag, err := readUint32(r)
	if err != nil {
		return nil, fmt.Errorf("types: decoding kind tag: %w", err)
	}
	switch tag {
	case kindTagGenesis:
	case kindTagRegular:
		p := new(Parents)
		if _, err := io.ReadFull(r, p.SelfParent[:]); err != nil {
			return nil, fmt.Errorf("types: decoding self parent: %w", err)
		}
		if _, err := io.ReadFull(r, p.OtherParent[:]); err != nil {
			return nil, fmt.Errorf("types: decoding other parent: %w", err)
		}
		fields.Parents = p
	default:
		return nil, fmt.Errorf("types: unknown kind tag %d", tag)
	}
	author, err := readUint64(r)
	if err != nil {
		return nil, fmt.Errorf("types: decoding author: %w", err)
	}
	fields.Author = common.PeerID(author)
	if _, err := io.ReadFull(r, fields.Timestamp[:]); err != nil {
		return nil, fmt.Errorf("types: decoding timestamp: %w", err)
	}

	var hash common.Hash
	if _, err := io.ReadFull(r, hash[:]); err != nil {
		return nil, fmt.Errorf("types: decoding hash: %w", err)
	}
	var sig common.Signature
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("types: decoding signature: %w", err)
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("types: %d trailing bytes after event", r.Len())
	}
	if recomputed := fields.Hash(); recomputed != hash {
		return nil, ErrCorruptEncoding
	}
	return &SignedEvent{fields: fields, hash: hash, signature: sig}, nil
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeUint64(buf, uint64(len(b)))
	buf.Write(b)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeUint64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func readBytes(r *bytes.Reader) ([]byte, error) {
	n, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	if n > uint64(r.Len()) {
		return nil, fmt.Errorf("length prefix %d exceeds remaining %d bytes", n, r.Len())
	}
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var tmp [4]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(tmp[:]), nil
}

func readUint64(r *bytes.Reader) (uint64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(tmp[:]), nil
}
