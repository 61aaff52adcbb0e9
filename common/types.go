// Package common contains the hash, signature and identity types shared by
// every layer of the hashgraph engine.
package common

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Lengths of the core fixed-width types in bytes.
const (
	// HashLength is the expected length of an event digest (Blake2b-512).
	HashLength = 64
	// SignatureLength is the expected length of an event signature.
	SignatureLength = 64
	// CompactLength is the length of the diagnostic hash fingerprint.
	CompactLength = 4
	// TimestampLength is the length of an author-set 128-bit timestamp.
	TimestampLength = 16
)

// Hash represents the 64 byte Blake2b-512 digest of an event's canonical
// encoding. The zero value is a valid hash.
type Hash [HashLength]byte

// BytesToHash sets b to hash.
// If b is larger than len(h), b will be cropped from the left.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash sets byte representation of s to hash.
func HexToHash(s string) Hash { return BytesToHash(FromHex(s)) }

// SetBytes sets the hash to the value of b.
// If b is larger than len(h), b will be cropped from the left.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > len(h) {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// Bytes gets the byte representation of the underlying hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex converts a hash to a hex string.
func (h Hash) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

// String implements the stringer interface and is used also by the logger when
// doing full logging into a file.
func (h Hash) String() string { return h.Hex() }

// Xor returns the byte-wise exclusive or of h and other. The operation is
// commutative and associative; h ^ h is the zero hash.
func (h Hash) Xor(other Hash) Hash {
	var out Hash
	for i := 0; i < HashLength; i++ {
		out[i] = h[i] ^ other[i]
	}
	return out
}

// Cmp compares two hashes in lexicographic byte order.
func (h Hash) Cmp(other Hash) int { return bytes.Compare(h[:], other[:]) }

// Compact returns the 4-byte diagnostic fingerprint of the hash: the XOR fold
// of its four 16-byte quarters. It is meant for human-readable output only
// and must never be used as an identifier.
func (h Hash) Compact() [CompactLength]byte {
	var out [CompactLength]byte
	for q := 0; q < CompactLength; q++ {
		var acc byte
		for _, b := range h[q*16 : (q+1)*16] {
			acc ^= b
		}
		out[q] = acc
	}
	return out
}

// TerminalString formats the compact fingerprint for console output during
// logging.
func (h Hash) TerminalString() string {
	c := h.Compact()
	return fmt.Sprintf("%x", c[:])
}

// Signature is the opaque author signature over an event hash. The engine
// never interprets its contents; the width matches Hash so that an identity
// signer can be substituted in tests.
type Signature [SignatureLength]byte

// BytesToSignature sets b to signature, cropping from the left if oversized.
func BytesToSignature(b []byte) Signature {
	var s Signature
	if len(b) > len(s) {
		b = b[len(b)-SignatureLength:]
	}
	copy(s[SignatureLength-len(b):], b)
	return s
}

// Bytes gets the byte representation of the underlying signature.
func (s Signature) Bytes() []byte { return s[:] }

// Xor returns the byte-wise exclusive or of s and other, for aggregation use
// by higher layers.
func (s Signature) Xor(other Signature) Signature {
	var out Signature
	for i := 0; i < SignatureLength; i++ {
		out[i] = s[i] ^ other[i]
	}
	return out
}

// PeerID identifies a member of the fixed peer set.
type PeerID uint64

// Timestamp is the 128-bit monotonic value an author stamps on its events,
// stored little-endian. The engine treats it as opaque.
type Timestamp [TimestampLength]byte

// TimestampFromUint64 widens a 64-bit counter into a Timestamp.
func TimestampFromUint64(v uint64) Timestamp {
	var t Timestamp
	binary.LittleEndian.PutUint64(t[:8], v)
	return t
}

// Bytes gets the byte representation of the timestamp.
func (t Timestamp) Bytes() []byte { return t[:] }

// Lo returns the low 64 bits of the timestamp, for diagnostics.
func (t Timestamp) Lo() uint64 { return binary.LittleEndian.Uint64(t[:8]) }

// FromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x"; an odd-length string is left-padded.
func FromHex(s string) []byte {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}
