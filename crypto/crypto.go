// Package crypto wraps the digest primitive and the external signing
// boundary of the hashgraph engine. No signature algorithm is mandated: the
// engine receives a SignerFn/VerifyFn pair and treats signatures as opaque.
package crypto

import (
	"golang.org/x/crypto/blake2b"

	"github.com/bragov4ik/go-hashgraph/common"
)

// SignerFn is the callback an author uses to sign an event digest.
type SignerFn func(common.Hash) (common.Signature, error)

// VerifyFn checks a signature over an event digest against the claimed
// author's key material.
type VerifyFn func(common.Hash, common.Signature, common.PeerID) bool

// Blake2b512 returns the Blake2b-512 digest of the concatenation of data.
func Blake2b512(data ...[]byte) common.Hash {
	h, err := blake2b.New512(nil)
	if err != nil {
		panic(err) // unkeyed blake2b cannot fail
	}
	for _, d := range data {
		h.Write(d)
	}
	return common.BytesToHash(h.Sum(nil))
}

// IdentitySigner returns the event hash as its signature. It performs no
// actual signing and exists for tests and simulations.
func IdentitySigner(h common.Hash) (common.Signature, error) {
	return common.Signature(h), nil
}

// IdentityVerify accepts exactly the signatures IdentitySigner produces.
func IdentityVerify(h common.Hash, sig common.Signature, _ common.PeerID) bool {
	return sig == common.Signature(h)
}
