package crypto

import (
	"testing"

	"golang.org/x/crypto/blake2b"

	"github.com/bragov4ik/go-hashgraph/common"
)

func TestBlake2b512(t *testing.T) {
	want := blake2b.Sum512([]byte("hashgraph"))
	got := Blake2b512([]byte("hash"), []byte("graph"))
	if got != common.Hash(want) {
		t.Errorf("chunked digest mismatch: %s", got)
	}
	if Blake2b512([]byte("a")) == Blake2b512([]byte("b")) {
		t.Error("distinct inputs produced identical digests")
	}
}

func TestIdentitySigner(t *testing.T) {
	h := Blake2b512([]byte("event"))
	sig, err := IdentitySigner(h)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !IdentityVerify(h, sig, 0) {
		t.Error("identity signature rejected")
	}
	if IdentityVerify(Blake2b512([]byte("other")), sig, 0) {
		t.Error("identity signature accepted for wrong digest")
	}
}
