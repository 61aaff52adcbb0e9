// Package dbtest provides a conformance suite every hashdb backend must
// pass.
package dbtest

import (
	"bytes"
	"testing"

	"github.com/bragov4ik/go-hashgraph/hashdb"
)

// TestDatabaseSuite runs a suite of tests against a KeyValueStore database
// implementation.
func TestDatabaseSuite(t *testing.T, New func() hashdb.KeyValueStore) {
	t.Run("Get", func(t *testing.T) {
		db := New()
		defer db.Close()

		if _, err := db.Get([]byte("missing")); err == nil {
			t.Error("get on a missing key returned no error")
		}
		if has, err := db.Has([]byte("missing")); err != nil || has {
			t.Errorf("has on a missing key: %v/%v", has, err)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		db := New()
		defer db.Close()

		key, value := []byte("key"), []byte("value")
		if err := db.Put(key, value); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := db.Get(key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !bytes.Equal(got, value) {
			t.Errorf("get: %x != %x", got, value)
		}
		if has, err := db.Has(key); err != nil || !has {
			t.Errorf("has after put: %v/%v", has, err)
		}

		// The store must not alias the caller's buffers.
		value[0] = 'X'
		got, err = db.Get(key)
		if err != nil {
			t.Fatalf("get after caller mutation: %v", err)
		}
		if !bytes.Equal(got, []byte("value")) {
			t.Errorf("stored value aliased the caller's buffer: %q", got)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("key")
		if err := db.Put(key, []byte("first")); err != nil {
			t.Fatalf("put: %v", err)
		}
		if err := db.Put(key, []byte("second")); err != nil {
			t.Fatalf("overwrite: %v", err)
		}
		got, err := db.Get(key)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !bytes.Equal(got, []byte("second")) {
			t.Errorf("overwrite not observed: %q", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := New()
		defer db.Close()

		key := []byte("key")
		if err := db.Put(key, []byte("value")); err != nil {
			t.Fatalf("put: %v", err)
		}
		if err := db.Delete(key); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if has, err := db.Has(key); err != nil || has {
			t.Errorf("has after delete: %v/%v", has, err)
		}
		// Deleting an absent key is not an error.
		if err := db.Delete([]byte("missing")); err != nil {
			t.Errorf("delete of a missing key: %v", err)
		}
	})
}
