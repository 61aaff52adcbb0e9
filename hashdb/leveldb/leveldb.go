// Package leveldb implements the key-value database layer based on LevelDB.
package leveldb

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
	lvlerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

var log = logrus.WithField("prefix", "leveldb")

// Database is a persistent key-value store backed by goleveldb.
type Database struct {
	fn string      // filename for reporting
	db *leveldb.DB // LevelDB instance
}

// New opens (or creates) a LevelDB database at the given path, attempting a
// recovery when the store is found corrupted.
func New(file string) (*Database, error) {
	db, err := leveldb.OpenFile(file, &opt.Options{
		OpenFilesCacheCapacity: 64,
	})
	if _, corrupted := err.(*lvlerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "leveldb: opening %s", file)
	}
	log.WithField("database", file).Info("Allocated database")
	return &Database{fn: file, db: db}, nil
}

// Close flushes any pending data to disk and closes all io accesses to the
// underlying key-value store.
func (db *Database) Close() error {
	return db.db.Close()
}

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

// Get retrieves the given key if it's present in the key-value store.
func (db *Database) Get(key []byte) ([]byte, error) {
	return db.db.Get(key, nil)
}

// Put inserts the given value into the key-value store.
func (db *Database) Put(key []byte, value []byte) error {
	return db.db.Put(key, value, nil)
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

// Path returns the path to the database directory.
func (db *Database) Path() string {
	return db.fn
}
