package hashgraph

import "errors"

// Package-level sentinel errors. Ingestion errors are returned before any
// state mutation; query errors never mutate. Errors carrying an offending
// hash are wrapped with its compact fingerprint and match with errors.Is.
var (
	ErrNodeAlreadyExists      = errors.New("hashgraph: event already in the graph")
	ErrGenesisAlreadyExists   = errors.New("hashgraph: peer already has a genesis")
	ErrPeerNotFound           = errors.New("hashgraph: peer not found")
	ErrNoParent               = errors.New("hashgraph: parent not in the graph")
	ErrIncorrectAuthor        = errors.New("hashgraph: self parent belongs to a different author")
	ErrSelfChildAlreadyExists = errors.New("hashgraph: self parent already has a self child")
	ErrNotWitness             = errors.New("hashgraph: event is not a witness")
	ErrEventNotFound          = errors.New("hashgraph: event not found")
)
