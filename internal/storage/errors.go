package storage

import "errors"

// Sentinel errors shared by every store implementation. Callers match
// with errors.Is.
var (
	// ErrNotFound reports that no record matches the query.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey reports an insert whose key is already persisted.
	// Series stores are append-only, so replaying previously ingested
	// data surfaces this rather than an update.
	ErrDuplicateKey = errors.New("duplicate key in append-only store")

	// ErrInvalidInput reports a record that failed validation before write.
	ErrInvalidInput = errors.New("invalid input")
)
