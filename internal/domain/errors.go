package domain

import "errors"

var (
	// ErrPersistence marks a durable read or write that could not be
	// committed. Wrapped errors carry the storage-level detail.
	ErrPersistence = errors.New("persistence failure")
)
