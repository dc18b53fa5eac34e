package deadletter

import "errors"

var (
	// ErrEntryNotFound no dead-letter entry exists for the given id
	ErrEntryNotFound = errors.New("dead letter entry not found")
	// ErrInvalidEntry the entry is missing required fields
	ErrInvalidEntry = errors.New("invalid dead letter entry")
)
