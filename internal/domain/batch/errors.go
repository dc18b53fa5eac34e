package batch

import "errors"

var (
	// ErrBatchNotFound no batch exists for the given id
	ErrBatchNotFound = errors.New("batch not found")
	// ErrInvalidBatchID the batch id is malformed
	ErrInvalidBatchID = errors.New("invalid batch id")
	// ErrEmptyBatch the batch contains no entries
	ErrEmptyBatch = errors.New("batch has no entries")
	// ErrTooManyEntries the batch exceeds the bulk-entry ceiling
	ErrTooManyEntries = errors.New("batch exceeds entry ceiling")
	// ErrBatchAmountExceedsCeiling the summed amount exceeds the bulk-amount ceiling
	ErrBatchAmountExceedsCeiling = errors.New("batch amount exceeds ceiling")
)
