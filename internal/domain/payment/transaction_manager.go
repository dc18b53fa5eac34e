package payment

import (
	"context"
	"database/sql"
)

// TransactionManager runs work inside a persistence transaction. Used by the
// batch submission path to create a batch and its members atomically.
type TransactionManager interface {
	// WithTransaction executes fn inside a transaction.
	WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error
}
