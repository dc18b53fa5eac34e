package mysql

import (
	"context"
	"database/sql"
)

// TransactionManager runs work inside a database transaction. Batch creation
// uses it to persist a batch and all its members atomically.
type TransactionManager struct {
	db *DB
}

// NewTransactionManager creates a new TransactionManager.
func NewTransactionManager(db *DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// WithTransaction executes fn inside a transaction, rolling back on error or
// panic and committing otherwise.
func (tm *TransactionManager) WithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := tm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	err = fn(tx)
	return err
}
