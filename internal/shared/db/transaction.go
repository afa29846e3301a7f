// Package db provides transaction plumbing shared by the repositories.
package db

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxRunner is the transactional-execution contract application code depends
// on. TransactionManager is the production implementation; tests substitute
// a runner that invokes the function directly.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionManager runs multi-repository writes in one database
// transaction. The reconciliation path relies on it so the subscription
// record and its purchase audit row always commit together.
type TransactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) *TransactionManager {
	return &TransactionManager{db: db}
}

// RunInTransaction executes fn inside a transaction. The transaction handle
// travels in the context, so repositories called with the derived context
// join the same transaction transparently. An error from fn rolls back,
// nil commits.
func (tm *TransactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// GetTx returns the transaction carried by ctx, or the base connection when
// the caller is not inside one.
func (tm *TransactionManager) GetTx(ctx context.Context) *gorm.DB {
	return GetTxFromContext(ctx, tm.db)
}

// GetTxFromContext is the repository-side accessor: it yields the in-flight
// transaction when present, otherwise defaultDB bound to ctx.
func GetTxFromContext(ctx context.Context, defaultDB *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return defaultDB.WithContext(ctx)
}
