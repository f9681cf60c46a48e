package repositories

import "context"

// TxFn is a function executed within a database transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a transaction. Repositories pick
// the transaction up from the context, so grant mutations and the derived
// is_shared flag always commit together.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
