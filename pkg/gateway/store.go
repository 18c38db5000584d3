package gateway

import "context"

// Store persists transactions and their audit log. SetRefID and Finalize only
// touch PENDING rows and answer ErrRetryRejected otherwise.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Create(ctx context.Context, tx *Transaction) error
	Find(ctx context.Context, id int64) (*Transaction, error)
	FindForUpdate(ctx context.Context, id int64) (*Transaction, error)
	SetRefID(ctx context.Context, id int64, refID string) error
	Finalize(ctx context.Context, id int64, f Finalization) error
	AppendLog(ctx context.Context, log *TransactionLog) error
	Logs(ctx context.Context, transactionID int64) ([]TransactionLog, error)
}
