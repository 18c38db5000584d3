package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Behyna/bankgateway/internal/model"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNoRowsAffected = errors.New("NO_ROWS_AFFECTED")
	ErrLockTimeout    = errors.New("LOCK_TIMEOUT")
)

type TransactionRepository interface {
	Create(ctx context.Context, transaction *model.Transaction) error
	GetByID(ctx context.Context, id int64) (*model.Transaction, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*model.Transaction, error)
	UpdateRefID(ctx context.Context, id int64, refID string, now time.Time) error
	Finalize(ctx context.Context, id int64, f gateway.Finalization, now time.Time) error
}

type Transaction struct {
	db    *gorm.DB
	table string
}

func NewTransactionRepository(db *gorm.DB, cfg *gateway.Config) TransactionRepository {
	return &Transaction{db: db, table: cfg.Table}
}

func (t *Transaction) Create(ctx context.Context, transaction *model.Transaction) error {
	db := GetTx(ctx, t.db)
	return mapError(db.Table(t.table).Create(transaction).Error)
}

func (t *Transaction) GetByID(ctx context.Context, id int64) (*model.Transaction, error) {
	return t.get(GetTx(ctx, t.db), id)
}

// GetByIDForUpdate holds the row lock until the surrounding transaction ends.
// SQLite locks the whole database on write, so no locking clause is sent there.
func (t *Transaction) GetByIDForUpdate(ctx context.Context, id int64) (*model.Transaction, error) {
	db := GetTx(ctx, t.db)
	if db.Dialector.Name() != "sqlite" {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return t.get(db, id)
}

func (t *Transaction) get(db *gorm.DB, id int64) (*model.Transaction, error) {
	var transaction model.Transaction

	err := db.Table(t.table).Where("id = ?", id).First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	return nil, mapError(err)
}

func (t *Transaction) UpdateRefID(ctx context.Context, id int64, refID string, now time.Time) error {
	return t.updatePending(ctx, id, map[string]any{
		"ref_id":     refID,
		"updated_at": now,
	})
}

func (t *Transaction) Finalize(ctx context.Context, id int64, f gateway.Finalization, now time.Time) error {
	values := map[string]any{
		"status":     string(f.Status),
		"updated_at": now,
	}
	if f.TrackingCode != "" {
		values["tracking_code"] = f.TrackingCode
	}
	if len(f.PayerMeta) > 0 {
		values["payer_meta"] = datatypes.JSONMap(f.PayerMeta)
	}

	return t.updatePending(ctx, id, values)
}

// updatePending applies values only while the row is PENDING.
func (t *Transaction) updatePending(ctx context.Context, id int64, values map[string]any) error {
	db := GetTx(ctx, t.db)
	result := db.Table(t.table).
		Where("id = ? AND status = ?", id, string(gateway.StatusPending)).
		Updates(values)
	if result.Error != nil {
		return mapError(result.Error)
	}

	if result.RowsAffected == 0 {
		if _, err := t.get(db, id); err != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrNoRowsAffected, gateway.ErrRetryRejected)
	}

	return nil
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return gateway.ErrTransactionNotFound
	case mysql.IsLockError(err):
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	default:
		return err
	}
}
