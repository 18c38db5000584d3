package repository

import (
	"context"

	"github.com/Behyna/bankgateway/internal/model"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"gorm.io/gorm"
)

type TransactionLogRepository interface {
	Create(ctx context.Context, log *model.TransactionLog) error
	ListByTransactionID(ctx context.Context, transactionID int64) ([]model.TransactionLog, error)
}

type TransactionLog struct {
	db    *gorm.DB
	table string
}

func NewTransactionLogRepository(db *gorm.DB, cfg *gateway.Config) TransactionLogRepository {
	return &TransactionLog{db: db, table: cfg.LogTable}
}

func (r *TransactionLog) Create(ctx context.Context, log *model.TransactionLog) error {
	db := GetTx(ctx, r.db)
	return mapError(db.Table(r.table).Create(log).Error)
}

func (r *TransactionLog) ListByTransactionID(ctx context.Context, transactionID int64) ([]model.TransactionLog, error) {
	var logs []model.TransactionLog

	err := GetTx(ctx, r.db).Table(r.table).
		Where("transaction_id = ?", transactionID).
		Order("id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, mapError(err)
	}

	return logs, nil
}
