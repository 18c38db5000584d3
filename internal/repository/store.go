package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Behyna/bankgateway/internal/model"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"gorm.io/gorm"
)

var _ gateway.Store = (*Store)(nil)

// Store is the gorm backed gateway.Store.
type Store struct {
	txManager    TxManager
	transactions TransactionRepository
	logs         TransactionLogRepository
	cfg          *gateway.Config
}

func NewStore(txManager TxManager, transactions TransactionRepository, logs TransactionLogRepository, cfg *gateway.Config) *Store {
	return &Store{txManager: txManager, transactions: transactions, logs: logs, cfg: cfg}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.txManager.WithTx(ctx, fn)
}

func (s *Store) Create(ctx context.Context, tx *gateway.Transaction) error {
	if !tx.Port.Valid() {
		return fmt.Errorf("%w: unknown port %q", gateway.ErrInvalidRequest, tx.Port)
	}
	if tx.Status == "" {
		tx.Status = gateway.StatusPending
	}

	row := model.NewTransaction(tx)
	if err := s.transactions.Create(ctx, row); err != nil {
		return err
	}

	tx.ID = row.ID
	tx.CreatedAt = row.CreatedAt
	tx.UpdatedAt = row.UpdatedAt
	return nil
}

func (s *Store) Find(ctx context.Context, id int64) (*gateway.Transaction, error) {
	row, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.Gateway(), nil
}

func (s *Store) FindForUpdate(ctx context.Context, id int64) (*gateway.Transaction, error) {
	row, err := s.transactions.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return row.Gateway(), nil
}

func (s *Store) SetRefID(ctx context.Context, id int64, refID string) error {
	return s.transactions.UpdateRefID(ctx, id, refID, s.now())
}

func (s *Store) Finalize(ctx context.Context, id int64, f gateway.Finalization) error {
	if !f.Status.Terminal() {
		return fmt.Errorf("%w: status %s is not terminal", gateway.ErrInvalidRequest, f.Status)
	}
	return s.transactions.Finalize(ctx, id, f, s.now())
}

func (s *Store) AppendLog(ctx context.Context, log *gateway.TransactionLog) error {
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}

	row := model.NewTransactionLog(log)
	if err := s.logs.Create(ctx, row); err != nil {
		return err
	}
	log.ID = row.ID
	return nil
}

func (s *Store) Logs(ctx context.Context, transactionID int64) ([]gateway.TransactionLog, error) {
	rows, err := s.logs.ListByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	logs := make([]gateway.TransactionLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].Gateway())
	}
	return logs, nil
}

func (s *Store) now() time.Time {
	return time.Now().In(s.cfg.Location())
}

// AutoMigrate creates or updates both gateway tables under their configured names.
func AutoMigrate(db *gorm.DB, cfg *gateway.Config) error {
	if err := db.Table(cfg.Table).AutoMigrate(&model.Transaction{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", cfg.Table, err)
	}
	if err := db.Table(cfg.LogTable).AutoMigrate(&model.TransactionLog{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", cfg.LogTable, err)
	}
	return nil
}
