// Package memstore is an in-process gateway.Store used by tests and by
// deployments that do not need durable transactions.
//
// WithTx holds one store-wide lock for the whole callback, so concurrent
// verifies of different transactions run one at a time, bank round trip
// included. Back the resolver with a row-locking database store when that
// throughput matters.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
)

var _ gateway.Store = (*Store)(nil)

type txKey struct{}

// Store keeps rows in maps. WithTx serializes callers on one mutex, which is what
// FindForUpdate relies on; writes are not rolled back when fn fails.
type Store struct {
	verifyMu sync.Mutex

	mu     sync.RWMutex
	seq    int64
	logSeq int64
	rows   map[int64]*gateway.Transaction
	logs   map[int64][]gateway.TransactionLog
	now    func() time.Time
}

func New() *Store {
	return &Store{
		rows: make(map[int64]*gateway.Transaction),
		logs: make(map[int64][]gateway.TransactionLog),
		now:  time.Now,
	}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	s.verifyMu.Lock()
	defer s.verifyMu.Unlock()

	return fn(context.WithValue(ctx, txKey{}, true))
}

func (s *Store) Create(_ context.Context, tx *gateway.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	tx.ID = s.seq
	if tx.Status == "" {
		tx.Status = gateway.StatusPending
	}
	now := s.now()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now

	s.rows[tx.ID] = clone(tx)
	return nil
}

func (s *Store) Find(_ context.Context, id int64) (*gateway.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, gateway.ErrTransactionNotFound
	}
	return clone(row), nil
}

// FindForUpdate is Find; the row lock is the WithTx mutex.
func (s *Store) FindForUpdate(ctx context.Context, id int64) (*gateway.Transaction, error) {
	return s.Find(ctx, id)
}

func (s *Store) SetRefID(_ context.Context, id int64, refID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return gateway.ErrTransactionNotFound
	}
	if row.Status != gateway.StatusPending {
		return gateway.ErrRetryRejected
	}

	row.RefID = &refID
	row.UpdatedAt = s.now()
	return nil
}

func (s *Store) Finalize(_ context.Context, id int64, f gateway.Finalization) error {
	if !f.Status.Terminal() {
		return gateway.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return gateway.ErrTransactionNotFound
	}
	if row.Status != gateway.StatusPending {
		return gateway.ErrRetryRejected
	}

	row.Status = f.Status
	if f.TrackingCode != "" {
		code := f.TrackingCode
		row.TrackingCode = &code
	}
	if f.PayerMeta != nil {
		row.PayerMeta = maps.Clone(f.PayerMeta)
	}
	row.UpdatedAt = s.now()
	return nil
}

func (s *Store) AppendLog(_ context.Context, log *gateway.TransactionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[log.TransactionID]; !ok {
		return gateway.ErrTransactionNotFound
	}

	s.logSeq++
	log.ID = s.logSeq
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now()
	}
	s.logs[log.TransactionID] = append(s.logs[log.TransactionID], *log)
	return nil
}

func (s *Store) Logs(_ context.Context, transactionID int64) ([]gateway.TransactionLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]gateway.TransactionLog, len(s.logs[transactionID]))
	copy(logs, s.logs[transactionID])
	return logs, nil
}

func clone(tx *gateway.Transaction) *gateway.Transaction {
	c := *tx
	if tx.RefID != nil {
		v := *tx.RefID
		c.RefID = &v
	}
	if tx.TrackingCode != nil {
		v := *tx.TrackingCode
		c.TrackingCode = &v
	}
	c.PayerMeta = maps.Clone(tx.PayerMeta)
	return &c
}
