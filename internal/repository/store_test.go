package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func newStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &gateway.Config{Timezone: "UTC"}
	require.NoError(t, cfg.Init())
	require.NoError(t, AutoMigrate(db, cfg))

	store := NewStore(
		NewTransactionManager(db),
		NewTransactionRepository(db, cfg),
		NewTransactionLogRepository(db, cfg),
		cfg,
	)
	return store, db
}

func pending(t *testing.T, store *Store) *gateway.Transaction {
	t.Helper()
	tx := &gateway.Transaction{Port: gateway.Mellat, Amount: 1000}
	require.NoError(t, store.Create(context.Background(), tx))
	return tx
}

func TestStore_CreateAndFind(t *testing.T) {
	store, db := newStore(t)
	ctx := context.Background()

	tx := pending(t, store)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, gateway.StatusPending, tx.Status)
	assert.True(t, db.Migrator().HasTable(gateway.DefaultTable))
	assert.True(t, db.Migrator().HasTable(gateway.DefaultTable+"_logs"))

	got, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.Mellat, got.Port)
	assert.Equal(t, int64(1000), got.Amount)
	assert.Nil(t, got.RefID)
	assert.Nil(t, got.TrackingCode)
}

func TestStore_CreateRejectsUnknownPort(t *testing.T) {
	store, _ := newStore(t)

	err := store.Create(context.Background(), &gateway.Transaction{Port: "BITPAY", Amount: 10})
	assert.ErrorIs(t, err, gateway.ErrInvalidRequest)
}

func TestStore_FindMissing(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Find(context.Background(), 42)
	assert.ErrorIs(t, err, gateway.ErrTransactionNotFound)

	err = store.SetRefID(context.Background(), 42, "ref")
	assert.ErrorIs(t, err, gateway.ErrTransactionNotFound)
}

func TestStore_FinalizeOnce(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	tx := pending(t, store)

	require.NoError(t, store.SetRefID(ctx, tx.ID, "REF-1"))
	require.NoError(t, store.Finalize(ctx, tx.ID, gateway.Finalization{
		Status:       gateway.StatusSucceed,
		TrackingCode: "TRACK-1",
		PayerMeta:    map[string]any{"card_number": "6037****1234"},
	}))

	got, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusSucceed, got.Status)
	assert.Equal(t, "REF-1", got.RefIDValue())
	assert.Equal(t, "TRACK-1", got.TrackingCodeValue())
	assert.Equal(t, "6037****1234", got.PayerMeta["card_number"])

	err = store.Finalize(ctx, tx.ID, gateway.Finalization{Status: gateway.StatusFailed})
	assert.ErrorIs(t, err, gateway.ErrRetryRejected)
	assert.ErrorIs(t, err, ErrNoRowsAffected)

	err = store.SetRefID(ctx, tx.ID, "REF-2")
	assert.ErrorIs(t, err, gateway.ErrRetryRejected)

	got, err = store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusSucceed, got.Status)
	assert.Equal(t, "REF-1", got.RefIDValue())
}

func TestStore_FinalizeRequiresTerminalStatus(t *testing.T) {
	store, _ := newStore(t)
	tx := pending(t, store)

	err := store.Finalize(context.Background(), tx.ID, gateway.Finalization{Status: gateway.StatusPending})
	assert.ErrorIs(t, err, gateway.ErrInvalidRequest)
}

func TestStore_Logs(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	tx := pending(t, store)
	other := pending(t, store)

	require.NoError(t, store.AppendLog(ctx, &gateway.TransactionLog{TransactionID: tx.ID, StatusCode: "-1", Message: "first"}))
	require.NoError(t, store.AppendLog(ctx, &gateway.TransactionLog{TransactionID: other.ID, StatusCode: "0", Message: "other"}))
	require.NoError(t, store.AppendLog(ctx, &gateway.TransactionLog{TransactionID: tx.ID, StatusCode: "0", Message: "second"}))

	logs, err := store.Logs(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "first", logs[0].Message)
	assert.Equal(t, "second", logs[1].Message)
	assert.False(t, logs[0].CreatedAt.IsZero())
}

func TestStore_WithTxRollsBack(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	tx := pending(t, store)

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context) error {
		row, err := store.FindForUpdate(ctx, tx.ID)
		require.NoError(t, err)
		require.NoError(t, store.Finalize(ctx, row.ID, gateway.Finalization{Status: gateway.StatusFailed}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusPending, got.Status)
}

func TestStore_WithTxCommitsAndNests(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	tx := pending(t, store)

	err := store.WithTx(ctx, func(ctx context.Context) error {
		if err := store.Finalize(ctx, tx.ID, gateway.Finalization{Status: gateway.StatusFailed}); err != nil {
			return err
		}
		return store.WithTx(ctx, func(ctx context.Context) error {
			return store.AppendLog(ctx, &gateway.TransactionLog{TransactionID: tx.ID, StatusCode: "-1", Message: "failed"})
		})
	})
	require.NoError(t, err)

	got, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusFailed, got.Status)

	logs, err := store.Logs(ctx, tx.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}
