package gateway_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBase(t *testing.T) (*gateway.Base, *memstore.Store) {
	t.Helper()

	cfg := &gateway.Config{Timezone: "Asia/Tehran"}
	require.NoError(t, cfg.Init())

	store := memstore.New()
	b := &gateway.Base{}
	b.Configure(gateway.Options{
		Config: cfg,
		Store:  store,
		Now:    func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	b.SetPortName(gateway.Parsian)
	return b, store
}

func TestBase_NewTransaction(t *testing.T) {
	b, store := newBase(t)
	ctx := context.Background()

	tx, err := b.NewTransaction(ctx, 10000)
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, gateway.StatusPending, tx.Status)
	assert.Equal(t, gateway.Parsian, tx.Port)

	row, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), row.Amount)
	assert.Nil(t, row.RefID)
}

func TestBase_NewTransaction_InvalidAmount(t *testing.T) {
	b, _ := newBase(t)

	for _, amount := range []int64{0, -1} {
		tx, err := b.NewTransaction(context.Background(), amount)
		assert.Nil(t, tx)
		assert.ErrorIs(t, err, gateway.ErrInvalidAmount)
	}
}

func TestBase_Now_UsesConfiguredTimezone(t *testing.T) {
	b, _ := newBase(t)

	now := b.Now()
	assert.Equal(t, "Asia/Tehran", now.Location().String())
	assert.Equal(t, 3, now.Hour())
	assert.Equal(t, 30, now.Minute())
}

func TestBase_Fail(t *testing.T) {
	b, store := newBase(t)
	ctx := context.Background()

	tx, err := b.NewTransaction(ctx, 5000)
	require.NoError(t, err)

	gwErr := b.NewError(-126, "invalid merchant pin")
	err = b.Fail(ctx, tx, gwErr)

	var got *gateway.GatewayError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "-126", got.Code)
	assert.Equal(t, tx.ID, got.TransactionID)
	assert.Equal(t, gateway.StatusFailed, tx.Status)

	row, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusFailed, row.Status)

	logs, err := store.Logs(ctx, tx.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "-126", logs[0].StatusCode)
	assert.Equal(t, "invalid merchant pin", logs[0].Message)
}

func TestBase_Fail_AlreadyTerminal(t *testing.T) {
	b, store := newBase(t)
	ctx := context.Background()

	tx, err := b.NewTransaction(ctx, 5000)
	require.NoError(t, err)
	require.NoError(t, b.TransactionSucceed(ctx, tx, "RRN1", nil))

	err = b.Fail(ctx, tx, b.NewError("-1", "late failure"))
	assert.ErrorIs(t, err, gateway.ErrRetryRejected)

	logs, err := store.Logs(ctx, tx.ID)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestBase_TransactionSucceed(t *testing.T) {
	b, store := newBase(t)
	ctx := context.Background()

	tx, err := b.NewTransaction(ctx, 5000)
	require.NoError(t, err)
	require.NoError(t, b.TransactionSetRefID(ctx, tx, "TOKEN"))
	require.NoError(t, b.TransactionSucceed(ctx, tx, "RRN1", map[string]any{"card": "6037****1234"}))

	row, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusSucceed, row.Status)
	assert.Equal(t, "TOKEN", row.RefIDValue())
	assert.Equal(t, "RRN1", row.TrackingCodeValue())
	assert.Equal(t, "6037****1234", row.PayerMeta["card"])

	assert.ErrorIs(t, b.TransactionFailed(ctx, tx), gateway.ErrRetryRejected)
	assert.ErrorIs(t, b.TransactionSetRefID(ctx, tx, "OTHER"), gateway.ErrRetryRejected)
}

func TestBase_VerifyTransaction(t *testing.T) {
	b, _ := newBase(t)

	assert.ErrorIs(t, b.VerifyTransaction(nil), gateway.ErrTransactionNotFound)
	assert.ErrorIs(t, b.VerifyTransaction(&gateway.Transaction{Port: gateway.Parsian, Status: gateway.StatusSucceed}), gateway.ErrRetryRejected)
	assert.ErrorIs(t, b.VerifyTransaction(&gateway.Transaction{Port: gateway.Mellat, Status: gateway.StatusPending}), gateway.ErrInvalidRequest)
	assert.NoError(t, b.VerifyTransaction(&gateway.Transaction{Port: gateway.Parsian, Status: gateway.StatusPending}))
}

func TestMakeCallback(t *testing.T) {
	got, err := gateway.MakeCallback("https://shop.example/callback?lang=fa", 42)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/callback?lang=fa&transaction_id=42", got)

	got, err = gateway.MakeCallback("https://shop.example/callback", 7)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/callback?transaction_id=7", got)
}

func TestBase_CallbackURL_Override(t *testing.T) {
	b, _ := newBase(t)
	tx := &gateway.Transaction{ID: 3}

	got, err := b.CallbackURL(tx, "", "https://configured/cb")
	require.NoError(t, err)
	assert.Equal(t, "https://configured/cb?transaction_id=3", got)

	got, err = b.CallbackURL(tx, "https://override/cb", "https://configured/cb")
	require.NoError(t, err)
	assert.Equal(t, "https://override/cb?transaction_id=3", got)
}

func TestRequireConfig(t *testing.T) {
	assert.NoError(t, gateway.RequireConfig(gateway.Parsian, "pin", "abc"))

	err := gateway.RequireConfig(gateway.Parsian, "pin", "abc", "callback-url", "")
	assert.ErrorIs(t, err, gateway.ErrMissingCredential)

	var cfgErr gateway.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "callback-url", cfgErr.Field)
}

func TestBase_RequireRefID(t *testing.T) {
	b, _ := newBase(t)
	empty := ""
	ref := "R1"

	assert.ErrorIs(t, b.RequireRefID(&gateway.Transaction{}), gateway.ErrMissingRefID)
	assert.ErrorIs(t, b.RequireRefID(&gateway.Transaction{RefID: &empty}), gateway.ErrMissingRefID)
	assert.NoError(t, b.RequireRefID(&gateway.Transaction{RefID: &ref}))
}

func TestBase_RequireCallback(t *testing.T) {
	b, _ := newBase(t)
	cb := gateway.Params{"Token": "1", "status": "0"}

	assert.NoError(t, b.RequireCallback(cb, "Token", "status"))

	err := b.RequireCallback(cb, "Token", "RRN")
	assert.ErrorIs(t, err, gateway.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "missing RRN")

	for _, rrn := range []string{"", "   "} {
		err = b.RequireCallback(gateway.Params{"Token": "1", "RRN": rrn}, "Token", "RRN")
		assert.ErrorIs(t, err, gateway.ErrInvalidRequest, "RRN %q", rrn)
	}
}
