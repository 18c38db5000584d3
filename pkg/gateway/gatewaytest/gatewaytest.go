// Package gatewaytest wires drivers to an in-memory store for tests.
package gatewaytest

import (
	"context"
	"testing"
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/memstore"
	"github.com/Behyna/bankgateway/pkg/httpclient"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Now is the clock every driver test runs on.
var Now = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func Config(t *testing.T) *gateway.Config {
	t.Helper()
	cfg := &gateway.Config{Timezone: "UTC", Timeout: 2 * time.Second}
	require.NoError(t, cfg.Init())
	return cfg
}

func Options(cfg *gateway.Config, store gateway.Store) gateway.Options {
	return gateway.Options{
		Config: cfg,
		Store:  store,
		HTTP:   httpclient.NewHTTPClient(cfg.Timeout),
		Logger: zap.NewNop(),
		Now:    func() time.Time { return Now },
	}
}

// Boot configures and boots port against a fresh memstore.
func Boot(t *testing.T, port gateway.Port, name gateway.PortName, cfg *gateway.Config) *memstore.Store {
	t.Helper()
	store := memstore.New()
	port.Configure(Options(cfg, store))
	port.SetPortName(name)
	require.NoError(t, port.Boot())
	return store
}

// Pending inserts a PENDING row for name, with refID attached when not empty.
func Pending(t *testing.T, store *memstore.Store, name gateway.PortName, amount int64, refID string) *gateway.Transaction {
	t.Helper()
	ctx := context.Background()

	tx := &gateway.Transaction{Port: name, Amount: amount, Status: gateway.StatusPending}
	require.NoError(t, store.Create(ctx, tx))
	if refID != "" {
		require.NoError(t, store.SetRefID(ctx, tx.ID, refID))
	}

	row, err := store.Find(ctx, tx.ID)
	require.NoError(t, err)
	return row
}

// Reload fetches the current row and its logs.
func Reload(t *testing.T, store *memstore.Store, id int64) (*gateway.Transaction, []gateway.TransactionLog) {
	t.Helper()
	ctx := context.Background()

	row, err := store.Find(ctx, id)
	require.NoError(t, err)
	logs, err := store.Logs(ctx, id)
	require.NoError(t, err)
	return row, logs
}
