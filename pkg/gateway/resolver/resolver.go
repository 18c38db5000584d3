// Package resolver turns a port name or a bank callback into a ready driver.
package resolver

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/gateway/asanpardakht"
	"github.com/Behyna/bankgateway/pkg/gateway/mellat"
	"github.com/Behyna/bankgateway/pkg/gateway/memstore"
	"github.com/Behyna/bankgateway/pkg/gateway/parsian"
	"github.com/Behyna/bankgateway/pkg/gateway/pasargad"
	"github.com/Behyna/bankgateway/pkg/gateway/payir"
	"github.com/Behyna/bankgateway/pkg/gateway/paypal"
	"github.com/Behyna/bankgateway/pkg/gateway/sadad"
	"github.com/Behyna/bankgateway/pkg/gateway/saman"
	"github.com/Behyna/bankgateway/pkg/gateway/zarinpal"
	"github.com/Behyna/bankgateway/pkg/httpclient"
	"go.uber.org/zap"
)

// PasargadParam is the invoice number Pasargad sends back instead of transaction_id.
const PasargadParam = "iN"

type factory func() gateway.Port

var registry = map[gateway.PortName]factory{
	gateway.Mellat:       func() gateway.Port { return mellat.New() },
	gateway.Sadad:        func() gateway.Port { return sadad.New() },
	gateway.Zarinpal:     func() gateway.Port { return zarinpal.New() },
	gateway.Parsian:      func() gateway.Port { return parsian.New() },
	gateway.Pasargad:     func() gateway.Port { return pasargad.New() },
	gateway.Saman:        func() gateway.Port { return saman.New() },
	gateway.Paypal:       func() gateway.Port { return paypal.New() },
	gateway.Asanpardakht: func() gateway.Port { return asanpardakht.New() },
	gateway.Payir:        func() gateway.Port { return payir.New() },
}

type Option func(*Resolver)

func WithStore(store gateway.Store) Option {
	return func(r *Resolver) { r.store = store }
}

func WithHTTPClient(client httpclient.HTTPClient) Option {
	return func(r *Resolver) { r.http = client }
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(r *Resolver) { r.now = now }
}

// Resolver builds configured drivers. It holds no active driver: every Make
// and Use returns a port of its own.
type Resolver struct {
	cfg    *gateway.Config
	store  gateway.Store
	http   httpclient.HTTPClient
	logger *zap.Logger
	now    func() time.Time
}

func New(cfg *gateway.Config, opts ...Option) *Resolver {
	r := &Resolver{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}

	if r.cfg == nil {
		r.cfg = &gateway.Config{}
		_ = r.cfg.Init()
	}
	if r.store == nil {
		r.store = memstore.New()
	}
	if r.http == nil {
		r.http = httpclient.NewHTTPClient(r.cfg.TimeoutOr(0))
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func (r *Resolver) SupportedPorts() []gateway.PortName {
	return gateway.SupportedPorts()
}

func (r *Resolver) Store() gateway.Store {
	return r.store
}

// Make returns a booted driver for name, matched case-insensitively.
func (r *Resolver) Make(name string) (gateway.Port, error) {
	port, ok := gateway.ParsePortName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", gateway.ErrPortNotFound, name)
	}
	newPort, ok := registry[port]
	if !ok {
		return nil, fmt.Errorf("%w: %q", gateway.ErrPortNotFound, name)
	}
	return r.boot(newPort(), port)
}

// Use configures and boots a driver built by the caller.
func (r *Resolver) Use(p gateway.Port) (gateway.Port, error) {
	var name gateway.PortName
	switch p.(type) {
	case *mellat.Port:
		name = gateway.Mellat
	case *sadad.Port:
		name = gateway.Sadad
	case *zarinpal.Port:
		name = gateway.Zarinpal
	case *parsian.Port:
		name = gateway.Parsian
	case *pasargad.Port:
		name = gateway.Pasargad
	case *saman.Port:
		name = gateway.Saman
	case *paypal.Port:
		name = gateway.Paypal
	case *asanpardakht.Port:
		name = gateway.Asanpardakht
	case *payir.Port:
		name = gateway.Payir
	default:
		return nil, fmt.Errorf("%w: %T", gateway.ErrPortNotFound, p)
	}
	return r.boot(p, name)
}

func (r *Resolver) boot(p gateway.Port, name gateway.PortName) (gateway.Port, error) {
	p.Configure(gateway.Options{
		Config: r.cfg,
		Store:  r.store,
		HTTP:   r.http,
		Logger: r.logger,
		Now:    r.now,
	})
	p.SetPortName(name)
	if err := p.Boot(); err != nil {
		r.logger.Error("failed to boot port", zap.String("port", name.String()), zap.Error(err))
		return nil, err
	}
	return p, nil
}

// TransactionID reads the correlation id of a callback.
func TransactionID(cb gateway.Callback) (int64, error) {
	raw := cb.Get(gateway.CallbackParam)
	if raw == "" {
		raw = cb.Get(PasargadParam)
	}
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", gateway.ErrInvalidRequest, gateway.CallbackParam)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", gateway.ErrInvalidRequest, gateway.CallbackParam, raw)
	}
	return id, nil
}

// Verify finds the transaction a callback belongs to and lets its driver settle it.
// The row stays locked for the whole call. A driver error does not roll back, the
// FAILED status and its log are kept.
func (r *Resolver) Verify(ctx context.Context, cb gateway.Callback) (*gateway.Transaction, error) {
	id, err := TransactionID(cb)
	if err != nil {
		return nil, err
	}

	var (
		tx        *gateway.Transaction
		verifyErr error
	)
	err = r.store.WithTx(ctx, func(ctx context.Context) error {
		row, err := r.store.FindForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if row.Status.Terminal() {
			return gateway.ErrRetryRejected
		}

		port, err := r.Make(row.Port.String())
		if err != nil {
			return err
		}

		verifyErr = port.Verify(ctx, row, cb)
		tx = row
		return nil
	})
	if err != nil {
		r.logger.Warn("verify rejected", zap.Int64("transactionID", id), zap.Error(err))
		return nil, err
	}

	return tx, verifyErr
}
