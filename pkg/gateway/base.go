package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/Behyna/bankgateway/pkg/httpclient"
	"go.uber.org/zap"
)

const CallbackParam = "transaction_id"

// Base holds what every driver shares. Drivers embed it and get the Port
// bookkeeping methods for free.
type Base struct {
	name   PortName
	cfg    *Config
	store  Store
	http   httpclient.HTTPClient
	logger *zap.Logger
	now    func() time.Time
}

func (b *Base) Configure(opts Options) {
	b.cfg = opts.Config
	if b.cfg == nil {
		b.cfg = &Config{}
		_ = b.cfg.Init()
	}

	b.store = opts.Store
	b.http = opts.HTTP
	if b.http == nil {
		b.http = httpclient.NewHTTPClient(b.cfg.TimeoutOr(0))
	}

	b.logger = opts.Logger
	if b.logger == nil {
		b.logger = zap.NewNop()
	}

	b.now = opts.Now
	if b.now == nil {
		b.now = time.Now
	}
}

func (b *Base) SetPortName(name PortName) {
	b.name = name
}

func (b *Base) PortName() PortName {
	return b.name
}

func (b *Base) Config() *Config {
	return b.cfg
}

func (b *Base) HTTP() httpclient.HTTPClient {
	return b.http
}

func (b *Base) Logger() *zap.Logger {
	return b.logger.With(zap.String("port", b.name.String()))
}

// Now returns the current time in the configured timezone.
func (b *Base) Now() time.Time {
	return b.now().In(b.cfg.Location())
}

// WithTimeout bounds a provider call by the port timeout, falling back to the global one.
func (b *Base) WithTimeout(ctx context.Context, portTimeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.cfg.TimeoutOr(portTimeout))
}

func (b *Base) NewError(code any, message string) *GatewayError {
	return NewGatewayError(b.name, code, message)
}

// NewTransaction inserts the PENDING row. It runs before any bank call.
func (b *Base) NewTransaction(ctx context.Context, amount int64) (*Transaction, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := b.Now()
	tx := &Transaction{
		Port:      b.name,
		Amount:    amount,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := b.store.Create(ctx, tx); err != nil {
		return nil, err
	}

	b.Logger().Info("transaction created", zap.Int64("transactionID", tx.ID), zap.Int64("amount", amount))
	return tx, nil
}

func (b *Base) TransactionSetRefID(ctx context.Context, tx *Transaction, refID string) error {
	if err := b.store.SetRefID(ctx, tx.ID, refID); err != nil {
		return err
	}
	tx.RefID = &refID
	tx.UpdatedAt = b.Now()
	return nil
}

func (b *Base) TransactionSucceed(ctx context.Context, tx *Transaction, trackingCode string, payerMeta map[string]any) error {
	err := b.store.Finalize(ctx, tx.ID, Finalization{
		Status:       StatusSucceed,
		TrackingCode: trackingCode,
		PayerMeta:    payerMeta,
	})
	if err != nil {
		return err
	}

	tx.Status = StatusSucceed
	tx.TrackingCode = &trackingCode
	tx.PayerMeta = payerMeta
	tx.UpdatedAt = b.Now()

	b.Logger().Info("transaction succeed", zap.Int64("transactionID", tx.ID), zap.String("trackingCode", trackingCode))
	return nil
}

func (b *Base) TransactionFailed(ctx context.Context, tx *Transaction) error {
	if err := b.store.Finalize(ctx, tx.ID, Finalization{Status: StatusFailed}); err != nil {
		return err
	}
	tx.Status = StatusFailed
	tx.UpdatedAt = b.Now()
	return nil
}

func (b *Base) NewLog(ctx context.Context, tx *Transaction, statusCode, message string) error {
	return b.store.AppendLog(ctx, &TransactionLog{
		TransactionID: tx.ID,
		StatusCode:    statusCode,
		Message:       message,
		CreatedAt:     b.Now(),
	})
}

// Fail marks tx FAILED, writes exactly one log entry for gwErr and returns gwErr.
// A store failure is returned instead so the caller never assumes a FAILED row
// that was not written.
func (b *Base) Fail(ctx context.Context, tx *Transaction, gwErr *GatewayError) error {
	gwErr.TransactionID = tx.ID
	if gwErr.Port == "" {
		gwErr.Port = b.name
	}

	b.Logger().Warn("transaction failed",
		zap.Int64("transactionID", tx.ID),
		zap.String("code", gwErr.Code),
		zap.String("message", gwErr.Message),
		zap.Error(gwErr.Cause))

	if err := b.TransactionFailed(ctx, tx); err != nil {
		if errors.Is(err, ErrRetryRejected) {
			return err
		}
		b.Logger().Error("failed to mark transaction failed", zap.Int64("transactionID", tx.ID), zap.Error(err))
		return errors.Join(gwErr, err)
	}

	log := gwErr.Log()
	if err := b.NewLog(ctx, tx, log.StatusCode, log.Message); err != nil {
		b.Logger().Error("failed to write transaction log", zap.Int64("transactionID", tx.ID), zap.Error(err))
		return errors.Join(gwErr, err)
	}

	return gwErr
}

// InvalidCallback reports a callback that cannot be matched to tx. Nothing is
// written: a forged request must not be able to fail someone's payment.
func (b *Base) InvalidCallback(reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRequest, b.name, reason)
}

// RequireCallback returns InvalidCallback for the first key that is missing
// from cb or blank.
func (b *Base) RequireCallback(cb Callback, keys ...string) error {
	for _, key := range keys {
		if cb.Get(key) == "" {
			return b.InvalidCallback("missing " + key)
		}
	}
	return nil
}

// VerifyTransaction rejects anything but a PENDING transaction owned by this port.
func (b *Base) VerifyTransaction(tx *Transaction) error {
	if tx == nil {
		return ErrTransactionNotFound
	}
	if tx.Status.Terminal() {
		return ErrRetryRejected
	}
	if tx.Port != b.name {
		return ErrInvalidRequest
	}
	return nil
}

// CallbackURL picks the per payment override or the configured one and tags it with tx.
func (b *Base) CallbackURL(tx *Transaction, override, configured string) (string, error) {
	base := configured
	if override != "" {
		base = override
	}
	return MakeCallback(base, tx.ID)
}

// MakeCallback appends transaction_id=<id> to base keeping its existing query.
func MakeCallback(base string, transactionID int64) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set(CallbackParam, strconv.FormatInt(transactionID, 10))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// RequireConfig reports the first empty value of pairs given as name, value, name, value...
func RequireConfig(port PortName, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return NewConfigError(port, pairs[i], nil)
		}
	}
	return nil
}

func (b *Base) RequireRefID(tx *Transaction) error {
	if tx == nil || tx.RefID == nil || *tx.RefID == "" {
		return ErrMissingRefID
	}
	return nil
}
