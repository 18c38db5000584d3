package service

import (
	"context"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"go.uber.org/zap"
)

// PaymentGateway is the part of the resolver the service needs.
type PaymentGateway interface {
	Make(name string) (gateway.Port, error)
	Verify(ctx context.Context, cb gateway.Callback) (*gateway.Transaction, error)
}

// TransactionPublisher announces transactions that reached a terminal status.
type TransactionPublisher interface {
	Publish(ctx context.Context, tx *gateway.Transaction) error
}

type PaymentService interface {
	Create(ctx context.Context, cmd CreatePaymentCommand) (CreatePaymentResponse, error)
	Get(ctx context.Context, id int64) (TransactionResponse, error)
	Logs(ctx context.Context, id int64) ([]LogResponse, error)
	Redirect(ctx context.Context, id int64) (RedirectResponse, error)
	Verify(ctx context.Context, cb gateway.Callback) (TransactionResponse, error)
}

type Payment struct {
	gateway   PaymentGateway
	store     gateway.Store
	publisher TransactionPublisher
	logger    *zap.Logger
}

func NewPaymentService(gw PaymentGateway, store gateway.Store, publisher TransactionPublisher, logger *zap.Logger) PaymentService {
	return &Payment{gateway: gw, store: store, publisher: publisher, logger: logger}
}

func (p *Payment) Create(ctx context.Context, cmd CreatePaymentCommand) (CreatePaymentResponse, error) {
	port, err := p.gateway.Make(cmd.Port)
	if err != nil {
		p.logger.Warn("Failed to resolve port", zap.String("port", cmd.Port), zap.Error(err))
		return CreatePaymentResponse{}, toServiceError(err)
	}

	tx, err := port.Ready(ctx, gateway.Payment{
		Amount:         cmd.Amount,
		CallbackURL:    cmd.CallbackURL,
		Description:    cmd.Description,
		Mobile:         cmd.Mobile,
		Email:          cmd.Email,
		AdditionalData: cmd.AdditionalData,
	})
	if err != nil {
		p.logger.Error("Failed to initiate payment",
			zap.String("port", port.PortName().String()),
			zap.Int64("amount", cmd.Amount),
			zap.Error(err))
		if gwErr, ok := gateway.AsGatewayError(err); ok && gwErr.TransactionID != 0 {
			p.publishByID(ctx, gwErr.TransactionID)
		}
		return CreatePaymentResponse{}, toServiceError(err)
	}

	redirect, err := port.Redirect(ctx, tx)
	if err != nil {
		p.logger.Error("Failed to build redirect", zap.Int64("transactionID", tx.ID), zap.Error(err))
		return CreatePaymentResponse{}, toServiceError(err)
	}

	p.logger.Info("Payment initiated",
		zap.Int64("transactionID", tx.ID),
		zap.String("port", tx.Port.String()),
		zap.Int64("amount", tx.Amount))

	return CreatePaymentResponse{
		Transaction: newTransactionResponse(tx),
		Redirect:    newRedirectResponse(tx.Port, redirect),
	}, nil
}

func (p *Payment) Get(ctx context.Context, id int64) (TransactionResponse, error) {
	tx, err := p.store.Find(ctx, id)
	if err != nil {
		return TransactionResponse{}, toServiceError(err)
	}
	return newTransactionResponse(tx), nil
}

func (p *Payment) Logs(ctx context.Context, id int64) ([]LogResponse, error) {
	if _, err := p.store.Find(ctx, id); err != nil {
		return nil, toServiceError(err)
	}

	logs, err := p.store.Logs(ctx, id)
	if err != nil {
		return nil, toServiceError(err)
	}

	res := make([]LogResponse, 0, len(logs))
	for _, l := range logs {
		res = append(res, LogResponse{ID: l.ID, StatusCode: l.StatusCode, Message: l.Message, CreatedAt: l.CreatedAt})
	}
	return res, nil
}

// Redirect rebuilds the bank redirect of a transaction still waiting for the payer.
func (p *Payment) Redirect(ctx context.Context, id int64) (RedirectResponse, error) {
	tx, err := p.store.Find(ctx, id)
	if err != nil {
		return RedirectResponse{}, toServiceError(err)
	}
	if tx.Status.Terminal() {
		return RedirectResponse{}, toServiceError(gateway.ErrRetryRejected)
	}

	port, err := p.gateway.Make(tx.Port.String())
	if err != nil {
		return RedirectResponse{}, toServiceError(err)
	}

	redirect, err := port.Redirect(ctx, tx)
	if err != nil {
		return RedirectResponse{}, toServiceError(err)
	}
	return newRedirectResponse(tx.Port, redirect), nil
}

// Verify settles the transaction a bank callback belongs to. A transaction the
// driver finalized is published even when verification failed.
func (p *Payment) Verify(ctx context.Context, cb gateway.Callback) (TransactionResponse, error) {
	tx, err := p.gateway.Verify(ctx, cb)

	var res TransactionResponse
	if tx != nil {
		res = newTransactionResponse(tx)
		if tx.Status.Terminal() {
			p.publish(ctx, tx)
		}
	}

	if err != nil {
		p.logger.Warn("Callback verification failed", zap.Int64("transactionID", res.ID), zap.Error(err))
		return res, toServiceError(err)
	}

	p.logger.Info("Callback verified",
		zap.Int64("transactionID", tx.ID),
		zap.String("port", tx.Port.String()),
		zap.String("status", string(tx.Status)))

	return res, nil
}

func (p *Payment) publishByID(ctx context.Context, id int64) {
	tx, err := p.store.Find(ctx, id)
	if err != nil {
		p.logger.Warn("Failed to load transaction for publishing", zap.Int64("transactionID", id), zap.Error(err))
		return
	}
	if tx.Status.Terminal() {
		p.publish(ctx, tx)
	}
}

// publish never fails the request; the row is the source of truth.
func (p *Payment) publish(ctx context.Context, tx *gateway.Transaction) {
	if err := p.publisher.Publish(ctx, tx); err != nil {
		p.logger.Error("Failed to publish transaction event",
			zap.Int64("transactionID", tx.ID),
			zap.String("status", string(tx.Status)),
			zap.Error(err))
	}
}
