package mocks

import (
	"context"

	"github.com/Behyna/bankgateway/internal/service"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func (p *PaymentService) Create(ctx context.Context, cmd service.CreatePaymentCommand) (service.CreatePaymentResponse, error) {
	args := p.Called(ctx, cmd)
	return args.Get(0).(service.CreatePaymentResponse), args.Error(1)
}

func (p *PaymentService) Get(ctx context.Context, id int64) (service.TransactionResponse, error) {
	args := p.Called(ctx, id)
	return args.Get(0).(service.TransactionResponse), args.Error(1)
}

func (p *PaymentService) Logs(ctx context.Context, id int64) ([]service.LogResponse, error) {
	args := p.Called(ctx, id)
	logs, _ := args.Get(0).([]service.LogResponse)
	return logs, args.Error(1)
}

func (p *PaymentService) Redirect(ctx context.Context, id int64) (service.RedirectResponse, error) {
	args := p.Called(ctx, id)
	return args.Get(0).(service.RedirectResponse), args.Error(1)
}

func (p *PaymentService) Verify(ctx context.Context, cb gateway.Callback) (service.TransactionResponse, error) {
	args := p.Called(ctx, cb)
	return args.Get(0).(service.TransactionResponse), args.Error(1)
}
