package mocks

import (
	"context"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct {
	mock.Mock
}

func (p *PaymentGateway) Make(name string) (gateway.Port, error) {
	args := p.Called(name)
	port, _ := args.Get(0).(gateway.Port)
	return port, args.Error(1)
}

func (p *PaymentGateway) Verify(ctx context.Context, cb gateway.Callback) (*gateway.Transaction, error) {
	args := p.Called(ctx, cb)
	tx, _ := args.Get(0).(*gateway.Transaction)
	return tx, args.Error(1)
}
