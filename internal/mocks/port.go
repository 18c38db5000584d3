package mocks

import (
	"context"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/stretchr/testify/mock"
)

type Port struct {
	mock.Mock
}

func (p *Port) Configure(opts gateway.Options) {
	p.Called(opts)
}

func (p *Port) SetPortName(name gateway.PortName) {
	p.Called(name)
}

func (p *Port) PortName() gateway.PortName {
	args := p.Called()
	return args.Get(0).(gateway.PortName)
}

func (p *Port) Boot() error {
	return p.Called().Error(0)
}

func (p *Port) Ready(ctx context.Context, payment gateway.Payment) (*gateway.Transaction, error) {
	args := p.Called(ctx, payment)
	tx, _ := args.Get(0).(*gateway.Transaction)
	return tx, args.Error(1)
}

func (p *Port) Redirect(ctx context.Context, tx *gateway.Transaction) (*gateway.Redirect, error) {
	args := p.Called(ctx, tx)
	redirect, _ := args.Get(0).(*gateway.Redirect)
	return redirect, args.Error(1)
}

func (p *Port) Verify(ctx context.Context, tx *gateway.Transaction, cb gateway.Callback) error {
	return p.Called(ctx, tx, cb).Error(0)
}
