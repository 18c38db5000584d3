package mocks

import (
	"context"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/stretchr/testify/mock"
)

type TransactionPublisher struct {
	mock.Mock
}

func (t *TransactionPublisher) Publish(ctx context.Context, tx *gateway.Transaction) error {
	return t.Called(ctx, tx).Error(0)
}
