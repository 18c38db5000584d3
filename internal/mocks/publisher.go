package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// Publisher mocks mq.Publisher.
type Publisher struct {
	mock.Mock
}

func (p *Publisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	return p.Called(ctx, exchange, routingKey, body).Error(0)
}
