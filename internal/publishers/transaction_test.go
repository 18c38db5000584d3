package publishers_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Behyna/bankgateway/internal/config"
	"github.com/Behyna/bankgateway/internal/metrics"
	"github.com/Behyna/bankgateway/internal/mocks"
	"github.com/Behyna/bankgateway/internal/publishers"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/mq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newPublisher(pub *mocks.Publisher) (*metrics.Metrics, func(ctx context.Context, tx *gateway.Transaction) error) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	cfg := &config.Config{RabbitMQ: mq.Config{Exchange: "payments"}}
	p := publishers.NewTransactionPublisher(pub, cfg, m, zap.NewNop())
	return m, p.Publish
}

func TestTransactionPublisher_Succeed(t *testing.T) {
	ctx := context.Background()
	pub := &mocks.Publisher{}
	m, publish := newPublisher(pub)

	tracking := "TRK-1"
	tx := &gateway.Transaction{ID: 5, Port: gateway.Saman, Amount: 1200, Status: gateway.StatusSucceed, TrackingCode: &tracking}

	var body []byte
	pub.On("Publish", ctx, "payments", publishers.RoutingKeySucceeded, mock.Anything).
		Run(func(args mock.Arguments) { body = args.Get(3).([]byte) }).
		Return(nil)

	require.NoError(t, publish(ctx, tx))

	var event publishers.TransactionEvent
	require.NoError(t, json.Unmarshal(body, &event))
	assert.Equal(t, int64(5), event.TransactionID)
	assert.Equal(t, "SAMAN", event.Port)
	assert.Equal(t, "SUCCEED", event.Status)
	assert.Equal(t, "TRK-1", event.TrackingCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(publishers.RoutingKeySucceeded, "success")))
}

func TestTransactionPublisher_Failed(t *testing.T) {
	ctx := context.Background()
	pub := &mocks.Publisher{}
	m, publish := newPublisher(pub)

	tx := &gateway.Transaction{ID: 6, Port: gateway.Mellat, Amount: 1000, Status: gateway.StatusFailed}
	pub.On("Publish", ctx, "payments", publishers.RoutingKeyFailed, mock.Anything).Return(errors.New("channel closed"))

	err := publish(ctx, tx)
	assert.EqualError(t, err, "channel closed")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsPublished.WithLabelValues(publishers.RoutingKeyFailed, "error")))
}

func TestTransactionPublisher_SkipsPending(t *testing.T) {
	pub := &mocks.Publisher{}
	_, publish := newPublisher(pub)

	tx := &gateway.Transaction{ID: 7, Port: gateway.Mellat, Amount: 1000, Status: gateway.StatusPending}
	require.NoError(t, publish(context.Background(), tx))
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
