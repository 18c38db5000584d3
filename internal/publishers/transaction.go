package publishers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Behyna/bankgateway/internal/config"
	"github.com/Behyna/bankgateway/internal/metrics"
	"github.com/Behyna/bankgateway/internal/service"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/Behyna/bankgateway/pkg/mq"
	"go.uber.org/zap"
)

const (
	RoutingKeySucceeded = "payment.succeeded"
	RoutingKeyFailed    = "payment.failed"
)

// Bindings lists the queues declared next to the payment exchange.
var Bindings = []mq.Binding{
	{Queue: "payment.succeeded", RoutingKey: RoutingKeySucceeded},
	{Queue: "payment.failed", RoutingKey: RoutingKeyFailed},
}

type TransactionEvent struct {
	TransactionID int64          `json:"transaction_id"`
	Port          string         `json:"port"`
	Amount        int64          `json:"amount"`
	Status        string         `json:"status"`
	RefID         string         `json:"ref_id,omitempty"`
	TrackingCode  string         `json:"tracking_code,omitempty"`
	PayerMeta     map[string]any `json:"payer_meta,omitempty"`
	OccurredAt    time.Time      `json:"occurred_at"`
}

type transactionPublisher struct {
	publisher mq.Publisher
	exchange  string
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewTransactionPublisher(publisher mq.Publisher, cfg *config.Config, metrics *metrics.Metrics, logger *zap.Logger) service.TransactionPublisher {
	return &transactionPublisher{
		publisher: publisher,
		exchange:  cfg.RabbitMQ.Exchange,
		metrics:   metrics,
		logger:    logger,
	}
}

func (p *transactionPublisher) Publish(ctx context.Context, tx *gateway.Transaction) error {
	routingKey, ok := routingKey(tx.Status)
	if !ok {
		return nil
	}

	body, err := json.Marshal(TransactionEvent{
		TransactionID: tx.ID,
		Port:          tx.Port.String(),
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		RefID:         tx.RefIDValue(),
		TrackingCode:  tx.TrackingCodeValue(),
		PayerMeta:     tx.PayerMeta,
		OccurredAt:    tx.UpdatedAt,
	})
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, p.exchange, routingKey, body); err != nil {
		p.metrics.RecordEventPublished(routingKey, "error")
		p.logger.Error("Failed to publish transaction event",
			zap.Error(err),
			zap.Int64("transactionID", tx.ID),
			zap.String("routingKey", routingKey))
		return err
	}

	p.metrics.RecordEventPublished(routingKey, "success")
	p.logger.Info("Published transaction event",
		zap.Int64("transactionID", tx.ID),
		zap.String("routingKey", routingKey))

	return nil
}

func routingKey(status gateway.Status) (string, bool) {
	switch status {
	case gateway.StatusSucceed:
		return RoutingKeySucceeded, true
	case gateway.StatusFailed:
		return RoutingKeyFailed, true
	default:
		return "", false
	}
}
