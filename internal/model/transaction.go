package model

import (
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
	"gorm.io/datatypes"
)

type Transaction struct {
	ID           int64             `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Port         string            `gorm:"column:port;type:varchar(32);not null;index"`
	Amount       int64             `gorm:"column:amount;not null"`
	RefID        *string           `gorm:"column:ref_id;type:varchar(255);index"`
	TrackingCode *string           `gorm:"column:tracking_code;type:varchar(255)"`
	Status       string            `gorm:"column:status;type:varchar(16);not null;index"`
	PayerMeta    datatypes.JSONMap `gorm:"column:payer_meta"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

func NewTransaction(tx *gateway.Transaction) *Transaction {
	return &Transaction{
		ID:           tx.ID,
		Port:         tx.Port.String(),
		Amount:       tx.Amount,
		RefID:        tx.RefID,
		TrackingCode: tx.TrackingCode,
		Status:       string(tx.Status),
		PayerMeta:    datatypes.JSONMap(tx.PayerMeta),
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func (t *Transaction) Gateway() *gateway.Transaction {
	return &gateway.Transaction{
		ID:           t.ID,
		Port:         gateway.PortName(t.Port),
		Amount:       t.Amount,
		RefID:        t.RefID,
		TrackingCode: t.TrackingCode,
		Status:       gateway.Status(t.Status),
		PayerMeta:    map[string]any(t.PayerMeta),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}
