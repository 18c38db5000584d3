package model

import (
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
)

type TransactionLog struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	TransactionID int64     `gorm:"column:transaction_id;not null;index;<-:create"`
	StatusCode    string    `gorm:"column:result_code;type:varchar(64);<-:create"`
	Message       string    `gorm:"column:result_message;type:text;<-:create"`
	CreatedAt     time.Time `gorm:"column:created_at;<-:create"`
}

func NewTransactionLog(log *gateway.TransactionLog) *TransactionLog {
	return &TransactionLog{
		TransactionID: log.TransactionID,
		StatusCode:    log.StatusCode,
		Message:       log.Message,
		CreatedAt:     log.CreatedAt,
	}
}

func (l *TransactionLog) Gateway() gateway.TransactionLog {
	return gateway.TransactionLog{
		ID:            l.ID,
		TransactionID: l.TransactionID,
		StatusCode:    l.StatusCode,
		Message:       l.Message,
		CreatedAt:     l.CreatedAt,
	}
}
