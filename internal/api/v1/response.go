package v1

import "github.com/Behyna/bankgateway/internal/service"

type PortsResponse struct {
	Ports []string `json:"ports"`
}

type LogsResponse struct {
	TransactionID int64                 `json:"transaction_id"`
	Logs          []service.LogResponse `json:"logs"`
	Total         int                   `json:"total"`
}
