package service

import (
	"net/http"
	"time"

	"github.com/Behyna/bankgateway/pkg/gateway"
)

type TransactionResponse struct {
	ID           int64          `json:"id"`
	Port         string         `json:"port"`
	Amount       int64          `json:"amount"`
	RefID        string         `json:"ref_id,omitempty"`
	TrackingCode string         `json:"tracking_code,omitempty"`
	Status       string         `json:"status"`
	StatusText   string         `json:"status_text"`
	PayerMeta    map[string]any `json:"payer_meta,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type RedirectField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type RedirectResponse struct {
	Port   string          `json:"port"`
	Method string          `json:"method"`
	URL    string          `json:"url"`
	Fields []RedirectField `json:"fields,omitempty"`
}

type CreatePaymentResponse struct {
	Transaction TransactionResponse `json:"transaction"`
	Redirect    RedirectResponse    `json:"redirect"`
}

type LogResponse struct {
	ID         int64     `json:"id"`
	StatusCode string    `json:"status_code"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func newTransactionResponse(tx *gateway.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:           tx.ID,
		Port:         tx.Port.String(),
		Amount:       tx.Amount,
		RefID:        tx.RefIDValue(),
		TrackingCode: tx.TrackingCodeValue(),
		Status:       string(tx.Status),
		StatusText:   tx.Status.Text(),
		PayerMeta:    tx.PayerMeta,
		CreatedAt:    tx.CreatedAt,
		UpdatedAt:    tx.UpdatedAt,
	}
}

func newRedirectResponse(port gateway.PortName, r *gateway.Redirect) RedirectResponse {
	res := RedirectResponse{Port: port.String(), Method: r.Method, URL: r.URL}
	for _, f := range r.Fields {
		res.Fields = append(res.Fields, RedirectField{Name: f.Name, Value: f.Value})
	}
	return res
}

func (r RedirectResponse) IsPost() bool {
	return r.Method == http.MethodPost
}
