package gateway

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

type Transaction struct {
	ID           int64
	Port         PortName
	Amount       int64
	RefID        *string
	TrackingCode *string
	Status       Status
	PayerMeta    map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (t *Transaction) RefIDValue() string {
	if t == nil || t.RefID == nil {
		return ""
	}
	return *t.RefID
}

func (t *Transaction) TrackingCodeValue() string {
	if t == nil || t.TrackingCode == nil {
		return ""
	}
	return *t.TrackingCode
}

type TransactionLog struct {
	ID            int64
	TransactionID int64
	StatusCode    string
	Message       string
	CreatedAt     time.Time
}

// Payment carries what the caller knows about a purchase before it is initiated.
type Payment struct {
	Amount         int64
	CallbackURL    string
	Description    string
	Mobile         string
	Email          string
	AdditionalData string
}

// Finalization is the single terminal update applied to a PENDING transaction.
type Finalization struct {
	Status       Status
	TrackingCode string
	PayerMeta    map[string]any
}

type Field struct {
	Name  string
	Value string
}

// Redirect describes how the payer's browser reaches the bank: a plain GET
// to URL, or a POST of Fields in order.
type Redirect struct {
	Method string
	URL    string
	Fields []Field
}

func NewGetRedirect(target string) *Redirect {
	return &Redirect{Method: http.MethodGet, URL: target}
}

func NewPostRedirect(target string, fields ...Field) *Redirect {
	return &Redirect{Method: http.MethodPost, URL: target, Fields: fields}
}

func (r *Redirect) IsPost() bool {
	return r.Method == http.MethodPost
}

// Callback is the read-only view drivers get of the bank's return request.
type Callback interface {
	Get(key string) string
	Has(key string) bool
}

type Params map[string]string

// NewParams merges query and form values. Earlier sources win on duplicate keys.
func NewParams(sources ...url.Values) Params {
	p := make(Params)
	for _, src := range sources {
		for k, v := range src {
			if _, ok := p[k]; ok || len(v) == 0 {
				continue
			}
			p[k] = v[0]
		}
	}
	return p
}

func (p Params) Get(key string) string {
	return strings.TrimSpace(p[key])
}

func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}
