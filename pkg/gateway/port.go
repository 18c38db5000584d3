package gateway

import (
	"context"
	"time"

	"github.com/Behyna/bankgateway/pkg/httpclient"
	"go.uber.org/zap"
)

// Port is implemented by every bank driver.
//
// Ready creates the PENDING row before contacting the bank and returns it with
// RefID attached. Redirect is read only. Verify consumes the bank's callback and
// moves the row to SUCCEED or FAILED.
type Port interface {
	Configure(opts Options)
	SetPortName(name PortName)
	PortName() PortName
	Boot() error
	Ready(ctx context.Context, payment Payment) (*Transaction, error)
	Redirect(ctx context.Context, tx *Transaction) (*Redirect, error)
	Verify(ctx context.Context, tx *Transaction, callback Callback) error
}

type Options struct {
	Config *Config
	Store  Store
	HTTP   httpclient.HTTPClient
	Logger *zap.Logger
	Now    func() time.Time
}
