package gateway

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	ErrPortNotFound        = errors.New("PORT_NOT_FOUND")
	ErrInvalidRequest      = errors.New("INVALID_REQUEST")
	ErrTransactionNotFound = errors.New("TRANSACTION_NOT_FOUND")
	ErrRetryRejected       = errors.New("RETRY_REJECTED")
	ErrMissingCredential   = errors.New("MISSING_CREDENTIAL")
	ErrMissingRefID        = errors.New("MISSING_REF_ID")
	ErrInvalidAmount       = errors.New("INVALID_AMOUNT")
)

// ConfigError reports a missing or unusable per-port configuration value.
type ConfigError struct {
	Port  PortName
	Field string
	Cause error
}

func NewConfigError(port PortName, field string, cause error) error {
	if cause == nil {
		cause = ErrMissingCredential
	}
	return ConfigError{Port: port, Field: field, Cause: cause}
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("%s: config %q: %v", e.Port, e.Field, e.Cause)
}

func (e ConfigError) Unwrap() error {
	return e.Cause
}

// GatewayError is a provider or transport failure. It carries enough context to
// rebuild the audit log row written for it.
type GatewayError struct {
	Port          PortName
	Code          string
	Message       string
	TransactionID int64
	Cause         error
}

func NewGatewayError(port PortName, code any, message string) *GatewayError {
	return &GatewayError{Port: port, Code: codeString(code), Message: message}
}

func (e *GatewayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s gateway error %s: %s: %v", e.Port, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s gateway error %s: %s", e.Port, e.Code, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

func (e *GatewayError) WithCause(err error) *GatewayError {
	e.Cause = err
	return e
}

func (e *GatewayError) Log() TransactionLog {
	return TransactionLog{
		TransactionID: e.TransactionID,
		StatusCode:    e.Code,
		Message:       e.Message,
	}
}

// AsGatewayError unwraps err into a *GatewayError when it carries one.
func AsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

func codeString(code any) string {
	switch c := code.(type) {
	case string:
		return c
	case int:
		return strconv.Itoa(c)
	case int64:
		return strconv.FormatInt(c, 10)
	case fmt.Stringer:
		return c.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(c)
	}
}
