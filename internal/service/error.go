package service

import (
	"errors"

	"github.com/Behyna/bankgateway/internal/constants"
	"github.com/Behyna/bankgateway/internal/repository"
	"github.com/Behyna/bankgateway/pkg/gateway"
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}

// toServiceError classifies gateway and storage errors into API error codes.
func toServiceError(err error) error {
	var svcErr Error
	if errors.As(err, &svcErr) {
		return err
	}

	var cfgErr gateway.ConfigError
	switch {
	case errors.Is(err, gateway.ErrPortNotFound):
		return NewServiceError(constants.ErrCodePortNotFound, err)
	case errors.Is(err, gateway.ErrInvalidAmount):
		return NewServiceError(constants.ErrCodeInvalidAmount, err)
	case errors.Is(err, gateway.ErrTransactionNotFound):
		return NewServiceError(constants.ErrCodeTransactionNotFound, err)
	case errors.Is(err, gateway.ErrRetryRejected):
		return NewServiceError(constants.ErrCodeRetryRejected, err)
	case errors.Is(err, gateway.ErrMissingRefID):
		return NewServiceError(constants.ErrCodeMissingRefID, err)
	case errors.Is(err, repository.ErrLockTimeout):
		return NewServiceError(constants.ErrCodeLockTimeout, err)
	case errors.As(err, &cfgErr):
		return NewServiceError(constants.ErrCodeGatewayConfig, err)
	}

	if _, ok := gateway.AsGatewayError(err); ok {
		return NewServiceError(constants.ErrCodeProviderError, err)
	}
	if errors.Is(err, gateway.ErrInvalidRequest) {
		return NewServiceError(constants.ErrCodeInvalidRequest, err)
	}

	return NewServiceError(constants.ErrCodeInternalError, err)
}
