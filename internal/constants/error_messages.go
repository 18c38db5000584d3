package constants

import "net/http"

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodePortNotFound        = "PORT_NOT_FOUND"
	ErrCodeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	ErrCodeRetryRejected       = "RETRY_REJECTED"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeMissingRefID        = "MISSING_REF_ID"
	ErrCodeGatewayConfig       = "GATEWAY_CONFIG_ERROR"
	ErrCodeProviderError       = "PROVIDER_ERROR"
	ErrCodeLockTimeout         = "LOCK_TIMEOUT"
	ErrCodeDatabase            = "DATABASE_ERROR"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

const (
	ErrMsgValidationFailed    = "request validation failed"
	ErrMsgInvalidRequestBody  = "failed to parse request body"
	ErrMsgInvalidRequest      = "callback does not match any pending transaction"
	ErrMsgPortNotFound        = "port is not supported"
	ErrMsgTransactionNotFound = "transaction not found"
	ErrMsgRetryRejected       = "transaction is already finalized"
	ErrMsgInvalidAmount       = "amount must be positive"
	ErrMsgMissingRefID        = "transaction has no bank reference yet"
	ErrMsgGatewayConfig       = "port is not configured"
	ErrMsgProviderError       = "bank rejected the transaction"
	ErrMsgLockTimeout         = "transaction is being processed, try again"
	ErrMsgDatabase            = "database error"
	ErrMsgInternalError       = "Internal server error"
)

const (
	MsgPaymentCreated   = "payment created successfully"
	MsgPaymentRetrieved = "payment retrieved successfully"
	MsgLogsRetrieved    = "payment logs retrieved successfully"
	MsgPaymentVerified  = "payment verified successfully"
)

var errorMessages = map[string]string{
	ErrCodeValidationFailed:    ErrMsgValidationFailed,
	ErrCodeInvalidRequestBody:  ErrMsgInvalidRequestBody,
	ErrCodeInvalidRequest:      ErrMsgInvalidRequest,
	ErrCodePortNotFound:        ErrMsgPortNotFound,
	ErrCodeTransactionNotFound: ErrMsgTransactionNotFound,
	ErrCodeRetryRejected:       ErrMsgRetryRejected,
	ErrCodeInvalidAmount:       ErrMsgInvalidAmount,
	ErrCodeMissingRefID:        ErrMsgMissingRefID,
	ErrCodeGatewayConfig:       ErrMsgGatewayConfig,
	ErrCodeProviderError:       ErrMsgProviderError,
	ErrCodeLockTimeout:         ErrMsgLockTimeout,
	ErrCodeDatabase:            ErrMsgDatabase,
	ErrCodeInternalError:       ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidRequestBody, ErrCodeInvalidRequest, ErrCodeInvalidAmount, ErrCodePortNotFound:
		return http.StatusBadRequest
	case ErrCodeTransactionNotFound:
		return http.StatusNotFound
	case ErrCodeRetryRejected, ErrCodeMissingRefID, ErrCodeLockTimeout:
		return http.StatusConflict
	case ErrCodeProviderError:
		return http.StatusBadGateway
	case ErrCodeGatewayConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
