package constants

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := map[string]int{
		ErrCodeInvalidRequest:      http.StatusBadRequest,
		ErrCodeTransactionNotFound: http.StatusNotFound,
		ErrCodeRetryRejected:       http.StatusConflict,
		ErrCodeProviderError:       http.StatusBadGateway,
		ErrCodeValidationFailed:    http.StatusUnprocessableEntity,
		"SOMETHING_ELSE":           http.StatusInternalServerError,
	}
	for code, status := range cases {
		assert.Equal(t, status, GetHTTPStatus(code), code)
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, ErrMsgRetryRejected, GetErrorMessage(ErrCodeRetryRejected))
	assert.Equal(t, ErrMsgInternalError, GetErrorMessage("SOMETHING_ELSE"))
}
