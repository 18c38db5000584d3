package paypal

const (
	CodeSuccess         = "approved"
	CodeConnection      = "CONNECTION_ERROR"
	CodeInvalidResponse = "INVALID_RESPONSE"
	CodeAuth            = "AUTHENTICATION_FAILURE"
	CodeCancelled       = "CANCELLED"
	CodeMismatch        = "PAYMENT_MISMATCH"
	CodeInternal        = "INTERNAL_ERROR"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to paypal",
	CodeInvalidResponse: "invalid response from paypal",
	CodeAuth:            "paypal rejected client credentials",
	CodeCancelled:       "payment cancelled by payer",
	CodeMismatch:        "paypal payment does not belong to this transaction",
	CodeInternal:        "failed to build paypal request",

	"created":                            "payment was created but not approved",
	"failed":                             "payment failed",
	"VALIDATION_ERROR":                   "invalid request",
	"PAYMENT_NOT_APPROVED_FOR_EXECUTION": "payer has not approved the payment",
	"PAYMENT_ALREADY_DONE":               "payment has already been completed",
	"INSTRUMENT_DECLINED":                "funding instrument was declined",
	"PAYER_ACTION_REQUIRED":              "payer action required",
	"INSUFFICIENT_FUNDS":                 "insufficient funds",
	"TRANSACTION_REFUSED":                "transaction refused",
	"INVALID_RESOURCE_ID":                "payment not found",
	"CURRENCY_NOT_ALLOWED":               "currency is not supported",
	"DUPLICATE_TRANSACTION":              "duplicate invoice number",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
