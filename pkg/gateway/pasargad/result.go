package pasargad

const (
	CodeSuccess         = "0"
	CodeConnection      = "-1"
	CodeInvalidResponse = "-2"
	CodeNotApproved     = "-3"
	CodeInvoiceMismatch = "-4"
	CodeAmountMismatch  = "-5"
	CodeVerifyRejected  = "-6"
	CodeSign            = "-7"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to pasargad gateway",
	CodeInvalidResponse: "invalid response from pasargad gateway",
	CodeNotApproved:     "transaction was not approved by bank",
	CodeInvoiceMismatch: "invoice number does not match transaction",
	CodeAmountMismatch:  "paid amount does not match transaction",
	CodeVerifyRejected:  "payment verification rejected by bank",
	CodeSign:            "failed to sign pasargad request",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "transaction failed"
}
