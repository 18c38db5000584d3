package saman

const (
	CodeSuccess         = "0"
	CodeConnection      = "-100"
	CodeInvalidResponse = "-101"
	CodeAmountMismatch  = "-102"
	CodeInternal        = "-103"

	StateOK = "OK"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to saman gateway",
	CodeInvalidResponse: "invalid response from saman gateway",
	CodeAmountMismatch:  "paid amount does not match transaction",
	CodeInternal:        "failed to build saman request",

	"-1":  "internal bank error",
	"-2":  "deposits are not equal",
	"-3":  "input contains invalid characters",
	"-4":  "merchant authentication failed",
	"-6":  "transaction has already been reversed",
	"-7":  "reference number is empty",
	"-8":  "input length exceeded",
	"-9":  "amount contains invalid characters",
	"-10": "reference number is not valid base64",
	"-11": "input length is less than minimum",
	"-12": "negative amount",
	"-13": "amount exceeds original transaction",
	"-14": "transaction not found",
	"-15": "amount contains decimal point",
	"-16": "internal bank error",
	"-17": "partial reversal is not allowed",
	"-18": "invalid ip address",

	"Canceled By User":                "payment cancelled by payer",
	"Invalid Amount":                  "invalid amount",
	"Invalid Transaction":             "invalid transaction",
	"Invalid Card Number":             "invalid card number",
	"No Such Issuer":                  "card issuer not found",
	"Expired Card Pick Up":            "card has expired",
	"Incorrect PIN":                   "incorrect pin",
	"No Sufficient Funds":             "insufficient funds",
	"Issuer Down Slm":                 "card issuer is unavailable",
	"TME Error":                       "bank error",
	"Exceeds Withdrawal Amount Limit": "withdrawal amount limit exceeded",
	"Transaction Cannot Be Completed": "transaction cannot be completed",
	"Allowable PIN Tries Exceeded":    "pin tries exceeded",
	"Response Received Too Late":      "bank response received too late",
	"Suspected Fraud Pick Up":         "suspected fraud",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
