package parsian

const (
	CodeSuccess         = "0"
	CodeConnection      = "-1"
	CodeInvalidResponse = "-2"
	CodeInternal        = "-3"
	CodeUnknown         = "-32768"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to parsian gateway",
	CodeInvalidResponse: "invalid response from parsian gateway",
	CodeInternal:        "failed to build parsian request",
	CodeUnknown:         "unknown error",
	"-1552":             "payment request is not allowed to be returned",
	"-1551":             "payment request has already been returned",
	"-1550":             "transaction cannot be reversed in current state",
	"-1549":             "reversal time window has expired",
	"-1548":             "bill payment request failed",
	"-1540":             "transaction confirmation failed",
	"-1536":             "bill payment info request failed",
	"-1533":             "transaction has already been confirmed",
	"-1532":             "transaction has been confirmed by merchant",
	"-1531":             "transaction confirmation failed",
	"-1530":             "merchant is not allowed to confirm this transaction",
	"-1528":             "payment information not found",
	"-1527":             "payment request type is invalid",
	"-1507":             "reversal request sent to switch",
	"-1505":             "transaction confirmed by merchant",
	"-138":              "payment cancelled by payer",
	"-132":              "amount is less than the minimum allowed",
	"-131":              "invalid token",
	"-130":              "token has expired",
	"-128":              "invalid ip address",
	"-127":              "invalid ip address format",
	"-126":              "invalid merchant pin",
	"-121":              "invalid order id",
	"-113":              "invalid request parameter",
	"-112":              "duplicate order id",
	"-111":              "amount exceeds the terminal limit",
	"-110":              "merchant cannot use this service",
	"-108":              "reversal is not enabled for this merchant",
	"-107":              "additional data is not enabled for this merchant",
	"-105":              "terminal is disabled",
	"-104":              "merchant is disabled",
	"-103":              "invalid amount",
	"-102":              "transaction reversed successfully",
	"-101":              "merchant authentication failed",
	"-100":              "merchant is disabled",
	"2":                 "transaction completed before",
	"3":                 "invalid merchant",
	"5":                 "transaction declined by issuer",
	"15":                "card does not exist",
	"33":                "card has expired",
	"41":                "lost card",
	"43":                "stolen card",
	"51":                "insufficient funds",
	"54":                "card has expired",
	"55":                "invalid card pin",
	"56":                "card is not valid",
	"57":                "transaction not permitted to card holder",
	"58":                "transaction not permitted to terminal",
	"61":                "amount exceeds withdrawal limit",
	"62":                "restricted card",
	"65":                "withdrawal frequency limit exceeded",
	"75":                "pin tries exceeded",
	"91":                "issuer is unavailable",
}

// Message returns the text for a parsian status code.
func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return messages[CodeUnknown]
}
