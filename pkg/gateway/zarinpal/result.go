package zarinpal

const (
	CodeSuccess         = "100"
	CodeVerified        = "101"
	CodeConnection      = "-1"
	CodeInvalidResponse = "-2"
	CodeInternal        = "-3"
	CodeCancelled       = "NOK"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeVerified:        "transaction has already been verified",
	CodeConnection:      "failed to connect to zarinpal",
	CodeInvalidResponse: "invalid response from zarinpal",
	CodeInternal:        "failed to build zarinpal request",
	CodeCancelled:       "payment cancelled by payer",
	"-9":                "request validation failed",
	"-10":               "invalid merchant id or ip address",
	"-11":               "merchant is not active",
	"-12":               "too many attempts, try again later",
	"-15":               "terminal is suspended",
	"-16":               "merchant access level is too low",
	"-30":               "floating fee is not allowed",
	"-31":               "merchant account is not set for settlement",
	"-32":               "wages exceed the amount",
	"-33":               "invalid wage percentage",
	"-34":               "wages exceed the allowed amount",
	"-35":               "too many wage receivers",
	"-40":               "invalid expire in",
	"-50":               "paid amount does not match the requested amount",
	"-51":               "payment failed",
	"-52":               "unexpected error",
	"-53":               "authority does not belong to this merchant",
	"-54":               "invalid authority",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
