package sadad

const (
	CodeSuccess         = "0"
	CodeConnection      = "-100"
	CodeInvalidResponse = "-101"
	CodeSign            = "-102"
	CodeAmountMismatch  = "-103"
	CodeInternal        = "-104"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to sadad gateway",
	CodeInvalidResponse: "invalid response from sadad gateway",
	CodeSign:            "failed to sign sadad request",
	CodeAmountMismatch:  "paid amount does not match transaction",
	CodeInternal:        "failed to build sadad request",

	"-1":   "invalid request parameters or payment cancelled",
	"3":    "merchant is not valid",
	"23":   "merchant is not active",
	"58":   "terminal is not allowed to perform this transaction",
	"61":   "amount exceeds the allowed limit",
	"101":  "payment request has expired",
	"1000": "wrong order of verification request",
	"1001": "invalid parameters",
	"1002": "system error",
	"1003": "invalid ip address",
	"1004": "invalid merchant number",
	"1006": "system error",
	"1011": "duplicate request, order id already used",
	"1012": "invalid merchant information",
	"1015": "unknown bank response",
	"1017": "service unavailable for this merchant",
	"1018": "invalid amount",
	"1019": "payment type not allowed",
	"1020": "invalid terminal",
	"1023": "invalid sign data",
	"1024": "invalid local date time",
	"1025": "invalid amount",
	"1026": "payment gateway is not active",
	"1027": "invalid ip address",
	"1028": "invalid amount",
	"1029": "invalid return url",
	"1030": "invalid national code",
	"1031": "invalid additional data",
	"1032": "invalid terminal",
	"1033": "invalid merchant",
	"1036": "invalid request",
	"1037": "invalid merchant or terminal",
	"1053": "invalid merchant or terminal",
	"1055": "invalid transaction",
	"1056": "system is temporarily unavailable",
	"1058": "payment request sent from unknown ip",
	"1061": "duplicate order id",
	"1064": "invalid order id",
	"1065": "connection to bank failed",
	"1066": "payment is temporarily unavailable",
	"1068": "system error",
	"1072": "verification request failed",
	"1101": "invalid amount",
	"1103": "system error",
	"1104": "system error",
	"1105": "system error",
	"1106": "invalid token",
	"1203": "invalid transaction",
	"1204": "invalid terminal",
	"1205": "invalid merchant",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
