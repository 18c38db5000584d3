package mellat

const (
	CodeSuccess         = "0"
	CodeAlreadySettled  = "45"
	CodeConnection      = "-1"
	CodeInvalidResponse = "-2"
	CodeInternal        = "-3"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to mellat gateway",
	CodeInvalidResponse: "invalid response from mellat gateway",
	CodeInternal:        "failed to build mellat request",
	"11":                "invalid card number",
	"12":                "insufficient funds",
	"13":                "wrong pin",
	"14":                "pin attempts exceeded",
	"15":                "invalid card",
	"16":                "withdrawal count exceeded",
	"17":                "payment cancelled by payer",
	"18":                "card has expired",
	"19":                "withdrawal amount exceeded",
	"111":               "invalid card issuer",
	"112":               "card issuer switch error",
	"113":               "no response from card issuer",
	"114":               "card holder is not allowed to perform this transaction",
	"21":                "invalid merchant",
	"23":                "security error",
	"24":                "invalid merchant credentials",
	"25":                "invalid amount",
	"31":                "invalid response",
	"32":                "invalid input format",
	"33":                "invalid account",
	"34":                "system error",
	"35":                "invalid date",
	"41":                "duplicate order id",
	"42":                "sale transaction not found",
	"43":                "verify request already sent",
	"44":                "verify request not found",
	"45":                "transaction already settled",
	"46":                "transaction not settled",
	"47":                "settle transaction not found",
	"48":                "transaction reversed",
	"49":                "refund transaction not found",
	"412":               "invalid bill id",
	"413":               "invalid payment id",
	"414":               "invalid bill issuer",
	"415":               "session expired",
	"416":               "failed to save data",
	"417":               "invalid payer id",
	"418":               "failed to fetch customer information",
	"419":               "data entry attempts exceeded",
	"421":               "invalid ip address",
	"51":                "duplicate transaction",
	"54":                "reference transaction not found",
	"55":                "invalid transaction",
	"61":                "settlement error",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
