package payir

const (
	CodeSuccess         = "1"
	CodeCancelled       = "0"
	CodeConnection      = "-100"
	CodeInvalidResponse = "-101"
	CodeAmountMismatch  = "-102"
	CodeInternal        = "-103"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeCancelled:       "payment cancelled or failed at pay.ir",
	CodeConnection:      "failed to connect to pay.ir",
	CodeInvalidResponse: "invalid response from pay.ir",
	CodeAmountMismatch:  "paid amount does not match transaction",
	CodeInternal:        "failed to build pay.ir request",

	"-1":  "api key is required",
	"-2":  "amount is required",
	"-3":  "amount must be numeric",
	"-4":  "amount must be at least 10000 rials",
	"-5":  "redirect url is required",
	"-6":  "no gateway found for this api key",
	"-7":  "gateway is not active",
	"-8":  "redirect url does not match the registered domain",
	"-9":  "gateway is not active",
	"-10": "gateway is blocked",
	"-11": "ip address is not allowed",
	"-12": "redirect url is not valid",
	"-15": "mobile format is not valid",
	"-16": "factor number is too long",
	"-17": "description is too long",
	"-18": "factor number is not valid",
	"-19": "amount exceeds the allowed limit",
	"-21": "valid national code is required",
	"-22": "valid card number is required",
	"-23": "card number format is not valid",
	"-24": "transaction not found",
	"-25": "transaction failed",
	"-26": "transaction was verified before",
	"-27": "token is required",
	"-28": "token is not valid",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
