package asanpardakht

const (
	CodeSuccess         = "0"
	CodeVerified        = "500"
	CodeReconciled      = "600"
	CodeConnection      = "-100"
	CodeInvalidResponse = "-101"
	CodeCrypto          = "-102"
	CodeAmountMismatch  = "-103"
	CodeInternal        = "-104"
)

var messages = map[string]string{
	CodeSuccess:         "transaction completed successfully",
	CodeConnection:      "failed to connect to asanpardakht",
	CodeInvalidResponse: "invalid response from asanpardakht",
	CodeCrypto:          "failed to encrypt or decrypt asanpardakht data",
	CodeAmountMismatch:  "paid amount does not match transaction",
	CodeInternal:        "failed to build asanpardakht request",

	"1":   "payment cancelled by payer",
	"301": "invalid merchant configuration",
	"302": "encryption key is invalid",
	"303": "decryption failed",
	"304": "invalid request parameters",
	"305": "invalid amount",
	"306": "invalid ip address",
	"307": "invalid callback url",
	"308": "invalid order id",
	"309": "duplicate order id",
	"310": "merchant is not active",
	"311": "invalid credentials",
	"312": "refid is invalid",
	"313": "amount exceeds the limit",
	"400": "service is temporarily unavailable",
	"401": "internal error",
	"500": "transaction verified",
	"501": "verification failed",
	"502": "transaction not found",
	"503": "transaction has already been verified",
	"504": "verification window expired",
	"505": "transaction was not successful",
	"600": "transaction reconciled",
	"601": "reconciliation failed",
	"602": "transaction not found for reconciliation",
	"603": "transaction has already been reconciled",
	"604": "transaction is not verified",
	"605": "reconciliation window expired",
}

func Message(code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return "unknown error"
}
