package service

type CreatePaymentCommand struct {
	Port           string
	Amount         int64
	CallbackURL    string
	Description    string
	Mobile         string
	Email          string
	AdditionalData string
}
