package v1

type CreatePaymentRequest struct {
	Port           string `json:"port" validate:"required,port"`
	Amount         int64  `json:"amount" validate:"required,min=1"`
	CallbackURL    string `json:"callback_url" validate:"omitempty,url"`
	Description    string `json:"description" validate:"max=255"`
	Mobile         string `json:"mobile" validate:"omitempty,numeric,min=10,max=13"`
	Email          string `json:"email" validate:"omitempty,email"`
	AdditionalData string `json:"additional_data" validate:"max=500"`
}
