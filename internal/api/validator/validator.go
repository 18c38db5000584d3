package validator

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Behyna/bankgateway/internal/api/contract"
	"github.com/Behyna/bankgateway/internal/constants"
	"github.com/Behyna/bankgateway/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const (
	sep = " and "
)

type Error struct {
	Error       bool
	FailedField string
	Tag         string
	Value       interface{}
}

type IXValidator interface {
	Validator(data any, message string, c *fiber.Ctx) (responseErr contract.Response)
	Validate(data interface{}) []Error
}

type XValidator struct {
	validator *validator.Validate
	metrics   *metrics.Metrics
}

func NewXValidator(validate *validator.Validate, metrics *metrics.Metrics) (IXValidator, error) {
	validate.RegisterTagNameFunc(jsonTagName)
	for key, function := range valid {
		if err := validate.RegisterValidation(key, function); err != nil {
			return nil, fmt.Errorf("register %q validation: %w", key, err)
		}
	}

	return &XValidator{
		validator: validate,
		metrics:   metrics,
	}, nil
}

// Validator parses the body into data and validates it. A non-empty Code in the
// returned response means the request was rejected and the status is already set.
func (x XValidator) Validator(data any, message string, c *fiber.Ctx) (responseErr contract.Response) {
	start := time.Now()

	if err := c.BodyParser(data); err != nil {
		c.Status(http.StatusBadRequest)
		return contract.Response{
			Code:    constants.ErrCodeInvalidRequestBody,
			Message: constants.GetErrorMessage(constants.ErrCodeInvalidRequestBody),
		}
	}

	if errs := x.Validate(data); len(errs) > 0 && errs[0].Error {
		errMsgs := make([]string, 0)
		for _, err := range errs {
			errMsgs = append(errMsgs, fmt.Sprintf(
				message,
				err.FailedField,
			))

			if x.metrics != nil {
				x.metrics.RecordValidationError(err.FailedField, err.Tag)
			}
		}
		errMess := strings.Join(errMsgs, sep)
		c.Status(http.StatusUnprocessableEntity)

		if x.metrics != nil {
			x.metrics.RecordValidationDuration("validation_error", time.Since(start))
		}

		return contract.Response{
			Code:    constants.ErrCodeValidationFailed,
			Message: errMess,
		}
	}

	if x.metrics != nil {
		x.metrics.RecordValidationDuration("validation_success", time.Since(start))
	}

	return responseErr
}

func (x XValidator) Validate(data interface{}) []Error {
	var validationErrors []Error

	errs := x.validator.Struct(data)
	var fieldErrs validator.ValidationErrors
	if errors.As(errs, &fieldErrs) {
		for _, err := range fieldErrs {
			var elem Error
			elem.FailedField = err.Field()
			elem.Tag = err.Tag()
			elem.Value = err.Value()
			elem.Error = true
			validationErrors = append(validationErrors, elem)
		}
	}
	return validationErrors
}
