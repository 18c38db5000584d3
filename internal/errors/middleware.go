package errors

import (
	"errors"

	"github.com/Behyna/bankgateway/internal/api/contract"
	"github.com/Behyna/bankgateway/internal/api/middleware"
	"github.com/Behyna/bankgateway/internal/constants"
	"github.com/Behyna/bankgateway/internal/service"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/gofiber/fiber/v2"
)

func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var serviceErr service.Error
		if errors.As(err, &serviceErr) {
			return handleServiceError(c, serviceErr)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(contract.ResponseError{
				Code:    constants.ErrCodeInvalidRequest,
				Message: fiberErr.Message,
				TrackID: middleware.GetTrackID(c),
			})
		}

		return c.Status(fiber.StatusInternalServerError).JSON(contract.ResponseError{
			Code:    constants.ErrCodeInternalError,
			Message: constants.GetErrorMessage(constants.ErrCodeInternalError),
			TrackID: middleware.GetTrackID(c),
		})
	}
}

func handleServiceError(c *fiber.Ctx, err service.Error) error {
	errorCode := err.Code

	status := constants.GetHTTPStatus(errorCode)
	if status == fiber.StatusInternalServerError && err.Code != constants.ErrCodeInternalError {
		errorCode = constants.ErrCodeInternalError
	}

	res := contract.ResponseError{
		Code:    errorCode,
		Message: constants.GetErrorMessage(errorCode),
		TrackID: middleware.GetTrackID(c),
	}
	if gwErr, ok := gateway.AsGatewayError(err); ok {
		res.ProviderCode = gwErr.Code
	}

	return c.Status(status).JSON(res)
}
