package v1

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/Behyna/bankgateway/internal/api/contract"
	"github.com/Behyna/bankgateway/internal/api/middleware"
	"github.com/Behyna/bankgateway/internal/api/render"
	"github.com/Behyna/bankgateway/internal/api/validator"
	"github.com/Behyna/bankgateway/internal/constants"
	"github.com/Behyna/bankgateway/internal/metrics"
	"github.com/Behyna/bankgateway/internal/service"
	"github.com/Behyna/bankgateway/pkg/gateway"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger         *zap.Logger
	paymentService service.PaymentService
	XValidator     validator.IXValidator
	metrics        *metrics.Metrics
}

func NewHandler(logger *zap.Logger, paymentService service.PaymentService, XValidator validator.IXValidator, metrics *metrics.Metrics) *Handler {
	return &Handler{
		logger:         logger,
		paymentService: paymentService,
		XValidator:     XValidator,
		metrics:        metrics,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

func (h *Handler) Ports(c *fiber.Ctx) error {
	res := PortsResponse{}
	for _, p := range gateway.SupportedPorts() {
		res.Ports = append(res.Ports, p.String())
	}
	return c.JSON(contract.Response{Successful: true, Code: "success", TrackID: middleware.GetTrackID(c), Result: res})
}

func (h *Handler) CreatePayment(c *fiber.Ctx) error {
	start := time.Now()

	var handlerRequest CreatePaymentRequest
	validationStart := time.Now()

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	h.metrics.RecordValidationDuration("create_payment", time.Since(validationStart))

	if responseError.Code != "" {
		h.logger.Warn("Error Validator", zap.Any("request", handlerRequest))
		responseError.TrackID = middleware.GetTrackID(c)
		return c.JSON(responseError)
	}

	cmd := service.CreatePaymentCommand{
		Port:           handlerRequest.Port,
		Amount:         handlerRequest.Amount,
		CallbackURL:    handlerRequest.CallbackURL,
		Description:    handlerRequest.Description,
		Mobile:         handlerRequest.Mobile,
		Email:          handlerRequest.Email,
		AdditionalData: handlerRequest.AdditionalData,
	}

	payment, err := h.paymentService.Create(c.UserContext(), cmd)
	if err != nil {
		h.metrics.RecordPaymentError(portLabel(cmd.Port), errorCode(err))
		return err
	}

	h.metrics.RecordPaymentCreated(payment.Transaction.Port)

	h.logger.Info("Payment created successfully",
		zap.Int64("transactionID", payment.Transaction.ID),
		zap.String("port", payment.Transaction.Port),
		zap.Int64("amount", payment.Transaction.Amount),
		zap.Duration("duration", time.Since(start)),
	)

	return c.Status(fiber.StatusCreated).JSON(contract.Response{
		Successful: true,
		Code:       "success",
		Message:    constants.MsgPaymentCreated,
		TrackID:    middleware.GetTrackID(c),
		Result:     payment,
	})
}

func (h *Handler) GetPayment(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return err
	}

	payment, err := h.paymentService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(contract.Response{
		Successful: true,
		Code:       "success",
		Message:    constants.MsgPaymentRetrieved,
		TrackID:    middleware.GetTrackID(c),
		Result:     payment,
	})
}

func (h *Handler) GetPaymentLogs(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return err
	}

	logs, err := h.paymentService.Logs(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.JSON(contract.Response{
		Successful: true,
		Code:       "success",
		Message:    constants.MsgLogsRetrieved,
		TrackID:    middleware.GetTrackID(c),
		Result:     LogsResponse{TransactionID: id, Logs: logs, Total: len(logs)},
	})
}

// RedirectPayment sends the payer's browser to the bank, either through a
// self-submitting form or a plain 302.
func (h *Handler) RedirectPayment(c *fiber.Ctx) error {
	id, err := transactionID(c)
	if err != nil {
		return err
	}

	redirect, err := h.paymentService.Redirect(c.UserContext(), id)
	if err != nil {
		return err
	}

	h.metrics.RecordRedirect(redirect.Port, redirect.Method)

	if !redirect.IsPost() {
		return c.Redirect(redirect.URL, fiber.StatusFound)
	}

	page, err := render.Form(redirect)
	if err != nil {
		h.logger.Error("Failed to render redirect form", zap.Int64("transactionID", id), zap.Error(err))
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Type("html", "utf-8")
	return c.Send(page)
}

// Callback receives the payer back from the bank. Query and form values are
// merged with the query taking precedence.
func (h *Handler) Callback(c *fiber.Ctx) error {
	start := time.Now()

	params, err := callbackParams(c)
	if err != nil {
		h.logger.Warn("Failed to parse callback", zap.Error(err), zap.String("body", string(c.Body())))
		return service.NewServiceError(constants.ErrCodeInvalidRequestBody, err)
	}

	res, err := h.paymentService.Verify(c.UserContext(), params)
	if res.Port != "" {
		h.metrics.RecordVerification(res.Port, res.Status, time.Since(start))
	}
	if err != nil {
		if res.Port != "" {
			h.metrics.RecordPaymentError(res.Port, errorCode(err))
		}
		return err
	}

	return c.JSON(contract.Response{
		Successful: true,
		Code:       "success",
		Message:    constants.MsgPaymentVerified,
		TrackID:    middleware.GetTrackID(c),
		Result:     res,
	})
}

func callbackParams(c *fiber.Ctx) (gateway.Params, error) {
	query, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	if c.Method() == fiber.MethodPost {
		contentType := string(c.Request().Header.ContentType())
		switch {
		case strings.HasPrefix(contentType, fiber.MIMEApplicationForm):
			if form, err = url.ParseQuery(string(c.Body())); err != nil {
				return nil, err
			}
		case strings.HasPrefix(contentType, fiber.MIMEMultipartForm):
			mf, err := c.MultipartForm()
			if err != nil {
				return nil, err
			}
			form = mf.Value
		}
	}

	return gateway.NewParams(query, form), nil
}

func transactionID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, service.NewServiceError(constants.ErrCodeInvalidRequest, errors.New("invalid transaction id"))
	}
	return int64(id), nil
}

func errorCode(err error) string {
	var svcErr service.Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return constants.ErrCodeInternalError
}

func portLabel(name string) string {
	if port, ok := gateway.ParsePortName(name); ok {
		return port.String()
	}
	return "unknown"
}
