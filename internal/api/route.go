package api

import (
	v1 "github.com/Behyna/bankgateway/internal/api/v1"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefixV1 = "api/v1/"

func SetupRoutes(app *fiber.App, handler *v1.Handler, health fiber.Handler, metricsPath string, gatherer prometheus.Gatherer) {
	app.Get("/ping", handler.Pong)
	app.Get("/health", health)
	if metricsPath != "" {
		app.Get(metricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	app.Get(prefixV1+"ports", handler.Ports)
	app.Post(prefixV1+"payments", handler.CreatePayment)
	app.Get(prefixV1+"payments/:id", handler.GetPayment)
	app.Get(prefixV1+"payments/:id/logs", handler.GetPaymentLogs)
	app.Get(prefixV1+"payments/:id/redirect", handler.RedirectPayment)
	app.Get(prefixV1+"callback", handler.Callback)
	app.Post(prefixV1+"callback", handler.Callback)
}
