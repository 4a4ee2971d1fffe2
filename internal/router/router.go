package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fitmarket/internal/handler"
	"fitmarket/internal/middleware"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	paymentHandler *handler.PaymentHandler,
	invoiceDeduper middleware.InvoiceDeduper,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	// Payment routes. The webhook route carries the dedup guard; manual
	// verification may legitimately re-check a pending invoice, so it
	// relies on the fulfillment-layer idempotency instead.
	paymentGroup := e.Group("/payment")
	paymentGroup.POST("/create", paymentHandler.Create)
	paymentGroup.POST("/verify", paymentHandler.Verify)
	paymentGroup.POST("/callback", paymentHandler.Verify, middleware.WebhookDedup(invoiceDeduper))

	// Metrics
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}
