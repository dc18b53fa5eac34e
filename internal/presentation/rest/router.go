package rest

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	batchapp "payrail-server/internal/application/batchtransfer"
	deadletterapp "payrail-server/internal/application/deadletter"
	historyapp "payrail-server/internal/application/history"
	transferapp "payrail-server/internal/application/transfer"
	webhookapp "payrail-server/internal/application/webhook"
	"payrail-server/internal/infrastructure/config"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/presentation/rest/handler"
	restmiddleware "payrail-server/internal/presentation/rest/middleware"
)

// Router REST API router
type Router struct {
	echo              *echo.Echo
	paymentHandler    *handler.PaymentHandler
	batchHandler      *handler.BatchHandler
	webhookHandler    *handler.WebhookHandler
	historyHandler    *handler.HistoryHandler
	deadLetterHandler *handler.DeadLetterHandler
}

// NewRouter creates the echo instance with all middleware and routes.
func NewRouter(
	cfg *config.Config,
	logger *otelinfra.Logger,
	metrics *otelinfra.Metrics,
	transferService *transferapp.TransferApplicationService,
	batchService *batchapp.BatchApplicationService,
	webhookService *webhookapp.WebhookApplicationService,
	historyService *historyapp.HistoryApplicationService,
	deadLetterWorker *deadletterapp.Worker,
) (*Router, error) {
	e := echo.New()

	// errors are translated by the error-handler middleware instead
	e.HTTPErrorHandler = func(err error, c echo.Context) {}

	setupMiddleware(e, cfg, logger, metrics)

	paymentHandler := handler.NewPaymentHandler(transferService)
	batchHandler := handler.NewBatchHandler(batchService)
	webhookHandler := handler.NewWebhookHandler(webhookService)
	historyHandler := handler.NewHistoryHandler(historyService)
	deadLetterHandler := handler.NewDeadLetterHandler(deadLetterWorker)

	setupRoutes(e, cfg, logger, paymentHandler, batchHandler, webhookHandler, historyHandler, deadLetterHandler)

	return &Router{
		echo:              e,
		paymentHandler:    paymentHandler,
		batchHandler:      batchHandler,
		webhookHandler:    webhookHandler,
		historyHandler:    historyHandler,
		deadLetterHandler: deadLetterHandler,
	}, nil
}

// setupMiddleware registers the shared middleware chain.
func setupMiddleware(e *echo.Echo, cfg *config.Config, logger *otelinfra.Logger, metrics *otelinfra.Metrics) {
	e.Use(middleware.Recover())

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.Use(middleware.RequestID())
	e.Use(restmiddleware.SecurityHeadersMiddleware())
	e.Use(restmiddleware.TracingMiddleware())
	e.Use(restmiddleware.MetricsMiddleware(metrics))
	e.Use(restmiddleware.LoggingMiddleware(logger))
	e.Use(restmiddleware.ErrorHandlerMiddleware(logger))
}

// setupRoutes registers all routes.
func setupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	logger *otelinfra.Logger,
	paymentHandler *handler.PaymentHandler,
	batchHandler *handler.BatchHandler,
	webhookHandler *handler.WebhookHandler,
	historyHandler *handler.HistoryHandler,
	deadLetterHandler *handler.DeadLetterHandler,
) {
	api := e.Group("/api/v1")

	authGroup := api.Group("", restmiddleware.AuthMiddleware(&cfg.JWT, logger))

	authGroup.POST("/payments", paymentHandler.SubmitPayment)
	authGroup.GET("/payments", historyHandler.ListPayments)
	authGroup.GET("/payments/:payment_id", historyHandler.GetPayment)

	authGroup.POST("/batches", batchHandler.SubmitBatch)
	authGroup.GET("/batches/:batch_id", batchHandler.GetBatch)

	// provider callbacks authenticate by signature, not by bearer token
	e.POST("/webhooks/:provider", webhookHandler.Receive)

	admin := e.Group("/admin", restmiddleware.APIKeyMiddleware(&cfg.AdminAPI, logger))
	admin.GET("/dead-letters", deadLetterHandler.ListEntries)
	admin.POST("/dead-letters/drain", deadLetterHandler.Drain)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})
}

// Start starts the HTTP server.
func (r *Router) Start(address string) error {
	return r.echo.Start(address)
}

// Shutdown closes the HTTP server.
func (r *Router) Shutdown() error {
	return r.echo.Close()
}
