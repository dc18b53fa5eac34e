package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	batchapp "payrail-server/internal/application/batchtransfer"
	deadletterapp "payrail-server/internal/application/deadletter"
	historyapp "payrail-server/internal/application/history"
	transferapp "payrail-server/internal/application/transfer"
	webhookapp "payrail-server/internal/application/webhook"
	"payrail-server/internal/domain/service"
	"payrail-server/internal/infrastructure/config"
	otelinfra "payrail-server/internal/infrastructure/observability/otel"
	"payrail-server/internal/infrastructure/persistence/mysql"
	"payrail-server/internal/infrastructure/provider"
	"payrail-server/internal/infrastructure/provider/card"
	"payrail-server/internal/infrastructure/provider/ideal"
	"payrail-server/internal/infrastructure/provider/sepa"
	"payrail-server/internal/infrastructure/resilience"
	"payrail-server/internal/presentation/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	tracerShutdown, err := otelinfra.InitTracer(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	meterShutdown, err := otelinfra.InitMeter(&cfg.OpenTelemetry)
	if err != nil {
		log.Fatalf("Failed to initialize meter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterShutdown(ctx); err != nil {
			log.Printf("Failed to shutdown meter: %v", err)
		}
	}()

	tracer := otelinfra.Tracer("payrail-server")
	logger := otelinfra.NewLogger(tracer)
	metrics, err := otelinfra.NewMetrics("payrail-server")
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	db, err := mysql.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	paymentRepo := mysql.NewPaymentRepository(db)
	batchRepo := mysql.NewBatchRepository(db)
	dedupStore := mysql.NewWebhookDedupRepository(db)
	deadLetterRepo := mysql.NewDeadLetterRepository(db)
	txManager := mysql.NewTransactionManager(db)

	validator := service.NewPaymentValidator()

	sepaGateway := sepa.NewGateway(&cfg.Providers.SEPA, logger, metrics)
	idealGateway := ideal.NewGateway(&cfg.Providers.IDEAL, logger, metrics)
	cardGateway := card.NewGateway(&cfg.Providers.Card, logger, metrics)
	gateways := provider.NewRegistry(sepaGateway, idealGateway, cardGateway)

	executor := resilience.NewExecutor(&cfg.Resilience, logger, metrics)

	transferService := transferapp.NewTransferApplicationService(
		paymentRepo,
		deadLetterRepo,
		validator,
		gateways,
		executor,
		&cfg.Resilience,
		logger,
		metrics,
	)

	batchService := batchapp.NewBatchApplicationService(
		paymentRepo,
		batchRepo,
		deadLetterRepo,
		validator,
		sepaGateway,
		executor,
		txManager,
		&cfg.Resilience,
		logger,
		metrics,
	)

	sideEffects := webhookapp.NewLoggingSideEffects(logger)
	webhookService := webhookapp.NewWebhookApplicationService(
		paymentRepo,
		dedupStore,
		webhookapp.NewSignatureVerifier(&cfg.Providers),
		gateways,
		sideEffects,
		sideEffects,
		sideEffects,
		logger,
		metrics,
	)

	historyService := historyapp.NewHistoryApplicationService(
		paymentRepo,
		logger,
		metrics,
	)

	deadLetterWorker := deadletterapp.NewWorker(
		deadLetterRepo,
		paymentRepo,
		transferService,
		logger,
		metrics,
	)

	router, err := rest.NewRouter(
		cfg,
		logger,
		metrics,
		transferService,
		batchService,
		webhookService,
		historyService,
		deadLetterWorker,
	)
	if err != nil {
		log.Fatalf("Failed to create router: %v", err)
	}

	address := fmt.Sprintf(":%d", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go deadLetterWorker.Run(workerCtx)

	go func() {
		log.Printf("REST API server starting on %s", address)
		if err := router.Start(address); err != nil {
			log.Printf("REST API server error: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down...")

	stopWorker()

	if err := router.Shutdown(); err != nil {
		log.Printf("Error shutting down REST API server: %v", err)
	}

	log.Println("Server stopped")
}
