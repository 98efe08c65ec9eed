package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platemate/platemate/internal/catalog"
	"github.com/platemate/platemate/internal/orders"
	"github.com/platemate/platemate/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "orders", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("orders", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	// Orders and catalog live in separate schemas of the same database; the
	// orders service reads the catalog directly for intake lookups.
	db, err := telemetry.OpenDB("postgres", telemetry.WithSearchPath(postgresURL, "orders,catalog"))
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	var events orders.OrderEvents
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		kafkaEvents := orders.NewKafkaOrderEvents(strings.Split(kafkaBrokers, ","))
		defer func() { _ = kafkaEvents.Close() }()
		events = kafkaEvents
	}

	orderMetrics, err := telemetry.NewOrderMetrics()
	if err != nil {
		logger.Error("failed to create order metrics", "error", err)
		os.Exit(1)
	}

	pricingConfig := orders.DefaultPricingConfig()
	if raw := os.Getenv("TAX_RATE_PERCENT"); raw != "" {
		percent, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || percent < 0 || percent > 100 {
			logger.Error("invalid TAX_RATE_PERCENT", "value", raw)
			os.Exit(1)
		}
		pricingConfig.TaxRate = decimal.NewFromInt(percent).Div(decimal.NewFromInt(100))
	}

	catalogRepo := catalog.NewRepository(db)
	repo := orders.NewOrderRepository(db)
	service := orders.NewService(
		repo,
		catalogRepo,
		orders.NewMenuSnapshotResolver(catalogRepo),
		orders.NewPricingEngine(pricingConfig),
		orders.NewOrderNumberGenerator("ORD"),
	)

	debugMode := os.Getenv("APP_ENV") == "development"
	handler := orders.NewHandler(service, events, orderMetrics, logger, debugMode)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", telemetry.WithHTTPRoute(handler.HandleCreate))
	mux.HandleFunc("GET /orders", telemetry.WithHTTPRoute(handler.HandleList))
	mux.HandleFunc("GET /orders/{id}", telemetry.WithHTTPRoute(handler.HandleGet))
	mux.HandleFunc("PUT /orders/{id}/cancel", telemetry.WithHTTPRoute(handler.HandleCancel))
	mux.HandleFunc("PATCH /orders/{id}/status", telemetry.WithHTTPRoute(handler.HandleAdvanceStatus))
	mux.Handle("GET /metrics", metricsHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      otelhttp.NewHandler(mux, "orders"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting orders service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
