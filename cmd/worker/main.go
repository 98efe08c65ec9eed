package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/platemate/platemate/internal/messaging"
	"github.com/platemate/platemate/internal/orders"
	"github.com/platemate/platemate/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	kafkaBrokers := os.Getenv("KAFKA_BROKERS")
	if kafkaBrokers == "" {
		logger.Error("KAFKA_BROKERS environment variable is required")
		os.Exit(1)
	}

	emailServiceURL := os.Getenv("EMAIL_SERVICE_URL")
	if emailServiceURL == "" {
		logger.Error("EMAIL_SERVICE_URL environment variable is required")
		os.Exit(1)
	}

	brokers := strings.Split(kafkaBrokers, ",")

	createdConsumer := messaging.NewConsumer(brokers, orders.TopicOrderCreated, "notification-worker")
	defer func() { _ = createdConsumer.Close() }()

	cancelledConsumer := messaging.NewConsumer(brokers, orders.TopicOrderCancelled, "notification-worker")
	defer func() { _ = cancelledConsumer.Close() }()

	httpClient := &http.Client{
		Timeout: 10 * time.Second,
	}

	notificationHandler := worker.NewNotificationHandler(emailServiceURL, httpClient, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting notification worker", "brokers", brokers)

	errCh := make(chan error, 2)
	go func() {
		errCh <- createdConsumer.Consume(ctx, notificationHandler.HandleCreated)
	}()
	go func() {
		errCh <- cancelledConsumer.Consume(ctx, notificationHandler.HandleCancelled)
	}()

	if err := <-errCh; err != nil {
		if ctx.Err() == context.Canceled {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
