// Package main implements the confirmation notifier: a consumer that
// drains the notification topic and delivers confirmation messages to
// registered email addresses.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/nexora/account-api/internal/config"
	"github.com/nexora/account-api/internal/messaging"
	"github.com/nexora/account-api/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Failed to start notifier: %v", err)
	}
}

func run() error {
	// The notifier needs no database or signing settings; LoadNotifier
	// validates only the sections this process uses.
	cfg, err := config.LoadNotifier()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.Setup(cfg.Server.LogLevel)
	slog.Info("Notifier configuration loaded",
		"topic", cfg.Kafka.NotificationTopic,
		"group_id", cfg.Kafka.GroupID)

	// Delivered notifications are written to the log; a production
	// deployment swaps in an SMTP or provider-backed Sender here.
	sender := messaging.NewLogSender(appLogger)

	consumer := messaging.NewConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.NotificationTopic,
		cfg.Kafka.GroupID,
		sender,
		appLogger,
	)
	defer func() {
		if err := consumer.Close(); err != nil {
			appLogger.Error("Error closing consumer", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		appLogger.Info("Shutting down notifier...")
		cancel()
	}()

	if err := consumer.Run(ctx); err != nil {
		return fmt.Errorf("consumer error: %w", err)
	}

	appLogger.Info("Notifier shutdown completed")
	return nil
}
