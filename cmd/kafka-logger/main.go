package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/kalpovskii/taskboard/internal/kafka"
	"github.com/kalpovskii/taskboard/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateEventLogger(); err != nil {
		log.Fatal(err)
	}

	file, err := os.OpenFile(cfg.Kafka.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %v", err)
	}
	defer file.Close()

	logger := logging.New(cfg.Log.Level, "json", file)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewEventLogger(cfg.Kafka.Broker, cfg.Kafka.Topic, cfg.Kafka.GroupID, logger)
	defer consumer.Close()

	logger.Info("kafka logger started",
		slog.String("broker", cfg.Kafka.Broker),
		slog.String("topic", cfg.Kafka.Topic),
		slog.String("group", cfg.Kafka.GroupID))

	if err := consumer.Run(ctx); err != nil {
		logger.Error("kafka logger stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("kafka logger stopped")
}
