package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/logging"
	"github.com/iliyamo/hotel-reservation/internal/queue"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	logDir := pflag.String("log-dir", "", "directory for booking.log (overrides BOOKING_LOG_DIR)")
	pflag.Parse()

	// The consumer never opens a state store, so the store settings are
	// not validated here.
	cfg, err := config.LoadEnv(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}
	if *logDir != "" {
		cfg.BookingLogDir = *logDir
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("booking consumer starting", zap.String("log_dir", cfg.BookingLogDir))
	err = queue.StartBookingConsumer(ctx, cfg.AMQPURL, cfg.BookingLogDir, logger.Named("booking-consumer"))
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("booking consumer stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("booking consumer stopped")
}
