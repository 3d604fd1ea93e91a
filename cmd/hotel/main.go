package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/handler"
	"github.com/iliyamo/hotel-reservation/internal/logging"
	"github.com/iliyamo/hotel-reservation/internal/repository"
	"github.com/iliyamo/hotel-reservation/internal/service"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	driver := pflag.String("store", "", "state store driver: file, mysql, redis or memory (overrides STORE_DRIVER)")
	dataDir := pflag.String("data-dir", "", "directory for the file store (overrides DATA_DIR)")
	pflag.Parse()

	cfg, err := config.LoadEnv(*envFile)
	if err == nil {
		if *driver != "" {
			cfg.StoreDriver = strings.ToLower(*driver)
		}
		if *dataDir != "" {
			cfg.DataDir = *dataDir
		}
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Error("hotel exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// After the first interrupt, a second one kills the process even if
	// the final save hangs.
	context.AfterFunc(ctx, stop)

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	store = withTimeout(store, cfg.StoreTimeout)

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.AMQPEnabled {
		opts = append(opts, service.WithPublisher(service.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPPublishTimeout)))
	}

	inv, err := service.Open(ctx, store, opts...)
	if errors.Is(err, repository.ErrCorruptState) {
		return fmt.Errorf("saved state is unreadable, refusing to start: %w", err)
	}
	if err != nil {
		return err
	}

	// An interrupt ends the menu, which still performs the final save.
	return handler.NewMenu(inv, os.Stdin, os.Stdout, logger).Run(ctx)
}
