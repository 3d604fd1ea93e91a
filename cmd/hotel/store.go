package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-reservation/internal/config"
	"github.com/iliyamo/hotel-reservation/internal/database"
	"github.com/iliyamo/hotel-reservation/internal/repository"
)

// openStore builds the store selected by cfg.StoreDriver.  The returned
// close function releases any connection the store holds.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	noop := func() {}
	switch cfg.StoreDriver {
	case config.DriverFile:
		logger.Info("using file store", zap.String("dir", cfg.DataDir))
		return repository.NewFileStore(cfg.DataDir), noop, nil

	case config.DriverMemory:
		logger.Warn("using memory store, state will not survive a restart")
		return repository.NewMemoryStore(), noop, nil

	case config.DriverMySQL:
		db, err := database.Open(ctx, cfg.DB.User, cfg.DB.Pass, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("open mysql: %w", err)
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("using mysql store", zap.String("host", cfg.DB.Host), zap.String("db", cfg.DB.Name))
		return repository.NewMySQLStore(db), func() { _ = db.Close() }, nil

	case config.DriverRedis:
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis store", zap.String("addr", cfg.Redis.Addr), zap.String("prefix", cfg.Redis.KeyPrefix))
		return repository.NewRedisStore(rdb, cfg.Redis.KeyPrefix), func() { _ = rdb.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// timeoutStore bounds every load and save with a deadline.
type timeoutStore struct {
	repository.Store
	timeout time.Duration
}

func withTimeout(s repository.Store, d time.Duration) repository.Store {
	return timeoutStore{Store: s, timeout: d}
}

func (s timeoutStore) Load(ctx context.Context) (repository.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Load(ctx)
}

func (s timeoutStore) Save(ctx context.Context, snap repository.Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Save(ctx, snap)
}
