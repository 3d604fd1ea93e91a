package config

import (
	"context"
	"crypto/tls"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the settings for the Redis store.
type RedisConfig struct {
	Addr      string // REDIS_ADDR, or REDIS_HOST:REDIS_PORT
	Password  string // REDIS_PASSWORD
	DB        int    // REDIS_DB
	TLS       bool   // REDIS_TLS
	KeyPrefix string // REDIS_KEY_PREFIX
}

// LoadRedisConfig reads the Redis variables.  REDIS_HOST and REDIS_PORT
// take precedence over REDIS_ADDR when both are set; the default address
// is localhost:6379.
func LoadRedisConfig() RedisConfig {
	host := os.Getenv("REDIS_HOST")
	port := os.Getenv("REDIS_PORT")
	addr := envStr("REDIS_ADDR", "localhost:6379")
	if host != "" && port != "" {
		addr = host + ":" + port
	}
	tlsEnv := os.Getenv("REDIS_TLS")
	return RedisConfig{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        envInt("REDIS_DB", 0),
		TLS:       strings.EqualFold(tlsEnv, "true") || tlsEnv == "1",
		KeyPrefix: envStr("REDIS_KEY_PREFIX", "hotel"),
	}
}

// NewRedisClient builds a client and pings the server with a short
// timeout.  Unlike a cache, the store cannot degrade gracefully, so an
// unreachable server is an error.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	var tlsConf *tls.Config
	if cfg.TLS {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      cfg.Addr,
		Password:  cfg.Password,
		DB:        cfg.DB,
		TLSConfig: tlsConf,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}
