// Package database opens the MySQL connection used by the mysql store
// driver and creates its tables.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, user, pass, host, port, name string) (*sql.DB, error) {
	cfg := mysql.NewConfig()
	cfg.User = user
	cfg.Passwd = pass
	cfg.Net = "tcp"
	cfg.Addr = host + ":" + port
	cfg.DBName = name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, err
	}

	// One interactive user; a small pool is plenty.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Addr, err)
	}
	return db, nil
}

// schema creates the tables used by repository.MySQLStore.  Room types,
// guest names and dates are free-form, so they are stored as MEDIUMTEXT
// rather than a length-capped VARCHAR.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS hotel_rooms (
		room_number INT        NOT NULL PRIMARY KEY,
		position    INT        NOT NULL,
		room_type   MEDIUMTEXT NOT NULL,
		price_cents BIGINT     NOT NULL,
		available   BOOLEAN    NOT NULL
	) DEFAULT CHARSET = utf8mb4`,
	`CREATE TABLE IF NOT EXISTS hotel_reservations (
		reservation_id   INT        NOT NULL PRIMARY KEY,
		room_number      INT        NOT NULL,
		guest_name       MEDIUMTEXT NOT NULL,
		check_in         MEDIUMTEXT NOT NULL,
		check_out        MEDIUMTEXT NOT NULL,
		total_cost_cents BIGINT     NOT NULL
	) DEFAULT CHARSET = utf8mb4`,
	`CREATE TABLE IF NOT EXISTS hotel_state (
		id                  TINYINT NOT NULL PRIMARY KEY,
		next_reservation_id INT NOT NULL
	)`,
}

// EnsureSchema creates any missing tables.  It is idempotent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
