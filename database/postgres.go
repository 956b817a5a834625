package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// Config is the "db" block of an application configuration. Credentials
// are usually supplied through secret files or overrides rather than the
// configuration file itself.
type Config struct {
	URL      string        `validate:"notblank,pattern=^postgres(ql)?://.*"`
	User     string
	Password string        `validate:"notblank"`
	PoolSize int32         `validate:"positive"`
	Timeout  time.Duration `validate:"notnull"`
}

// ConnConfig parses URL and applies the explicit credentials and timeout.
func (c Config) ConnConfig() (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("database: invalid url: %w", err)
	}
	if c.User != "" {
		cc.User = c.User
	}
	if c.Password != "" {
		cc.Password = c.Password
	}
	if c.Timeout > 0 {
		cc.ConnectTimeout = c.Timeout
	}
	return cc, nil
}

// Open returns a *sql.DB with OpenTelemetry instrumentation and pooling.
// No connection is made until first use.
func Open(cfg Config, serviceName string) (*sql.DB, error) {
	cc, err := cfg.ConnConfig()
	if err != nil {
		return nil, err
	}

	// Every SQL query emits a tracing span.
	db, err := otelsql.Open("pgx", stdlib.RegisterConnConfig(cc),
		otelsql.WithAttributes(semconv.ServiceNameKey.String(serviceName)),
		otelsql.WithDBName("postgres"),
	)
	if err != nil {
		return nil, fmt.Errorf("database: failed to open connection: %w", err)
	}

	db.SetMaxOpenConns(int(cfg.PoolSize))
	db.SetMaxIdleConns(int(cfg.PoolSize))
	db.SetConnMaxLifetime(15 * time.Minute)
	return db, nil
}

// Ping verifies connectivity, failing after timeout.
func Ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("database: failed to ping database: %w", err)
	}
	return nil
}
