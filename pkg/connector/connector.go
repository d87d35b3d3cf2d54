// pkg/connector/connector.go
package connector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/config"
)

// DatabaseConnector defines the interface for target database connectors
type DatabaseConnector interface {
	// DB returns the underlying database connection
	DB() *sql.DB

	// X returns the sqlx handle over the same connection
	X() *sqlx.DB

	// Driver returns the configured target driver (mysql, postgres, sqlite, snowflake)
	Driver() string

	// Validate verifies the connection and reports the server version
	Validate(ctx context.Context) error

	// Close closes the connection and releases resources
	Close() error

	// GetWithTimeout scans a single row into dest with a timeout. Queries use
	// ? placeholders and are rebound for the driver.
	GetWithTimeout(ctx context.Context, dest interface{}, query string, timeout time.Duration, args ...interface{}) error

	// ExecWithTimeout executes a statement with a timeout
	ExecWithTimeout(ctx context.Context, query string, timeout time.Duration, args ...interface{}) (sql.Result, error)
}

// ConnStats contains standardized connection statistics
type ConnStats struct {
	OpenConnections int
	InUse           int
	Idle            int
	MaxOpenConns    int
}

// GetConnectionStats returns connection pool statistics for logging
func GetConnectionStats(db *sql.DB) ConnStats {
	stats := db.Stats()
	return ConnStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpenConns:    stats.MaxOpenConnections,
	}
}

// LogConnectionStats logs connection pool statistics
func LogConnectionStats(logger *zap.Logger, name string, db *sql.DB) {
	stats := GetConnectionStats(db)
	logger.Debug("Connection pool stats",
		zap.String("database", name),
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int("max_open", stats.MaxOpenConns),
	)
}

// PingWithTimeout attempts to ping a database with a timeout
func PingWithTimeout(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- db.PingContext(pingCtx)
	}()

	select {
	case err := <-errCh:
		return err
	case <-pingCtx.Done():
		return fmt.Errorf("ping timed out after %v: %w", timeout, pingCtx.Err())
	}
}

// ApplyConnectionSettings configures database connection pool settings
func ApplyConnectionSettings(db *sql.DB, maxOpen, maxIdle int, maxLifetime time.Duration) {
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime > 0 {
		db.SetConnMaxLifetime(maxLifetime)
	}
}

// baseConnector carries what every target connector shares
type baseConnector struct {
	db     *sqlx.DB
	logger *zap.Logger
	driver string
	name   string // database name for logs
}

// openTarget opens a single-connection pool for cfg and verifies it answers
func openTarget(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger, name string) (*baseConnector, error) {
	dsn, err := cfg.ConnectionString()
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.SQLDriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s connection: %w", cfg.Driver, err)
	}

	ApplyConnectionSettings(db.DB, 1, 1, cfg.ConnMaxLifetime)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if err := PingWithTimeout(ctx, db.DB, timeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	return &baseConnector{
		db:     db,
		logger: logger,
		driver: cfg.Driver,
		name:   name,
	}, nil
}

// NewFromDB wraps an already opened connection, e.g. one created by a test
func NewFromDB(db *sql.DB, driver string, logger *zap.Logger) DatabaseConnector {
	cfg := &config.DatabaseConfig{Driver: driver}
	return &baseConnector{
		db:     sqlx.NewDb(db, cfg.SQLDriverName()),
		logger: logger.Named(driver + "-connector"),
		driver: driver,
		name:   driver,
	}
}

// DB returns the underlying database connection
func (c *baseConnector) DB() *sql.DB {
	return c.db.DB
}

// X returns the sqlx handle
func (c *baseConnector) X() *sqlx.DB {
	return c.db
}

// Driver returns the target driver name
func (c *baseConnector) Driver() string {
	return c.driver
}

// Validate pings the database
func (c *baseConnector) Validate(ctx context.Context) error {
	return PingWithTimeout(ctx, c.db.DB, 5*time.Second)
}

// Close closes the database connection
func (c *baseConnector) Close() error {
	c.logger.Info("Closing database connection", zap.String("driver", c.driver))
	LogConnectionStats(c.logger, c.name, c.db.DB)
	return c.db.Close()
}

// ExecWithTimeout executes a statement with a timeout
func (c *baseConnector) ExecWithTimeout(
	ctx context.Context,
	query string,
	timeout time.Duration,
	args ...interface{},
) (sql.Result, error) {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.ExecContext(queryCtx, c.db.Rebind(query), args...)
}

// GetWithTimeout scans a single row into dest with a timeout
func (c *baseConnector) GetWithTimeout(
	ctx context.Context,
	dest interface{},
	query string,
	timeout time.Duration,
	args ...interface{},
) error {
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.db.GetContext(queryCtx, dest, c.db.Rebind(query), args...)
}
