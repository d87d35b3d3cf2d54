// pkg/connector/sqlite.go
package connector

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/David-Botos/housing-ingress/pkg/config"
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// SQLiteConnector implements the DatabaseConnector interface for a local SQLite file
type SQLiteConnector struct {
	*baseConnector
	cfg *config.DatabaseConfig
}

// NewSQLiteConnector opens (creating if needed) the SQLite database at cfg.Path
func NewSQLiteConnector(ctx context.Context, cfg *config.DatabaseConfig) (*SQLiteConnector, error) {
	logger := zap.L().Named("sqlite-connector")

	logger.Info("Opening SQLite database", zap.String("path", cfg.Path))

	base, err := openTarget(ctx, cfg, logger, cfg.Path)
	if err != nil {
		return nil, err
	}

	if cfg.StatementTimeout > 0 {
		_, err = base.db.ExecContext(ctx,
			fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			logger.Warn("Failed to set busy timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.Path, base.db.DB)
	return &SQLiteConnector{baseConnector: base, cfg: cfg}, nil
}

// Validate verifies the SQLite connection
func (c *SQLiteConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query SQLite version: %w", err)
	}

	c.logger.Info("SQLite connection validated",
		zap.String("version", version),
		zap.String("path", c.cfg.Path))

	return nil
}
