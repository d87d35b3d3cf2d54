// pkg/connector/postgres.go
package connector

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/config"
)

// PostgresConnector implements the DatabaseConnector interface for PostgreSQL
type PostgresConnector struct {
	*baseConnector
	cfg *config.DatabaseConfig
}

// NewPostgresConnector creates and initializes a new PostgreSQL connector
func NewPostgresConnector(ctx context.Context, cfg *config.DatabaseConfig) (*PostgresConnector, error) {
	logger := zap.L().Named("postgres-connector")

	// Log connection attempt
	logger.Info("Connecting to PostgreSQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User),
		zap.String("schema", cfg.Schema))

	base, err := openTarget(ctx, cfg, logger, cfg.Database)
	if err != nil {
		return nil, err
	}

	connector := &PostgresConnector{
		baseConnector: base,
		cfg:           cfg,
	}

	// Set statement timeout if configured
	if cfg.StatementTimeout > 0 {
		_, err = base.db.ExecContext(ctx,
			fmt.Sprintf("SET statement_timeout = %d", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	if cfg.Schema != "" {
		if err := connector.ensureSchema(ctx, cfg.Schema); err != nil {
			base.db.Close()
			return nil, fmt.Errorf("failed to create/verify schema %s: %w", cfg.Schema, err)
		}
	}

	LogConnectionStats(logger, cfg.Database, base.db.DB)
	return connector, nil
}

// Validate verifies the PostgreSQL connection
func (c *PostgresConnector) Validate(ctx context.Context) error {
	var version string
	if err := c.db.QueryRowContext(ctx, "SELECT version()").Scan(&version); err != nil {
		return fmt.Errorf("failed to query PostgreSQL version: %w", err)
	}

	c.logger.Info("PostgreSQL connection validated",
		zap.String("version", version),
		zap.String("database", c.cfg.Database),
		zap.String("host", c.cfg.Host),
		zap.Int("port", c.cfg.Port))

	return nil
}

// ensureSchema creates the target schema if needed and makes it the default
// for the session
func (c *PostgresConnector) ensureSchema(ctx context.Context, schema string) error {
	quoted := pq.QuoteIdentifier(schema)
	if _, err := c.db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+quoted); err != nil {
		return err
	}
	if _, err := c.db.ExecContext(ctx, "SET search_path TO "+quoted); err != nil {
		return err
	}
	return nil
}
