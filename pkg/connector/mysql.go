// pkg/connector/mysql.go
package connector

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/config"
)

// MySQLConnector implements the DatabaseConnector interface for MySQL
type MySQLConnector struct {
	*baseConnector
	cfg *config.DatabaseConfig
}

// NewMySQLConnector creates and initializes a new MySQL connector
func NewMySQLConnector(ctx context.Context, cfg *config.DatabaseConfig) (*MySQLConnector, error) {
	logger := zap.L().Named("mysql-connector")

	logger.Info("Connecting to MySQL",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database),
		zap.String("user", cfg.User))

	base, err := openTarget(ctx, cfg, logger, cfg.Database)
	if err != nil {
		return nil, err
	}

	// Only bounds SELECT statements, which covers the interactive queries
	if cfg.StatementTimeout > 0 {
		_, err = base.db.ExecContext(ctx,
			fmt.Sprintf("SET SESSION max_execution_time = %d", cfg.StatementTimeout.Milliseconds()))
		if err != nil {
			logger.Warn("Failed to set statement timeout", zap.Error(err))
		}
	}

	LogConnectionStats(logger, cfg.Database, base.db.DB)
	return &MySQLConnector{baseConnector: base, cfg: cfg}, nil
}

// Validate verifies the MySQL connection
func (c *MySQLConnector) Validate(ctx context.Context) error {
	var version, database string
	err := c.db.QueryRowContext(ctx, "SELECT VERSION(), DATABASE()").Scan(&version, &database)
	if err != nil {
		return fmt.Errorf("failed to query MySQL version: %w", err)
	}

	if database != c.cfg.Database {
		return fmt.Errorf("connected to wrong database: %s (expected: %s)", database, c.cfg.Database)
	}

	c.logger.Info("MySQL connection validated",
		zap.String("version", version),
		zap.String("database", database),
		zap.String("host", c.cfg.Host))

	return nil
}
