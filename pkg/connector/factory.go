// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/config"
)

// ConnectorFactory creates target database connectors
type ConnectorFactory struct {
	cfg    *config.DatabaseConfig
	logger *zap.Logger
}

// NewConnectorFactory creates a new connector factory
func NewConnectorFactory(cfg *config.DatabaseConfig, logger *zap.Logger) *ConnectorFactory {
	return &ConnectorFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateConnector opens and validates the connector for the configured driver
func (f *ConnectorFactory) CreateConnector(ctx context.Context) (DatabaseConnector, error) {
	if f.cfg == nil {
		return nil, fmt.Errorf("no database configuration")
	}

	f.logger.Info("Creating target connector", zap.String("driver", f.cfg.Driver))

	var (
		conn DatabaseConnector
		err  error
	)
	switch f.cfg.Driver {
	case config.DriverMySQL:
		conn, err = NewMySQLConnector(ctx, f.cfg)
	case config.DriverPostgres:
		conn, err = NewPostgresConnector(ctx, f.cfg)
	case config.DriverSQLite:
		conn, err = NewSQLiteConnector(ctx, f.cfg)
	case config.DriverSnowflake:
		conn, err = NewSnowflakeConnector(ctx, f.cfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", f.cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s connector: %w", f.cfg.Driver, err)
	}

	if err := conn.Validate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to validate %s connection: %w", f.cfg.Driver, err)
	}

	return conn, nil
}
