// pkg/store/migrate.go
package store

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/config"
	"github.com/David-Botos/housing-ingress/pkg/connector"
)

//go:embed migrations
var migrations embed.FS

// gooseDialects maps target drivers onto goose dialects and migration directories
var gooseDialects = map[string]string{
	config.DriverMySQL:    "mysql",
	config.DriverPostgres: "postgres",
	config.DriverSQLite:   "sqlite3",
}

// gooseLogger routes goose output through zap
type gooseLogger struct {
	sugar *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.sugar.Infof(strings.TrimSpace(format), v...)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.sugar.Fatalf(strings.TrimSpace(format), v...)
}

// Migrate brings the target schema up to date. Snowflake has no goose
// dialect and gets an idempotent bootstrap script instead.
func Migrate(ctx context.Context, conn connector.DatabaseConnector, logger *zap.Logger) error {
	logger = logger.Named("migrate")

	if conn.Driver() == config.DriverSnowflake {
		return bootstrapSnowflake(ctx, conn, logger)
	}

	dialect, ok := gooseDialects[conn.Driver()]
	if !ok {
		return fmt.Errorf("no migrations for driver %q", conn.Driver())
	}

	// Configure goose for embedded migrations
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{sugar: logger.Sugar()})

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, conn.DB(), "migrations/"+conn.Driver()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, conn.DB())
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	logger.Info("Schema up to date", zap.String("driver", conn.Driver()), zap.Int64("version", version))
	return nil
}

// bootstrapSnowflake runs each statement of the embedded bootstrap script
func bootstrapSnowflake(ctx context.Context, conn connector.DatabaseConnector, logger *zap.Logger) error {
	script, err := migrations.ReadFile("migrations/snowflake/bootstrap.sql")
	if err != nil {
		return fmt.Errorf("failed to read bootstrap script: %w", err)
	}

	statements := splitStatements(string(script))
	for i, stmt := range statements {
		if _, err := conn.ExecWithTimeout(ctx, stmt, defaultTimeout); err != nil {
			return fmt.Errorf("bootstrap statement %d failed: %w", i+1, err)
		}
	}

	logger.Info("Snowflake schema bootstrapped", zap.Int("statements", len(statements)))
	return nil
}

// splitStatements splits a script on semicolons, dropping empty statements
func splitStatements(script string) []string {
	var statements []string
	for _, part := range strings.Split(script, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
