// pkg/config/database.go
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/snowflakedb/gosnowflake"
)

// Supported target databases
const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverSnowflake = "snowflake"
)

// DatabaseConfig holds the target database connection parameters
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// PostgreSQL only
	SSLMode string
	Schema  string

	// SQLite only
	Path string

	// Snowflake only
	Account       string
	Warehouse     string
	Role          string
	Authenticator gosnowflake.AuthType

	ConnectTimeout   time.Duration
	StatementTimeout time.Duration
	ConnMaxLifetime  time.Duration
}

// LoadDatabaseConfig loads the target database configuration from environment variables
func LoadDatabaseConfig() (*DatabaseConfig, error) {
	driver := strings.ToLower(getEnv("DB_DRIVER", DriverMySQL))

	cfg := &DatabaseConfig{
		Driver:           driver,
		Host:             getEnv("DB_HOST", "localhost"),
		User:             os.Getenv("DB_USER"),
		Password:         os.Getenv("DB_PASSWORD"),
		Database:         os.Getenv("DB_NAME"),
		ConnectTimeout:   time.Duration(getEnvAsInt("DB_CONNECT_TIMEOUT_SECONDS", 10)) * time.Second,
		StatementTimeout: time.Duration(getEnvAsInt("DB_STATEMENT_TIMEOUT_SECONDS", 30)) * time.Second,
		ConnMaxLifetime:  time.Duration(getEnvAsInt("DB_CONN_MAX_LIFETIME_SECONDS", 0)) * time.Second,
	}

	switch driver {
	case DriverMySQL:
		cfg.Port = getEnvAsInt("DB_PORT", 3306)
	case DriverPostgres:
		cfg.Port = getEnvAsInt("DB_PORT", 5432)
		cfg.SSLMode = getEnv("DB_SSLMODE", "disable")
		cfg.Schema = getEnv("DB_SCHEMA", "public")
	case DriverSQLite:
		cfg.Path = getEnv("SQLITE_PATH", "housing.db")
	case DriverSnowflake:
		cfg.Account = os.Getenv("SNOWFLAKE_ACCOUNT")
		cfg.Warehouse = os.Getenv("SNOWFLAKE_WAREHOUSE")
		cfg.Role = getEnv("SNOWFLAKE_ROLE", "")
		cfg.Authenticator = parseAuthenticator(getEnv("SNOWFLAKE_AUTHENTICATOR", "snowflake"))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the parameters required by the selected driver
func (c *DatabaseConfig) Validate() error {
	if c.Driver == DriverSQLite {
		if c.Path == "" {
			return errors.New("SQLITE_PATH environment variable is required")
		}
		return nil
	}

	if c.User == "" {
		return errors.New("DB_USER environment variable is required")
	}
	if c.Password == "" {
		return errors.New("DB_PASSWORD environment variable is required")
	}
	if c.Database == "" {
		return errors.New("DB_NAME environment variable is required")
	}

	if c.Driver == DriverSnowflake {
		if c.Account == "" {
			return errors.New("SNOWFLAKE_ACCOUNT environment variable is required")
		}
		if c.Warehouse == "" {
			return errors.New("SNOWFLAKE_WAREHOUSE environment variable is required")
		}
	}

	return nil
}

// SQLDriverName returns the database/sql driver name registered for the target
func (c *DatabaseConfig) SQLDriverName() string {
	if c.Driver == DriverPostgres {
		return "pgx"
	}
	return c.Driver
}

// ConnectionString returns the driver-specific DSN
func (c *DatabaseConfig) ConnectionString() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		mc.ParseTime = true
		// UPDATE reports matched rows instead of changed rows
		mc.ClientFoundRows = true
		mc.Timeout = c.ConnectTimeout
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil

	case DriverPostgres:
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
			quoteDSNValue(c.Host),
			c.Port,
			quoteDSNValue(c.User),
			quoteDSNValue(c.Password),
			quoteDSNValue(c.Database),
			quoteDSNValue(c.SSLMode),
			int(c.ConnectTimeout.Seconds()),
		), nil

	case DriverSQLite:
		return c.Path, nil

	case DriverSnowflake:
		dsn, err := gosnowflake.DSN(&gosnowflake.Config{
			Account:       c.Account,
			User:          c.User,
			Password:      c.Password,
			Database:      c.Database,
			Warehouse:     c.Warehouse,
			Role:          c.Role,
			Authenticator: c.Authenticator,
			LoginTimeout:  c.ConnectTimeout,
		})
		if err != nil {
			return "", fmt.Errorf("failed to build Snowflake DSN: %w", err)
		}
		return dsn, nil

	default:
		return "", fmt.Errorf("unsupported driver %q", c.Driver)
	}
}

// quoteDSNValue quotes a keyword/value DSN value when it is empty or holds
// spaces, quotes or backslashes
func quoteDSNValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\n'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// parseAuthenticator converts an authenticator name to the gosnowflake type
func parseAuthenticator(name string) gosnowflake.AuthType {
	switch strings.ToLower(name) {
	case "oauth":
		return gosnowflake.AuthTypeOAuth
	case "externalbrowser":
		return gosnowflake.AuthTypeExternalBrowser
	case "username_password_mfa":
		return gosnowflake.AuthTypeUsernamePasswordMFA
	case "jwt":
		return gosnowflake.AuthTypeJwt
	case "token":
		return gosnowflake.AuthTypeTokenAccessor
	case "okta":
		return gosnowflake.AuthTypeOkta
	default:
		return gosnowflake.AuthTypeSnowflake
	}
}
