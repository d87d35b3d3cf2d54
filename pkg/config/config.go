// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Load commit modes
const (
	// CommitModePhase wraps each load phase in a single transaction
	CommitModePhase = "phase"
	// CommitModeRow commits every statement on its own
	CommitModeRow = "row"
)

// Config represents the application configuration
type Config struct {
	// Source CSV files
	Files FilesConfig

	// Target database connection
	Database *DatabaseConfig

	// Load settings
	CommitMode               string
	RunMigrations            bool
	RecordCleaningOperations bool

	// RandomSeed seeds value synthesis; 0 means seed from the clock
	RandomSeed uint64

	// Logging
	LogLevel  string
	LogFormat string
}

// FilesConfig holds the paths of the three source files
type FilesConfig struct {
	Housing string
	Income  string
	Zip     string
}

// LoadConfig loads configuration from environment variables, seeding them
// from an optional .env file first
func LoadConfig() (*Config, error) {
	if err := loadEnvFile(getEnv("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{
		Files: FilesConfig{
			Housing: getEnv("HOUSING_FILE", "housing.csv"),
			Income:  getEnv("INCOME_FILE", "income.csv"),
			Zip:     getEnv("ZIP_FILE", "zip.csv"),
		},
		CommitMode:               strings.ToLower(getEnv("LOAD_COMMIT_MODE", CommitModePhase)),
		RunMigrations:            getEnvAsBool("RUN_MIGRATIONS", true),
		RecordCleaningOperations: getEnvAsBool("RECORD_CLEANING_OPERATIONS", true),
		RandomSeed:               getEnvAsUint64("RANDOM_SEED", 0),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                strings.ToLower(getEnv("LOG_FORMAT", "json")),
	}

	dbConfig, err := LoadDatabaseConfig()
	if err != nil {
		return nil, errors.New("failed to load database configuration: " + err.Error())
	}
	cfg.Database = dbConfig

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures all required configuration is present and valid
func (c *Config) Validate() error {
	if c.Database == nil {
		return errors.New("database configuration is required")
	}

	if c.Files.Housing == "" || c.Files.Income == "" || c.Files.Zip == "" {
		return errors.New("housing, income and zip file paths are required")
	}

	switch c.CommitMode {
	case CommitModePhase, CommitModeRow:
	default:
		return fmt.Errorf("unknown load commit mode %q (expected %q or %q)", c.CommitMode, CommitModePhase, CommitModeRow)
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q (expected json or console)", c.LogFormat)
	}

	return nil
}

// loadEnvFile applies a dotenv file without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// Helper functions for environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	switch strings.ToLower(getEnv(key, "")) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}
