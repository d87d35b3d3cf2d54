// pkg/converter/converter.go
package converter

import (
	"errors"

	"go.uber.org/zap"
)

// Valid ZIP code range. 00000 and anything above 99950 is not a real code.
const (
	MinZip = 501
	MaxZip = 99950
)

// Conversion failures. The cleaner maps each of them onto a cleaning reason.
var (
	ErrNullValue   = errors.New("null value")
	ErrNotNumeric  = errors.New("value is not numeric")
	ErrOutOfRange  = errors.New("value out of range")
	ErrInvalidText = errors.New("invalid text value")
)

// ValueConverter turns raw CSV cells into typed values
type ValueConverter struct {
	logger *zap.Logger
	// Configuration options
	config ValueConverterConfig
}

// ValueConverterConfig provides configuration options for value conversion
type ValueConverterConfig struct {
	// Cell contents treated as a missing value (compared after trimming)
	NullTokens []string
	// Whether numeric cells like "12.7" are accepted and truncated to 12
	TruncateFloats bool
}

// DefaultConfig returns the default configuration
func DefaultConfig() ValueConverterConfig {
	return ValueConverterConfig{
		NullTokens:     []string{"", "NaN", "nan", "null", "NULL", "nil", "NIL", "None"},
		TruncateFloats: true,
	}
}

// NewValueConverter creates a new ValueConverter with default configuration
func NewValueConverter(logger *zap.Logger) *ValueConverter {
	return NewValueConverterWithConfig(logger, DefaultConfig())
}

// NewValueConverterWithConfig creates a ValueConverter with custom configuration
func NewValueConverterWithConfig(logger *zap.Logger, config ValueConverterConfig) *ValueConverter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ValueConverter{
		logger: logger,
		config: config,
	}
}
