// pkg/converter/values.go
package converter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// A letter first, then letters, combining marks, spaces, dots, apostrophes and hyphens
var textPattern = regexp.MustCompile(`^\p{L}[\p{L}\p{M} .'’\-]*$`)

// IsNull determines if a raw cell should be treated as a missing value
func (c *ValueConverter) IsNull(raw string) bool {
	raw = strings.TrimSpace(raw)
	for _, null := range c.config.NullTokens {
		if raw == null {
			return true
		}
	}
	return false
}

// ToInt parses a raw numeric cell. The range check is left to the caller.
func (c *ValueConverter) ToInt(raw string) (int64, error) {
	if c.IsNull(raw) {
		return 0, ErrNullValue
	}
	raw = strings.TrimSpace(raw)

	if intVal, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return intVal, nil
	}

	if !c.config.TruncateFloats {
		return 0, fmt.Errorf("cannot convert '%s' to integer: %w", raw, ErrNotNumeric)
	}

	floatVal, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(floatVal) || math.IsInf(floatVal, 0) {
		return 0, fmt.Errorf("cannot convert '%s' to integer: %w", raw, ErrNotNumeric)
	}
	if floatVal >= math.MaxInt64 || floatVal < math.MinInt64 {
		return 0, fmt.Errorf("'%s' does not fit in an integer: %w", raw, ErrOutOfRange)
	}

	c.logger.Debug("Truncating fractional value",
		zap.String("raw", raw),
		zap.Int64("value", int64(floatVal)))
	return int64(floatVal), nil
}

// ToZip parses a raw ZIP cell into its zero-padded 5 digit form
func (c *ValueConverter) ToZip(raw string) (string, error) {
	zip, err := c.ToInt(raw)
	if err != nil {
		return "", err
	}
	if !ValidZip(zip) {
		return "", fmt.Errorf("ZIP %d outside %05d-%05d: %w", zip, MinZip, MaxZip, ErrOutOfRange)
	}
	return FormatZip(zip), nil
}

// ToText validates a raw city, state or county cell
func (c *ValueConverter) ToText(raw string) (string, error) {
	if c.IsNull(raw) {
		return "", ErrNullValue
	}
	raw = strings.TrimSpace(raw)
	if !textPattern.MatchString(raw) {
		return "", fmt.Errorf("'%s' is not a place name: %w", raw, ErrInvalidText)
	}
	return raw, nil
}

// ValidZip reports whether zip is inside the deliverable ZIP range
func ValidZip(zip int64) bool {
	return zip >= MinZip && zip <= MaxZip
}

// FormatZip renders a ZIP as 5 digits with leading zeros
func FormatZip(zip int64) string {
	return fmt.Sprintf("%05d", zip)
}
