// pkg/model/cleaning.go
package model

import (
	"time"
)

// Cleaning operations
const (
	OpRandomGeneration = "random_generation" // value drawn from the column's plausible range
	OpDomainSample     = "domain_sample"     // ZIP drawn from the ZIP file's valid codes
	OpLookupReuse      = "lookup_reuse"      // ZIP reused from an earlier pass for the same guid
	OpValueSample      = "value_sample"      // text sampled from valid values in the file
)

// Cleaning reasons
const (
	ReasonMissingValue     = "missing_value"
	ReasonUnparseableValue = "unparseable_value"
	ReasonOutOfRange       = "out_of_range"
	ReasonInvalidText      = "invalid_text"
)

// CleaningOperation represents a single data cleaning operation
type CleaningOperation struct {
	RunID             string      // Ingress run the operation belongs to
	TableName         string      // Source table (housing, income, zip)
	ColumnName        string      // Column that was cleaned
	OriginalValue     interface{} // Original value (nil when the cell was empty)
	NewValue          string      // New value after cleaning
	RowIdentifier     string      // guid of the row
	CleaningOperation string      // Type of cleaning performed (e.g., "random_generation")
	CleaningReason    string      // Reason for cleaning (e.g., "out_of_range")
	CleanedAt         time.Time   // When the cleaning occurred
}
