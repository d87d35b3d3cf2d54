// pkg/cleaner/ranges.go
package cleaner

import (
	"sort"

	"github.com/David-Botos/housing-ingress/pkg/converter"
	"github.com/David-Botos/housing-ingress/pkg/model"
)

// FieldRange is an inclusive integer range
type FieldRange struct {
	Min int64
	Max int64
}

// Contains reports whether v lies inside the range
func (r FieldRange) Contains(v int64) bool {
	return v >= r.Min && v <= r.Max
}

// Empty reports whether the range holds no value
func (r FieldRange) Empty() bool {
	return r.Min > r.Max
}

// DefaultRanges are the hard plausibility bounds. A value outside them is
// treated as corrupted.
func DefaultRanges() map[string]FieldRange {
	return map[string]FieldRange{
		model.ColMedianAge:        {Min: 1, Max: 100},
		model.ColTotalRooms:       {Min: 1, Max: 40000},
		model.ColTotalBedrooms:    {Min: 1, Max: 7000},
		model.ColPopulation:       {Min: 1, Max: 40000},
		model.ColHouseholds:       {Min: 1, Max: 7000},
		model.ColMedianHouseValue: {Min: 10000, Max: 2000000},
		model.ColMedianIncome:     {Min: 1000, Max: 500000},
	}
}

// observedRange narrows hard to the min and max of the column's valid values.
// Replacements then look like the data around them. Falls back to hard when
// the column has no valid value.
func observedRange(conv *converter.ValueConverter, table *model.RawTable, col string, hard FieldRange) FieldRange {
	observed := FieldRange{Min: hard.Max, Max: hard.Min}
	for _, row := range table.Rows {
		v, err := conv.ToInt(row[col])
		if err != nil || !hard.Contains(v) {
			continue
		}
		if v < observed.Min {
			observed.Min = v
		}
		if v > observed.Max {
			observed.Max = v
		}
	}
	if observed.Empty() {
		return hard
	}
	return observed
}

// zipDomain returns the sorted unique valid ZIP codes of the ZIP file.
// Synthesized codes are drawn from it so they always name a known place.
func zipDomain(conv *converter.ValueConverter, zips *model.RawTable) []string {
	if zips == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(zips.Rows))
	for _, row := range zips.Rows {
		zip, err := conv.ToZip(row[model.ColZipCode])
		if err != nil {
			continue
		}
		seen[zip] = struct{}{}
	}
	domain := make([]string, 0, len(seen))
	for zip := range seen {
		domain = append(domain, zip)
	}
	sort.Strings(domain)
	return domain
}
