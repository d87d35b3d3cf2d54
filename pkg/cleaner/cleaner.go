// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/David-Botos/housing-ingress/pkg/converter"
	"github.com/David-Botos/housing-ingress/pkg/model"
)

// DataCleaner validates the raw source tables and silently repairs corrupted
// cells with plausible values. Every repair is reported as a CleaningOperation.
type DataCleaner struct {
	logger    *zap.Logger
	converter *converter.ValueConverter
	rng       *rand.Rand
	ranges    map[string]FieldRange
	now       func() time.Time
}

// Option configures a DataCleaner
type Option func(*DataCleaner)

// WithSeed makes the cleaner's random draws reproducible. Zero seeds from the clock.
func WithSeed(seed uint64) Option {
	return func(c *DataCleaner) {
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		c.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source used for replacement values
func WithRand(rng *rand.Rand) Option {
	return func(c *DataCleaner) {
		c.rng = rng
	}
}

// WithRanges overrides the hard plausibility bounds of the given columns
func WithRanges(ranges map[string]FieldRange) Option {
	return func(c *DataCleaner) {
		for col, r := range ranges {
			c.ranges[col] = r
		}
	}
}

// WithClock sets the clock used to stamp cleaning operations
func WithClock(now func() time.Time) Option {
	return func(c *DataCleaner) {
		c.now = now
	}
}

// NewDataCleaner creates a new DataCleaner instance
func NewDataCleaner(logger *zap.Logger, opts ...Option) (*DataCleaner, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	c := &DataCleaner{
		logger: logger.Named("cleaner"),
		ranges: DefaultRanges(),
		now:    time.Now,
	}
	c.converter = converter.NewValueConverter(c.logger)
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		WithSeed(0)(c)
	}

	for col, r := range c.ranges {
		if r.Empty() {
			return nil, fmt.Errorf("range for %s is empty (%d > %d)", col, r.Min, r.Max)
		}
	}

	return c, nil
}

// Range returns the hard plausibility bounds of a column
func (c *DataCleaner) Range(col string) (FieldRange, bool) {
	r, ok := c.ranges[col]
	return r, ok
}

// CleanHousing validates every housing row. Invalid numeric fields are
// replaced with values inside the column's plausible range and invalid ZIP
// codes go through the lookup-or-generate policy using the ZIP file's codes.
func (c *DataCleaner) CleanHousing(
	housing, zips *model.RawTable,
	lookup *ZipLookup,
) ([]model.HousingRecord, []model.CleaningOperation, error) {
	if err := checkTable(housing, &model.HousingLayout); err != nil {
		return nil, nil, err
	}
	if lookup == nil {
		return nil, nil, errors.New("ZIP lookup cannot be nil")
	}

	p := c.newPass(housing, zips, lookup)
	numeric := []string{
		model.ColMedianAge, model.ColTotalRooms, model.ColTotalBedrooms,
		model.ColPopulation, model.ColHouseholds, model.ColMedianHouseValue,
	}
	for _, col := range numeric {
		p.observe(col)
	}

	records := make([]model.HousingRecord, 0, housing.Len())
	for _, row := range housing.Rows {
		guid := row.GUID()
		values := p.parseNumeric(row, numeric)

		// Synthesized values must not contradict the valid ones next to them
		p.repair(values, model.ColTotalRooms, guid, known(values[model.ColTotalBedrooms]), noBound)
		p.repair(values, model.ColTotalBedrooms, guid, noBound, known(values[model.ColTotalRooms]))
		p.repair(values, model.ColPopulation, guid, known(values[model.ColHouseholds]), noBound)
		p.repair(values, model.ColHouseholds, guid, noBound, known(values[model.ColPopulation]))
		p.repair(values, model.ColMedianAge, guid, noBound, noBound)
		p.repair(values, model.ColMedianHouseValue, guid, noBound, noBound)

		records = append(records, model.HousingRecord{
			GUID:             guid,
			ZipCode:          p.zip(row),
			MedianAge:        values[model.ColMedianAge].value,
			TotalRooms:       values[model.ColTotalRooms].value,
			TotalBedrooms:    values[model.ColTotalBedrooms].value,
			Population:       values[model.ColPopulation].value,
			Households:       values[model.ColHouseholds].value,
			MedianHouseValue: values[model.ColMedianHouseValue].value,
		})
	}

	p.done(len(records))
	return records, p.operations, nil
}

// CleanIncome validates every income row. Invalid ZIP codes share the
// housing pass's policy and lookup, invalid incomes are regenerated.
func (c *DataCleaner) CleanIncome(
	income, zips *model.RawTable,
	lookup *ZipLookup,
) ([]model.IncomeRecord, []model.CleaningOperation, error) {
	if err := checkTable(income, &model.IncomeLayout); err != nil {
		return nil, nil, err
	}
	if lookup == nil {
		return nil, nil, errors.New("ZIP lookup cannot be nil")
	}

	p := c.newPass(income, zips, lookup)
	p.observe(model.ColMedianIncome)

	records := make([]model.IncomeRecord, 0, income.Len())
	for _, row := range income.Rows {
		guid := row.GUID()
		values := p.parseNumeric(row, []string{model.ColMedianIncome})
		p.repair(values, model.ColMedianIncome, guid, noBound, noBound)

		records = append(records, model.IncomeRecord{
			GUID:         guid,
			ZipCode:      p.zip(row),
			MedianIncome: values[model.ColMedianIncome].value,
		})
	}

	p.done(len(records))
	return records, p.operations, nil
}

// CleanZip validates every ZIP metadata row. Invalid place names are
// replaced by a valid name seen for the same ZIP code, then any valid name
// in the column, then "Unknown".
func (c *DataCleaner) CleanZip(
	zips *model.RawTable,
	lookup *ZipLookup,
) ([]model.ZipRecord, []model.CleaningOperation, error) {
	if err := checkTable(zips, &model.ZipLayout); err != nil {
		return nil, nil, err
	}
	if lookup == nil {
		return nil, nil, errors.New("ZIP lookup cannot be nil")
	}

	p := c.newPass(zips, zips, lookup)
	textCols := []string{model.ColCity, model.ColState, model.ColCounty}

	// ZIP codes first, so place names can be sampled per cleaned code
	cleanedZips := make([]string, len(zips.Rows))
	for i, row := range zips.Rows {
		cleanedZips[i] = p.zip(row)
	}

	pools := newTextPools(textCols)
	for i, row := range zips.Rows {
		for _, col := range textCols {
			if v, err := c.converter.ToText(row[col]); err == nil {
				pools.add(col, cleanedZips[i], v)
			}
		}
	}

	records := make([]model.ZipRecord, 0, zips.Len())
	for i, row := range zips.Rows {
		text := make(map[string]string, len(textCols))
		for _, col := range textCols {
			text[col] = p.text(row, col, cleanedZips[i], pools)
		}

		records = append(records, model.ZipRecord{
			GUID:    row.GUID(),
			ZipCode: cleanedZips[i],
			City:    text[model.ColCity],
			State:   text[model.ColState],
			County:  text[model.ColCounty],
		})
	}

	p.done(len(records))
	return records, p.operations, nil
}

// checkTable rejects tables the cleaner cannot work on. Corrupted cells are
// never an error; a missing or mislabelled table is.
func checkTable(table *model.RawTable, layout *model.TableLayout) error {
	if table == nil {
		return fmt.Errorf("%s table cannot be nil", layout.Table)
	}
	if table.Layout == nil || table.Layout.Table != layout.Table {
		return fmt.Errorf("expected %s table", layout.Table)
	}
	return nil
}
