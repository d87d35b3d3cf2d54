package cleaner

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/David-Botos/housing-ingress/pkg/converter"
	"github.com/David-Botos/housing-ingress/pkg/model"
)

func newTestCleaner(t *testing.T, seed uint64) *DataCleaner {
	t.Helper()
	c, err := NewDataCleaner(zaptest.NewLogger(t), WithSeed(seed))
	require.NoError(t, err)
	return c
}

func rawTable(layout *model.TableLayout, rows ...[]string) *model.RawTable {
	table := &model.RawTable{Layout: layout, Source: layout.Table + ".csv"}
	for _, cells := range rows {
		row := make(model.RawRow, len(layout.Columns))
		for i, col := range layout.Columns {
			row[col.Name] = cells[i]
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func zipTable() *model.RawTable {
	return rawTable(&model.ZipLayout,
		[]string{"z-1", "02134", "Boston", "MA", "Suffolk"},
		[]string{"z-2", "94105", "San Francisco", "CA", "San Francisco"},
		[]string{"z-3", "60601", "Chicago", "IL", "Cook"},
	)
}

func TestCleanHousing_ValidRowUntouched(t *testing.T) {
	c := newTestCleaner(t, 1)
	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "02134", "30", "1200", "300", "2500", "800", "450000"},
	)

	records, ops, err := c.CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, ops)
	assert.Equal(t, model.HousingRecord{
		GUID:             "g-1",
		ZipCode:          "02134",
		MedianAge:        30,
		TotalRooms:       1200,
		TotalBedrooms:    300,
		Population:       2500,
		Households:       800,
		MedianHouseValue: 450000,
	}, records[0])
}

func TestCleanHousing_NegativeRooms(t *testing.T) {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c, err := NewDataCleaner(zaptest.NewLogger(t), WithSeed(7), WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "02134", "30", "-5", "300", "2500", "800", "450000"},
	)

	records, ops, err := c.CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "g-1", rec.GUID)
	assert.GreaterOrEqual(t, rec.TotalRooms, int64(300), "rooms must not fall below the valid bedroom count")
	assert.LessOrEqual(t, rec.TotalRooms, int64(40000))
	assert.Equal(t, int64(300), rec.TotalBedrooms)

	require.Len(t, ops, 1)
	assert.Equal(t, model.CleaningOperation{
		TableName:         "housing",
		ColumnName:        model.ColTotalRooms,
		OriginalValue:     "-5",
		NewValue:          strconv.FormatInt(rec.TotalRooms, 10),
		RowIdentifier:     "g-1",
		CleaningOperation: model.OpRandomGeneration,
		CleaningReason:    model.ReasonOutOfRange,
		CleanedAt:         fixed,
	}, ops[0])
}

func TestCleanHousing_Reasons(t *testing.T) {
	c := newTestCleaner(t, 3)
	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "02134", "", "abc", "300", "2500", "800", "450000"},
	)

	_, ops, err := c.CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)

	reasons := make(map[string]model.CleaningOperation)
	for _, op := range ops {
		reasons[op.ColumnName] = op
	}
	require.Contains(t, reasons, model.ColMedianAge)
	assert.Equal(t, model.ReasonMissingValue, reasons[model.ColMedianAge].CleaningReason)
	assert.Nil(t, reasons[model.ColMedianAge].OriginalValue)

	require.Contains(t, reasons, model.ColTotalRooms)
	assert.Equal(t, model.ReasonUnparseableValue, reasons[model.ColTotalRooms].CleaningReason)
	assert.Equal(t, "abc", reasons[model.ColTotalRooms].OriginalValue)
}

func TestCleanHousing_AllValuesInRange(t *testing.T) {
	c := newTestCleaner(t, 11)
	garbage := []string{"", "NaN", "-1", "0", "abc", "99999999", "1e9", "-0.5"}

	rng := rand.New(rand.NewPCG(1, 2))
	var rows [][]string
	for i := 0; i < 200; i++ {
		row := []string{fmt.Sprintf("g-%d", i), garbage[rng.IntN(len(garbage))]}
		for j := 0; j < 6; j++ {
			if rng.IntN(2) == 0 {
				row = append(row, garbage[rng.IntN(len(garbage))])
			} else {
				row = append(row, strconv.Itoa(50+rng.IntN(500)))
			}
		}
		rows = append(rows, row)
	}
	housing := rawTable(&model.HousingLayout, rows...)

	records, _, err := c.CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)
	require.Len(t, records, len(rows))

	ranges := DefaultRanges()
	for _, rec := range records {
		assert.True(t, ranges[model.ColMedianAge].Contains(rec.MedianAge), rec.GUID)
		assert.True(t, ranges[model.ColTotalRooms].Contains(rec.TotalRooms), rec.GUID)
		assert.True(t, ranges[model.ColTotalBedrooms].Contains(rec.TotalBedrooms), rec.GUID)
		assert.True(t, ranges[model.ColPopulation].Contains(rec.Population), rec.GUID)
		assert.True(t, ranges[model.ColHouseholds].Contains(rec.Households), rec.GUID)
		assert.True(t, ranges[model.ColMedianHouseValue].Contains(rec.MedianHouseValue), rec.GUID)
		assert.Contains(t, []string{"02134", "94105", "60601"}, rec.ZipCode, rec.GUID)
	}
}

func TestCleanHousing_SynthesizedBedroomsWithinRooms(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		c := newTestCleaner(t, seed)
		housing := rawTable(&model.HousingLayout,
			[]string{"g-1", "02134", "30", "10", "bad", "900", "", "450000"},
			[]string{"g-2", "02134", "30", "5000", "600", "900", "300", "450000"},
		)

		records, _, err := c.CleanHousing(housing, zipTable(), NewZipLookup())
		require.NoError(t, err)
		assert.LessOrEqual(t, records[0].TotalBedrooms, records[0].TotalRooms)
		assert.LessOrEqual(t, records[0].Households, records[0].Population)
	}
}

func TestCleanHousing_ObservedRange(t *testing.T) {
	c := newTestCleaner(t, 5)
	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "02134", "20", "1000", "200", "2000", "500", "300000"},
		[]string{"g-2", "02134", "40", "2000", "400", "3000", "700", "500000"},
		[]string{"g-3", "02134", "30", "1500", "300", "2500", "600", "-1"},
	)

	records, ops, err := c.CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.GreaterOrEqual(t, records[2].MedianHouseValue, int64(300000))
	assert.LessOrEqual(t, records[2].MedianHouseValue, int64(500000))
}

func TestSyntheticZipSharedAcrossPasses(t *testing.T) {
	c := newTestCleaner(t, 9)
	lookup := NewZipLookup()
	zips := zipTable()

	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "abcde", "30", "1200", "300", "2500", "800", "450000"},
	)
	income := rawTable(&model.IncomeLayout,
		[]string{"g-1", "00000", "55000"},
		[]string{"g-2", "99999", "61000"},
	)

	housingRecs, housingOps, err := c.CleanHousing(housing, zips, lookup)
	require.NoError(t, err)
	require.Len(t, housingOps, 1)
	assert.Equal(t, model.OpDomainSample, housingOps[0].CleaningOperation)
	assert.Equal(t, model.ReasonUnparseableValue, housingOps[0].CleaningReason)

	incomeRecs, incomeOps, err := c.CleanIncome(income, zips, lookup)
	require.NoError(t, err)
	require.Len(t, incomeOps, 2)

	assert.Equal(t, housingRecs[0].ZipCode, incomeRecs[0].ZipCode)
	assert.Equal(t, model.OpLookupReuse, incomeOps[0].CleaningOperation)
	assert.Equal(t, model.ReasonOutOfRange, incomeOps[0].CleaningReason)
	assert.Equal(t, model.OpDomainSample, incomeOps[1].CleaningOperation)

	zip, ok := lookup.Get("g-1")
	require.True(t, ok)
	assert.Equal(t, housingRecs[0].ZipCode, zip)
	assert.Equal(t, 2, lookup.Len())

	zipRecs, _, err := c.CleanZip(rawTable(&model.ZipLayout,
		[]string{"g-1", "", "Boston", "MA", "Suffolk"},
	), lookup)
	require.NoError(t, err)
	assert.Equal(t, zip, zipRecs[0].ZipCode)
}

func TestCleanHousing_EmptyZipDomain(t *testing.T) {
	c := newTestCleaner(t, 13)
	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "", "30", "1200", "300", "2500", "800", "450000"},
	)

	records, _, err := c.CleanHousing(housing, nil, NewZipLookup())
	require.NoError(t, err)

	zip, err := strconv.ParseInt(records[0].ZipCode, 10, 64)
	require.NoError(t, err)
	assert.Len(t, records[0].ZipCode, 5)
	assert.True(t, converter.ValidZip(zip))
}

func TestCleanIncome_ReplacesIncome(t *testing.T) {
	c := newTestCleaner(t, 17)
	income := rawTable(&model.IncomeLayout,
		[]string{"g-1", "02134", "40000"},
		[]string{"g-2", "94105", "60000"},
		[]string{"g-3", "60601", "-3"},
		[]string{"g-4", "60601", "NaN"},
	)

	records, ops, err := c.CleanIncome(income, zipTable(), NewZipLookup())
	require.NoError(t, err)
	require.Len(t, records, 4)
	require.Len(t, ops, 2)

	for _, rec := range records[2:] {
		assert.GreaterOrEqual(t, rec.MedianIncome, int64(40000))
		assert.LessOrEqual(t, rec.MedianIncome, int64(60000))
	}
	assert.Equal(t, model.ReasonOutOfRange, ops[0].CleaningReason)
	assert.Equal(t, model.ReasonMissingValue, ops[1].CleaningReason)
}

func TestCleanZip_TextReplacement(t *testing.T) {
	c := newTestCleaner(t, 19)
	zips := rawTable(&model.ZipLayout,
		[]string{"g-1", "02134", "Boston", "MA", "Suffolk"},
		[]string{"g-2", "02134", "12345", "", "Suffolk"},
		[]string{"g-3", "94105", "San Francisco", "CA", "San Francisco"},
		[]string{"g-4", "60601", "Chicago", "IL", "#!"},
	)

	records, ops, err := c.CleanZip(zips, NewZipLookup())
	require.NoError(t, err)
	require.Len(t, records, 4)

	// Same ZIP code has a valid city and state
	assert.Equal(t, "Boston", records[1].City)
	assert.Equal(t, "MA", records[1].State)
	// 60601 has no other valid county, so it comes from the whole column
	assert.Contains(t, []string{"Suffolk", "San Francisco"}, records[3].County)

	require.Len(t, ops, 3)
	for _, op := range ops {
		assert.Equal(t, model.OpValueSample, op.CleaningOperation)
		assert.Equal(t, "zip", op.TableName)
	}
}

func TestCleanZip_AccentedNamesUntouched(t *testing.T) {
	c := newTestCleaner(t, 29)
	zips := rawTable(&model.ZipLayout,
		[]string{"g-1", "02134", "Boston", "MA", "Suffolk"},
		[]string{"g-2", "88001", "Las Cruces", "NM", "Doña Ana"},
		[]string{"g-3", "87532", "Española", "NM", "Rio Arriba"},
		[]string{"g-4", "81212", "Cañon City", "CO", "Fremont"},
	)

	records, ops, err := c.CleanZip(zips, NewZipLookup())
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "Doña Ana", records[1].County)
	assert.Equal(t, "Española", records[2].City)
	assert.Equal(t, "Cañon City", records[3].City)
	assert.Empty(t, ops)
}

func TestCleanZip_UnknownFallback(t *testing.T) {
	c := newTestCleaner(t, 23)
	zips := rawTable(&model.ZipLayout,
		[]string{"g-1", "02134", "", "MA", "Suffolk"},
		[]string{"g-2", "94105", "42", "CA", "San Francisco"},
	)

	records, _, err := c.CleanZip(zips, NewZipLookup())
	require.NoError(t, err)
	assert.Equal(t, UnknownPlace, records[0].City)
	assert.Equal(t, UnknownPlace, records[1].City)
}

func TestClean_Deterministic(t *testing.T) {
	housing := rawTable(&model.HousingLayout,
		[]string{"g-1", "bad", "", "-5", "x", "0", "NaN", "1"},
		[]string{"g-2", "02134", "30", "1200", "300", "2500", "800", "450000"},
	)

	first, _, err := newTestCleaner(t, 42).CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)
	second, _, err := newTestCleaner(t, 42).CleanHousing(housing, zipTable(), NewZipLookup())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestClean_StructuralErrors(t *testing.T) {
	c := newTestCleaner(t, 1)

	_, _, err := c.CleanHousing(nil, zipTable(), NewZipLookup())
	assert.EqualError(t, err, "housing table cannot be nil")

	_, _, err = c.CleanIncome(zipTable(), zipTable(), NewZipLookup())
	assert.EqualError(t, err, "expected income table")

	_, _, err = c.CleanZip(zipTable(), nil)
	assert.EqualError(t, err, "ZIP lookup cannot be nil")

	_, err = NewDataCleaner(nil)
	assert.Error(t, err)

	_, err = NewDataCleaner(zaptest.NewLogger(t), WithRanges(map[string]FieldRange{
		model.ColMedianAge: {Min: 10, Max: 1},
	}))
	assert.Error(t, err)
}
