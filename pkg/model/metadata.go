// pkg/model/metadata.go
package model

import "strings"

// Column data types used by the source layouts
const (
	TypeText    = "TEXT"
	TypeInteger = "INTEGER"
	TypeZip     = "ZIP"
)

// Canonical column names shared by the source files and the target table
const (
	ColGUID             = "guid"
	ColZipCode          = "zip_code"
	ColMedianAge        = "median_age"
	ColTotalRooms       = "total_rooms"
	ColTotalBedrooms    = "total_bedrooms"
	ColPopulation       = "population"
	ColHouseholds       = "households"
	ColMedianHouseValue = "median_house_value"
	ColMedianIncome     = "median_income"
	ColCity             = "city"
	ColState            = "state"
	ColCounty           = "county"
)

// TableLayout describes the fixed column layout of one source file
type TableLayout struct {
	Table   string   // Logical table name, used in logs and the audit trail
	Columns []Column // Columns in file order
}

// Column represents metadata about a source column
type Column struct {
	Name     string // Canonical column name
	DataType string // One of TypeText, TypeInteger, TypeZip
}

// Layouts of the three source files
var (
	HousingLayout = TableLayout{
		Table: "housing",
		Columns: []Column{
			{Name: ColGUID, DataType: TypeText},
			{Name: ColZipCode, DataType: TypeZip},
			{Name: ColMedianAge, DataType: TypeInteger},
			{Name: ColTotalRooms, DataType: TypeInteger},
			{Name: ColTotalBedrooms, DataType: TypeInteger},
			{Name: ColPopulation, DataType: TypeInteger},
			{Name: ColHouseholds, DataType: TypeInteger},
			{Name: ColMedianHouseValue, DataType: TypeInteger},
		},
	}

	IncomeLayout = TableLayout{
		Table: "income",
		Columns: []Column{
			{Name: ColGUID, DataType: TypeText},
			{Name: ColZipCode, DataType: TypeZip},
			{Name: ColMedianIncome, DataType: TypeInteger},
		},
	}

	ZipLayout = TableLayout{
		Table: "zip",
		Columns: []Column{
			{Name: ColGUID, DataType: TypeText},
			{Name: ColZipCode, DataType: TypeZip},
			{Name: ColCity, DataType: TypeText},
			{Name: ColState, DataType: TypeText},
			{Name: ColCounty, DataType: TypeText},
		},
	}
)

// GetColumnByName returns a column by name (case- and space-insensitive)
// Returns nil if column not found
func (tl *TableLayout) GetColumnByName(name string) *Column {
	normalizedName := NormalizeColumnName(name)
	for i, col := range tl.Columns {
		if col.Name == normalizedName {
			return &tl.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the canonical column names in file order
func (tl *TableLayout) ColumnNames() []string {
	names := make([]string, len(tl.Columns))
	for i, col := range tl.Columns {
		names[i] = col.Name
	}
	return names
}

// NormalizeColumnName maps a CSV header cell onto the canonical column naming
// ("Median Age " -> "median_age")
func NormalizeColumnName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.Join(strings.Fields(name), "_")
}
