// pkg/model/records.go
package model

// RawRow holds one CSV record keyed by canonical column name, untouched
type RawRow map[string]string

// GUID returns the row identifier cell
func (r RawRow) GUID() string {
	return r[ColGUID]
}

// RawTable is a source file as read from disk, before any cleaning
type RawTable struct {
	Layout *TableLayout
	Source string // File path the rows came from
	Rows   []RawRow
}

// Len returns the number of data rows
func (t *RawTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HousingRecord is a cleaned row of the housing file
type HousingRecord struct {
	GUID             string `db:"guid"`
	ZipCode          string `db:"zip_code"`
	MedianAge        int64  `db:"median_age"`
	TotalRooms       int64  `db:"total_rooms"`
	TotalBedrooms    int64  `db:"total_bedrooms"`
	Population       int64  `db:"population"`
	Households       int64  `db:"households"`
	MedianHouseValue int64  `db:"median_house_value"`
}

// IncomeRecord is a cleaned row of the income file
type IncomeRecord struct {
	GUID         string `db:"guid"`
	ZipCode      string `db:"zip_code"`
	MedianIncome int64  `db:"median_income"`
}

// ZipRecord is a cleaned row of the ZIP metadata file
type ZipRecord struct {
	GUID    string `db:"guid"`
	ZipCode string `db:"zip_code"`
	City    string `db:"city"`
	State   string `db:"state"`
	County  string `db:"county"`
}

// TargetRow is one row of the denormalized housing table. Fields that no
// cleaning pass has supplied yet stay empty or zero.
type TargetRow struct {
	GUID             string `db:"guid"`
	ZipCode          string `db:"zip_code"`
	MedianAge        int64  `db:"median_age"`
	TotalRooms       int64  `db:"total_rooms"`
	TotalBedrooms    int64  `db:"total_bedrooms"`
	Population       int64  `db:"population"`
	Households       int64  `db:"households"`
	MedianHouseValue int64  `db:"median_house_value"`
	City             string `db:"city"`
	State            string `db:"state"`
	County           string `db:"county"`
	MedianIncome     int64  `db:"median_income"`
}

// TargetRowFromHousing builds the row created by the housing insert
func TargetRowFromHousing(h HousingRecord) TargetRow {
	return TargetRow{
		GUID:             h.GUID,
		ZipCode:          h.ZipCode,
		MedianAge:        h.MedianAge,
		TotalRooms:       h.TotalRooms,
		TotalBedrooms:    h.TotalBedrooms,
		Population:       h.Population,
		Households:       h.Households,
		MedianHouseValue: h.MedianHouseValue,
	}
}

// TargetRowFromIncome builds a default row for an income guid that has no housing row
func TargetRowFromIncome(r IncomeRecord) TargetRow {
	return TargetRow{
		GUID:         r.GUID,
		ZipCode:      r.ZipCode,
		MedianIncome: r.MedianIncome,
	}
}

// TargetRowFromZip builds a default row for a ZIP guid that has no housing row
func TargetRowFromZip(r ZipRecord) TargetRow {
	return TargetRow{
		GUID:    r.GUID,
		ZipCode: r.ZipCode,
		City:    r.City,
		State:   r.State,
		County:  r.County,
	}
}
