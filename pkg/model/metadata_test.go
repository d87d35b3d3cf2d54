package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeColumnName(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
	}{
		{"guid", "guid"},
		{"Median Age ", "median_age"},
		{"  Total   Rooms", "total_rooms"},
		{"\ufeffguid", "guid"},
		{"\ufeffZip Code", "zip_code"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeColumnName(tt.raw))
		})
	}
}

func TestTableLayout_GetColumnByName(t *testing.T) {
	col := HousingLayout.GetColumnByName("\ufeffGUID")
	require.NotNil(t, col)
	assert.Equal(t, ColGUID, col.Name)

	assert.Nil(t, IncomeLayout.GetColumnByName("city"))
	assert.Equal(t, []string{ColGUID, ColZipCode, ColMedianIncome}, IncomeLayout.ColumnNames())
}
