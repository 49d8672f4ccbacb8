package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSV(t *testing.T) {
	input := "\xEF\xBB\xBFlane_id, date, rate,month\n" +
		"A,2023-01-01,100,Jan\n" +
		"\n" +
		"B,2023-01-01,200\n" +
		",,,\n"

	ds, err := ParseCSV("historical_rates.csv", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"lane_id", "date", "rate", "month"}, ds.Columns)
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "Jan", ds.Value(0, "month"))
	// short rows read as empty cells
	assert.Equal(t, "", ds.Value(1, "month"))
	assert.Equal(t, "200", ds.Value(1, "rate"))
}

func TestParseCSVEmptyFile(t *testing.T) {
	ds, err := ParseCSV("historical_empty.csv", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Empty(t, ds.Columns)
}

func TestParseCSVMalformedQuote(t *testing.T) {
	_, err := ParseCSV("historical_bad.csv", strings.NewReader("lane_id,rate\n\"A,100\n"))
	assert.Error(t, err)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"lane_id", "date", "rate"},
		{"A", "2023-01-01", "100"},
		{"A", "2023-02-01", "101.5"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	ds, err := Parse("historical_rates.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, []string{"lane_id", "date", "rate"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "101.5", ds.Value(1, "rate"))
}

func TestParseXLSXInvalidWorkbook(t *testing.T) {
	_, err := Parse("historical_rates.xlsx", strings.NewReader("not a workbook"))
	assert.Error(t, err)
}

func TestIsSpreadsheet(t *testing.T) {
	assert.True(t, IsSpreadsheet("historical_rates.XLSX"))
	assert.True(t, IsSpreadsheet("bid_2024.xlsm"))
	assert.False(t, IsSpreadsheet("historical_rates.csv"))
	assert.False(t, IsSpreadsheet("historical_rates"))
}
