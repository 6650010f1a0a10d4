package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	pipeerr "fbpanel/internal/errors"
)

func writeWorkbook(t *testing.T, filename, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadAnnualSeriesAnnualizesQuarters(t *testing.T) {
	path := writeWorkbook(t, SourceGDPModern.Filename, SourceGDPModern.Sheet, [][]any{
		{"Quarterly real GDP"}, // title row above the header
		{"year", "quarter", "real_gdp"},
		{1947, 1, 100.0},
		{1947, 2, 110.0},
		{1947, 3, 120.0},
		{1947, 4, 130.0},
		{1948, 1, 140.0},
		{1948, 2, 150.0},
	})

	s, err := ReadAnnualSeries(path, SourceGDPModern, nil)
	require.NoError(t, err)
	assert.InDelta(t, 115.0, s.Value(1947), 1e-9)
	assert.InDelta(t, 145.0, s.Value(1948), 1e-9)
	assert.False(t, s.Has(1949))
}

func TestReadAnnualSeriesAnnualSource(t *testing.T) {
	path := writeWorkbook(t, SourceGNPHistorical.Filename, SourceGNPHistorical.Sheet, [][]any{
		{"yr", "real gnp"},
		{1890, "1,234.5"}, // thousands separators appear in older vintages
		{1891, 1300.0},
		{1892, "n/a"}, // unparseable cell is skipped, not zeroed
	})

	s, err := ReadAnnualSeries(path, SourceGNPHistorical, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1234.5, s.Value(1890), 1e-9)
	assert.InDelta(t, 1300.0, s.Value(1891), 1e-9)
	assert.False(t, s.Has(1892))
}

func TestReadAnnualSeriesHeaderNotFound(t *testing.T) {
	path := writeWorkbook(t, "bad.xlsx", "GNP", [][]any{
		{"nothing", "matches"},
		{1, 2},
	})

	_, err := ReadAnnualSeries(path, SourceGNPHistorical, nil)
	var mismatch *pipeerr.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestReadAnnualSeriesMissingWorkbook(t *testing.T) {
	_, err := ReadAnnualSeries(filepath.Join(t.TempDir(), "absent.xlsx"), SourceGNPHistorical, nil)
	var missing *pipeerr.MissingSourceError
	require.ErrorAs(t, err, &missing)
}

func TestReadBondYields(t *testing.T) {
	path := writeWorkbook(t, SourceBondYields.Filename, SourceBondYields.Sheet, [][]any{
		{"year", "ticker", "yield"},
		{1900, "GOVT2", 2.5},
		{1901, "GOVT2", 2.6},
		{1900, "RAIL", 4.0},
	})

	yields, err := ReadBondYields(path, SourceBondYields, nil)
	require.NoError(t, err)
	require.Len(t, yields, 2)
	assert.InDelta(t, 2.6, yields["GOVT2"].Value(1901), 1e-9)
	assert.Equal(t, 1, yields["RAIL"].Len())
}
