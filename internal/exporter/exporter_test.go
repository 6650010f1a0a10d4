package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbpanel/internal/dataset"
)

func TestCellMissingIsEmptyNeverZero(t *testing.T) {
	assert.Equal(t, "", Cell(dataset.Missing()))
	assert.Equal(t, "0", Cell(0))
	assert.Equal(t, "1.25", Cell(1.25))
}

func TestIntCellZeroSentinel(t *testing.T) {
	assert.Equal(t, "", IntCell(0, true))
	assert.Equal(t, "0", IntCell(0, false))
	assert.Equal(t, "3", IntCell(3, true))
}

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	w := NewCSVWriter(nil)
	err := w.Write(path, []string{"a", "b"}, [][]string{{"1", ""}, {"2", "x"}})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// BOM prefix, then the header and both records.
	require.True(t, strings.HasPrefix(string(data), "\xEF\xBB\xBF"))
	body := strings.TrimPrefix(string(data), "\xEF\xBB\xBF")
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a,b", lines[0])
	assert.Equal(t, "1,", lines[1])

	// No temp file survives the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.csv", entries[0].Name())
}

func TestWriteCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "deeper", "out.csv")

	w := NewCSVWriter(nil)
	w.BOMPrefix = false
	require.NoError(t, w.Write(path, []string{"h"}, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "h\n", string(data))
}

func TestWriteMacroSeriesSkipsMissingYears(t *testing.T) {
	s := dataset.NewAnnualSeries()
	s.Set(1900, 100)
	s.Set(1902, 110)

	dir := t.TempDir()
	path := filepath.Join(dir, "macro.csv")

	w := NewCSVWriter(nil)
	w.BOMPrefix = false
	require.NoError(t, w.WriteMacroSeries(path, s, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1900,100", lines[1])
	assert.Equal(t, "1902,110", lines[2])
}

func TestWriteMacroSeriesJoinsBondYields(t *testing.T) {
	s := dataset.NewAnnualSeries()
	s.Set(1900, 100)
	s.Set(1901, 105)

	govt := dataset.NewAnnualSeries()
	govt.Set(1901, 2.5)
	govt.Set(1902, 2.6) // year outside the macro series still appears
	rail := dataset.NewAnnualSeries()
	rail.Set(1900, 4.0)
	yields := map[string]*dataset.AnnualSeries{"GOVT2": govt, "RAIL": rail}

	dir := t.TempDir()
	path := filepath.Join(dir, "macro.csv")

	w := NewCSVWriter(nil)
	w.BOMPrefix = false
	require.NoError(t, w.WriteMacroSeries(path, s, yields))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "year,real_gdp,yield_govt2,yield_rail", lines[0])
	assert.Equal(t, "1900,100,,4", lines[1])
	assert.Equal(t, "1901,105,2.5,", lines[2])
	assert.Equal(t, "1902,,2.6,", lines[3])
}

func TestWritePanelMissingFields(t *testing.T) {
	rows := []dataset.PanelRow{{
		BankRecord: dataset.BankRecord{
			BankID:   "1001",
			Year:     1907,
			Kind:     dataset.PanelHistorical,
			Assets:   500,
			Deposits: dataset.Missing(),
		},
		EventIndex:          1,
		EndCause:            dataset.CauseReceivership,
		Dividends:           85,
		RecoveryRate:        0.85,
		GoodAssets:          120,
		DoubtfulAssets:      dataset.Missing(),
		WorthlessAssets:     dataset.Missing(),
		AdditionalAssets:    dataset.Missing(),
		CollectedFromAssets: dataset.Missing(),
		AssetGrowthShort:    dataset.Missing(),
		AssetGrowthLong:     dataset.Missing(),
		GrowthQuintileShort: 0,
		GrowthQuintileLong:  0,
		Failed:              1,
	}}

	dir := t.TempDir()
	path := filepath.Join(dir, "panel.csv")

	w := NewCSVWriter(nil)
	w.BOMPrefix = false
	require.NoError(t, w.WritePanel(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	fields := strings.Split(lines[1], ",")
	header := strings.Split(lines[0], ",")
	require.Equal(t, len(header), len(fields))

	byName := make(map[string]string, len(header))
	for i, h := range header {
		byName[h] = fields[i]
	}
	assert.Equal(t, "500", byName["assets"])
	assert.Equal(t, "", byName["deposits"])
	assert.Equal(t, "120", byName["good_assets"])
	assert.Equal(t, "", byName["worthless_assets"])
	assert.Equal(t, "", byName["collected_from_assets"])
	assert.Equal(t, "", byName["quarter"])
	assert.Equal(t, "", byName["growth_quintile_short"])
	assert.Equal(t, "receivership", byName["end_cause"])
	assert.Equal(t, "1", byName["failed"])
}
