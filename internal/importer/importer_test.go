package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fbpanel/internal/dataset"
	pipeerr "fbpanel/internal/errors"
)

func TestSchemaResolve(t *testing.T) {
	schema := SchemaMapping{
		Version: 1,
		Fields: []Field{
			{Name: "year", Accepted: []string{"year", "yr"}},
			{Name: "value", Accepted: []string{"real_gdp", "gdp"}},
			{Name: "note", Accepted: []string{"note"}, Optional: true},
		},
	}

	// Header matching ignores case and surrounding whitespace, and the
	// accepted spellings resolve in priority order.
	columns, err := schema.Resolve("test", []string{" YR ", "GDP", "extra"})
	require.NoError(t, err)
	assert.Equal(t, 0, columns["year"])
	assert.Equal(t, 1, columns["value"])

	_, hasNote := columns["note"]
	assert.False(t, hasNote)
}

func TestSchemaResolveMissingRequired(t *testing.T) {
	schema := SchemaMapping{
		Version: 2,
		Fields: []Field{
			{Name: "year", Accepted: []string{"year"}},
			{Name: "value", Accepted: []string{"value"}},
		},
	}

	_, err := schema.Resolve("test", []string{"year", "unrelated"})
	var mismatch *pipeerr.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "test", mismatch.Source)
	assert.Equal(t, 2, mismatch.Version)
	assert.Equal(t, []string{"value"}, mismatch.Missing)
}

func TestParseEndCause(t *testing.T) {
	cases := map[string]dataset.EndCause{
		"receivership":          dataset.CauseReceivership,
		"Failed":                dataset.CauseReceivership,
		"voluntary liquidation": dataset.CauseVoluntaryLiquidation,
		"LIQUIDATED":            dataset.CauseVoluntaryLiquidation,
		"merged":                dataset.CauseOther,
		"":                      dataset.CauseUnknown,
		"gibberish":             dataset.CauseUnknown,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseEndCause(in), "input %q", in)
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, raw := range []string{"1907-10-22", "10/22/1907", "October 22, 1907", "22-Oct-1907"} {
		d, ok := parseDate(raw)
		require.True(t, ok, raw)
		assert.Equal(t, 1907, d.Year())
	}

	_, ok := parseDate("22nd of October")
	assert.False(t, ok)
}

func TestReadCallReports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SourceCallReports.Filename)
	content := "charter,year,total_assets,deposits,last_before_event,resolution_date,end_cause,dividends\n" +
		"1001,1907,500,,1,1907-10-22,receivership,85\n" +
		"1002,1908,300,250,1,not-a-date,receivership,\n" +
		"1003,1909,400,350,0,,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	warnings := pipeerr.NewWarningCounter()
	obs, err := ReadCallReports(path, SourceCallReports, warnings, nil)
	require.NoError(t, err)
	require.Len(t, obs, 3)

	// Blank deposits cell stays missing, never zero.
	assert.Equal(t, "1001", obs[0].Record.BankID)
	assert.Equal(t, 500.0, obs[0].Record.Assets)
	assert.True(t, dataset.IsMissing(obs[0].Record.Deposits))
	assert.True(t, obs[0].LastBeforeEvent)
	assert.Equal(t, 1907, obs[0].ResolutionDate.Year())
	assert.Equal(t, dataset.CauseReceivership, obs[0].EndCause)
	assert.Equal(t, 85.0, obs[0].Dividends)

	// Malformed date is non-fatal: zero date plus a warning.
	assert.True(t, obs[1].ResolutionDate.IsZero())
	assert.Equal(t, 1, warnings.Count(pipeerr.WarnReconciliation))

	assert.False(t, obs[2].LastBeforeEvent)
	assert.Equal(t, dataset.CauseUnknown, obs[2].EndCause)
}

func TestReadCallReportsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	_, err := ReadCallReports(path, SourceCallReports, nil, nil)

	var missing *pipeerr.MissingSourceError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "call_reports", missing.Artifact)
}

func TestReadCallReportsSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n1,2,3\n"), 0o644))

	_, err := ReadCallReports(path, SourceCallReports, nil, nil)
	var mismatch *pipeerr.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
}

func TestReadReceiverships(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, SourceReceiverships.Filename)
	content := "charter,date_of_failure,closure_type,dividends,good_assets\n" +
		"1001,1893-06-01,receivership,101.5,120\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	recs, err := ReadReceiverships(path, SourceReceiverships, nil, nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// Payouts above 100 clamp at the recovery-rate boundary.
	assert.Equal(t, 1893, recs[0].ReceivershipDate.Year())
	assert.Equal(t, 1.0, recs[0].RecoveryRate())
	assert.True(t, recs[0].FullRecovery())
	assert.Equal(t, 120.0, recs[0].GoodAssets)
}

func TestPanelKindForYear(t *testing.T) {
	assert.Equal(t, dataset.PanelHistorical, panelKindForYear(1934))
	assert.Equal(t, dataset.PanelModern, panelKindForYear(1935))
}
