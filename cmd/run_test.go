package cmd

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/csvwriter"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/deals"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/report"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

const dealsText = `All Deals Report PROCESSED
1 - 1000001 DOE, JANE  ST100  2,500.00  300.00  2,500.00  300.00
01/15/24 SMITH,BOB JONES,AMY New Retail 12 500.00 1200
01/16/24 2023 Ford Motor Co 250.00 75.5
finance LEE,TOM F-150 XLT 400.00 899.00
y KIM,ANN 45000.00 2,000.00 1,100.00 3,100.00
Trade: 2019 Ford F150
2 - 1000002 ROE, RICK  ST200  100.00  -50.00
Totals and Averages
Springfield Motors
`

// resetGlobals restores the package state the commands share.
func resetGlobals(t *testing.T) {
	t.Helper()
	reset := func() {
		dryRun, filePath, reportType, writeCSV, looseOnly = false, "", "", false, false
		inspectReport = ""
		mainConfig = nil
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	reset()
	t.Cleanup(reset)
}

func TestCommandsLeaveWorkingDirectoryEmpty(t *testing.T) {
	resetGlobals(t)
	dir := t.TempDir()
	t.Chdir(dir)

	for _, args := range [][]string{{"version"}, {"convert", "--dry-run"}, {"reports"}} {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(args)
		require.NoError(t, rootCmd.Execute(), "%v", args)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries, "%v must not create files or directories", args)
	}
	rootCmd.SetOut(nil)
	rootCmd.SetArgs(nil)
}

func TestPrintVersionListsReports(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, report.DefaultRegistry(deals.DefaultOptions(), nil))
	assert.Contains(t, buf.String(), "Reports:    all_deals, chart_of_accounts")
}

// convertEnv is a configured workspace for runConvert.
type convertEnv struct {
	cfg *config.MainConfig
}

func newConvertEnv(t *testing.T, files map[string][]byte) convertEnv {
	t.Helper()
	resetGlobals(t)
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	cfg.ConfigsDir = filepath.Join(root, "configs")
	cfg.MaxConcurrency = 1
	require.NoError(t, os.MkdirAll(cfg.InputDir, 0755))
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.InputDir, name), data, 0644))
	}

	mainConfig = cfg
	return convertEnv{cfg: cfg}
}

func (e convertEnv) glob(t *testing.T, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(e.cfg.OutputDir, pattern))
	require.NoError(t, err)
	return matches
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func pdfFixture(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "internal", "pdftext", "testdata", "deals.pdf"))
	require.NoError(t, err)
	return data
}

func TestRunConvertContinuesPastFailures(t *testing.T) {
	env := newConvertEnv(t, map[string][]byte{
		"deals.pdf": pdfFixture(t),
		"deals.txt": []byte(dealsText),
		"memo.txt":  []byte("Quarterly memo\nnothing to see here\n"),
	})

	require.NoError(t, runConvert(context.Background()))

	// Same stem, distinct outputs, reserved in file order.
	assert.FileExists(t, filepath.Join(env.cfg.OutputDir, "deals.xlsx"))
	assert.FileExists(t, filepath.Join(env.cfg.OutputDir, "deals_2.xlsx"))

	assert.FileExists(t, filepath.Join(env.cfg.InputArchiveDir, "deals.pdf"))
	assert.FileExists(t, filepath.Join(env.cfg.InputArchiveDir, "deals.txt"))
	assert.FileExists(t, filepath.Join(env.cfg.InputDir, "memo.txt"))

	summaries := env.glob(t, "processing_summary_*.txt")
	require.Len(t, summaries, 1)
	summary := readFile(t, summaries[0])
	assert.Contains(t, summary, "Total Files:       3")
	assert.Contains(t, summary, "Successful:        2")
	assert.Contains(t, summary, "Failed:            1")

	errLogs := env.glob(t, "error_log_*.txt")
	require.Len(t, errLogs, 1)
	errLog := readFile(t, errLogs[0])
	assert.Contains(t, errLog, "memo.txt")
	assert.Contains(t, errLog, "unsupported format")
}

func TestRunConvertStopsOnFailure(t *testing.T) {
	env := newConvertEnv(t, map[string][]byte{
		"a_inventory.txt": []byte(dealsText),
		"b_deals.txt":     []byte(dealsText),
		"c_deals.txt":     []byte(dealsText),
	})
	env.cfg.ContinueOnError = false

	require.NoError(t, os.MkdirAll(env.cfg.ConfigsDir, 0755))
	profile := "code: inventory\nreport_type: inventory\nfile_matching_patterns: [\"a_*\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.cfg.ConfigsDir, "inventory.yaml"), []byte(profile), 0644))

	err := runConvert(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 of 3 file(s) failed")

	// The unresolved report cancels the run before anything is written.
	assert.Empty(t, env.glob(t, "*.xlsx"))
	assert.FileExists(t, filepath.Join(env.cfg.InputDir, "b_deals.txt"))
	assert.FileExists(t, filepath.Join(env.cfg.InputDir, "c_deals.txt"))

	errLogs := env.glob(t, "error_log_*.txt")
	require.Len(t, errLogs, 1)
	errLog := readFile(t, errLogs[0])
	assert.Contains(t, errLog, "unknown report")
	assert.Contains(t, errLog, "cancelled")
}

func TestRunConvertDryRunWritesNothing(t *testing.T) {
	env := newConvertEnv(t, map[string][]byte{"deals.txt": []byte(dealsText)})
	dryRun = true

	require.NoError(t, runConvert(context.Background()))
	assert.NoDirExists(t, env.cfg.OutputDir)
	assert.NoDirExists(t, env.cfg.InputArchiveDir)
	assert.FileExists(t, filepath.Join(env.cfg.InputDir, "deals.txt"))
}

func TestRunConvertTimestampArchive(t *testing.T) {
	env := newConvertEnv(t, map[string][]byte{"deals.txt": []byte(dealsText)})
	env.cfg.ArchiveTimestampSubdirs = true

	require.NoError(t, runConvert(context.Background()))

	matches, err := filepath.Glob(filepath.Join(env.cfg.InputArchiveDir, "*", "*", "*", "deals.txt"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestReserveOutputNames(t *testing.T) {
	registry := report.DefaultRegistry(deals.DefaultOptions(), nil)
	jobs, failed := planJobs([]string{"in/deals.pdf", "in/DEALS.txt", "in/coa.pdf"}, registry, nil, "", deals.ReportID)
	require.Empty(t, failed)

	reserveOutputNames(jobs, config.Default())
	assert.Equal(t, "deals", jobs[0].base)
	assert.Equal(t, "DEALS_2", jobs[1].base)
	assert.Equal(t, "coa", jobs[2].base)
}

func TestInspectCSV(t *testing.T) {
	src, err := report.DefaultRegistry(deals.DefaultOptions(), nil).Lookup(deals.ReportID)
	require.NoError(t, err)

	rec := types.NewRecord(src.Columns())
	rec.Set(deals.FieldCount, "1")
	rec.Set(deals.FieldDealNumber, "1000001")
	rec.Set(deals.FieldCustomer, "DOE, JANE")
	// No count and no deal number: two identifier errors.
	blank := types.NewRecord(src.Columns())

	path := filepath.Join(t.TempDir(), "deals.csv")
	require.NoError(t, csvwriter.WriteFile(path, src.Columns(), []types.Record{rec, blank}))

	var buf bytes.Buffer
	require.NoError(t, inspectCSV(&buf, path, src))
	out := buf.String()
	assert.Contains(t, out, "Report:   all_deals")
	assert.Contains(t, out, "Records:  2")
	assert.Contains(t, out, "Findings: 2 error(s)")
}
