package converter

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/accounts"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/csvwriter"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/deals"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/report"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/validation"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/xlsxwriter"
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

var fixedNow = time.Date(2024, 3, 15, 8, 5, 9, 0, time.UTC)

type testEnv struct {
	cfg   *config.MainConfig
	input string
}

func newTestEnv(t *testing.T, name, content string) testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.InputDir = filepath.Join(root, "input")
	cfg.OutputDir = filepath.Join(root, "output")
	cfg.InputArchiveDir = filepath.Join(root, "input_archive")
	for _, dir := range []string{cfg.InputDir, cfg.OutputDir} {
		require.NoError(t, os.MkdirAll(dir, 0755))
	}

	input := filepath.Join(cfg.InputDir, name)
	require.NoError(t, os.WriteFile(input, []byte(content), 0644))
	return testEnv{cfg: cfg, input: input}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (e testEnv) run(t *testing.T, src report.Source, profile *config.ReportProfile, opts ...Option) Result {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger()), WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(e.input, src, profile, e.cfg, opts...).Run(context.Background())
}

func TestRunWritesWorkbookAndArchives(t *testing.T) {
	env := newTestEnv(t, "March Deals.txt", dealsText)

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil)
	require.NoError(t, result.Error)
	require.True(t, result.Success)

	assert.Equal(t, deals.ReportID, result.ReportType)
	assert.Equal(t, types.StrategyStrict, result.Strategy)
	assert.Equal(t, 2, result.Stats.RecordsParsed)
	assert.Equal(t, 10, result.Stats.LinesRead)

	xlsxPath := filepath.Join(env.cfg.OutputDir, "March Deals.xlsx")
	assert.Equal(t, []string{xlsxPath}, result.OutputFiles)

	info, err := xlsxwriter.Inspect(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, "All Deals", info.Sheets[0].Name)
	assert.Equal(t, deals.Schema.Names(), info.Sheets[0].Header)
	assert.Equal(t, 2, info.Sheets[0].DataRows)
	assert.Equal(t, "2", info.Summary["Total Rows"])

	assert.Equal(t, filepath.Join(env.cfg.InputArchiveDir, "March Deals.txt"), result.ArchivePath)
	assert.NoFileExists(t, env.input)
}

func TestRunProfileTransformsAndWritesCSV(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.OutputNameFormat = "{report}_{date}"
	env.cfg.ArchiveInputs = false

	profile := &config.ReportProfile{
		Code:       "deals",
		ReportType: deals.ReportID,
		WriteCSV:   true,
		TransformationRules: []config.TransformationRule{{
			Field:   deals.FieldCustomer,
			Actions: []config.TransformationAction{{Type: "title_case"}},
		}, {
			Field:   deals.FieldSaleDate,
			Actions: []config.TransformationAction{{Type: "format_date", Value: "2006-01-02"}},
		}},
	}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.NoError(t, result.Error)

	base := filepath.Join(env.cfg.OutputDir, "all_deals_20240315")
	assert.Equal(t, []string{base + ".xlsx", base + ".csv"}, result.OutputFiles)
	assert.FileExists(t, env.input)

	f, err := os.Open(base + ".csv")
	require.NoError(t, err)
	defer f.Close()
	records, err := csvwriter.Read(f, deals.Schema)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Doe, Jane", records[0].Get(deals.FieldCustomer))
	assert.Equal(t, "Roe, Rick", records[1].Get(deals.FieldCustomer))

	// The reformatted date no longer has the report shape.
	assert.Equal(t, "2024-01-16", records[0].Get(deals.FieldSaleDate))
	assert.Positive(t, result.Stats.ValidationWarnings)
}

func TestRunDryRunWritesNothing(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil, WithDryRun(true), WithCSV(true))
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Len(t, result.OutputFiles, 2)
	for _, out := range result.OutputFiles {
		assert.NoFileExists(t, out)
	}
	assert.FileExists(t, env.input)
	assert.Empty(t, result.ArchivePath)
}

func TestRunNoRecords(t *testing.T) {
	env := newTestEnv(t, "memo.txt", "Quarterly memo\nnothing to see here\n")

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil)
	assert.ErrorIs(t, result.Error, ErrNoRecords)
	assert.False(t, result.Success)
	assert.Equal(t, types.StrategyNone, result.Strategy)
	assert.FileExists(t, env.input)
}

func TestRunUnsupportedInput(t *testing.T) {
	env := newTestEnv(t, "deals.docx", dealsText)

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil)
	assert.ErrorIs(t, result.Error, ErrUnsupportedInput)
}

func TestRunBadPDF(t *testing.T) {
	env := newTestEnv(t, "deals.pdf", "not really a pdf")

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "not a PDF")
}

func TestRunStopsOnValidationErrors(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.ContinueOnError = false

	profile := &config.ReportProfile{
		Code: "blank",
		TransformationRules: []config.TransformationRule{{
			Field:   deals.FieldDealNumber,
			Actions: []config.TransformationAction{{Type: "regex_replace", Find: `.*`, Value: ""}},
		}},
	}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "validation failed with 2 errors")
	assert.Equal(t, 2, result.Stats.ValidationErrors)
	assert.NoFileExists(t, filepath.Join(env.cfg.OutputDir, "deals.xlsx"))
}

func TestRunRejectsBadProfile(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	profile := &config.ReportProfile{
		Code:                "bad",
		TransformationRules: []config.TransformationRule{{Field: "Not A Column"}},
	}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "profile bad")
}

func TestRunLooseOnly(t *testing.T) {
	env := newTestEnv(t, "scan.txt", "12 - 7654321 JANE DOE XY999 900.00 100.00\n")
	env.cfg.ArchiveInputs = false

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil, WithLooseOnly(true))
	require.NoError(t, result.Error)
	assert.Equal(t, types.StrategyLoose, result.Strategy)
	assert.Equal(t, 1, result.Stats.RecordsParsed)

	result = env.run(t, accounts.NewSource(), nil, WithLooseOnly(true))
	assert.ErrorIs(t, result.Error, ErrNoFallback)
}

func TestRunChartOfAccounts(t *testing.T) {
	env := newTestEnv(t, "coa.txt", strings.Join([]string{
		"CHART OF ACCOUNTS",
		"1000 CASH IN BANK  1  0  A 2  A  B  Y 10 20 F1 12345",
		"2000 ACCOUNTS PAYABLE  2  1   3  L  C",
	}, "\n"))
	env.cfg.ArchiveInputs = false

	result := env.run(t, accounts.NewSource(), nil)
	require.NoError(t, result.Error)

	headers, err := xlsxwriter.ReadHeaders(result.OutputFiles[0])
	require.NoError(t, err)
	assert.Equal(t, accounts.Schema.Names(), headers)
}

func TestLoadDocumentText(t *testing.T) {
	env := newTestEnv(t, "deals.TXT", "  a  \n\nb\n")
	doc, err := LoadDocument(context.Background(), env.input)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, doc.Lines)
}

func TestRunPDFFixture(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "pdftext", "testdata", "deals.pdf"))
	require.NoError(t, err)
	env := newTestEnv(t, "March Deals.pdf", string(data))
	env.cfg.ArchiveInputs = false

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil, WithCSV(true))
	require.NoError(t, result.Error)
	assert.Equal(t, types.StrategyStrict, result.Strategy)
	assert.Equal(t, 10, result.Stats.LinesRead)
	assert.Equal(t, 2, result.Stats.RecordsParsed)

	// The PDF holds the same lines as dealsText, so every cell must match.
	fromText := newTestEnv(t, "March Deals.txt", dealsText)
	fromText.cfg.ArchiveInputs = false
	textResult := fromText.run(t, deals.NewSource(deals.DefaultOptions()), nil, WithCSV(true))
	require.NoError(t, textResult.Error)

	pdfCSV, err := os.ReadFile(result.OutputFiles[1])
	require.NoError(t, err)
	textCSV, err := os.ReadFile(textResult.OutputFiles[1])
	require.NoError(t, err)
	assert.Equal(t, string(textCSV), string(pdfCSV))

	info, err := xlsxwriter.Inspect(result.OutputFiles[0])
	require.NoError(t, err)
	assert.Equal(t, 2, info.Sheets[0].DataRows)
}

func TestRunWarningsAsErrors(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.ContinueOnError = false
	env.cfg.Validation.TreatWarningsAsErrors = true

	profile := &config.ReportProfile{
		Code: "iso",
		TransformationRules: []config.TransformationRule{{
			Field:   deals.FieldSaleDate,
			Actions: []config.TransformationAction{{Type: "format_date", Value: "2006-01-02"}},
		}},
	}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.Error(t, result.Error)
	assert.Zero(t, result.Stats.ValidationErrors)
	assert.Positive(t, result.Stats.ValidationWarnings)
	assert.Contains(t, result.Error.Error(), "validation failed")
	assert.Empty(t, result.OutputFiles)

	env.cfg.Validation.TreatWarningsAsErrors = false
	result = env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.NoError(t, result.Error)
}

func TestRunStopOnFirstError(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.ContinueOnError = false
	env.cfg.Validation.StopOnFirstError = true

	profile := &config.ReportProfile{
		Code: "blank",
		TransformationRules: []config.TransformationRule{{
			Field:   deals.FieldDealNumber,
			Actions: []config.TransformationAction{{Type: "regex_replace", Find: `.*`, Value: ""}},
		}},
	}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.Error(t, result.Error)
	assert.Equal(t, 1, result.Stats.ValidationErrors)
	assert.Contains(t, result.Error.Error(), "validation failed with 1 errors")
}

func TestRunRequiredFields(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.ArchiveInputs = false
	env.cfg.Validation.WriteLog = true

	// The second deal in the fixture has no trade-in.
	profile := &config.ReportProfile{
		Code:           "trades",
		RequiredFields: []string{deals.FieldTradeInfo},
	}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.NoError(t, result.Error)
	require.Equal(t, 1, result.Stats.ValidationErrors)

	var required []*validation.ValidationError
	for _, f := range result.Findings {
		if f.Rule == "custom" {
			required = append(required, f)
		}
	}
	require.Len(t, required, 1)
	assert.Equal(t, "Field is required by profile trades", required[0].Message)
	assert.Equal(t, 2, required[0].RecordIndex)

	require.Equal(t, filepath.Join(env.cfg.OutputDir, "deals_validation.log"), result.ValidationLog)
	data, err := os.ReadFile(result.ValidationLog)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Validation log for deals.txt")
	assert.Contains(t, string(data), "Field is required by profile trades")
}

func TestRunUnknownRequiredField(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	profile := &config.ReportProfile{Code: "typo", RequiredFields: []string{"Custmer"}}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "unknown field 'Custmer'")
}

func TestRunValidationLogSkippedInDryRun(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.Validation.WriteLog = true
	profile := &config.ReportProfile{Code: "trades", RequiredFields: []string{deals.FieldTradeInfo}}

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), profile, WithDryRun(true))
	require.NoError(t, result.Error)
	assert.Empty(t, result.ValidationLog)
	assert.NoFileExists(t, filepath.Join(env.cfg.OutputDir, "deals_validation.log"))
}

func TestRunOutputBaseAndTimestampArchive(t *testing.T) {
	env := newTestEnv(t, "deals.txt", dealsText)
	env.cfg.ArchiveTimestampSubdirs = true

	result := env.run(t, deals.NewSource(deals.DefaultOptions()), nil, WithOutputBase("deals_2"))
	require.NoError(t, result.Error)
	assert.Equal(t, []string{filepath.Join(env.cfg.OutputDir, "deals_2.xlsx")}, result.OutputFiles)

	// input_archive/YYYY/MM/DD/deals.txt
	day := filepath.Dir(result.ArchivePath)
	assert.Equal(t, env.cfg.InputArchiveDir, filepath.Dir(filepath.Dir(filepath.Dir(day))))
	assert.Equal(t, "deals.txt", filepath.Base(result.ArchivePath))
	assert.FileExists(t, result.ArchivePath)
}
