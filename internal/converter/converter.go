// =============================================================================
// PDF to XLSX Converter - Converter Module
// =============================================================================
//
// This module contains the per-file conversion pipeline. It orchestrates the
// whole run for a single input, from text extraction to the written
// workbook.
//
// CONVERSION PIPELINE:
//   1. Load the document (.pdf through pdftext, .txt through textparser)
//   2. Parse it with the report source (strict grammar, then fallback)
//   3. Apply the profile's transformation rules to each record
//   4. Validate the records against the report schema and profile
//   5. Derive the output name (and write the validation log when enabled)
//   6. Write the workbook (and the CSV when enabled)
//   7. Archive the processed input
//
// CONCURRENCY:
//   Each file is processed in its own goroutine by the CLI. A Converter owns
//   no shared mutable state, so any number can run at once.
//
// =============================================================================

package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/csvwriter"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/pdftext"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/report"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/textparser"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/validation"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/xlsxwriter"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/pkg/utils"
)

var (
	// ErrNoRecords is returned when no strategy recognized a single record.
	ErrNoRecords = errors.New("unsupported format: no records recognized")

	// ErrUnsupportedInput is returned for input files that are neither PDF
	// nor text.
	ErrUnsupportedInput = errors.New("unsupported input file type")

	// ErrNoFallback is returned when loose-only parsing is requested for a
	// report that has no fallback strategy.
	ErrNoFallback = errors.New("report has no fallback strategy")
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// ReportType is the id of the report source used.
	ReportType string

	// Strategy is the parsing technique that produced the records.
	Strategy types.Strategy

	// OutputFiles are the written files, workbook first. In dry-run mode
	// they are the files that would have been written.
	OutputFiles []string

	// ArchivePath is where the input was moved, if it was archived.
	ArchivePath string

	// ValidationLog is the per-file findings log, if one was written.
	ValidationLog string

	// Success indicates whether the processing was successful.
	Success bool

	// Error contains the error if processing failed.
	// This is nil if processing was successful.
	Error error

	// Findings are the validation findings for the records.
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// LinesRead is the number of non-empty text lines extracted.
	LinesRead int

	// RecordsParsed is the number of records the report source produced.
	RecordsParsed int

	// ValidationErrors is the number of fatal validation findings.
	// If ContinueOnError is true, processing continues despite these errors.
	ValidationErrors int

	// ValidationWarnings is the number of non-fatal findings.
	ValidationWarnings int

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter handles the conversion of a single report file.
type Converter struct {
	// path is the path to the input file.
	path string

	// source parses the report layout.
	source report.Source

	// profile is the matching report profile, or nil.
	profile *config.ReportProfile

	// mainConfig is the main application configuration.
	mainConfig *config.MainConfig

	logger     Logger
	dryRun     bool
	forceCSV   bool
	looseOnly  bool
	outputBase string
	now        func() time.Time
}

// Logger is an interface for logging. *slog.Logger satisfies it; args are
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Option customizes a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithDryRun parses, transforms and validates but writes and moves nothing.
func WithDryRun(dryRun bool) Option {
	return func(c *Converter) { c.dryRun = dryRun }
}

// WithCSV forces the CSV export regardless of configuration.
func WithCSV(enabled bool) Option {
	return func(c *Converter) { c.forceCSV = enabled }
}

// WithLooseOnly skips the strict grammar and runs only the report's
// fallback strategy.
func WithLooseOnly(enabled bool) Option {
	return func(c *Converter) { c.looseOnly = enabled }
}

// WithOutputBase fixes the output base name instead of expanding the
// configured output name format. The CLI uses it to hand out names that are
// unique within a run.
func WithOutputBase(base string) Option {
	return func(c *Converter) { c.outputBase = base }
}

// WithClock sets the time source used for output names and the summary sheet.
func WithClock(now func() time.Time) Option {
	return func(c *Converter) { c.now = now }
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - path: The path to the input .pdf or .txt file.
//   - source: The report source that parses the file.
//   - profile: The matching report profile, or nil for none.
//   - mainConfig: The main application configuration.
//
// RETURNS:
//   - A new Converter instance.
func New(path string, source report.Source, profile *config.ReportProfile, mainConfig *config.MainConfig, opts ...Option) *Converter {
	c := &Converter{
		path:       path,
		source:     source,
		profile:    profile,
		mainConfig: mainConfig,
		logger:     slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for the file.
//
// RETURNS:
//   - A Result struct containing the outcome of the processing.
func (c *Converter) Run(ctx context.Context) (result Result) {
	startTime := c.now()
	result = Result{
		FilePath:   c.path,
		ReportType: c.source.ID(),
	}
	defer func() { result.Stats.ProcessingTime = c.now().Sub(startTime) }()

	log := c.logger
	log.Info("processing file", "file", c.path, "report", c.source.ID())

	// =========================================================================
	// STEP 1: LOAD DOCUMENT
	// =========================================================================

	doc, err := LoadDocument(ctx, c.path)
	if err != nil {
		result.Error = fmt.Errorf("failed to load document: %w", err)
		return result
	}
	result.Stats.LinesRead = len(doc.Lines)
	log.Debug("extracted lines", "file", c.path, "lines", len(doc.Lines))

	// =========================================================================
	// STEP 2: PARSE
	// =========================================================================

	parsed, err := c.parse(doc)
	if err != nil {
		result.Error = err
		return result
	}
	result.Strategy = parsed.Strategy
	result.Stats.RecordsParsed = len(parsed.Records)

	if parsed.Empty() {
		result.Error = ErrNoRecords
		return result
	}
	log.Info("parsed records", "file", c.path, "records", len(parsed.Records), "strategy", parsed.Strategy)

	// =========================================================================
	// STEP 3: APPLY TRANSFORMATION RULES
	// =========================================================================

	if c.profile != nil && len(c.profile.TransformationRules) > 0 {
		transformer, err := NewTransformer(c.profile.TransformationRules, c.source.Columns())
		if err != nil {
			result.Error = fmt.Errorf("invalid transformation rules in profile %s: %w", c.profile.Code, err)
			return result
		}
		if err := transformer.ApplyAll(parsed.Records); err != nil {
			result.Error = fmt.Errorf("failed to apply transformations: %w", err)
			return result
		}
		log.Debug("applied transformation rules", "file", c.path, "profile", c.profile.Code)
	}

	// =========================================================================
	// STEP 4: VALIDATE DATA
	// =========================================================================

	options, err := c.validationOptions()
	if err != nil {
		result.Error = err
		return result
	}
	validator, err := validation.NewValidatorWithOptions(c.source.Columns(), options)
	if err != nil {
		result.Error = fmt.Errorf("invalid report schema: %w", err)
		return result
	}
	validated := validator.ValidateAll(parsed.Records)
	result.Findings = validated.Errors
	result.Stats.ValidationErrors = validated.ErrorCount
	result.Stats.ValidationWarnings = validated.WarningCount

	for _, ve := range validated.Errors {
		log.Warn("validation finding", "file", c.path, "finding", ve.Error())
	}

	// =========================================================================
	// STEP 5: OUTPUT NAMES
	// =========================================================================

	base := c.OutputBaseName()
	xlsxPath := filepath.Join(c.mainConfig.OutputDir, base+".xlsx")
	outputs := []string{xlsxPath}
	if c.writeCSV() {
		outputs = append(outputs, filepath.Join(c.mainConfig.OutputDir, base+".csv"))
	}

	if c.mainConfig.Validation.WriteLog && len(validated.Errors) > 0 && !c.dryRun {
		logPath := filepath.Join(c.mainConfig.OutputDir, base+"_validation.log")
		if err := validation.WriteErrorLog(validated.Errors, filepath.Base(c.path), logPath); err != nil {
			log.Warn("failed to write validation log", "file", c.path, "error", err)
		} else {
			result.ValidationLog = logPath
		}
	}

	if !validated.IsValid && !c.mainConfig.ContinueOnError {
		fatal := validated.ErrorCount
		if options.TreatWarningsAsErrors {
			fatal += validated.WarningCount
		}
		result.Error = fmt.Errorf("validation failed with %d errors", fatal)
		return result
	}
	result.OutputFiles = outputs

	if c.dryRun {
		log.Info("dry run, nothing written", "file", c.path, "outputs", strings.Join(result.OutputFiles, ", "))
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 6: WRITE OUTPUT FILES
	// =========================================================================

	if err := ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	writeOpts := xlsxwriter.DefaultWriteOptions()
	writeOpts.Now = c.now
	sheet := xlsxwriter.Sheet{
		Name:    c.source.SheetName(),
		Columns: c.source.Columns(),
		Records: parsed.Records,
	}
	if err := xlsxwriter.WriteFile(xlsxPath, sheet, writeOpts); err != nil {
		result.Error = fmt.Errorf("failed to write workbook: %w", err)
		return result
	}
	log.Info("wrote workbook", "file", xlsxPath)

	if c.writeCSV() {
		csvPath := result.OutputFiles[1]
		if err := csvwriter.WriteFile(csvPath, c.source.Columns(), parsed.Records); err != nil {
			result.Error = fmt.Errorf("failed to write CSV: %w", err)
			return result
		}
		log.Info("wrote CSV", "file", csvPath)
	}

	// =========================================================================
	// STEP 7: ARCHIVE INPUT
	// =========================================================================

	if c.mainConfig.ArchiveInputs {
		fm := utils.NewFileManager(c.mainConfig.InputDir, c.mainConfig.OutputDir, c.mainConfig.InputArchiveDir)
		fm.UseTimestampSubdirs = c.mainConfig.ArchiveTimestampSubdirs
		archived, err := fm.ArchiveInputFile(c.path)
		if err != nil {
			// Archival failure does not undo a successful conversion.
			log.Warn("failed to archive input", "file", c.path, "error", err)
		} else {
			result.ArchivePath = archived
		}
	}

	result.Success = true
	return result
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// parse runs the report source, or only its fallback in loose-only mode.
func (c *Converter) parse(doc types.Document) (types.Result, error) {
	if !c.looseOnly {
		return c.source.Parse(doc), nil
	}
	fallible, ok := c.source.(report.Fallible)
	if !ok {
		return types.Result{}, fmt.Errorf("%s: %w", c.source.ID(), ErrNoFallback)
	}
	return fallible.ParseFallback(doc), nil
}

// OutputBaseName is the output file name without extension, built from the
// configured output name format unless WithOutputBase fixed it.
func (c *Converter) OutputBaseName() string {
	if c.outputBase != "" {
		return c.outputBase
	}
	params := map[string]string{
		"original": report.OutputBaseName(filepath.Base(c.path), c.source.ID()),
		"report":   c.source.ID(),
	}
	return utils.OutputName(c.mainConfig.OutputNameFormat, params, c.now())
}

// validationOptions builds the validator options from the configuration and
// the profile's required fields.
func (c *Converter) validationOptions() (validation.ValidationOptions, error) {
	options := validation.DefaultValidationOptions()
	options.StopOnFirstError = c.mainConfig.Validation.StopOnFirstError
	options.TreatWarningsAsErrors = c.mainConfig.Validation.TreatWarningsAsErrors

	if c.profile == nil {
		return options, nil
	}
	schema := c.source.Columns()
	for _, field := range c.profile.RequiredFields {
		if _, ok := schema.Column(field); !ok {
			return options, fmt.Errorf("invalid required_fields in profile %s: unknown field '%s'", c.profile.Code, field)
		}
		options.CustomValidators[field] = requiredByProfile(c.profile.Code)
	}
	return options, nil
}

func requiredByProfile(code string) validation.CustomValidatorFunc {
	return func(value string, _ validation.ValidationContext) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("Field is required by profile %s", code)
		}
		return ""
	}
}

func (c *Converter) writeCSV() bool {
	return c.forceCSV || c.mainConfig.WriteCSV || (c.profile != nil && c.profile.WriteCSV)
}

// LoadDocument reads an input file into parser input, choosing the reader
// by extension.
func LoadDocument(ctx context.Context, path string) (types.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		lines, err := pdftext.ExtractFile(ctx, path)
		if err != nil {
			return types.Document{}, err
		}
		return types.NewDocument(lines), nil

	case ".txt":
		data, err := textparser.Parse(path)
		if err != nil {
			return types.Document{}, err
		}
		return data.Document(), nil

	default:
		return types.Document{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedInput)
	}
}
