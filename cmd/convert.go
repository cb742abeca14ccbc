// =============================================================================
// PDF to XLSX Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which is the main command for
// turning report PDFs into workbooks. It orchestrates the whole pipeline.
//
// COMMAND USAGE:
//   converter convert [flags]
//
// FLAGS:
//   --dry-run : Parse and validate without writing output files
//   --file    : Convert only this file
//   --report  : Force the report type (overrides profiles)
//   --csv     : Also write a CSV file per input
//   --loose   : Use only the fallback extractor
//
// PROCESSING PIPELINE:
//   1. Load report profiles
//   2. Discover PDF and text files in the input directory
//   3. Resolve the report type of each file and reserve unique output names
//   4. For each file (concurrently, up to max_concurrency):
//      a. Extract the text lines
//      b. Parse records with the report's grammar
//      c. Apply profile transformations
//      d. Validate the records
//      e. Write the workbook (and CSV)
//      f. Archive the input
//   5. Write the summary and error logs
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/converter"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/report"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	dryRun     bool
	filePath   string
	reportType string
	writeCSV   bool
	looseOnly  bool
)

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

// convertCmd represents the 'convert' command.
var convertCmd = &cobra.Command{
	Use:     "convert",
	Aliases: []string{"process"},
	Short:   "Convert report PDFs into XLSX workbooks",
	Long: `The convert command scans the input directory for PDF and text reports,
resolves the report type of each file and writes one workbook per file.

The report type is taken from --report if given, otherwise from the first
report profile whose file patterns match, otherwise from default_report.

On successful processing:
  - The workbook (and CSV, if enabled) is placed in the output directory
  - The input is moved to the input archive
  - A summary log is written

On error:
  - An error log is written to the output directory
  - The input stays in the input directory
  - Processing continues for other files unless continue_on_error is false`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Parse and validate without writing output files")
	convertCmd.Flags().StringVar(&filePath, "file", "", "Convert only this file")
	convertCmd.Flags().StringVar(&reportType, "report", "", "Report type to use for every file (see 'converter reports')")
	convertCmd.Flags().BoolVar(&writeCSV, "csv", false, "Also write a CSV file next to each workbook")
	convertCmd.Flags().BoolVar(&looseOnly, "loose", false, "Skip the layout grammar and use only the fallback extractor")
}

// =============================================================================
// JOB PLANNING
// =============================================================================

// job is one input file with its resolved report source and profile.
type job struct {
	path    string
	source  report.Source
	profile *config.ReportProfile

	// base is the output name reserved for this file within the run.
	base string
}

// planJobs resolves the report source of every file.
//
// PARAMETERS:
//   - files: The input files.
//   - registry: The supported report sources.
//   - profiles: The loaded report profiles, keyed by code.
//   - forced: A report id that overrides profiles, or "".
//   - fallback: The report id used when no profile matches.
//
// RETURNS:
//   - The jobs, in file order.
//   - Failures for files whose report type could not be resolved.
func planJobs(files []string, registry *report.Registry, profiles map[string]*config.ReportProfile, forced, fallback string) ([]job, []converter.Result) {
	var jobs []job
	var failed []converter.Result

	for _, file := range files {
		profile, matched := config.MatchProfile(profiles, file)

		id := fallback
		switch {
		case forced != "":
			id = forced
		case matched && profile.ReportType != "":
			id = profile.ReportType
		}

		src, err := registry.Lookup(id)
		if err != nil {
			failed = append(failed, converter.Result{FilePath: file, Error: err})
			continue
		}

		// A profile written for another report cannot apply its rules here.
		if matched && profile.ReportType != "" && report.NormalizeID(profile.ReportType) != src.ID() {
			profile = nil
		}
		jobs = append(jobs, job{path: file, source: src, profile: profile})
	}
	return jobs, failed
}

// reserveOutputNames gives every job an output base name that no other job
// in the run uses. Names are handed out in job order, so deals.pdf and
// deals.txt become deals and deals_2.
func reserveOutputNames(jobs []job, cfg *config.MainConfig) {
	names := utils.NewOutputNames()
	for i := range jobs {
		base := converter.New(jobs[i].path, jobs[i].source, jobs[i].profile, cfg).OutputBaseName()
		jobs[i].base = names.Reserve(base)
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runConvert is the main function that orchestrates the conversion pipeline.
func runConvert(ctx context.Context) error {
	startTime := time.Now()
	cfg := mainConfig
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Println("=== PDF to XLSX Converter ===")

	// =========================================================================
	// STEP 1: LOAD PROFILES
	// =========================================================================

	profiles, err := config.LoadReportProfiles(cfg.ConfigsDir)
	if err != nil {
		return fmt.Errorf("failed to load report profiles: %w", err)
	}
	logger.Info("loaded report profiles", "count", len(profiles), "dir", cfg.ConfigsDir)

	registry := report.DefaultRegistry(cfg.Heuristics.DealOptions(), cfg.PageBanners)

	// =========================================================================
	// STEP 2: DISCOVER INPUT FILES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir)
	fm.ArchiveOnSuccess = cfg.ArchiveInputs
	fm.UseTimestampSubdirs = cfg.ArchiveTimestampSubdirs
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	var inputFiles []string
	if filePath != "" {
		if !utils.FileExists(filePath) {
			return fmt.Errorf("input file not found: %s", filePath)
		}
		inputFiles = []string{filePath}
	} else if !dryRun || utils.FileExists(cfg.InputDir) {
		// A dry run never creates the input directory, so it may be absent.
		inputFiles, err = fm.DiscoverInputFiles()
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Println("No PDF or text files found in the input directory.")
		return nil
	}
	fmt.Printf("Found %d file(s) to process\n", len(inputFiles))

	// =========================================================================
	// STEP 3: PROCESS FILES CONCURRENTLY
	// =========================================================================

	jobs, unresolved := planJobs(inputFiles, registry, profiles, reportType, cfg.DefaultReport)
	reserveOutputNames(jobs, cfg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []converter.Option{
		converter.WithLogger(logger),
		converter.WithDryRun(dryRun),
		converter.WithCSV(writeCSV),
		converter.WithLooseOnly(looseOnly),
	}

	results := make(chan converter.Result, len(inputFiles))
	for _, r := range unresolved {
		results <- r
	}
	if len(unresolved) > 0 && !cfg.ContinueOnError {
		cancel()
	}

	sem := make(chan struct{}, cfg.MaxConcurrency)
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results <- converter.Result{FilePath: j.path, ReportType: j.source.ID(), Error: ctx.Err()}
				return
			}

			jobOpts := append([]converter.Option{converter.WithOutputBase(j.base)}, opts...)
			result := converter.New(j.path, j.source, j.profile, cfg, jobOpts...).Run(ctx)
			if !result.Success && !cfg.ContinueOnError {
				cancel()
			}
			results <- result
		}(j)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 4: COLLECT RESULTS
	// =========================================================================

	summary := utils.ProcessingSummary{StartTime: startTime, TotalFiles: len(inputFiles)}
	var entries []utils.ErrorLogEntry

	for result := range results {
		name := filepath.Base(result.FilePath)
		entries = append(entries, findingEntries(result)...)
		summary.ValidationIssues += len(result.Findings)

		if result.Success {
			summary.SuccessfulFiles++
			summary.TotalRecords += result.Stats.RecordsParsed
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:   name,
				OutputFiles: result.OutputFiles,
				ArchivePath: result.ArchivePath,
				ReportType:  result.ReportType,
				Strategy:    string(result.Strategy),
				Records:     result.Stats.RecordsParsed,
				ProcessTime: result.Stats.ProcessingTime,
			})
			fmt.Printf("  ✓ %s -> %s (%d records, %s)\n",
				name, filepath.Base(result.OutputFiles[0]), result.Stats.RecordsParsed, result.Strategy)
			continue
		}

		summary.FailedFiles++
		kind := errorType(result.Error)
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    name,
			ErrorMessage: result.Error.Error(),
			ErrorType:    kind,
		})
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    kind,
			ErrorMessage: result.Error.Error(),
		})
		fmt.Printf("  ✗ %s: %v\n", name, result.Error)
	}

	// =========================================================================
	// STEP 5: PRINT SUMMARY AND WRITE LOGS
	// =========================================================================

	summary.EndTime = time.Now()
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", summary.TotalFiles)
	fmt.Printf("Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Printf("Errors:          %d\n", summary.FailedFiles)
	fmt.Printf("Records:         %d\n", summary.TotalRecords)
	fmt.Printf("Time elapsed:    %s\n", summary.EndTime.Sub(startTime).Round(time.Millisecond))

	if !dryRun {
		if path, err := utils.WriteSummaryLog(summary, cfg.OutputDir); err != nil {
			logger.Warn("failed to write summary log", "error", err)
		} else {
			logger.Debug("wrote summary log", "path", path)
		}

		if path, err := utils.WriteErrorLog(entries, cfg.OutputDir); err != nil {
			logger.Warn("failed to write error log", "error", err)
		} else if path != "" {
			fmt.Printf("\nErrors and findings have been logged to %s\n", path)
		}
	}

	if summary.FailedFiles > 0 && !cfg.ContinueOnError {
		return fmt.Errorf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// findingEntries turns the validation findings of a result into error log
// entries.
func findingEntries(result converter.Result) []utils.ErrorLogEntry {
	entries := make([]utils.ErrorLogEntry, 0, len(result.Findings))
	for _, f := range result.Findings {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     filepath.Base(result.FilePath),
			ErrorType:    "validation " + f.Severity,
			ErrorMessage: f.Message,
			RecordIndex:  f.RecordIndex,
			SourceLine:   f.SourceLine,
			FieldName:    f.Field,
			FieldValue:   f.Value,
		})
	}
	return entries
}

// errorType classifies a file failure for the logs.
func errorType(err error) string {
	switch {
	case errors.Is(err, converter.ErrNoRecords):
		return "unsupported format"
	case errors.Is(err, converter.ErrUnsupportedInput):
		return "unsupported input"
	case errors.Is(err, report.ErrUnknownReport):
		return "unknown report"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "processing"
	}
}
