// =============================================================================
// PDF to XLSX Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
// It handles both the main application configuration and the report profiles.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): Global application settings
//   2. Report Profiles (configs/*.yaml): Per-report file matching and rules
//   3. Environment (.env, CONVERTER_* variables): Overrides for the main config
//
// PRECEDENCE (lowest to highest):
//   built-in defaults < config.yaml < environment < command-line flags
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/deals"
)

// EnvPrefix is the prefix of environment variables that override the main
// configuration.
const EnvPrefix = "CONVERTER_"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is the directory scanned for PDF and text reports.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir is the directory where workbooks and CSV files are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir is the directory where processed inputs are moved.
	// Files are only moved here after successful processing.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// ConfigsDir is the directory containing report profiles.
	// Default: "./configs"
	ConfigsDir string `yaml:"configs_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the application log file. Empty logs to stderr
	// only.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the base name of output files.
	// Placeholders:
	//   {original}  - Input file name without extension
	//   {report}    - Report type id
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {time}      - Current time (HHMMSS)
	// Default: "{original}"
	OutputNameFormat string `yaml:"output_name_format"`

	// WriteCSV also writes a CSV file next to each workbook.
	// Default: false
	WriteCSV bool `yaml:"write_csv"`

	// DefaultReport is the report type used when no profile matches a file.
	// Default: "all_deals"
	DefaultReport string `yaml:"default_report"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files to process concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError lets a file with fatal validation findings still be
	// written, and lets a run continue past a failed file.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`

	// ArchiveInputs moves successfully processed inputs to InputArchiveDir.
	// Default: true
	ArchiveInputs bool `yaml:"archive_inputs"`

	// ArchiveTimestampSubdirs files archived inputs under YYYY/MM/DD
	// subdirectories of InputArchiveDir.
	// Default: false
	ArchiveTimestampSubdirs bool `yaml:"archive_timestamp_subdirs"`

	// Validation controls how record findings are judged.
	Validation ValidationSettings `yaml:"validation"`

	// Heuristics are the scan windows of the report parsers.
	Heuristics Heuristics `yaml:"heuristics"`

	// PageBanners are extra page-furniture fragments (company names, report
	// titles) that never start a Chart of Accounts entry.
	PageBanners []string `yaml:"page_banners"`
}

// ValidationSettings tune record validation.
type ValidationSettings struct {
	// StopOnFirstError ends validation of a file at its first error.
	StopOnFirstError bool `yaml:"stop_on_first_error"`

	// TreatWarningsAsErrors makes every finding fatal.
	TreatWarningsAsErrors bool `yaml:"treat_warnings_as_errors"`

	// WriteLog writes a <base>_validation.log next to the outputs of any
	// file with findings.
	WriteLog bool `yaml:"write_log"`
}

// Heuristics are the tunable scan windows of the All Deals parser.
type Heuristics struct {
	// StatusWindow is the number of leading lines searched for the deal
	// status. Default: 20
	StatusWindow int `yaml:"status_window"`

	// LocationLookahead is the number of lines after "Totals and Averages"
	// searched for the location label. Default: 8
	LocationLookahead int `yaml:"location_lookahead"`

	// ProximityWindow is the number of characters after a loose match
	// searched for secondary fields. Default: 500
	ProximityWindow int `yaml:"proximity_window"`
}

// DealOptions converts the heuristics into parser options.
func (h Heuristics) DealOptions() deals.Options {
	return deals.Options{
		StatusWindow:      h.StatusWindow,
		LocationLookahead: h.LocationLookahead,
		ProximityWindow:   h.ProximityWindow,
	}
}

// =============================================================================
// REPORT PROFILE STRUCTURE
// =============================================================================

// ReportProfile binds input files to a report type and holds the rules that
// apply to that report's records.
type ReportProfile struct {
	// Name is the human-readable name used in logs.
	Name string `yaml:"name"`

	// Code is a short key for the profile. Defaults to the file name.
	Code string `yaml:"code"`

	// ReportType is the registry id of the report layout, e.g. "all_deals".
	ReportType string `yaml:"report_type"`

	// FileMatchingPatterns is a list of glob patterns matched against the
	// input file name. The first profile with a matching pattern is used.
	// Examples:
	//   - "*deals*.pdf"
	//   - "COA_*.txt"
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// TransformationRules are applied to every record after parsing.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// RequiredFields must be non-empty in every record. An empty value is a
	// validation error.
	RequiredFields []string `yaml:"required_fields"`

	// WriteCSV forces a CSV export for files of this profile.
	WriteCSV bool `yaml:"write_csv"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines a transformation to apply to a specific field.
type TransformationRule struct {
	// Field is the name of the record field, e.g. "Customer Name".
	Field string `yaml:"field"`

	// Actions is a list of transformations to apply to this field.
	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is the type of transformation to apply.
	// Supported types:
	//   - "prepend_string"      : Add a string to the beginning of the value
	//   - "append_string"       : Add a string to the end of the value
	//   - "pad_zeros_to_length" : Pad with leading zeros to a specific length
	//   - "ensure_length"       : Truncate or pad to ensure a specific length
	//   - "uppercase"           : Convert to uppercase
	//   - "lowercase"           : Convert to lowercase
	//   - "title_case"          : Capitalize each word
	//   - "trim"                : Remove leading and trailing whitespace
	//   - "replace"             : Replace a substring with another
	//   - "regex_replace"       : Replace using a regular expression
	//   - "normalize_whitespace": Collapse runs of whitespace to one space
	//   - "format_date"         : Convert a MM/DD/YY date to another layout
	//   - "format_amount"       : Normalize to the canonical amount form
	//   - "default"             : Use Value when the field is empty
	//   - "lookup"              : Replace value using a lookup table
	Type string `yaml:"type"`

	// Value is the parameter for the transformation. The meaning depends
	// on the transformation type.
	Value string `yaml:"value"`

	// Find is used for "replace" and "regex_replace" transformations.
	Find string `yaml:"find,omitempty"`

	// LookupTable is used for "lookup" transformations.
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the built-in configuration.
func Default() *MainConfig {
	cfg := &MainConfig{
		ContinueOnError: true,
		ArchiveInputs:   true,
	}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//   - required: Whether a missing file is an error. When false, a missing
//     file yields the built-in defaults.
//
// RETURNS:
//   - A pointer to the MainConfig struct, with defaults and environment
//     overrides applied.
//   - An error if the file cannot be read or parsed.
func LoadMainConfig(configPath string, required bool) (*MainConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		// Unmarshal over the defaults so absent keys keep them.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(cfg)

	if err := ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment override: %w", err)
	}

	if err := validateMainConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.ConfigsDir == "" {
		config.ConfigsDir = "./configs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}"
	}
	if config.DefaultReport == "" {
		config.DefaultReport = deals.ReportID
	}
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 4
	}

	d := deals.DefaultOptions()
	if config.Heuristics.StatusWindow <= 0 {
		config.Heuristics.StatusWindow = d.StatusWindow
	}
	if config.Heuristics.LocationLookahead <= 0 {
		config.Heuristics.LocationLookahead = d.LocationLookahead
	}
	if config.Heuristics.ProximityWindow <= 0 {
		config.Heuristics.ProximityWindow = d.ProximityWindow
	}
}

// validateMainConfig checks values. Directories are created by the
// convert command, never while loading.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg from CONVERTER_* environment variables.
//
// SUPPORTED VARIABLES:
//   CONVERTER_INPUT_DIR, CONVERTER_OUTPUT_DIR, CONVERTER_INPUT_ARCHIVE_DIR,
//   CONVERTER_CONFIGS_DIR, CONVERTER_LOG_FILE, CONVERTER_LOG_LEVEL,
//   CONVERTER_OUTPUT_NAME_FORMAT, CONVERTER_DEFAULT_REPORT,
//   CONVERTER_MAX_CONCURRENCY, CONVERTER_WRITE_CSV,
//   CONVERTER_STATUS_WINDOW, CONVERTER_LOCATION_LOOKAHEAD,
//   CONVERTER_PROXIMITY_WINDOW
func ApplyEnv(cfg *MainConfig) error {
	strs := map[string]*string{
		"INPUT_DIR":          &cfg.InputDir,
		"OUTPUT_DIR":         &cfg.OutputDir,
		"INPUT_ARCHIVE_DIR":  &cfg.InputArchiveDir,
		"CONFIGS_DIR":        &cfg.ConfigsDir,
		"LOG_FILE":           &cfg.LogFile,
		"LOG_LEVEL":          &cfg.LogLevel,
		"OUTPUT_NAME_FORMAT": &cfg.OutputNameFormat,
		"DEFAULT_REPORT":     &cfg.DefaultReport,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MAX_CONCURRENCY":    &cfg.MaxConcurrency,
		"STATUS_WINDOW":      &cfg.Heuristics.StatusWindow,
		"LOCATION_LOOKAHEAD": &cfg.Heuristics.LocationLookahead,
		"PROXIMITY_WINDOW":   &cfg.Heuristics.ProximityWindow,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(EnvPrefix + key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("%s%s must be a positive integer, got %q", EnvPrefix, key, v)
		}
		*dst = n
	}

	if v, ok := os.LookupEnv(EnvPrefix + "WRITE_CSV"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sWRITE_CSV must be a boolean, got %q", EnvPrefix, v)
		}
		cfg.WriteCSV = b
	}
	return nil
}

// =============================================================================
// REPORT PROFILES
// =============================================================================

// LoadReportProfiles loads all report profiles from a directory.
//
// PARAMETERS:
//   - configsDir: The path to the directory containing profile files.
//
// RETURNS:
//   - A map of report profiles, keyed by profile code.
//   - An error if the directory cannot be read or any file cannot be parsed.
func LoadReportProfiles(configsDir string) (map[string]*ReportProfile, error) {
	profiles := make(map[string]*ReportProfile)

	files, err := filepath.Glob(filepath.Join(configsDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}

	// Also check for .yml extension.
	ymlFiles, err := filepath.Glob(filepath.Join(configsDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list config files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		profile, err := loadReportProfile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}

		key := profile.Code
		if key == "" {
			key = strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
			profile.Code = key
		}
		if _, dup := profiles[key]; dup {
			return nil, fmt.Errorf("duplicate profile code %q in %s", key, file)
		}

		profiles[key] = profile
	}

	return profiles, nil
}

// loadReportProfile loads a single report profile file.
func loadReportProfile(filePath string) (*ReportProfile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var profile ReportProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse file: %w", err)
	}

	if profile.ReportType == "" {
		return nil, fmt.Errorf("report_type is required")
	}
	for _, pattern := range profile.FileMatchingPatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
		}
	}
	if profile.Name == "" {
		profile.Name = profile.ReportType
	}

	return &profile, nil
}

// MatchProfile returns the first profile, in code order, with a pattern
// matching the base name of fileName.
func MatchProfile(profiles map[string]*ReportProfile, fileName string) (*ReportProfile, bool) {
	codes := make([]string, 0, len(profiles))
	for code := range profiles {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	base := strings.ToLower(filepath.Base(fileName))
	for _, code := range codes {
		for _, pattern := range profiles[code].FileMatchingPatterns {
			if ok, _ := filepath.Match(strings.ToLower(pattern), base); ok {
				return profiles[code], true
			}
		}
	}
	return nil, false
}
