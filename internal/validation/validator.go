// =============================================================================
// PDF to XLSX Converter - Validation Engine
// =============================================================================
//
// This module checks parsed records against the column schema of their
// report before they are exported. It validates:
//   - Record shape (every schema column present, nothing else)
//   - Identifier fields (never empty, optional pattern)
//   - Value shapes by column kind (amount, date, counter)
//   - Per-column patterns declared in the schema
//
// VALIDATION STRATEGY:
//   Parsers never fail, so a record that made it this far is always
//   exported. Validation is diagnostic: it tells the operator which values
//   the layout heuristics could not read cleanly.
//   1. Record-level: schema shape of the field map
//   2. Field-level: each value against its column definition
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error carries the record index and the source line
//   - Identifier problems are errors, everything else is a warning
//
// CUSTOMIZATION:
//   - Add per-field business rules through ValidationOptions.CustomValidators
//   - Tighten a column by giving it a Pattern in its report schema
//
// =============================================================================

package validation

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity indicates the severity of the finding.
	// "error" = the record cannot be trusted
	// "warning" = a value did not have its expected shape
	Severity string

	// Field is the name of the field that failed validation.
	Field string

	// Value is the actual value that failed validation.
	Value string

	// Rule is the validation rule that was violated.
	Rule string

	// Message is a human-readable error message.
	Message string

	// RecordIndex is the 1-based position of the record in the result.
	RecordIndex int

	// SourceLine is the line that started the record (0 if unknown).
	SourceLine int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	where := fmt.Sprintf("Record %d", e.RecordIndex)
	if e.SourceLine > 0 {
		where += fmt.Sprintf(" (line %d)", e.SourceLine)
	}
	return fmt.Sprintf("[%s] %s, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		where,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation findings (including warnings).
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// FieldsValidated is the total number of fields validated.
	FieldsValidated int

	// RecordsValidated is the total number of records validated.
	RecordsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks records against one report schema.
type Validator struct {
	schema   types.Schema
	patterns map[string]*regexp.Regexp
	options  ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors treats warnings as fatal errors.
	// Default: false
	TreatWarningsAsErrors bool

	// CustomValidators is a map of custom validation functions.
	// Key is the field name, value is the validation function.
	CustomValidators map[string]CustomValidatorFunc
}

// CustomValidatorFunc is a function type for custom validators.
// It takes the field value and returns an error message if validation fails.
type CustomValidatorFunc func(value string, context ValidationContext) string

// ValidationContext provides context for custom validators.
type ValidationContext struct {
	FieldName   string
	Column      types.Column
	Record      types.Record
	RecordIndex int
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CustomValidators: make(map[string]CustomValidatorFunc),
	}
}

// NewValidator creates a new Validator for the schema.
func NewValidator(schema types.Schema) (*Validator, error) {
	return NewValidatorWithOptions(schema, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options. It
// fails if a column pattern is not a valid regular expression.
func NewValidatorWithOptions(schema types.Schema, options ValidationOptions) (*Validator, error) {
	patterns := make(map[string]*regexp.Regexp)
	for _, c := range schema {
		if c.Pattern == "" {
			continue
		}
		re, err := regexp.Compile(c.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern for column '%s': %w", c.Name, err)
		}
		patterns[c.Name] = re
	}

	return &Validator{
		schema:   schema,
		patterns: patterns,
		options:  options,
	}, nil
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateAll validates all records and returns a detailed result.
func (v *Validator) ValidateAll(records []types.Record) *ValidationResult {
	result := &ValidationResult{
		IsValid:          true,
		Errors:           make([]*ValidationError, 0),
		RecordsValidated: len(records),
	}

	for i, rec := range records {
		result.FieldsValidated += len(v.schema)

		for _, err := range v.ValidateRecord(rec, i+1) {
			result.Errors = append(result.Errors, err)

			if err.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false

				if v.options.StopOnFirstError {
					return result
				}
			} else {
				result.WarningCount++

				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

// ValidateRecord validates a single record. index is its 1-based position.
func (v *Validator) ValidateRecord(rec types.Record, index int) []*ValidationError {
	var errors []*ValidationError

	newError := func(severity, field, value, rule, message string) *ValidationError {
		return &ValidationError{
			Severity:    severity,
			Field:       field,
			Value:       value,
			Rule:        rule,
			Message:     message,
			RecordIndex: index,
			SourceLine:  rec.SourceLine,
		}
	}

	// =========================================================================
	// RECORD SHAPE
	// =========================================================================

	for name, value := range rec.Fields {
		if _, ok := v.schema.Column(name); !ok {
			errors = append(errors, newError(SeverityError, name, value, "unknown_field",
				"Field is not part of the report schema"))
		}
	}

	for _, col := range v.schema {
		value, ok := rec.Fields[col.Name]
		if !ok {
			errors = append(errors, newError(SeverityError, col.Name, "", "missing_field",
				"Schema column is missing from the record"))
			continue
		}

		if e := v.ValidateField(value, col); e != nil {
			errors = append(errors, newError(e.Severity, col.Name, value, e.Rule, e.Message))
		}

		if custom, exists := v.options.CustomValidators[col.Name]; exists {
			context := ValidationContext{
				FieldName:   col.Name,
				Column:      col,
				Record:      rec,
				RecordIndex: index,
			}
			if msg := custom(value, context); msg != "" {
				errors = append(errors, newError(SeverityError, col.Name, value, "custom", msg))
			}
		}
	}

	return errors
}

// ValidateField validates one value against its column. It returns nil when
// the value is acceptable; only Severity, Rule and Message are set otherwise.
func (v *Validator) ValidateField(value string, col types.Column) *ValidationError {
	// =========================================================================
	// REQUIRED FIELD VALIDATION
	// =========================================================================
	// Identifiers anchor a record and must always be present.

	if value == "" {
		if col.Kind == types.KindIdentifier {
			return &ValidationError{
				Severity: SeverityError,
				Rule:     "required",
				Message:  fmt.Sprintf("Identifier '%s' is empty", col.Name),
			}
		}
		return nil
	}

	severity := SeverityWarning
	if col.Kind == types.KindIdentifier {
		severity = SeverityError
	}

	// =========================================================================
	// PATTERN VALIDATION
	// =========================================================================

	if re, ok := v.patterns[col.Name]; ok && !re.MatchString(value) {
		return &ValidationError{
			Severity: severity,
			Rule:     "pattern",
			Message:  fmt.Sprintf("Value does not match pattern %s", col.Pattern),
		}
	}

	// =========================================================================
	// DATA TYPE VALIDATION
	// =========================================================================

	if msg := validateKind(value, col.Kind); msg != "" {
		return &ValidationError{
			Severity: severity,
			Rule:     "data_type",
			Message:  msg,
		}
	}

	return nil
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

var (
	amountShape  = regexp.MustCompile(`^-?\d{1,3}(,\d{3})*\.\d{2}$`)
	counterShape = regexp.MustCompile(`^\d+$`)
	dateShape    = regexp.MustCompile(`^\d{2}/\d{2}/\d{2}$`)
)

// validateKind validates a non-empty value against a column kind.
//
// SUPPORTED KINDS:
//   - identifier, text: Any non-empty text
//   - amount: Canonical amount, e.g. -1,234.50
//   - counter: Unsigned integer
//   - date: A real calendar date written MM/DD/YY
func validateKind(value string, kind types.Kind) string {
	switch kind {
	case types.KindAmount:
		if !amountShape.MatchString(value) {
			return fmt.Sprintf("Value '%s' is not a canonical amount", value)
		}

	case types.KindCounter:
		if !counterShape.MatchString(value) {
			return fmt.Sprintf("Value '%s' is not a valid count", value)
		}

	case types.KindDate:
		return validateDate(value)
	}

	return ""
}

// validateDate validates a MM/DD/YY report date.
func validateDate(value string) string {
	if !dateShape.MatchString(value) {
		return fmt.Sprintf("Value '%s' is not a MM/DD/YY date", value)
	}
	if _, err := time.Parse("01/02/06", value); err != nil {
		return fmt.Sprintf("Value '%s' is not a valid date", value)
	}
	return ""
}

// =============================================================================
// ERROR REPORTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes validation errors to a log file.
//
// PARAMETERS:
//   - errors: The validation errors to write.
//   - source: The input file the errors belong to.
//   - filePath: The path to the output file.
//
// RETURNS:
//   - An error if writing fails.
func WriteErrorLog(errors []*ValidationError, source, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "Validation log for %s\n", source)
	fmt.Fprintf(writer, "Generated: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	writer.WriteString(FormatErrors(errors))

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
