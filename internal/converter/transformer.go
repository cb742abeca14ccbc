// =============================================================================
// PDF to XLSX Converter - Transformation Engine
// =============================================================================
//
// This module applies the transformation rules of a report profile to the
// parsed records before they are validated and exported.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion)
//   - Fixed-length formatting (zero padding, truncation)
//   - Amount and date normalization
//   - Lookup table replacements
//   - Regular expression replacements
//
// PROFILE-SPECIFIC RULES:
//   Each report profile can carry its own rules. Common use cases include:
//   - Customer name casing
//   - Stock number prefixes or zero padding
//   - Converting report dates to ISO layout
//   - Mapping salesperson codes to names
//
// Rules are checked when the transformer is built, so a bad profile fails
// before any file is processed.
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/amount"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/config"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// reportDateLayouts are the layouts format_date accepts as input.
var reportDateLayouts = []string{"01/02/06", "01/02/2006"}

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer handles field value transformations.
type Transformer struct {
	rules   []config.TransformationRule
	regexes map[string]*regexp.Regexp
}

// NewTransformer creates a new Transformer with the given rules. It fails if
// a rule names a field outside the schema, uses an unknown action type or
// carries an invalid regular expression.
func NewTransformer(rules []config.TransformationRule, schema types.Schema) (*Transformer, error) {
	t := &Transformer{
		rules:   rules,
		regexes: make(map[string]*regexp.Regexp),
	}

	for _, rule := range rules {
		if _, ok := schema.Column(rule.Field); !ok {
			return nil, fmt.Errorf("transformation rule for unknown field '%s'", rule.Field)
		}
		for _, action := range rule.Actions {
			if !knownActions[action.Type] {
				return nil, fmt.Errorf("field '%s': unknown transformation type: %s", rule.Field, action.Type)
			}
			if action.Type != "regex_replace" || action.Find == "" {
				continue
			}
			re, err := regexp.Compile(action.Find)
			if err != nil {
				return nil, fmt.Errorf("field '%s': invalid regex pattern: %w", rule.Field, err)
			}
			t.regexes[action.Find] = re
		}
	}

	return t, nil
}

// knownActions lists the action types ApplyTransformation understands.
var knownActions = map[string]bool{
	"prepend_string":       true,
	"append_string":        true,
	"trim":                 true,
	"uppercase":            true,
	"lowercase":            true,
	"title_case":           true,
	"replace":              true,
	"regex_replace":        true,
	"normalize_whitespace": true,
	"pad_zeros_to_length":  true,
	"ensure_length":        true,
	"format_amount":        true,
	"format_date":          true,
	"default":              true,
	"lookup":               true,
}

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// Apply runs every rule against the record in place. Rules run in profile
// order, and each rule's actions run in sequence.
func (t *Transformer) Apply(rec types.Record) error {
	for _, rule := range t.rules {
		value := rec.Get(rule.Field)
		for _, action := range rule.Actions {
			var err error
			value, err = t.applyAction(value, action)
			if err != nil {
				return fmt.Errorf("field '%s': transformation '%s' failed: %w", rule.Field, action.Type, err)
			}
		}
		rec.Set(rule.Field, value)
	}
	return nil
}

// ApplyAll transforms every record and reports the first failure with the
// record position.
func (t *Transformer) ApplyAll(records []types.Record) error {
	for i, rec := range records {
		if err := t.Apply(rec); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}

func (t *Transformer) applyAction(value string, action config.TransformationAction) (string, error) {
	if action.Type == "regex_replace" && action.Find != "" {
		if re, ok := t.regexes[action.Find]; ok {
			return re.ReplaceAllString(value, action.Value), nil
		}
	}
	return ApplyTransformation(value, action)
}

// ApplyTransformation applies a single transformation action.
//
// PARAMETERS:
//   - value: The current value.
//   - action: The transformation action to apply.
//
// RETURNS:
//   - The transformed value.
//   - An error if the transformation fails.
//
// CUSTOMIZATION:
//   Add new transformation types by adding cases to this switch statement
//   and to knownActions.
func ApplyTransformation(value string, action config.TransformationAction) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		// EXAMPLE: "A1234" with value "N-" becomes "N-A1234"
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "title_case":
		// EXAMPLE: "SMITH, JOHN A" becomes "Smith, John A"
		return TitleCase(value), nil

	case "replace":
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "normalize_whitespace":
		return strings.Join(strings.Fields(value), " "), nil

	// =========================================================================
	// FIXED-LENGTH FORMATTING
	// =========================================================================

	case "pad_zeros_to_length":
		// EXAMPLE: "123" with value "8" becomes "00000123"
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return value, nil
		}
		return PadLeft(value, targetLength, '0'), nil

	case "ensure_length":
		// Longer values are truncated from the right, shorter ones are
		// zero padded on the left.
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return value, nil
		}
		runes := []rune(value)
		if len(runes) > targetLength {
			return string(runes[:targetLength]), nil
		}
		return PadLeft(value, targetLength, '0'), nil

	// =========================================================================
	// AMOUNTS AND DATES
	// =========================================================================

	case "format_amount":
		// EXAMPLE: "1234.5" becomes "1,234.50"
		return amount.Format(value), nil

	case "format_date":
		// Value is the output layout in Go time format, e.g. "2006-01-02".
		// Values that are not report dates are left untouched.
		if action.Value == "" || value == "" {
			return value, nil
		}
		for _, layout := range reportDateLayouts {
			if d, err := time.Parse(layout, value); err == nil {
				return d.Format(action.Value), nil
			}
		}
		return value, nil

	// =========================================================================
	// DEFAULTS AND LOOKUPS
	// =========================================================================

	case "default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "lookup":
		// EXAMPLE: "JD" with lookup_table {"JD": "John Doe"} becomes "John Doe"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target
// length in runes.
func PadLeft(s string, length int, padChar rune) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-n) + s
}

// TitleCase lowercases s and capitalizes the first letter of every word.
// Letters following an apostrophe stay lowercase.
func TitleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	start := true
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r):
			if start {
				runes[i] = unicode.ToUpper(r)
			}
			start = false
		case unicode.IsDigit(r), r == '\'':
			start = false
		default:
			start = true
		}
	}
	return string(runes)
}
