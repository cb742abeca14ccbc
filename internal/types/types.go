// =============================================================================
// PDF to XLSX Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - deals, accounts   (report parsers)
//   - report            (registry)
//   - converter         (pipeline)
//   - validation, xlsxwriter, csvwriter
//
// =============================================================================

package types

import "strings"

// =============================================================================
// COLUMN SCHEMA
// =============================================================================

// Kind is the semantic type of a record field. It decides the field's
// default value and how the validator checks it.
type Kind string

const (
	KindIdentifier Kind = "identifier"
	KindText       Kind = "text"
	KindDate       Kind = "date"
	KindAmount     Kind = "amount"
	KindCounter    Kind = "counter"
)

// Column describes one field of a report's flat record.
type Column struct {
	// Name is the field name, also used verbatim as the export header.
	Name string

	// Kind is the semantic type of the field.
	Kind Kind

	// Default overrides the kind's default value when non-empty.
	Default string

	// Pattern is an optional regular expression the validator checks
	// non-empty values against instead of the kind's built-in shape.
	Pattern string
}

// DefaultValue returns the value a field holds when nothing was recognized.
func (c Column) DefaultValue() string {
	if c.Default != "" {
		return c.Default
	}
	switch c.Kind {
	case KindAmount:
		return "0.00"
	case KindCounter:
		return "0"
	default:
		return ""
	}
}

// Schema is the fixed, ordered column set of a report variant.
type Schema []Column

// Names returns the declared column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Column returns the column with the given name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// =============================================================================
// RECORD
// =============================================================================

// Record is one flattened entry reconstructed from the source lines.
//
// A record always carries exactly the columns of the schema it was created
// from: NewRecord fills every column with its default and Set refuses names
// outside the schema.
type Record struct {
	// Fields maps column name to value.
	Fields map[string]string

	// SourceLine is the 1-based index of the line that started the record,
	// or 0 when the record was not anchored to a line.
	SourceLine int
}

// NewRecord creates a fully defaulted record for the schema.
func NewRecord(schema Schema) Record {
	fields := make(map[string]string, len(schema))
	for _, c := range schema {
		fields[c.Name] = c.DefaultValue()
	}
	return Record{Fields: fields}
}

// Get returns the value of a field, or "" when the field is unknown.
func (r Record) Get(name string) string {
	return r.Fields[name]
}

// Set assigns a field that belongs to the record's schema. Unknown names are
// ignored and reported as false.
func (r Record) Set(name, value string) bool {
	if _, ok := r.Fields[name]; !ok {
		return false
	}
	r.Fields[name] = value
	return true
}

// Values returns the field values in the order of the given column names.
func (r Record) Values(names []string) []string {
	values := make([]string, len(names))
	for i, n := range names {
		values[i] = r.Fields[n]
	}
	return values
}

// =============================================================================
// PARSER INPUT AND OUTPUT
// =============================================================================

// Document is the input every report parser works on.
type Document struct {
	// Lines are trimmed, non-empty print lines in page order.
	Lines []string

	// Text is the whole document as one string. When empty, parsers use
	// the lines joined with newlines.
	Text string
}

// NewDocument builds a document from raw lines, trimming them and dropping
// empty ones.
func NewDocument(raw []string) Document {
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimSpace(l)
		if l != "" {
			lines = append(lines, l)
		}
	}
	return Document{Lines: lines}
}

// FullText returns Text, or the lines joined with newlines.
func (d Document) FullText() string {
	if d.Text != "" {
		return d.Text
	}
	return strings.Join(d.Lines, "\n")
}

// Strategy names the technique that produced a result's records.
type Strategy string

const (
	StrategyNone      Strategy = "none"
	StrategyStrict    Strategy = "strict"
	StrategyLoose     Strategy = "loose"
	StrategyTokenScan Strategy = "token-scan"
)

// Result is the outcome of parsing a document. It is always a success value:
// unrecognized input yields an empty Records slice, never an error.
type Result struct {
	Records  []Record
	Strategy Strategy

	// Status and Location are the document-wide context, when the variant
	// has one.
	Status   string
	Location string
}

// Empty reports whether no records were found.
func (r Result) Empty() bool {
	return len(r.Records) == 0
}
