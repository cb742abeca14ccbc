package deals

import "github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"

// ReportID is the registry key of the All Deals report.
const ReportID = "all_deals"

// Source exposes the All Deals parser to the report registry.
type Source struct {
	parser *Parser
}

// NewSource creates the All Deals report source.
func NewSource(opts Options) *Source {
	return &Source{parser: NewParser(opts)}
}

// ID returns "all_deals".
func (s *Source) ID() string { return ReportID }

// Label is the report title as printed on the PDF.
func (s *Source) Label() string { return "All Deals" }

// SheetName names the data sheet of exported workbooks.
func (s *Source) SheetName() string { return "All Deals" }

// Columns returns the 36-column export schema.
func (s *Source) Columns() types.Schema { return Schema }

// Parse runs the strict grammar, then the loose extractor if needed.
func (s *Source) Parse(doc types.Document) types.Result {
	return s.parser.Parse(doc)
}

// ParseFallback runs only the loose extractor.
func (s *Source) ParseFallback(doc types.Document) types.Result {
	return s.parser.ParseLoose(doc.FullText())
}
