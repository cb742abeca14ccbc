// =============================================================================
// PDF to XLSX Converter - Report Registry
// =============================================================================
//
// Each supported report layout is a Source: it names itself, declares its
// export columns and parses a Document into records. The Registry maps
// report-type identifiers to sources so the converter never needs to know
// which layouts exist.
//
// =============================================================================

package report

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/accounts"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/deals"
	"github.com/ginjaninja78/PDF-to-XLSX-conversion/internal/types"
)

// ErrUnknownReport is returned when no registered source matches a report id.
var ErrUnknownReport = errors.New("unknown report type")

// =============================================================================
// SOURCE CAPABILITIES
// =============================================================================

// Source is a parseable report layout.
type Source interface {
	// ID is the registry key, e.g. "all_deals".
	ID() string

	// Label is the human readable name.
	Label() string

	// SheetName is the name of the data sheet in exported workbooks.
	SheetName() string

	// Columns is the fixed, ordered export schema.
	Columns() types.Schema

	// Parse reconstructs records from the document. It never fails.
	Parse(doc types.Document) types.Result
}

// Fallible is implemented by sources that have a separate, laxer strategy
// for documents their main grammar does not recognize.
type Fallible interface {
	Source
	ParseFallback(doc types.Document) types.Result
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds the known report sources keyed by normalized id.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry creates a registry containing the given sources.
func NewRegistry(sources ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry with every built-in report layout.
//
// PARAMETERS:
//   - opts: heuristic windows for the All Deals parser
//   - banners: extra page banners the Chart of Accounts parser skips
func DefaultRegistry(opts deals.Options, banners []string) *Registry {
	r, err := NewRegistry(deals.NewSource(opts), accounts.NewSource(banners...))
	if err != nil {
		// Built-in ids are distinct.
		panic(err)
	}
	return r
}

// Register adds a source. Registering the same id twice is an error.
func (r *Registry) Register(s Source) error {
	id := NormalizeID(s.ID())
	if id == "" {
		return fmt.Errorf("report source %q has an empty id", s.Label())
	}
	if _, exists := r.sources[id]; exists {
		return fmt.Errorf("report source %q already registered", id)
	}
	r.sources[id] = s
	r.order = append(r.order, id)
	return nil
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// Sources returns the registered sources in registration order.
func (r *Registry) Sources() []Source {
	out := make([]Source, len(r.order))
	for i, id := range r.order {
		out[i] = r.sources[id]
	}
	return out
}

// Lookup finds the source for a report id.
//
// The id is normalized first ("All Deals" and "all-deals" both become
// "all_deals"). An exact id or label match wins; otherwise the closest fuzzy
// match is used if it is unique. Anything else returns ErrUnknownReport.
func (r *Registry) Lookup(id string) (Source, error) {
	key := NormalizeID(id)
	if key == "" {
		return nil, fmt.Errorf("%w: empty id", ErrUnknownReport)
	}
	if s, ok := r.sources[key]; ok {
		return s, nil
	}
	for _, k := range r.order {
		if NormalizeID(r.sources[k].Label()) == key {
			return r.sources[k], nil
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(key, r.order)
	if len(ranks) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownReport, id)
	}
	sort.Sort(ranks)
	if len(ranks) > 1 && ranks[0].Distance == ranks[1].Distance {
		return nil, fmt.Errorf("%w: %q is ambiguous (%s, %s)",
			ErrUnknownReport, id, ranks[0].Target, ranks[1].Target)
	}
	return r.sources[ranks[0].Target], nil
}

// NormalizeID lower-cases id and replaces spaces and hyphens with
// underscores.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(id)
}

// OutputBaseName derives the export base name from the input file name with
// its extension stripped, or falls back to the report id.
func OutputBaseName(fileName, reportID string) string {
	base := filepath.Base(strings.TrimSpace(fileName))
	if base == "." || base == string(filepath.Separator) {
		base = ""
	}
	base = strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
	if base != "" {
		return base
	}
	if reportID != "" {
		return reportID
	}
	return "Report"
}
