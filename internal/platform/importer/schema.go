// Package importer implements the bulk import pipeline shared by the patient
// and production upload flows: header mapping, row normalization, reference
// resolution, validation, deduplication and chunked persistence.
package importer

import (
	"fmt"
	"strings"

	"github.com/bpasys/bpasys/internal/platform/tabular"
)

// FieldKind selects the normalization applied to a canonical field.
type FieldKind int

const (
	FieldText FieldKind = iota
	FieldIdentifier
	FieldDate
	FieldBool
)

// Field is one canonical column of an import schema.
type Field struct {
	Name    string   // canonical name, e.g. "cns"
	Label   string   // header label used in templates and error reports
	Kind    FieldKind
	Headers []string // lowercase phrases matched against uploaded headers
	// Identity marks fields whose absence from the header row aborts the
	// whole run before any row is processed.
	Identity bool
}

// Schema describes one import flow: its canonical fields plus the roles a few
// of them play in validation and reporting.
type Schema struct {
	Name            string
	Fields          []Field
	IdentifierField string // echoed into failure rows
	NameField       string // echoed into failure rows
	StatusField     string
	StatusValues    []string // template dropdown options
	ServiceDateField string  // unparseable values fall back to the run start
}

// Field returns the schema field with the given canonical name.
func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// TemplateColumns translates the schema into the blank-template layout,
// attaching the status dropdown where applicable.
func (s *Schema) TemplateColumns() []tabular.TemplateColumn {
	cols := make([]tabular.TemplateColumn, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = tabular.TemplateColumn{Header: f.Label}
		if f.Name == s.StatusField {
			cols[i].Options = s.StatusValues
		}
	}
	return cols
}

// ResolutionState tags the outcome of mapping one canonical field against the
// uploaded header row.
type ResolutionState int

const (
	Missing ResolutionState = iota
	Resolved
	Ambiguous
)

// FieldResolution records how a canonical field mapped to uploaded columns.
// Ambiguous resolutions keep every matching column; the first one in column
// order is the one used.
type FieldResolution struct {
	Field   string
	State   ResolutionState
	Columns []int
}

// FieldMap is the per-run mapping from canonical field name to column index.
// Immutable after MapHeaders builds it.
type FieldMap struct {
	columns     map[string]int
	resolutions []FieldResolution
}

// Column returns the resolved column index for a canonical field.
func (m *FieldMap) Column(field string) (int, bool) {
	i, ok := m.columns[field]
	return i, ok
}

// Ambiguities returns the resolutions where more than one uploaded column
// matched the same canonical field.
func (m *FieldMap) Ambiguities() []FieldResolution {
	var out []FieldResolution
	for _, r := range m.resolutions {
		if r.State == Ambiguous {
			out = append(out, r)
		}
	}
	return out
}

// SchemaError aborts a run before any row is processed: one or more
// identity-mandatory columns could not be found in the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("colunas obrigatórias ausentes: %s", strings.Join(e.Missing, ", "))
}

// accent folding keeps header matching locale-insensitive: operators type
// "Cartão SUS", "CARTAO SUS" or "cartao  sus" interchangeably.
var accentFolder = strings.NewReplacer(
	"á", "a", "â", "a", "ã", "a", "à", "a",
	"é", "e", "ê", "e",
	"í", "i",
	"ó", "o", "ô", "o", "õ", "o",
	"ú", "u", "ü", "u",
	"ç", "c",
)

func foldHeader(s string) string {
	return accentFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// MapHeaders resolves the uploaded header row against the schema using
// case/accent-insensitive substring containment. Every canonical field gets a
// tagged resolution; a missing identity field is a fatal SchemaError. When
// multiple columns match one field the first match in column order wins and
// the rest are kept on the resolution for callers to surface.
func MapHeaders(header tabular.Row, s *Schema) (*FieldMap, error) {
	folded := make([]string, len(header))
	for i, cell := range header {
		folded[i] = foldHeader(cell.AsText())
	}

	fm := &FieldMap{columns: make(map[string]int)}
	var missing []string

	for _, field := range s.Fields {
		var matches []int
		for col, h := range folded {
			if h == "" {
				continue
			}
			for _, phrase := range field.Headers {
				if strings.Contains(h, foldHeader(phrase)) {
					matches = append(matches, col)
					break
				}
			}
		}

		res := FieldResolution{Field: field.Name, Columns: matches}
		switch len(matches) {
		case 0:
			res.State = Missing
			if field.Identity {
				missing = append(missing, field.Label)
			}
		case 1:
			res.State = Resolved
			fm.columns[field.Name] = matches[0]
		default:
			res.State = Ambiguous
			fm.columns[field.Name] = matches[0]
		}
		fm.resolutions = append(fm.resolutions, res)
	}

	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return fm, nil
}
