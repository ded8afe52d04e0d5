package importer

import (
	"github.com/google/uuid"

	"github.com/bpasys/bpasys/internal/platform/tabular"
)

// Record is a typed, normalized row. It is built once per input row and owned
// by the pipeline stage currently processing it.
type Record struct {
	// Row is the original 1-based spreadsheet row number.
	Row int

	Text  map[string]string
	Dates map[string]tabular.Date
	Flags map[string]bool

	// SubjectID is filled in by the subject-resolution rule.
	SubjectID uuid.UUID

	// Warnings are data-quality notes that do not reject the row.
	Warnings []string
}

// Has reports whether the canonical field is populated on this record.
func (r *Record) Has(field string) bool {
	if _, ok := r.Text[field]; ok {
		return true
	}
	if _, ok := r.Dates[field]; ok {
		return true
	}
	_, ok := r.Flags[field]
	return ok
}

// Warn attaches a data-quality note to the record.
func (r *Record) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// NormalizeRow converts one raw row into a Record using the resolved field
// map: strings are trimmed, identifiers reduced to digits, dates decoded from
// any of the accepted encodings, booleans matched against truthy tokens.
// Returns nil when no canonical field is populated — a blank spreadsheet row,
// not data.
func NormalizeRow(row tabular.Row, fm *FieldMap, s *Schema, rowNumber int) *Record {
	rec := &Record{
		Row:   rowNumber,
		Text:  make(map[string]string),
		Dates: make(map[string]tabular.Date),
		Flags: make(map[string]bool),
	}

	populated := false
	for _, field := range s.Fields {
		col, ok := fm.Column(field.Name)
		if !ok {
			continue
		}
		cell := row.Cell(col)
		if cell.IsEmpty() {
			continue
		}

		switch field.Kind {
		case FieldText:
			if v := tabular.CleanString(cell); v != "" {
				rec.Text[field.Name] = v
				populated = true
			}
		case FieldIdentifier:
			if v := tabular.Digits(cell); v != "" {
				rec.Text[field.Name] = v
				populated = true
			}
		case FieldDate:
			if d, ok := tabular.ParseDate(cell); ok {
				rec.Dates[field.Name] = d
				populated = true
			} else if v := tabular.CleanString(cell); v != "" {
				// The cell held something, just not a recognizable date.
				// Downstream validation decides whether that is fatal.
				populated = true
			}
		case FieldBool:
			rec.Flags[field.Name] = tabular.Truthy(cell)
			populated = true
		}
	}

	if !populated {
		return nil
	}
	return rec
}
