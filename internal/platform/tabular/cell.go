// Package tabular models uploaded spreadsheet/CSV content as ordered rows of
// typed cells and provides the value coercions shared by the import flows.
package tabular

import "strconv"

// CellKind discriminates the three shapes a raw spreadsheet cell can take.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
)

// Cell is one raw cell value. Number cells keep their original string form so
// that long identifiers survive unformatted (a 15-digit CNS read as a float
// would otherwise round-trip through scientific notation).
type Cell struct {
	kind CellKind
	raw  string
	num  float64
}

// Text builds a text cell. Empty or whitespace-only input still yields a text
// cell; emptiness is decided by IsEmpty.
func Text(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: CellText, raw: s}
}

// Number builds a numeric cell.
func Number(f float64) Cell {
	return Cell{kind: CellNumber, raw: strconv.FormatFloat(f, 'f', -1, 64), num: f}
}

// Empty is the absent cell.
func Empty() Cell { return Cell{} }

// FromRaw classifies a raw string value the way spreadsheet readers deliver
// it: parseable floats become number cells (keeping the raw text), everything
// else is text.
func FromRaw(s string) Cell {
	if s == "" {
		return Cell{}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Cell{kind: CellNumber, raw: s, num: f}
	}
	return Cell{kind: CellText, raw: s}
}

// Kind returns the cell discriminator.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell carries no value.
func (c Cell) IsEmpty() bool { return c.kind == CellEmpty }

// AsText returns the raw string form of the cell ("" when empty).
func (c Cell) AsText() string { return c.raw }

// AsNumber returns the numeric value and whether the cell is numeric.
func (c Cell) AsNumber() (float64, bool) {
	return c.num, c.kind == CellNumber
}

// Row is one ordered spreadsheet row.
type Row []Cell

// Cell returns the cell at index i, or the empty cell when the row is shorter
// than the header (trailing blanks are routinely dropped by readers).
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Sheet is a parsed tabular upload: the header row plus the data rows in
// original order. Data row i corresponds to spreadsheet row i+2.
type Sheet struct {
	Header Row
	Rows   []Row
}

// RowNumber translates a data-row index into the 1-based spreadsheet row
// number operators see in their editor.
func (s *Sheet) RowNumber(i int) int { return i + 2 }
