package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyFile is returned when an upload has no header row.
var ErrEmptyFile = errors.New("uploaded file has no header row")

// Reader converts an uploaded binary file into a Sheet.
type Reader interface {
	Read(r io.Reader) (*Sheet, error)
}

// ReaderFor picks a reader by file extension. CSV gets the csv reader,
// everything else is attempted as a workbook.
func ReaderFor(filename string) Reader {
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return CSVReader{}
	}
	return XLSXReader{}
}

// XLSXReader reads the first sheet of an xlsx workbook. Cells are fetched as
// raw values so date cells arrive as their underlying serial numbers rather
// than locale-formatted strings.
type XLSXReader struct{}

func (XLSXReader) Read(r io.Reader) (*Sheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyFile
	}

	sheet := &Sheet{Header: classifyRow(raw[0])}
	for _, row := range raw[1:] {
		sheet.Rows = append(sheet.Rows, classifyRow(row))
	}
	return sheet, nil
}

// CSVReader reads comma-separated uploads. Rows may have fewer fields than
// the header; missing trailing cells read as empty.
type CSVReader struct{}

func (CSVReader) Read(r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyFile
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	sheet := &Sheet{Header: classifyRow(header)}
	for {
		record, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read csv row %d: %w", len(sheet.Rows)+2, err)
		}
		sheet.Rows = append(sheet.Rows, classifyRow(record))
	}
	return sheet, nil
}

func classifyRow(raw []string) Row {
	row := make(Row, len(raw))
	for i, v := range raw {
		row[i] = FromRaw(strings.TrimSpace(v))
	}
	return row
}
