package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// templateRows is how far down the template's dropdown validations reach.
const templateRows = 5000

// TemplateColumn describes one column of a blank import template. Columns
// with Options get an in-cell dropdown restricting operator input.
type TemplateColumn struct {
	Header  string
	Options []string
}

// WriteTemplate builds a blank workbook with the expected header row and
// data-validation dropdowns for enumerated columns.
func WriteTemplate(cols []TemplateColumn) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(cols))
	for i, col := range cols {
		header[i] = col.Header
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write template header: %w", err)
	}

	for i, col := range cols {
		if len(col.Options) == 0 {
			continue
		}
		first, err := excelize.CoordinatesToCellName(i+1, 2)
		if err != nil {
			return nil, fmt.Errorf("template column %d: %w", i, err)
		}
		last, err := excelize.CoordinatesToCellName(i+1, templateRows)
		if err != nil {
			return nil, fmt.Errorf("template column %d: %w", i, err)
		}

		dv := excelize.NewDataValidation(true)
		dv.Sqref = first + ":" + last
		if err := dv.SetDropList(col.Options); err != nil {
			return nil, fmt.Errorf("dropdown for %s: %w", col.Header, err)
		}
		if err := f.AddDataValidation(sheet, dv); err != nil {
			return nil, fmt.Errorf("dropdown for %s: %w", col.Header, err)
		}
	}

	return f.WriteToBuffer()
}

// WriteErrorReport builds the downloadable workbook of rejected rows: the
// original columns followed by the caller-supplied trailing error column.
func WriteErrorReport(headers []string, rows [][]string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write report header: %w", err)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("report row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return nil, fmt.Errorf("write report row %d: %w", i, err)
		}
	}

	return f.WriteToBuffer()
}
