package tabular

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestCSVReader(t *testing.T) {
	input := "CNS_PACIENTE,NOME_PACIENTE,DATA_ATENDIMENTO\n700000000000001,Maria,01/01/2024\n,,\n"
	sheet, err := CSVReader{}.Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sheet.Header) != 3 {
		t.Fatalf("expected 3 header cells, got %d", len(sheet.Header))
	}
	if got := sheet.Header.Cell(0).AsText(); got != "CNS_PACIENTE" {
		t.Errorf("unexpected header: %q", got)
	}
	if len(sheet.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(sheet.Rows))
	}
	if sheet.RowNumber(0) != 2 {
		t.Errorf("expected first data row to be spreadsheet row 2, got %d", sheet.RowNumber(0))
	}
	// Identifier cells classify as numbers but keep the raw text.
	if got := sheet.Rows[0].Cell(0).AsText(); got != "700000000000001" {
		t.Errorf("identifier text lost: %q", got)
	}
}

func TestCSVReaderEmptyFile(t *testing.T) {
	if _, err := (CSVReader{}).Read(strings.NewReader("")); err != ErrEmptyFile {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
}

func TestXLSXReaderRoundTrip(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"CNS_PACIENTE", "NOME_PACIENTE", "DATA_ATENDIMENTO"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{"700000000000001", "Maria", 45292})
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}

	parsed, err := XLSXReader{}.Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(parsed.Rows) != 1 {
		t.Fatalf("expected 1 data row, got %d", len(parsed.Rows))
	}
	if got := parsed.Rows[0].Cell(1).AsText(); got != "Maria" {
		t.Errorf("unexpected name cell: %q", got)
	}
	// Date cells read raw: the serial must arrive as a number.
	if _, ok := parsed.Rows[0].Cell(2).AsNumber(); !ok {
		t.Error("expected date cell to classify as numeric serial")
	}
}

func TestReaderFor(t *testing.T) {
	if _, ok := ReaderFor("batch.csv").(CSVReader); !ok {
		t.Error("expected CSV reader for .csv")
	}
	if _, ok := ReaderFor("batch.CSV").(CSVReader); !ok {
		t.Error("expected CSV reader for .CSV")
	}
	if _, ok := ReaderFor("batch.xlsx").(XLSXReader); !ok {
		t.Error("expected XLSX reader for .xlsx")
	}
}

func TestRowCellOutOfRange(t *testing.T) {
	row := Row{Text("a")}
	if !row.Cell(5).IsEmpty() {
		t.Error("out-of-range cell should be empty")
	}
}
