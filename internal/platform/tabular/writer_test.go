package tabular

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestWriteTemplate(t *testing.T) {
	buf, err := WriteTemplate([]TemplateColumn{
		{Header: "CNS_PACIENTE"},
		{Header: "STATUS", Options: []string{"Agendado", "Entregue", "Cancelado"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen template: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	got, err := f.GetCellValue(sheet, "B1")
	if err != nil {
		t.Fatalf("read header: %v", err)
	}
	if got != "STATUS" {
		t.Errorf("expected STATUS header in B1, got %q", got)
	}

	dvs, err := f.GetDataValidations(sheet)
	if err != nil {
		t.Fatalf("read validations: %v", err)
	}
	if len(dvs) != 1 {
		t.Fatalf("expected 1 data validation, got %d", len(dvs))
	}
}

func TestWriteErrorReport(t *testing.T) {
	buf, err := WriteErrorReport(
		[]string{"CNS_PACIENTE", "NOME_PACIENTE", "ERRO"},
		[][]string{
			{"700000000000001", "Maria", "paciente não encontrado"},
			{"700000000000002", "João", "registro duplicado no arquivo"},
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("reopen report: %v", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][2] != "paciente não encontrado" {
		t.Errorf("unexpected error cell: %q", rows[1][2])
	}
}
