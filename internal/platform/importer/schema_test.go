package importer

import (
	"errors"
	"testing"

	"github.com/bpasys/bpasys/internal/platform/tabular"
)

func testSchema() *Schema {
	return &Schema{
		Name: "production",
		Fields: []Field{
			{Name: "cns", Label: "CNS_PACIENTE", Kind: FieldIdentifier, Headers: []string{"cns_paciente", "cartão sus"}, Identity: true},
			{Name: "name", Label: "NOME_PACIENTE", Kind: FieldText, Headers: []string{"nome"}},
			{Name: "procedureCode", Label: "CODIGO_PROCEDIMENTO", Kind: FieldText, Headers: []string{"código procedimento", "codigo_procedimento"}, Identity: true},
			{Name: "dateService", Label: "DATA_ATENDIMENTO", Kind: FieldDate, Headers: []string{"data_atendimento", "data_consulta_molde"}},
			{Name: "status", Label: "STATUS", Kind: FieldText, Headers: []string{"status"}},
			{Name: "dateCancel", Label: "DATA_CANCELAMENTO", Kind: FieldDate, Headers: []string{"data_cancelamento"}},
			{Name: "dateDelivery", Label: "DATA_ENTREGA", Kind: FieldDate, Headers: []string{"data_entrega"}},
			{Name: "processedSIA", Label: "PROCESSADO_SIA", Kind: FieldBool, Headers: []string{"processado_sia"}},
		},
		IdentifierField:  "cns",
		NameField:        "name",
		StatusField:      "status",
		StatusValues:     []string{"Agendado", "Em produção", "Entregue", "Cancelado"},
		ServiceDateField: "dateService",
	}
}

func headerRow(labels ...string) tabular.Row {
	row := make(tabular.Row, len(labels))
	for i, l := range labels {
		row[i] = tabular.Text(l)
	}
	return row
}

func TestMapHeadersAnyOrderAnyCase(t *testing.T) {
	s := testSchema()
	orders := []tabular.Row{
		headerRow("CNS_PACIENTE", "NOME_PACIENTE", "CODIGO_PROCEDIMENTO", "DATA_ATENDIMENTO"),
		headerRow("data_atendimento", "codigo_procedimento", "cns_paciente", "nome_paciente"),
		headerRow("Codigo_Procedimento", "CNS_Paciente"),
	}
	for _, header := range orders {
		fm, err := MapHeaders(header, s)
		if err != nil {
			t.Fatalf("unexpected error for %v: %v", header, err)
		}
		if _, ok := fm.Column("cns"); !ok {
			t.Errorf("cns not resolved for %v", header)
		}
		if _, ok := fm.Column("procedureCode"); !ok {
			t.Errorf("procedureCode not resolved for %v", header)
		}
	}
}

func TestMapHeadersAccentInsensitive(t *testing.T) {
	s := testSchema()
	fm, err := MapHeaders(headerRow("Número do Cartao SUS", "Código Procedimento"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col, ok := fm.Column("cns"); !ok || col != 0 {
		t.Errorf("expected cns at column 0, got %d ok=%v", col, ok)
	}
}

func TestMapHeadersMissingIdentityColumn(t *testing.T) {
	s := testSchema()
	_, err := MapHeaders(headerRow("NOME_PACIENTE", "STATUS"), s)
	var schemaErr *SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	if len(schemaErr.Missing) != 2 {
		t.Errorf("expected 2 missing identity columns, got %v", schemaErr.Missing)
	}
}

func TestMapHeadersAmbiguousKeepsFirst(t *testing.T) {
	s := testSchema()
	fm, err := MapHeaders(headerRow("CODIGO_PROCEDIMENTO", "CNS_PACIENTE", "CNS_PACIENTE_ANTIGO"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	col, _ := fm.Column("cns")
	if col != 1 {
		t.Errorf("expected first matching column 1, got %d", col)
	}
	ambs := fm.Ambiguities()
	if len(ambs) != 1 || ambs[0].Field != "cns" {
		t.Fatalf("expected one ambiguity on cns, got %v", ambs)
	}
	if len(ambs[0].Columns) != 2 {
		t.Errorf("expected both matching columns recorded, got %v", ambs[0].Columns)
	}
}

func TestMapHeadersServiceDateAlias(t *testing.T) {
	s := testSchema()
	fm, err := MapHeaders(headerRow("CNS_PACIENTE", "CODIGO_PROCEDIMENTO", "DATA_CONSULTA_MOLDE"), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if col, ok := fm.Column("dateService"); !ok || col != 2 {
		t.Errorf("expected alias to resolve dateService at column 2, got %d ok=%v", col, ok)
	}
}

func TestTemplateColumnsCarryStatusOptions(t *testing.T) {
	s := testSchema()
	cols := s.TemplateColumns()
	if len(cols) != len(s.Fields) {
		t.Fatalf("expected %d columns, got %d", len(s.Fields), len(cols))
	}
	for _, c := range cols {
		if c.Header == "STATUS" {
			if len(c.Options) != 4 {
				t.Errorf("expected 4 status options, got %v", c.Options)
			}
			return
		}
	}
	t.Error("STATUS column not found in template")
}
