package production

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bpasys/bpasys/internal/domain/catalog"
	"github.com/bpasys/bpasys/internal/domain/patient"
	"github.com/bpasys/bpasys/internal/platform/importer"
	"github.com/bpasys/bpasys/internal/platform/tabular"
)

// Minimal registry and catalog fakes: only the reads the import pipeline
// performs are implemented.

type fakePatients struct {
	byCNS map[string]uuid.UUID
}

func (f *fakePatients) Create(context.Context, *patient.Patient) error { return fmt.Errorf("read-only") }
func (f *fakePatients) GetByID(context.Context, uuid.UUID) (*patient.Patient, error) {
	return nil, fmt.Errorf("read-only")
}
func (f *fakePatients) GetByCNS(context.Context, string) (*patient.Patient, error) {
	return nil, fmt.Errorf("read-only")
}
func (f *fakePatients) Update(context.Context, *patient.Patient) error { return fmt.Errorf("read-only") }
func (f *fakePatients) Delete(context.Context, uuid.UUID) error        { return fmt.Errorf("read-only") }
func (f *fakePatients) List(context.Context, string, int, int) ([]*patient.Patient, int, error) {
	return nil, 0, fmt.Errorf("read-only")
}
func (f *fakePatients) UpsertBatch(context.Context, []*patient.Patient) error {
	return fmt.Errorf("read-only")
}

func (f *fakePatients) ResolveCNS(_ context.Context, cns []string) (map[string]uuid.UUID, error) {
	out := map[string]uuid.UUID{}
	for _, n := range cns {
		if id, ok := f.byCNS[n]; ok {
			out[n] = id
		}
	}
	return out, nil
}

type fakeCatalog struct {
	codes map[string]bool
}

func (f *fakeCatalog) Create(context.Context, *catalog.Procedure) error { return fmt.Errorf("read-only") }
func (f *fakeCatalog) GetByID(context.Context, uuid.UUID) (*catalog.Procedure, error) {
	return nil, fmt.Errorf("read-only")
}
func (f *fakeCatalog) GetByCode(context.Context, string) (*catalog.Procedure, error) {
	return nil, fmt.Errorf("read-only")
}
func (f *fakeCatalog) Update(context.Context, *catalog.Procedure) error { return fmt.Errorf("read-only") }
func (f *fakeCatalog) Delete(context.Context, uuid.UUID) error          { return fmt.Errorf("read-only") }
func (f *fakeCatalog) List(context.Context, int, int) ([]*catalog.Procedure, int, error) {
	return nil, 0, fmt.Errorf("read-only")
}
func (f *fakeCatalog) Codes(context.Context) (map[string]bool, error) { return f.codes, nil }

func productionSheet(rows ...tabular.Row) *tabular.Sheet {
	return &tabular.Sheet{
		Header: tabular.Row{
			tabular.Text("CNS_PACIENTE"), tabular.Text("NOME_PACIENTE"),
			tabular.Text("CODIGO_PROCEDIMENTO"), tabular.Text("DATA_ATENDIMENTO"),
			tabular.Text("STATUS"), tabular.Text("DATA_CANCELAMENTO"),
		},
		Rows: rows,
	}
}

func productionRow(cns, name, proc, date, status, cancel string) tabular.Row {
	return tabular.Row{
		tabular.Text(cns), tabular.Text(name), tabular.Text(proc),
		tabular.Text(date), tabular.Text(status), tabular.Text(cancel),
	}
}

func newTestEngine(records Repository) (*importer.Engine, uuid.UUID) {
	patientID := uuid.New()
	patients := &fakePatients{byCNS: map[string]uuid.UUID{"700000000000001": patientID}}
	cat := &fakeCatalog{codes: map[string]bool{"0301010072": true}}
	return NewImportEngine(patients, cat, records, 0, zerolog.Nop()), patientID
}

func TestImportPersistsRecords(t *testing.T) {
	repo := newMockRepo()
	engine, patientID := newTestEngine(repo)

	report, err := engine.Import(context.Background(), productionSheet(
		productionRow("700000000000001", "Maria", "0301010072", "15/03/2024 09:30", StatusScheduled, ""),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Persisted != 1 || report.Invalid != 0 {
		t.Fatalf("expected 1 persisted, got %+v", report)
	}

	var saved *Record
	for _, rec := range repo.byID {
		saved = rec
	}
	if saved == nil {
		t.Fatal("record not stored")
	}
	if saved.PatientID != patientID {
		t.Errorf("expected resolved patient id %s, got %s", patientID, saved.PatientID)
	}
	if saved.ProcedureCode != "0301010072" {
		t.Errorf("unexpected procedure code %q", saved.ProcedureCode)
	}
	if saved.ServiceDay() != "2024-03-15" {
		t.Errorf("unexpected service day %s", saved.ServiceDay())
	}
	if saved.Status != StatusScheduled {
		t.Errorf("unexpected status %q", saved.Status)
	}
}

func TestImportRejectsPersistedDuplicate(t *testing.T) {
	repo := newMockRepo()
	engine, patientID := newTestEngine(repo)

	seed := &Record{
		PatientID:     patientID,
		ProcedureCode: "0301010072",
		ServiceDate:   time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Status:        StatusScheduled,
	}
	if err := repo.Create(context.Background(), seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	report, err := engine.Import(context.Background(), productionSheet(
		productionRow("700000000000001", "Maria", "0301010072", "15/03/2024 14:00", StatusScheduled, ""),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Persisted != 0 || report.Invalid != 1 {
		t.Fatalf("expected persisted duplicate rejected, got %+v", report)
	}
	if report.Failures[0].Errors[0] != importer.MsgAlreadyRegistered {
		t.Errorf("expected %q, got %v", importer.MsgAlreadyRegistered, report.Failures[0].Errors)
	}
}

func TestImportCancelledRowCarriesCancelDate(t *testing.T) {
	repo := newMockRepo()
	engine, _ := newTestEngine(repo)

	report, err := engine.Import(context.Background(), productionSheet(
		productionRow("700000000000001", "Maria", "0301010072", "15/03/2024", StatusCancelled, "16/03/2024"),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Persisted != 1 {
		t.Fatalf("expected cancelled row with cancel date to persist, got %+v", report)
	}
	for _, rec := range repo.byID {
		if rec.CancelDate == nil {
			t.Error("cancel date not carried through")
		}
	}
}

func TestImportScheduleDateRoundTrips(t *testing.T) {
	repo := newMockRepo()
	engine, _ := newTestEngine(repo)

	sheet := &tabular.Sheet{
		Header: tabular.Row{
			tabular.Text("CNS_PACIENTE"), tabular.Text("CODIGO_PROCEDIMENTO"),
			tabular.Text("DATA_ATENDIMENTO"), tabular.Text("DATA_AGENDAMENTO"),
			tabular.Text("STATUS"),
		},
		Rows: []tabular.Row{{
			tabular.Text("700000000000001"), tabular.Text("0301010072"),
			tabular.Text("15/03/2024"), tabular.Text("10/03/2024 08:00"),
			tabular.Text(StatusScheduled),
		}},
	}

	report, err := engine.Import(context.Background(), sheet)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Persisted != 1 {
		t.Fatalf("expected 1 persisted, got %+v", report)
	}
	for _, rec := range repo.byID {
		if rec.ScheduleDate == nil {
			t.Fatal("schedule date not carried through")
		}
		want := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
		if !rec.ScheduleDate.Equal(want) {
			t.Errorf("expected schedule date %v, got %v", want, rec.ScheduleDate)
		}
	}

	for _, col := range ImportSchema().TemplateColumns() {
		if col.Header == "DATA_AGENDAMENTO" {
			return
		}
	}
	t.Error("DATA_AGENDAMENTO column missing from template")
}

func TestImportUnknownStatusRejected(t *testing.T) {
	repo := newMockRepo()
	engine, _ := newTestEngine(repo)

	report, err := engine.Import(context.Background(), productionSheet(
		productionRow("700000000000001", "Maria", "0301010072", "15/03/2024", "Perdido", ""),
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.Invalid != 1 || report.Persisted != 0 {
		t.Fatalf("expected unknown status rejected, got %+v", report)
	}
}

func TestImportTemplateHasStatusDropdown(t *testing.T) {
	cols := ImportSchema().TemplateColumns()
	for _, col := range cols {
		if col.Header == "STATUS" {
			if len(col.Options) != len(ValidStatuses) {
				t.Errorf("expected %d options, got %v", len(ValidStatuses), col.Options)
			}
			return
		}
	}
	t.Error("STATUS column missing from template")
}
