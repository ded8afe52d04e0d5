package production

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bpasys/bpasys/internal/domain/catalog"
	"github.com/bpasys/bpasys/internal/domain/patient"
	"github.com/bpasys/bpasys/internal/platform/importer"
)

// ImportSchema describes the production upload. CNS and procedure code are
// the identity columns; clinics export the service date under several names,
// so the date field carries every known alias.
func ImportSchema() *importer.Schema {
	return &importer.Schema{
		Name: "production",
		Fields: []importer.Field{
			{Name: "cns", Label: "CNS_PACIENTE", Kind: importer.FieldIdentifier, Headers: []string{"cns", "cartão sus", "cartao do sus"}, Identity: true},
			{Name: "name", Label: "NOME_PACIENTE", Kind: importer.FieldText, Headers: []string{"nome"}},
			{Name: "procedureCode", Label: "CODIGO_PROCEDIMENTO", Kind: importer.FieldIdentifier, Headers: []string{"procedimento", "codigo_procedimento"}, Identity: true},
			{Name: "dateService", Label: "DATA_ATENDIMENTO", Kind: importer.FieldDate, Headers: []string{"data_atendimento", "data de atendimento", "data_consulta_molde"}},
			{Name: "status", Label: "STATUS", Kind: importer.FieldText, Headers: []string{"status", "situação"}},
			{Name: "dateCancel", Label: "DATA_CANCELAMENTO", Kind: importer.FieldDate, Headers: []string{"cancelamento"}},
			{Name: "dateDelivery", Label: "DATA_ENTREGA", Kind: importer.FieldDate, Headers: []string{"entrega"}},
			{Name: "dateSchedule", Label: "DATA_AGENDAMENTO", Kind: importer.FieldDate, Headers: []string{"agendamento"}},
			{Name: "processedSIA", Label: "PROCESSADO_SIA", Kind: importer.FieldBool, Headers: []string{"processado", "sia"}},
		},
		IdentifierField:  "cns",
		NameField:        "name",
		StatusField:      "status",
		StatusValues:     ValidStatuses,
		ServiceDateField: "dateService",
	}
}

// referenceSource answers the pipeline's reference reads from the patient
// registry, the procedure catalog and the persisted production records.
type referenceSource struct {
	patients patient.Repository
	catalog  catalog.Repository
	records  Repository
}

func (s *referenceSource) Subjects(ctx context.Context, identifiers []string) (map[string]uuid.UUID, error) {
	return s.patients.ResolveCNS(ctx, identifiers)
}

func (s *referenceSource) ProcedureCodes(ctx context.Context) (map[string]bool, error) {
	return s.catalog.Codes(ctx)
}

func (s *referenceSource) ExistingKeys(ctx context.Context, patientIDs []uuid.UUID) (map[importer.Key]bool, error) {
	keys, err := s.records.ExistingKeys(ctx, patientIDs)
	if err != nil {
		return nil, err
	}
	out := make(map[importer.Key]bool, len(keys))
	for _, k := range keys {
		out[importer.Key{Subject: k.PatientID, Code: k.ProcedureCode, Day: k.ServiceDay}] = true
	}
	return out, nil
}

// batchStore converts accepted records and inserts them one chunk per
// transaction. The unique (patient, procedure, day) index turns races between
// concurrent runs into a chunk failure instead of a double registration.
type batchStore struct {
	repo Repository
}

func (s *batchStore) PersistChunk(ctx context.Context, recs []*importer.Record) error {
	out := make([]*Record, 0, len(recs))
	for _, rec := range recs {
		r := &Record{
			PatientID:     rec.SubjectID,
			ProcedureCode: rec.Text["procedureCode"],
			ServiceDate:   rec.Dates["dateService"].Time,
			Status:        rec.Text["status"],
			ProcessedSIA:  rec.Flags["processedSIA"],
		}
		if r.Status == "" {
			r.Status = StatusScheduled
		}
		if d, ok := rec.Dates["dateCancel"]; ok {
			t := d.Time
			r.CancelDate = &t
		}
		if d, ok := rec.Dates["dateDelivery"]; ok {
			t := d.Time
			r.DeliveryDate = &t
		}
		if d, ok := rec.Dates["dateSchedule"]; ok {
			t := d.Time
			r.ScheduleDate = &t
		}
		out = append(out, r)
	}
	return s.repo.InsertBatch(ctx, out)
}

// NewImportEngine assembles the production import pipeline.
func NewImportEngine(patients patient.Repository, procedures catalog.Repository, records Repository, chunkSize int, log zerolog.Logger) *importer.Engine {
	return &importer.Engine{
		Schema: ImportSchema(),
		Rules: []importer.Rule{
			importer.RequireField("cns", "CNS ausente"),
			importer.MinDigits("cns", patient.CNSMinDigits, "CNS inválido"),
			importer.SubjectResolves("cns", "paciente não encontrado"),
			importer.RequireField("procedureCode", "código de procedimento ausente"),
			importer.ProcedureKnown("procedureCode", "procedimento não cadastrado"),
			importer.OneOf("status", ValidStatuses, "status inválido"),
			importer.StatusDates("status", []importer.StatusDateRule{
				{Status: StatusCancelled, DateField: "dateCancel", Message: "data de cancelamento obrigatória", Severity: importer.Fatal},
				{Status: StatusDelivered, DateField: "dateDelivery", Message: "data de entrega ausente", Severity: importer.Warn},
			}),
		},
		Key: func(rec *importer.Record) (importer.Key, bool) {
			d, ok := rec.Dates["dateService"]
			if !ok {
				return importer.Key{}, false
			}
			return importer.Key{
				Subject: rec.SubjectID,
				Code:    rec.Text["procedureCode"],
				Day:     d.Day(),
			}, true
		},
		Source:    &referenceSource{patients: patients, catalog: procedures, records: records},
		Store:     &batchStore{repo: records},
		ChunkSize: chunkSize,
		Log:       log,
	}
}
