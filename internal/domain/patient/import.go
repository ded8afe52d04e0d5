package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bpasys/bpasys/internal/platform/importer"
)

// ImportSchema describes the patient registry upload: CNS and name identify
// the row, the remaining columns are optional enrichment.
func ImportSchema() *importer.Schema {
	return &importer.Schema{
		Name: "patients",
		Fields: []importer.Field{
			{Name: "cns", Label: "CNS", Kind: importer.FieldIdentifier, Headers: []string{"cns", "cartão sus", "cartao do sus"}, Identity: true},
			{Name: "name", Label: "NOME", Kind: importer.FieldText, Headers: []string{"nome"}, Identity: true},
			{Name: "birthDate", Label: "DATA_NASCIMENTO", Kind: importer.FieldDate, Headers: []string{"nascimento"}},
			{Name: "sex", Label: "SEXO", Kind: importer.FieldText, Headers: []string{"sexo"}},
			{Name: "nationality", Label: "NACIONALIDADE", Kind: importer.FieldText, Headers: []string{"nacionalidade"}},
			{Name: "race", Label: "RACA", Kind: importer.FieldText, Headers: []string{"raça", "raca"}},
			{Name: "ethnicity", Label: "ETNIA", Kind: importer.FieldText, Headers: []string{"etnia"}},
			{Name: "postalCode", Label: "CEP", Kind: importer.FieldIdentifier, Headers: []string{"cep"}},
			{Name: "city", Label: "MUNICIPIO", Kind: importer.FieldText, Headers: []string{"município", "municipio", "cidade"}},
			{Name: "district", Label: "BAIRRO", Kind: importer.FieldText, Headers: []string{"bairro"}},
			// LOGRADOURO precedes TIPO_LOGRADOURO in the template so the bare
			// header resolves to its own column before the qualified one.
			{Name: "street", Label: "LOGRADOURO", Kind: importer.FieldText, Headers: []string{"logradouro"}},
			{Name: "streetType", Label: "TIPO_LOGRADOURO", Kind: importer.FieldText, Headers: []string{"tipo_logradouro", "tipo logradouro", "tipo de logradouro", "codigo_logradouro", "codigo logradouro", "código do logradouro"}},
			{Name: "number", Label: "NUMERO", Kind: importer.FieldText, Headers: []string{"número", "numero"}},
			{Name: "complement", Label: "COMPLEMENTO", Kind: importer.FieldText, Headers: []string{"complemento"}},
			{Name: "phone", Label: "TELEFONE", Kind: importer.FieldIdentifier, Headers: []string{"telefone", "celular"}},
			{Name: "email", Label: "EMAIL", Kind: importer.FieldText, Headers: []string{"email", "e-mail"}},
		},
		IdentifierField: "cns",
		NameField:       "name",
	}
}

// registrySource satisfies the pipeline's reference reads for a flow that has
// none: patient rows do not resolve against other tables, and existing CNS
// numbers are updated by the upsert rather than rejected.
type registrySource struct{}

func (registrySource) Subjects(context.Context, []string) (map[string]uuid.UUID, error) {
	return map[string]uuid.UUID{}, nil
}

func (registrySource) ProcedureCodes(context.Context) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func (registrySource) ExistingKeys(context.Context, []uuid.UUID) (map[importer.Key]bool, error) {
	return map[importer.Key]bool{}, nil
}

// registryStore converts accepted records into patients and upserts them one
// chunk per transaction.
type registryStore struct {
	repo Repository
}

func (s *registryStore) PersistChunk(ctx context.Context, recs []*importer.Record) error {
	patients := make([]*Patient, 0, len(recs))
	for _, rec := range recs {
		p := &Patient{
			CNS:    rec.Text["cns"],
			Name:   rec.Text["name"],
			Active: true,
		}
		if d, ok := rec.Dates["birthDate"]; ok {
			birth := d.Time
			p.BirthDate = &birth
		}
		setOpt := func(field string, dst **string) {
			if v, ok := rec.Text[field]; ok && v != "" {
				*dst = &v
			}
		}
		setOpt("sex", &p.Sex)
		setOpt("nationality", &p.Nationality)
		setOpt("race", &p.Race)
		setOpt("ethnicity", &p.Ethnicity)
		setOpt("postalCode", &p.PostalCode)
		setOpt("city", &p.City)
		setOpt("district", &p.District)
		setOpt("streetType", &p.StreetType)
		setOpt("street", &p.Street)
		setOpt("number", &p.Number)
		setOpt("complement", &p.Complement)
		setOpt("phone", &p.Phone)
		setOpt("email", &p.Email)
		patients = append(patients, p)
	}
	return s.repo.UpsertBatch(ctx, patients)
}

// NewImportEngine assembles the import pipeline for the patient registry.
func NewImportEngine(repo Repository, chunkSize int, log zerolog.Logger) *importer.Engine {
	return &importer.Engine{
		Schema: ImportSchema(),
		Rules: []importer.Rule{
			importer.RequireField("cns", "CNS ausente"),
			importer.MinDigits("cns", CNSMinDigits, "CNS inválido"),
			importer.RequireField("name", "nome ausente"),
		},
		Key: func(rec *importer.Record) (importer.Key, bool) {
			cns, ok := rec.Text["cns"]
			return importer.Key{Code: cns}, ok
		},
		Source:    registrySource{},
		Store:     &registryStore{repo: repo},
		ChunkSize: chunkSize,
		Log:       log,
	}
}
