package production

import (
	"context"

	"github.com/google/uuid"
)

// DuplicateKey is one persisted (patient, procedure, day) triple.
type DuplicateKey struct {
	PatientID     uuid.UUID
	ProcedureCode string
	ServiceDay    string
}

type Repository interface {
	Create(ctx context.Context, rec *Record) error
	GetByID(ctx context.Context, id uuid.UUID) (*Record, error)
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, status string, limit, offset int) ([]*Record, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error)

	// InsertBatch inserts the records in one transaction; any failure rolls
	// the whole batch back.
	InsertBatch(ctx context.Context, recs []*Record) error

	// ExistingKeys returns the persisted duplicate keys for the given patients.
	ExistingKeys(ctx context.Context, patientIDs []uuid.UUID) ([]DuplicateKey, error)
}
