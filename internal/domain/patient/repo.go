package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByCNS(ctx context.Context, cns string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, name string, limit, offset int) ([]*Patient, int, error)

	// ResolveCNS maps the given CNS numbers to patient ids. Unknown numbers
	// are absent from the result.
	ResolveCNS(ctx context.Context, cns []string) (map[string]uuid.UUID, error)

	// UpsertBatch inserts the patients in one transaction, updating the
	// mutable fields of rows whose CNS already exists.
	UpsertBatch(ctx context.Context, patients []*Patient) error
}
