package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ReferenceIndex holds the per-run lookup structures resolved from the record
// store. Built once at the start of a run and read-only afterwards.
type ReferenceIndex struct {
	// Subjects maps the normalized identifier (CNS) to the internal subject id.
	Subjects map[string]uuid.UUID
	// Procedures is the set of registered procedure codes.
	Procedures map[string]bool
	// Existing is the set of duplicate keys already persisted, scoped to the
	// identifiers appearing in this batch.
	Existing map[Key]bool
}

// Source loads reference data for a run. Implementations are read-only; the
// batch importer is the only writer in the pipeline.
type Source interface {
	// Subjects resolves the given normalized identifiers to subject ids.
	// Identifiers with no match are simply absent from the result.
	Subjects(ctx context.Context, identifiers []string) (map[string]uuid.UUID, error)
	// ProcedureCodes returns the complete set of registered procedure codes.
	ProcedureCodes(ctx context.Context) (map[string]bool, error)
	// ExistingKeys returns the duplicate keys already persisted for the given
	// subjects.
	ExistingKeys(ctx context.Context, subjectIDs []uuid.UUID) (map[Key]bool, error)
}

// ReferenceError aborts the run: without complete reference data every row
// would be rejected for the wrong reason.
type ReferenceError struct {
	Err error
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("referência indisponível: %v", e.Err)
}

func (e *ReferenceError) Unwrap() error { return e.Err }

// buildIndex performs the run's two reference reads, scoped to the distinct
// identifiers present in the batch.
func buildIndex(ctx context.Context, src Source, records []*Record, identifierField string) (*ReferenceIndex, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, rec := range records {
		id := rec.Text[identifierField]
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	subjects, err := src.Subjects(ctx, ids)
	if err != nil {
		return nil, &ReferenceError{Err: fmt.Errorf("load subjects: %w", err)}
	}

	procedures, err := src.ProcedureCodes(ctx)
	if err != nil {
		return nil, &ReferenceError{Err: fmt.Errorf("load procedure codes: %w", err)}
	}

	return &ReferenceIndex{
		Subjects:   subjects,
		Procedures: procedures,
	}, nil
}
