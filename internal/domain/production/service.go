package production

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var validStatuses = func() map[string]bool {
	set := make(map[string]bool, len(ValidStatuses))
	for _, s := range ValidStatuses {
		set[s] = true
	}
	return set
}()

func validate(rec *Record) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.ProcedureCode == "" {
		return fmt.Errorf("procedure_code is required")
	}
	if rec.ServiceDate.IsZero() {
		return fmt.Errorf("service_date is required")
	}
	if !validStatuses[rec.Status] {
		return fmt.Errorf("invalid status: %s", rec.Status)
	}
	if rec.Status == StatusCancelled && rec.CancelDate == nil {
		return fmt.Errorf("cancel_date is required for cancelled records")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, rec *Record) error {
	if rec.Status == "" {
		rec.Status = StatusScheduled
	}
	if err := validate(rec); err != nil {
		return err
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, rec *Record) error {
	if err := validate(rec); err != nil {
		return err
	}
	return s.repo.Update(ctx, rec)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, status string, limit, offset int) ([]*Record, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.repo.List(ctx, status, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Record, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
