package production

import (
	"time"

	"github.com/google/uuid"
)

// Record is one billable production event: a procedure performed for a
// patient on a given day. The (patient, procedure, day) triple is unique;
// the database enforces it so concurrent imports cannot double-register.
type Record struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	ProcedureCode string     `json:"procedure_code"`
	ServiceDate   time.Time  `json:"service_date"`
	ScheduleDate  *time.Time `json:"schedule_date,omitempty"`
	Status        string     `json:"status"`
	CancelDate    *time.Time `json:"cancel_date,omitempty"`
	DeliveryDate  *time.Time `json:"delivery_date,omitempty"`
	ProcessedSIA  bool       `json:"processed_sia"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Workflow statuses, in lifecycle order.
const (
	StatusScheduled    = "Agendado"
	StatusInProduction = "Em produção"
	StatusDelivered    = "Entregue"
	StatusCancelled    = "Cancelado"
)

var ValidStatuses = []string{StatusScheduled, StatusInProduction, StatusDelivered, StatusCancelled}

// ServiceDay is the calendar day used for duplicate detection.
func (r *Record) ServiceDay() string {
	return r.ServiceDate.UTC().Format("2006-01-02")
}
