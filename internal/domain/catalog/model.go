package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Procedure is one SIGTAP procedure the clinic is authorized to bill,
// identified by its ten digit national code.
type Procedure struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	// BPAKind selects the consolidated (BPA-C) or individualized (BPA-I)
	// billing sheet the procedure is reported on.
	BPAKind   string    `json:"bpa_kind"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	BPAConsolidated   = "BPA-C"
	BPAIndividualized = "BPA-I"
)
