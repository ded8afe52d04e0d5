package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient is one person registered at the clinic, keyed internally by id and
// externally by the CNS (Cartão Nacional de Saúde) number.
type Patient struct {
	ID          uuid.UUID  `json:"id"`
	CNS         string     `json:"cns"`
	Name        string     `json:"name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Sex         *string    `json:"sex,omitempty"`
	Nationality *string    `json:"nationality,omitempty"`
	Race        *string    `json:"race,omitempty"`
	Ethnicity   *string    `json:"ethnicity,omitempty"`
	PostalCode  *string    `json:"postal_code,omitempty"`
	City        *string    `json:"city,omitempty"`
	District    *string    `json:"district,omitempty"`
	StreetType  *string    `json:"street_type,omitempty"`
	Street      *string    `json:"street,omitempty"`
	Number      *string    `json:"number,omitempty"`
	Complement  *string    `json:"complement,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CNSMinDigits is the minimum length of a usable CNS number. Shorter values
// are typos or truncated exports, never real card numbers.
const CNSMinDigits = 15
