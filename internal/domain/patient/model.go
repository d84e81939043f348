package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Phone      *string    `db:"phone" json:"phone,omitempty"`
	Email      *string    `db:"email" json:"email,omitempty"`
	Address    *string    `db:"address" json:"address,omitempty"`
	BloodGroup *string    `db:"blood_group" json:"blood_group,omitempty"`
	Allergies  *string    `db:"allergies" json:"allergies,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Update carries a partial update: only non-nil fields are applied.
type Update struct {
	FirstName  *string    `json:"first_name"`
	LastName   *string    `json:"last_name"`
	Gender     *string    `json:"gender"`
	BirthDate  *time.Time `json:"birth_date"`
	Phone      *string    `json:"phone"`
	Email      *string    `json:"email"`
	Address    *string    `json:"address"`
	BloodGroup *string    `json:"blood_group"`
	Allergies  *string    `json:"allergies"`
	Active     *bool      `json:"active"`
}

// Filter narrows patient listings.
type Filter struct {
	Search string // substring match on first_name, last_name or phone
	Active *bool
}
