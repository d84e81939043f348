package appointment

import (
	"time"

	"github.com/google/uuid"
)

// Appointment maps to the appointment table.
type Appointment struct {
	ID              uuid.UUID `db:"id" json:"id"`
	PatientID       uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DepartmentID    uuid.UUID `db:"department_id" json:"department_id"`
	ScheduledAt     time.Time `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Reason          string    `db:"reason" json:"reason"`
	Notes           *string   `db:"notes" json:"notes,omitempty"`
	Status          string    `db:"status" json:"status"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Update carries a partial update: only non-nil fields are applied.
type Update struct {
	ScheduledAt     *time.Time `json:"scheduled_at"`
	DurationMinutes *int       `json:"duration_minutes"`
	Reason          *string    `json:"reason"`
	Notes           *string    `json:"notes"`
}

// Filter narrows appointment listings.
type Filter struct {
	PatientID    *uuid.UUID
	DoctorID     *uuid.UUID
	DepartmentID *uuid.UUID
	Status       string
	StartDate    *time.Time // inclusive, on scheduled_at
	EndDate      *time.Time // inclusive
}
