package user

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleNurse  = "nurse"
)

// User maps to the app_user table. PasswordHash never leaves the API and
// Password is only ever read from create/update request bodies.
type User struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	Password      string     `db:"-" json:"password,omitempty"`
	PasswordHash  string     `db:"password_hash" json:"-"`
	FullName      string     `db:"full_name" json:"full_name"`
	Role          string     `db:"role" json:"role"`
	DepartmentID  *uuid.UUID `db:"department_id" json:"department_id,omitempty"`
	Specialty     *string    `db:"specialty" json:"specialty,omitempty"`
	LicenseNumber *string    `db:"license_number" json:"license_number,omitempty"`
	Active        bool       `db:"active" json:"active"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Update carries a partial update: only non-nil fields are applied.
type Update struct {
	Email         *string    `json:"email"`
	Password      *string    `json:"password"`
	FullName      *string    `json:"full_name"`
	Role          *string    `json:"role"`
	DepartmentID  *uuid.UUID `json:"department_id"`
	Specialty     *string    `json:"specialty"`
	LicenseNumber *string    `json:"license_number"`
	Active        *bool      `json:"active"`
}

// Filter narrows user listings.
type Filter struct {
	Role   string
	Search string // substring match on full_name or email
	Active *bool
}
