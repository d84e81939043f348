package department

import (
	"time"

	"github.com/google/uuid"
)

// Department maps to the department table.
type Department struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Code        string     `db:"code" json:"code"`
	Description *string    `db:"description" json:"description,omitempty"`
	HeadUserID  *uuid.UUID `db:"head_user_id" json:"head_user_id,omitempty"`
	Active      bool       `db:"active" json:"active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Update carries a partial update: only non-nil fields are applied.
type Update struct {
	Name        *string    `json:"name"`
	Code        *string    `json:"code"`
	Description *string    `json:"description"`
	HeadUserID  *uuid.UUID `json:"head_user_id"`
	Active      *bool      `json:"active"`
}
