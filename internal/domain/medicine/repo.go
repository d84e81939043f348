package medicine

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error)
	GetByCode(ctx context.Context, code string) (*Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Medicine, int, error)
	// AdjustStock applies delta to stock_qty and returns the new quantity.
	// ErrInsufficientStock is returned when the result would be negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error)
}
