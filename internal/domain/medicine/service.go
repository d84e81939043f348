package medicine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/platform/apperror"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) Create(ctx context.Context, m *Medicine) (*Medicine, error) {
	if m.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if m.Code == "" {
		return nil, apperror.Validation("code is required")
	}
	if m.Unit == "" {
		return nil, apperror.Validation("unit is required")
	}
	if m.UnitPrice < 0 {
		return nil, apperror.Validation("unit_price cannot be negative")
	}
	if m.StockQty < 0 {
		return nil, apperror.Validation("stock_qty cannot be negative")
	}

	if _, err := s.repo.GetByCode(ctx, m.Code); err == nil {
		return nil, apperror.Conflict("medicine with code %s already exists", m.Code)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.Internal(err)
	}

	m.Active = true
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, apperror.Wrap(err, "medicine")
	}
	return s.Get(ctx, m.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "medicine")
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Medicine, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "medicine")
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Medicine, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "medicine")
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		m.Name = *upd.Name
	}
	if upd.Code != nil && *upd.Code != m.Code {
		if *upd.Code == "" {
			return nil, apperror.Validation("code cannot be empty")
		}
		if _, err := s.repo.GetByCode(ctx, *upd.Code); err == nil {
			return nil, apperror.Conflict("medicine with code %s already exists", *upd.Code)
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.Internal(err)
		}
		m.Code = *upd.Code
	}
	if upd.Description != nil {
		m.Description = upd.Description
	}
	if upd.Unit != nil {
		if *upd.Unit == "" {
			return nil, apperror.Validation("unit cannot be empty")
		}
		m.Unit = *upd.Unit
	}
	if upd.UnitPrice != nil {
		if *upd.UnitPrice < 0 {
			return nil, apperror.Validation("unit_price cannot be negative")
		}
		m.UnitPrice = *upd.UnitPrice
	}
	if upd.Manufacturer != nil {
		m.Manufacturer = upd.Manufacturer
	}
	if upd.ExpiryDate != nil {
		m.ExpiryDate = upd.ExpiryDate
	}
	if upd.Active != nil {
		m.Active = *upd.Active
	}

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(err, "medicine")
	}
	return s.Get(ctx, id)
}

// AdjustStock applies a signed delta to the stock quantity. A delta that
// would take the stock negative is a validation error.
func (s *Service) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (*Medicine, error) {
	if delta == 0 {
		return nil, apperror.Validation("delta cannot be zero")
	}
	if _, err := s.repo.AdjustStock(ctx, id, delta); err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, apperror.Validation("stock cannot go negative")
		}
		return nil, apperror.Wrap(err, "medicine")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "medicine")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "medicine")
	}
	return nil
}
