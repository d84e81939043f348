package department

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

func (s *Service) checkNameFree(ctx context.Context, name string, self uuid.UUID) error {
	existing, err := s.repo.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return apperror.Internal(err)
	}
	if existing.ID != self {
		return apperror.Conflict("department %q already exists", name)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, d *Department) (*Department, error) {
	if d.Name == "" {
		return nil, apperror.Validation("name is required")
	}
	if d.Code == "" {
		return nil, apperror.Validation("code is required")
	}
	if err := s.checkNameFree(ctx, d.Name, uuid.Nil); err != nil {
		return nil, err
	}
	d.Active = true
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, apperror.Wrap(err, "department")
	}
	return s.Get(ctx, d.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Department, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "department")
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Department, int, error) {
	items, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "department")
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Department, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "department")
	}

	if upd.Name != nil && *upd.Name != d.Name {
		if *upd.Name == "" {
			return nil, apperror.Validation("name cannot be empty")
		}
		if err := s.checkNameFree(ctx, *upd.Name, id); err != nil {
			return nil, err
		}
		d.Name = *upd.Name
	}
	if upd.Code != nil {
		if *upd.Code == "" {
			return nil, apperror.Validation("code cannot be empty")
		}
		d.Code = *upd.Code
	}
	if upd.Description != nil {
		d.Description = upd.Description
	}
	if upd.HeadUserID != nil {
		d.HeadUserID = upd.HeadUserID
	}
	if upd.Active != nil {
		d.Active = *upd.Active
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, apperror.Wrap(err, "department")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "department")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "department")
	}
	return nil
}
