package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperror"
)

var validGenders = map[string]bool{
	"male":   true,
	"female": true,
	"other":  true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func validate(p *Patient) error {
	if p.FirstName == "" {
		return apperror.Validation("first_name is required")
	}
	if p.LastName == "" {
		return apperror.Validation("last_name is required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return apperror.Validation("invalid gender: %s", *p.Gender)
	}
	if p.Email != nil && *p.Email != "" && !strings.Contains(*p.Email, "@") {
		return apperror.Validation("invalid email")
	}
	if p.BirthDate != nil && p.BirthDate.After(time.Now()) {
		return apperror.Validation("birth_date cannot be in the future")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, p *Patient) (*Patient, error) {
	if err := validate(p); err != nil {
		return nil, err
	}
	p.Active = true
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, apperror.Wrap(err, "patient")
	}
	return s.Get(ctx, p.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "patient")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "patient")
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "patient")
	}

	if upd.FirstName != nil {
		p.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		p.LastName = *upd.LastName
	}
	if upd.Gender != nil {
		p.Gender = upd.Gender
	}
	if upd.BirthDate != nil {
		p.BirthDate = upd.BirthDate
	}
	if upd.Phone != nil {
		p.Phone = upd.Phone
	}
	if upd.Email != nil {
		p.Email = upd.Email
	}
	if upd.Address != nil {
		p.Address = upd.Address
	}
	if upd.BloodGroup != nil {
		p.BloodGroup = upd.BloodGroup
	}
	if upd.Allergies != nil {
		p.Allergies = upd.Allergies
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	if err := validate(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, apperror.Wrap(err, "patient")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "patient")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "patient")
	}
	return nil
}
