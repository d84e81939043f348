package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperror"
)

const (
	StatusScheduled = "scheduled"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusNoShow:    true,
}

const defaultDurationMinutes = 30

type Service struct {
	repo Repository
	refs ReferenceChecker
}

func NewService(repo Repository, refs ReferenceChecker) *Service {
	return &Service{repo: repo, refs: refs}
}

func (s *Service) Create(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.PatientID == uuid.Nil {
		return nil, apperror.Validation("patient_id is required")
	}
	if a.DoctorID == uuid.Nil {
		return nil, apperror.Validation("doctor_id is required")
	}
	if a.DepartmentID == uuid.Nil {
		return nil, apperror.Validation("department_id is required")
	}
	if a.ScheduledAt.IsZero() {
		return nil, apperror.Validation("scheduled_at is required")
	}
	if a.Reason == "" {
		return nil, apperror.Validation("reason is required")
	}
	if a.DurationMinutes < 0 {
		return nil, apperror.Validation("duration_minutes cannot be negative")
	}
	if a.DurationMinutes == 0 {
		a.DurationMinutes = defaultDurationMinutes
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return nil, apperror.Validation("invalid status: %s", a.Status)
	}

	ok, err := s.refs.PatientExists(ctx, a.PatientID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Validation("patient %s does not exist", a.PatientID)
	}
	ok, err = s.refs.DoctorExists(ctx, a.DoctorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Validation("doctor %s does not exist", a.DoctorID)
	}
	ok, err = s.refs.DepartmentExists(ctx, a.DepartmentID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Validation("department %s does not exist", a.DepartmentID)
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, apperror.Wrap(err, "appointment")
	}
	return s.Get(ctx, a.ID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "appointment")
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, apperror.Validation("invalid status: %s", f.Status)
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "appointment")
	}
	return items, total, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "appointment")
	}
	if a.Status == StatusCancelled || a.Status == StatusCompleted {
		return nil, apperror.Conflict("cannot update a %s appointment", a.Status)
	}

	if upd.ScheduledAt != nil {
		a.ScheduledAt = *upd.ScheduledAt
	}
	if upd.DurationMinutes != nil {
		if *upd.DurationMinutes <= 0 {
			return nil, apperror.Validation("duration_minutes must be positive")
		}
		a.DurationMinutes = *upd.DurationMinutes
	}
	if upd.Reason != nil {
		if *upd.Reason == "" {
			return nil, apperror.Validation("reason cannot be empty")
		}
		a.Reason = *upd.Reason
	}
	if upd.Notes != nil {
		a.Notes = upd.Notes
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperror.Wrap(err, "appointment")
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves the appointment through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Appointment, error) {
	if !validStatuses[status] {
		return nil, apperror.Validation("invalid status: %s", status)
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "appointment")
	}
	a.Status = status
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, apperror.Wrap(err, "appointment")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "appointment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "appointment")
	}
	return nil
}
