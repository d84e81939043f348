package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/platform/apperror"
)

type mockRepo struct {
	appointments map[uuid.UUID]*Appointment
}

func newMockRepo() *mockRepo {
	return &mockRepo{appointments: make(map[uuid.UUID]*Appointment)}
}

func (m *mockRepo) Create(_ context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	a, ok := m.appointments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.appointments, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Appointment, int, error) {
	var matched []*Appointment
	for _, a := range m.appointments {
		if f.DoctorID != nil && a.DoctorID != *f.DoctorID {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		matched = append(matched, a)
	}
	total := len(matched)
	if offset > total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

type mockRefs struct {
	patients    map[uuid.UUID]bool
	doctors     map[uuid.UUID]bool
	departments map[uuid.UUID]bool
}

func (m *mockRefs) PatientExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.patients[id], nil
}
func (m *mockRefs) DoctorExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.doctors[id], nil
}
func (m *mockRefs) DepartmentExists(_ context.Context, id uuid.UUID) (bool, error) {
	return m.departments[id], nil
}

type fixture struct {
	svc          *Service
	patientID    uuid.UUID
	doctorID     uuid.UUID
	departmentID uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		patientID:    uuid.New(),
		doctorID:     uuid.New(),
		departmentID: uuid.New(),
	}
	refs := &mockRefs{
		patients:    map[uuid.UUID]bool{f.patientID: true},
		doctors:     map[uuid.UUID]bool{f.doctorID: true},
		departments: map[uuid.UUID]bool{f.departmentID: true},
	}
	f.svc = NewService(newMockRepo(), refs)
	return f
}

func (f *fixture) validAppointment() *Appointment {
	return &Appointment{
		PatientID:    f.patientID,
		DoctorID:     f.doctorID,
		DepartmentID: f.departmentID,
		ScheduledAt:  time.Now().Add(24 * time.Hour),
		Reason:       "Follow-up consultation",
	}
}

func TestCreateAppointmentDefaults(t *testing.T) {
	f := newFixture()
	created, err := f.svc.Create(context.Background(), f.validAppointment())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Status != StatusScheduled {
		t.Errorf("status = %q, want scheduled", created.Status)
	}
	if created.DurationMinutes != defaultDurationMinutes {
		t.Errorf("duration = %d, want %d", created.DurationMinutes, defaultDurationMinutes)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	f := newFixture()
	cases := []struct {
		name   string
		mutate func(*Appointment)
	}{
		{"missing patient", func(a *Appointment) { a.PatientID = uuid.Nil }},
		{"missing doctor", func(a *Appointment) { a.DoctorID = uuid.Nil }},
		{"missing department", func(a *Appointment) { a.DepartmentID = uuid.Nil }},
		{"missing scheduled_at", func(a *Appointment) { a.ScheduledAt = time.Time{} }},
		{"missing reason", func(a *Appointment) { a.Reason = "" }},
		{"unknown patient", func(a *Appointment) { a.PatientID = uuid.New() }},
		{"unknown doctor", func(a *Appointment) { a.DoctorID = uuid.New() }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := f.validAppointment()
			tc.mutate(a)
			_, err := f.svc.Create(context.Background(), a)
			if apperror.KindOf(err) != apperror.KindValidation {
				t.Errorf("err = %v, want validation kind", err)
			}
		})
	}
}

func TestAppointmentStatusTransitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.validAppointment())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for _, status := range []string{StatusConfirmed, StatusCompleted} {
		if _, err := f.svc.UpdateStatus(ctx, created.ID, status); err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
	}

	if _, err := f.svc.UpdateStatus(ctx, created.ID, "pending"); apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}
}

func TestUpdateCompletedAppointmentConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	created, err := f.svc.Create(ctx, f.validAppointment())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, created.ID, StatusCompleted); err != nil {
		t.Fatalf("complete: %v", err)
	}

	reason := "new reason"
	_, err = f.svc.Update(ctx, created.ID, Update{Reason: &reason})
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("err = %v, want conflict kind", err)
	}
}

func TestListByStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	first, err := f.svc.Create(ctx, f.validAppointment())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.Create(ctx, f.validAppointment()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, first.ID, StatusNoShow); err != nil {
		t.Fatalf("no-show: %v", err)
	}

	items, total, err := f.svc.List(ctx, Filter{Status: StatusNoShow}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != first.ID {
		t.Errorf("filter returned %d items, total %d", len(items), total)
	}
}
