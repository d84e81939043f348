package medicine

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/hms/hms/internal/platform/apperror"
)

type mockRepo struct {
	medicines map[uuid.UUID]*Medicine
}

func newMockRepo() *mockRepo {
	return &mockRepo{medicines: make(map[uuid.UUID]*Medicine)}
}

func (m *mockRepo) Create(_ context.Context, med *Medicine) error {
	med.ID = uuid.New()
	med.CreatedAt = time.Now()
	med.UpdatedAt = med.CreatedAt
	cp := *med
	m.medicines[med.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Medicine, error) {
	med, ok := m.medicines[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *med
	return &cp, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Medicine, error) {
	for _, med := range m.medicines {
		if med.Code == code {
			cp := *med
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockRepo) Update(_ context.Context, med *Medicine) error {
	existing, ok := m.medicines[med.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	cp := *med
	cp.StockQty = existing.StockQty
	m.medicines[med.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.medicines, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Medicine, int, error) {
	var matched []*Medicine
	for _, med := range m.medicines {
		if f.Search != "" {
			s := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(med.Name), s) &&
				!strings.Contains(strings.ToLower(med.Code), s) {
				continue
			}
		}
		if f.Active != nil && med.Active != *f.Active {
			continue
		}
		matched = append(matched, med)
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

func (m *mockRepo) AdjustStock(_ context.Context, id uuid.UUID, delta int) (int, error) {
	med, ok := m.medicines[id]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	if med.StockQty+delta < 0 {
		return 0, ErrInsufficientStock
	}
	med.StockQty += delta
	return med.StockQty, nil
}

func validMedicine() *Medicine {
	return &Medicine{
		Name:      "Paracetamol 500mg",
		Code:      "PARA500",
		Unit:      "tablet",
		UnitPrice: 0.5,
		StockQty:  100,
	}
}

func TestCreateMedicine(t *testing.T) {
	svc := NewService(newMockRepo())
	created, err := svc.Create(context.Background(), validMedicine())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created.Active {
		t.Error("new medicine not active")
	}
	if created.StockQty != 100 {
		t.Errorf("stock = %d, want 100", created.StockQty)
	}
}

func TestCreateMedicineValidation(t *testing.T) {
	svc := NewService(newMockRepo())
	cases := []struct {
		name   string
		mutate func(*Medicine)
	}{
		{"missing name", func(m *Medicine) { m.Name = "" }},
		{"missing code", func(m *Medicine) { m.Code = "" }},
		{"missing unit", func(m *Medicine) { m.Unit = "" }},
		{"negative price", func(m *Medicine) { m.UnitPrice = -1 }},
		{"negative stock", func(m *Medicine) { m.StockQty = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMedicine()
			tc.mutate(m)
			_, err := svc.Create(context.Background(), m)
			if apperror.KindOf(err) != apperror.KindValidation {
				t.Errorf("err = %v, want validation kind", err)
			}
		})
	}
}

func TestDuplicateCodeConflicts(t *testing.T) {
	svc := NewService(newMockRepo())
	if _, err := svc.Create(context.Background(), validMedicine()); err != nil {
		t.Fatalf("create: %v", err)
	}
	m := validMedicine()
	m.Name = "Generic paracetamol"
	_, err := svc.Create(context.Background(), m)
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("err = %v, want conflict kind", err)
	}
}

func TestAdjustStock(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, validMedicine())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	m, err := svc.AdjustStock(ctx, created.ID, -30)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if m.StockQty != 70 {
		t.Errorf("stock = %d, want 70", m.StockQty)
	}

	m, err = svc.AdjustStock(ctx, created.ID, 50)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if m.StockQty != 120 {
		t.Errorf("stock = %d, want 120", m.StockQty)
	}
}

func TestAdjustStockCannotGoNegative(t *testing.T) {
	svc := NewService(newMockRepo())
	ctx := context.Background()
	created, err := svc.Create(ctx, validMedicine())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.AdjustStock(ctx, created.ID, -101)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}

	m, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if m.StockQty != 100 {
		t.Errorf("stock changed on failed adjustment: %d", m.StockQty)
	}
}

func TestAdjustStockZeroDelta(t *testing.T) {
	svc := NewService(newMockRepo())
	created, err := svc.Create(context.Background(), validMedicine())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = svc.AdjustStock(context.Background(), created.ID, 0)
	if apperror.KindOf(err) != apperror.KindValidation {
		t.Errorf("err = %v, want validation kind", err)
	}
}

func TestAdjustStockUnknownMedicine(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.AdjustStock(context.Background(), uuid.New(), 10)
	if apperror.KindOf(err) != apperror.KindNotFound {
		t.Errorf("err = %v, want not-found kind", err)
	}
}
