package prescription

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Prescription) error
	GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*Prescription, int, error)
	GetItems(ctx context.Context, prescriptionID uuid.UUID) ([]*Item, error)
}

// StockAdjuster decrements medicine stock when a prescription is dispensed.
type StockAdjuster interface {
	AdjustStock(ctx context.Context, medicineID uuid.UUID, delta int) (int, error)
}

// ReferenceChecker verifies rows a prescription points at.
type ReferenceChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	MedicineExists(ctx context.Context, id uuid.UUID) (bool, error)
	RecordExists(ctx context.Context, id uuid.UUID) (bool, error)
}
