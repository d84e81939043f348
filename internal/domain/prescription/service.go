package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/domain/medicine"
	"github.com/hms/hms/internal/platform/apperror"
	"github.com/hms/hms/internal/platform/db"
)

const (
	StatusActive    = "active"
	StatusDispensed = "dispensed"
	StatusCancelled = "cancelled"
)

var validStatuses = map[string]bool{
	StatusActive:    true,
	StatusDispensed: true,
	StatusCancelled: true,
}

type Service struct {
	repo  Repository
	stock StockAdjuster
	refs  ReferenceChecker
	tx    db.TxRunner
}

func NewService(repo Repository, stock StockAdjuster, refs ReferenceChecker, tx db.TxRunner) *Service {
	return &Service{repo: repo, stock: stock, refs: refs, tx: tx}
}

// Create validates the prescription and its items and persists them.
func (s *Service) Create(ctx context.Context, p *Prescription) (*Prescription, error) {
	if p.PatientID == uuid.Nil {
		return nil, apperror.Validation("patient_id is required")
	}
	if p.DoctorID == uuid.Nil {
		return nil, apperror.Validation("doctor_id is required")
	}
	if len(p.Items) == 0 {
		return nil, apperror.Validation("prescription needs at least one item")
	}

	ok, err := s.refs.PatientExists(ctx, p.PatientID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Validation("patient %s does not exist", p.PatientID)
	}
	ok, err = s.refs.DoctorExists(ctx, p.DoctorID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.Validation("doctor %s does not exist", p.DoctorID)
	}
	if p.RecordID != nil {
		ok, err = s.refs.RecordExists(ctx, *p.RecordID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !ok {
			return nil, apperror.Validation("medical record %s does not exist", *p.RecordID)
		}
	}

	for _, item := range p.Items {
		if item.MedicineID == uuid.Nil {
			return nil, apperror.Validation("item medicine_id is required")
		}
		if item.Quantity <= 0 {
			return nil, apperror.Validation("item quantity must be positive")
		}
		if item.Dosage == "" {
			return nil, apperror.Validation("item dosage is required")
		}
		ok, err := s.refs.MedicineExists(ctx, item.MedicineID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !ok {
			return nil, apperror.Validation("medicine %s does not exist", item.MedicineID)
		}
	}

	p.Status = StatusActive
	// Header and item inserts share one transaction.
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, p)
	})
	if err != nil {
		return nil, apperror.Wrap(err, "prescription")
	}
	return s.Get(ctx, p.ID)
}

// Get fetches a prescription with its items.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "prescription")
	}
	if p.Items, err = s.repo.GetItems(ctx, id); err != nil {
		return nil, apperror.Wrap(err, "prescription")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*Prescription, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, apperror.Validation("invalid status: %s", f.Status)
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "prescription")
	}
	return items, total, nil
}

// Dispense decrements medicine stock for every item and marks the
// prescription dispensed, all in one transaction. Insufficient stock on any
// item rolls the whole operation back.
func (s *Service) Dispense(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == StatusDispensed {
		return nil, apperror.Conflict("prescription is already dispensed")
	}
	if p.Status == StatusCancelled {
		return nil, apperror.Conflict("cannot dispense a cancelled prescription")
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		for _, item := range p.Items {
			if _, err := s.stock.AdjustStock(ctx, item.MedicineID, -item.Quantity); err != nil {
				if errors.Is(err, medicine.ErrInsufficientStock) {
					return apperror.Validation("insufficient stock for medicine %s", item.MedicineID)
				}
				return apperror.Wrap(err, "medicine")
			}
		}
		// The conditional transition is the authoritative gate: a concurrent
		// dispense that won the race leaves status != active, the transition
		// affects no row and the stock decrements above roll back.
		ok, err := s.repo.TransitionStatus(ctx, id, StatusActive, StatusDispensed)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.Conflict("prescription is no longer active")
		}
		return nil
	})
	if err != nil {
		return nil, apperror.Wrap(err, "prescription")
	}
	return s.Get(ctx, id)
}

// Cancel marks an active prescription cancelled. Stock is untouched since
// nothing was dispensed.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "prescription")
	}
	if p.Status != StatusActive {
		return nil, apperror.Conflict("only active prescriptions can be cancelled")
	}
	ok, err := s.repo.TransitionStatus(ctx, id, StatusActive, StatusCancelled)
	if err != nil {
		return nil, apperror.Wrap(err, "prescription")
	}
	if !ok {
		return nil, apperror.Conflict("only active prescriptions can be cancelled")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "prescription")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "prescription")
	}
	return nil
}
