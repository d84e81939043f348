package record

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *MedicalRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error)
	Update(ctx context.Context, r *MedicalRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f Filter, limit, offset int) ([]*MedicalRecord, int, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error)
	// NextSequence atomically allocates the next record number for the year.
	NextSequence(ctx context.Context, year int) (int64, error)
	// Test results
	AddTestResult(ctx context.Context, tr *TestResult) error
	GetTestResults(ctx context.Context, recordID uuid.UUID) ([]*TestResult, error)
	// Attachments
	AddAttachment(ctx context.Context, a *Attachment) error
	GetAttachments(ctx context.Context, recordID uuid.UUID) ([]*Attachment, error)
}

// ReferenceChecker verifies that rows a record points at actually exist.
type ReferenceChecker interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
	DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error)
	AppointmentExists(ctx context.Context, id uuid.UUID) (bool, error)
}
