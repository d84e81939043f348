package record

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MedicalRecord maps to the medical_record table. One row per clinical visit.
type MedicalRecord struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	RecordNumber  string     `db:"record_number" json:"record_number"`
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	DepartmentID  uuid.UUID  `db:"department_id" json:"department_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	VisitDate     time.Time  `db:"visit_date" json:"visit_date"`
	Reason        string     `db:"reason" json:"reason"`
	Symptoms      *string    `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis     *string    `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription  *string    `db:"prescription" json:"prescription,omitempty"`
	DoctorNotes   *string    `db:"doctor_notes" json:"doctor_notes,omitempty"`
	TreatmentPlan *string    `db:"treatment_plan" json:"treatment_plan,omitempty"`
	FollowUpDate  *time.Time `db:"follow_up_date" json:"follow_up_date,omitempty"`
	Status        string     `db:"status" json:"status"`
	Cost          Cost       `json:"cost"`
	IsPaid        bool       `db:"is_paid" json:"is_paid"`
	PaymentMethod *string    `db:"payment_method" json:"payment_method,omitempty"`
	PaidAt        *time.Time `db:"paid_at" json:"paid_at,omitempty"`
	CreatedBy     uuid.UUID  `db:"created_by" json:"created_by"`
	LastUpdatedBy *uuid.UUID `db:"last_updated_by" json:"last_updated_by,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`

	// Loaded with the record on single reads.
	TestResults []*TestResult `json:"test_results,omitempty"`
	Attachments []*Attachment `json:"attachments,omitempty"`
}

// Cost is the billing sub-object. TotalFee is derived: it is recomputed from
// the three components on every save and never accepted from a caller.
type Cost struct {
	ConsultationFee float64 `db:"consultation_fee" json:"consultation_fee"`
	MedicationFee   float64 `db:"medication_fee" json:"medication_fee"`
	TestFee         float64 `db:"test_fee" json:"test_fee"`
	TotalFee        float64 `db:"total_fee" json:"total_fee"`
}

// Recalculate sets TotalFee to the sum of the component fees.
func (c *Cost) Recalculate() {
	c.TotalFee = c.ConsultationFee + c.MedicationFee + c.TestFee
}

// TestResult maps to the record_test_result table, ordered by sequence.
type TestResult struct {
	ID       uuid.UUID  `db:"id" json:"id"`
	RecordID uuid.UUID  `db:"record_id" json:"record_id"`
	Sequence int        `db:"sequence" json:"sequence"`
	TestName string     `db:"test_name" json:"test_name"`
	Result   *string    `db:"result" json:"result,omitempty"`
	TestDate *time.Time `db:"test_date" json:"test_date,omitempty"`
	Notes    *string    `db:"notes" json:"notes,omitempty"`
}

// Attachment maps to the record_attachment table. Only file references are
// stored; upload and serving of file content live elsewhere.
type Attachment struct {
	ID         uuid.UUID `db:"id" json:"id"`
	RecordID   uuid.UUID `db:"record_id" json:"record_id"`
	Sequence   int       `db:"sequence" json:"sequence"`
	FileName   string    `db:"file_name" json:"file_name"`
	FileURL    string    `db:"file_url" json:"file_url"`
	UploadedBy uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// Update carries a partial update: only non-nil fields are applied.
type Update struct {
	VisitDate       *time.Time `json:"visit_date"`
	Reason          *string    `json:"reason"`
	Symptoms        *string    `json:"symptoms"`
	Diagnosis       *string    `json:"diagnosis"`
	Prescription    *string    `json:"prescription"`
	DoctorNotes     *string    `json:"doctor_notes"`
	TreatmentPlan   *string    `json:"treatment_plan"`
	FollowUpDate    *time.Time `json:"follow_up_date"`
	AppointmentID   *uuid.UUID `json:"appointment_id"`
	ConsultationFee *float64   `json:"consultation_fee"`
	MedicationFee   *float64   `json:"medication_fee"`
	TestFee         *float64   `json:"test_fee"`
}

// Filter narrows record listings.
type Filter struct {
	PatientID    *uuid.UUID
	DoctorID     *uuid.UUID
	DepartmentID *uuid.UUID
	Status       string
	StartDate    *time.Time // inclusive, on visit_date
	EndDate      *time.Time // inclusive
	Search       string     // substring match on record_number or diagnosis
}

// FormatRecordNumber renders the canonical record number, e.g. MR2025000042.
func FormatRecordNumber(year int, seq int64) string {
	return fmt.Sprintf("MR%d%06d", year, seq)
}
