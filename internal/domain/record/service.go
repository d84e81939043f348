package record

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hms/hms/internal/platform/apperror"
	"github.com/hms/hms/internal/platform/db"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

var validStatuses = map[string]bool{
	StatusInProgress: true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

var validPaymentMethods = map[string]bool{
	"cash":          true,
	"card":          true,
	"momo":          true,
	"bank_transfer": true,
	"insurance":     true,
}

// Service implements medical record business rules on top of the repository.
type Service struct {
	repo Repository
	refs ReferenceChecker
	tx   db.TxRunner
}

func NewService(repo Repository, refs ReferenceChecker, tx db.TxRunner) *Service {
	return &Service{repo: repo, refs: refs, tx: tx}
}

func (s *Service) checkRefs(ctx context.Context, m *MedicalRecord) error {
	ok, err := s.refs.PatientExists(ctx, m.PatientID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.Validation("patient %s does not exist", m.PatientID)
	}
	ok, err = s.refs.DoctorExists(ctx, m.DoctorID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.Validation("doctor %s does not exist", m.DoctorID)
	}
	ok, err = s.refs.DepartmentExists(ctx, m.DepartmentID)
	if err != nil {
		return apperror.Internal(err)
	}
	if !ok {
		return apperror.Validation("department %s does not exist", m.DepartmentID)
	}
	if m.AppointmentID != nil {
		ok, err = s.refs.AppointmentExists(ctx, *m.AppointmentID)
		if err != nil {
			return apperror.Internal(err)
		}
		if !ok {
			return apperror.Validation("appointment %s does not exist", *m.AppointmentID)
		}
	}
	return nil
}

// Create validates the record, assigns its number from the per-year counter
// and persists it together with any inline test results.
func (s *Service) Create(ctx context.Context, m *MedicalRecord, actor uuid.UUID) (*MedicalRecord, error) {
	if m.PatientID == uuid.Nil {
		return nil, apperror.Validation("patient_id is required")
	}
	if m.DoctorID == uuid.Nil {
		return nil, apperror.Validation("doctor_id is required")
	}
	if m.DepartmentID == uuid.Nil {
		return nil, apperror.Validation("department_id is required")
	}
	if m.Reason == "" {
		return nil, apperror.Validation("reason is required")
	}
	if m.Status == "" {
		m.Status = StatusInProgress
	}
	if !validStatuses[m.Status] {
		return nil, apperror.Validation("invalid status: %s", m.Status)
	}
	for _, tr := range m.TestResults {
		if tr.TestName == "" {
			return nil, apperror.Validation("test result name is required")
		}
	}
	if err := s.checkRefs(ctx, m); err != nil {
		return nil, err
	}

	if m.VisitDate.IsZero() {
		m.VisitDate = time.Now().UTC()
	}
	m.Cost.Recalculate()
	m.IsPaid = false
	m.PaymentMethod = nil
	m.PaidAt = nil
	m.CreatedBy = actor

	// Sequence, record and inline results commit or roll back together so a
	// failed child insert cannot leave a record behind with its number consumed.
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		year := time.Now().UTC().Year()
		seq, err := s.repo.NextSequence(ctx, year)
		if err != nil {
			return apperror.Wrap(err, "medical record")
		}
		m.RecordNumber = FormatRecordNumber(year, seq)

		if err := s.repo.Create(ctx, m); err != nil {
			return apperror.Wrap(err, "medical record")
		}
		for _, tr := range m.TestResults {
			tr.RecordID = m.ID
			if err := s.repo.AddTestResult(ctx, tr); err != nil {
				return apperror.Wrap(err, "test result")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, m.ID)
}

// Get fetches a record with its test results and attachments.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	if m.TestResults, err = s.repo.GetTestResults(ctx, id); err != nil {
		return nil, apperror.Wrap(err, "test result")
	}
	if m.Attachments, err = s.repo.GetAttachments(ctx, id); err != nil {
		return nil, apperror.Wrap(err, "attachment")
	}
	return m, nil
}

func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]*MedicalRecord, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, apperror.Validation("invalid status: %s", f.Status)
	}
	items, total, err := s.repo.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, apperror.Wrap(err, "medical record")
	}
	return items, total, nil
}

// PatientHistory returns every record for one patient, newest visit first.
func (s *Service) PatientHistory(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	ok, err := s.refs.PatientExists(ctx, patientID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if !ok {
		return nil, apperror.NotFound("patient")
	}
	items, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	return items, nil
}

// Update applies the non-nil fields of upd. Record number, payment state and
// creator are never touched here, and the total fee is recomputed whenever a
// fee component changes.
func (s *Service) Update(ctx context.Context, id uuid.UUID, upd Update, actor uuid.UUID) (*MedicalRecord, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	if m.Status == StatusCancelled {
		return nil, apperror.Conflict("cannot update a cancelled record")
	}

	if upd.VisitDate != nil {
		m.VisitDate = *upd.VisitDate
	}
	if upd.Reason != nil {
		if *upd.Reason == "" {
			return nil, apperror.Validation("reason cannot be empty")
		}
		m.Reason = *upd.Reason
	}
	if upd.Symptoms != nil {
		m.Symptoms = upd.Symptoms
	}
	if upd.Diagnosis != nil {
		m.Diagnosis = upd.Diagnosis
	}
	if upd.Prescription != nil {
		m.Prescription = upd.Prescription
	}
	if upd.DoctorNotes != nil {
		m.DoctorNotes = upd.DoctorNotes
	}
	if upd.TreatmentPlan != nil {
		m.TreatmentPlan = upd.TreatmentPlan
	}
	if upd.FollowUpDate != nil {
		m.FollowUpDate = upd.FollowUpDate
	}
	if upd.AppointmentID != nil {
		ok, err := s.refs.AppointmentExists(ctx, *upd.AppointmentID)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		if !ok {
			return nil, apperror.Validation("appointment %s does not exist", *upd.AppointmentID)
		}
		m.AppointmentID = upd.AppointmentID
	}
	if upd.ConsultationFee != nil {
		if *upd.ConsultationFee < 0 {
			return nil, apperror.Validation("consultation_fee cannot be negative")
		}
		m.Cost.ConsultationFee = *upd.ConsultationFee
	}
	if upd.MedicationFee != nil {
		if *upd.MedicationFee < 0 {
			return nil, apperror.Validation("medication_fee cannot be negative")
		}
		m.Cost.MedicationFee = *upd.MedicationFee
	}
	if upd.TestFee != nil {
		if *upd.TestFee < 0 {
			return nil, apperror.Validation("test_fee cannot be negative")
		}
		m.Cost.TestFee = *upd.TestFee
	}
	m.Cost.Recalculate()
	m.LastUpdatedBy = &actor

	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	return s.Get(ctx, id)
}

// UpdateStatus moves the record to a new lifecycle status.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actor uuid.UUID) (*MedicalRecord, error) {
	if !validStatuses[status] {
		return nil, apperror.Validation("invalid status: %s", status)
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	m.Status = status
	m.LastUpdatedBy = &actor
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	return s.Get(ctx, id)
}

// MarkPaid records payment of the visit. Paying twice is a conflict.
func (s *Service) MarkPaid(ctx context.Context, id uuid.UUID, method string, actor uuid.UUID) (*MedicalRecord, error) {
	if !validPaymentMethods[method] {
		return nil, apperror.Validation("invalid payment method: %s", method)
	}
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	if m.IsPaid {
		return nil, apperror.Conflict("record is already paid")
	}
	now := time.Now().UTC()
	m.IsPaid = true
	m.PaymentMethod = &method
	m.PaidAt = &now
	m.LastUpdatedBy = &actor
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return apperror.Wrap(err, "medical record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperror.Wrap(err, "medical record")
	}
	return nil
}

// AddTestResult appends a test result to an existing record.
func (s *Service) AddTestResult(ctx context.Context, recordID uuid.UUID, tr *TestResult) (*TestResult, error) {
	if tr.TestName == "" {
		return nil, apperror.Validation("test_name is required")
	}
	if _, err := s.repo.GetByID(ctx, recordID); err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	tr.RecordID = recordID
	if err := s.repo.AddTestResult(ctx, tr); err != nil {
		return nil, apperror.Wrap(err, "test result")
	}
	return tr, nil
}

// AddAttachment appends a file reference to an existing record.
func (s *Service) AddAttachment(ctx context.Context, recordID uuid.UUID, a *Attachment, actor uuid.UUID) (*Attachment, error) {
	if a.FileName == "" {
		return nil, apperror.Validation("file_name is required")
	}
	if a.FileURL == "" {
		return nil, apperror.Validation("file_url is required")
	}
	if _, err := s.repo.GetByID(ctx, recordID); err != nil {
		return nil, apperror.Wrap(err, "medical record")
	}
	a.RecordID = recordID
	a.UploadedBy = actor
	if err := s.repo.AddAttachment(ctx, a); err != nil {
		return nil, apperror.Wrap(err, "attachment")
	}
	return a, nil
}
