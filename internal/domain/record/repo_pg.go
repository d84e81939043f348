package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const recordCols = `id, record_number, patient_id, doctor_id, department_id, appointment_id,
	visit_date, reason, symptoms, diagnosis, prescription, doctor_notes, treatment_plan,
	follow_up_date, status, consultation_fee, medication_fee, test_fee, total_fee,
	is_paid, payment_method, paid_at, created_by, last_updated_by, created_at, updated_at`

func scanRecord(row pgx.Row) (*MedicalRecord, error) {
	var m MedicalRecord
	err := row.Scan(&m.ID, &m.RecordNumber, &m.PatientID, &m.DoctorID, &m.DepartmentID, &m.AppointmentID,
		&m.VisitDate, &m.Reason, &m.Symptoms, &m.Diagnosis, &m.Prescription, &m.DoctorNotes, &m.TreatmentPlan,
		&m.FollowUpDate, &m.Status, &m.Cost.ConsultationFee, &m.Cost.MedicationFee, &m.Cost.TestFee, &m.Cost.TotalFee,
		&m.IsPaid, &m.PaymentMethod, &m.PaidAt, &m.CreatedBy, &m.LastUpdatedBy, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *MedicalRecord) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medical_record (id, record_number, patient_id, doctor_id, department_id, appointment_id,
			visit_date, reason, symptoms, diagnosis, prescription, doctor_notes, treatment_plan,
			follow_up_date, status, consultation_fee, medication_fee, test_fee, total_fee,
			is_paid, payment_method, paid_at, created_by, last_updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)`,
		m.ID, m.RecordNumber, m.PatientID, m.DoctorID, m.DepartmentID, m.AppointmentID,
		m.VisitDate, m.Reason, m.Symptoms, m.Diagnosis, m.Prescription, m.DoctorNotes, m.TreatmentPlan,
		m.FollowUpDate, m.Status, m.Cost.ConsultationFee, m.Cost.MedicationFee, m.Cost.TestFee, m.Cost.TotalFee,
		m.IsPaid, m.PaymentMethod, m.PaidAt, m.CreatedBy, m.LastUpdatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*MedicalRecord, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx, `SELECT `+recordCols+` FROM medical_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, m *MedicalRecord) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medical_record SET appointment_id=$2, visit_date=$3, reason=$4, symptoms=$5,
			diagnosis=$6, prescription=$7, doctor_notes=$8, treatment_plan=$9, follow_up_date=$10,
			status=$11, consultation_fee=$12, medication_fee=$13, test_fee=$14, total_fee=$15,
			is_paid=$16, payment_method=$17, paid_at=$18, last_updated_by=$19, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.AppointmentID, m.VisitDate, m.Reason, m.Symptoms,
		m.Diagnosis, m.Prescription, m.DoctorNotes, m.TreatmentPlan, m.FollowUpDate,
		m.Status, m.Cost.ConsultationFee, m.Cost.MedicationFee, m.Cost.TestFee, m.Cost.TotalFee,
		m.IsPaid, m.PaymentMethod, m.PaidAt, m.LastUpdatedBy)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_record WHERE id = $1`, id)
	return err
}

// buildFilter renders the WHERE clause for f, starting parameters at $1.
func buildFilter(f Filter) (string, []interface{}) {
	where := " WHERE 1=1"
	var args []interface{}
	next := func() int { return len(args) + 1 }

	if f.PatientID != nil {
		where += fmt.Sprintf(" AND patient_id = $%d", next())
		args = append(args, *f.PatientID)
	}
	if f.DoctorID != nil {
		where += fmt.Sprintf(" AND doctor_id = $%d", next())
		args = append(args, *f.DoctorID)
	}
	if f.DepartmentID != nil {
		where += fmt.Sprintf(" AND department_id = $%d", next())
		args = append(args, *f.DepartmentID)
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", next())
		args = append(args, f.Status)
	}
	if f.StartDate != nil {
		where += fmt.Sprintf(" AND visit_date >= $%d", next())
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		where += fmt.Sprintf(" AND visit_date <= $%d", next())
		args = append(args, *f.EndDate)
	}
	if f.Search != "" {
		idx := next()
		where += fmt.Sprintf(" AND (record_number ILIKE $%d OR diagnosis ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
	}
	return where, args
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*MedicalRecord, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_record`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM medical_record%s ORDER BY visit_date DESC LIMIT $%d OFFSET $%d`,
			recordCols, where, len(args)+1, len(args)+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*MedicalRecord, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+recordCols+` FROM medical_record WHERE patient_id = $1 ORDER BY visit_date DESC`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicalRecord
	for rows.Next() {
		m, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// NextSequence allocates record numbers from a per-year counter row. The
// upsert is atomic, so concurrent creates each get a distinct sequence.
func (r *repoPG) NextSequence(ctx context.Context, year int) (int64, error) {
	var seq int64
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO record_counter (year, seq) VALUES ($1, 1)
		ON CONFLICT (year) DO UPDATE SET seq = record_counter.seq + 1
		RETURNING seq`, year).Scan(&seq)
	return seq, err
}

func (r *repoPG) AddTestResult(ctx context.Context, tr *TestResult) error {
	tr.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO record_test_result (id, record_id, sequence, test_name, result, test_date, notes)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(sequence), 0) + 1 FROM record_test_result WHERE record_id = $2),
			$3, $4, $5, $6)
		RETURNING sequence`,
		tr.ID, tr.RecordID, tr.TestName, tr.Result, tr.TestDate, tr.Notes).Scan(&tr.Sequence)
}

func (r *repoPG) GetTestResults(ctx context.Context, recordID uuid.UUID) ([]*TestResult, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, record_id, sequence, test_name, result, test_date, notes
		FROM record_test_result WHERE record_id = $1 ORDER BY sequence`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*TestResult
	for rows.Next() {
		var tr TestResult
		if err := rows.Scan(&tr.ID, &tr.RecordID, &tr.Sequence, &tr.TestName, &tr.Result, &tr.TestDate, &tr.Notes); err != nil {
			return nil, err
		}
		items = append(items, &tr)
	}
	return items, rows.Err()
}

func (r *repoPG) AddAttachment(ctx context.Context, a *Attachment) error {
	a.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO record_attachment (id, record_id, sequence, file_name, file_url, uploaded_by)
		VALUES ($1, $2,
			(SELECT COALESCE(MAX(sequence), 0) + 1 FROM record_attachment WHERE record_id = $2),
			$3, $4, $5)
		RETURNING sequence, uploaded_at`,
		a.ID, a.RecordID, a.FileName, a.FileURL, a.UploadedBy).Scan(&a.Sequence, &a.UploadedAt)
}

func (r *repoPG) GetAttachments(ctx context.Context, recordID uuid.UUID) ([]*Attachment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, record_id, sequence, file_name, file_url, uploaded_by, uploaded_at
		FROM record_attachment WHERE record_id = $1 ORDER BY sequence`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Attachment
	for rows.Next() {
		var a Attachment
		if err := rows.Scan(&a.ID, &a.RecordID, &a.Sequence, &a.FileName, &a.FileURL, &a.UploadedBy, &a.UploadedAt); err != nil {
			return nil, err
		}
		items = append(items, &a)
	}
	return items, rows.Err()
}

// refCheckerPG verifies referenced rows with EXISTS probes.
type refCheckerPG struct{ pool *pgxpool.Pool }

func NewRefCheckerPG(pool *pgxpool.Pool) ReferenceChecker { return &refCheckerPG{pool: pool} }

func (r *refCheckerPG) exists(ctx context.Context, query string, id uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, query, id).Scan(&ok)
	return ok, err
}

func (r *refCheckerPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id)
}

func (r *refCheckerPG) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM app_user WHERE id = $1 AND role = 'doctor' AND active)`, id)
}

func (r *refCheckerPG) DepartmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM department WHERE id = $1)`, id)
}

func (r *refCheckerPG) AppointmentExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM appointment WHERE id = $1)`, id)
}
