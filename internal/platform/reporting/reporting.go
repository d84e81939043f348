// Package reporting evaluates a fixed set of operational SQL measures and
// renders the results as JSON or CSV.
package reporting

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/apperror"
)

// Measure is a named, predefined query. Queries take no parameters so the
// endpoint never interpolates caller input into SQL.
type Measure struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	query       string
}

// Result holds an evaluated measure as column names plus value rows.
type Result struct {
	MeasureID string          `json:"measure_id"`
	Columns   []string        `json:"columns"`
	Rows      [][]interface{} `json:"rows"`
}

var measures = []Measure{
	{
		ID:          "records-by-status",
		Name:        "Record volume by status",
		Description: "Count of medical records per lifecycle status.",
		query: `SELECT status, COUNT(*) AS total
			FROM medical_record GROUP BY status ORDER BY status`,
	},
	{
		ID:          "revenue-by-payment-method",
		Name:        "Revenue by payment method",
		Description: "Total fees collected per payment method over paid records.",
		query: `SELECT payment_method, SUM(total_fee) AS revenue, COUNT(*) AS records
			FROM medical_record WHERE is_paid GROUP BY payment_method ORDER BY revenue DESC`,
	},
	{
		ID:          "appointments-per-department",
		Name:        "Appointments per department",
		Description: "Appointment counts grouped by department and status.",
		query: `SELECT d.name AS department, a.status, COUNT(*) AS total
			FROM appointment a JOIN department d ON d.id = a.department_id
			GROUP BY d.name, a.status ORDER BY d.name, a.status`,
	},
	{
		ID:          "top-prescribed-medicines",
		Name:        "Top prescribed medicines",
		Description: "Most prescribed medicines by total quantity across all prescriptions.",
		query: `SELECT m.name, m.code, SUM(pi.quantity) AS total_quantity
			FROM prescription_item pi JOIN medicine m ON m.id = pi.medicine_id
			GROUP BY m.name, m.code ORDER BY total_quantity DESC LIMIT 20`,
	},
	{
		ID:          "patient-count",
		Name:        "Patient count",
		Description: "Active and inactive patient totals.",
		query: `SELECT active, COUNT(*) AS total
			FROM patient GROUP BY active ORDER BY active DESC`,
	},
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service { return &Service{pool: pool} }

// Measures lists the available measures.
func (s *Service) Measures() []Measure { return measures }

func findMeasure(id string) (Measure, bool) {
	for _, m := range measures {
		if m.ID == id {
			return m, true
		}
	}
	return Measure{}, false
}

// Evaluate runs the measure's query and collects the full result set.
func (s *Service) Evaluate(ctx context.Context, id string) (*Result, error) {
	m, ok := findMeasure(id)
	if !ok {
		return nil, apperror.NotFound("measure")
	}

	rows, err := s.pool.Query(ctx, m.query)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("evaluate %s: %w", m.ID, err))
	}
	defer rows.Close()

	return collect(m.ID, rows)
}

func collect(measureID string, rows pgx.Rows) (*Result, error) {
	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = f.Name
	}

	result := &Result{MeasureID: measureID, Columns: columns, Rows: [][]interface{}{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, apperror.Internal(err)
		}
		result.Rows = append(result.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return result, nil
}
