package medicine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hms/hms/internal/platform/db"
)

// ErrInsufficientStock is returned when an adjustment would drive the
// stock quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

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

const medicineCols = `id, name, code, description, unit, unit_price, stock_qty,
	manufacturer, expiry_date, active, created_at, updated_at`

func scanMedicine(row pgx.Row) (*Medicine, error) {
	var m Medicine
	err := row.Scan(&m.ID, &m.Name, &m.Code, &m.Description, &m.Unit, &m.UnitPrice, &m.StockQty,
		&m.Manufacturer, &m.ExpiryDate, &m.Active, &m.CreatedAt, &m.UpdatedAt)
	return &m, err
}

func (r *repoPG) Create(ctx context.Context, m *Medicine) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO medicine (id, name, code, description, unit, unit_price, stock_qty,
			manufacturer, expiry_date, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		m.ID, m.Name, m.Code, m.Description, m.Unit, m.UnitPrice, m.StockQty,
		m.Manufacturer, m.ExpiryDate, m.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Medicine, error) {
	return scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medicineCols+` FROM medicine WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Medicine, error) {
	return scanMedicine(r.conn(ctx).QueryRow(ctx, `SELECT `+medicineCols+` FROM medicine WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, m *Medicine) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE medicine SET name=$2, code=$3, description=$4, unit=$5, unit_price=$6,
			manufacturer=$7, expiry_date=$8, active=$9, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.Name, m.Code, m.Description, m.Unit, m.UnitPrice,
		m.Manufacturer, m.ExpiryDate, m.Active)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM medicine WHERE id = $1`, id)
	return err
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Medicine, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if f.Search != "" {
		idx := len(args) + 1
		where += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", idx, idx)
		args = append(args, "%"+f.Search+"%")
	}
	if f.Active != nil {
		where += fmt.Sprintf(" AND active = $%d", len(args)+1)
		args = append(args, *f.Active)
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medicine`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	dataArgs := append(args, limit, offset)
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s FROM medicine%s ORDER BY name LIMIT $%d OFFSET $%d`,
			medicineCols, where, len(args)+1, len(args)+2),
		dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Medicine
	for rows.Next() {
		m, err := scanMedicine(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

// AdjustStock applies delta in a single guarded statement so concurrent
// adjustments cannot take the quantity negative.
func (r *repoPG) AdjustStock(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var qty int
	err := r.conn(ctx).QueryRow(ctx, `
		UPDATE medicine SET stock_qty = stock_qty + $2, updated_at = NOW()
		WHERE id = $1 AND stock_qty + $2 >= 0
		RETURNING stock_qty`, id, delta).Scan(&qty)
	if errors.Is(err, pgx.ErrNoRows) {
		// Row missing or guard failed; disambiguate.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return 0, getErr
		}
		return 0, ErrInsufficientStock
	}
	return qty, err
}
