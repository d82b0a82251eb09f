package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arogya/acms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const apptCols = `id, patient_id, patient_name, date, time, type, status, reason, created_at, updated_at`

func scan(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.PatientID, &a.PatientName, &a.Date, &a.Time, &a.Type,
		&a.Status, &a.Reason, &a.CreatedAt, &a.UpdatedAt)
	return &a, err
}

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO appointments (id, patient_id, patient_name, date, time, type, status, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.PatientID, a.PatientName, a.Date, a.Time, a.Type, a.Status, a.Reason)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return scan(r.conn(ctx).QueryRow(ctx, `SELECT `+apptCols+` FROM appointments WHERE id = $1`, id))
}

func (r *repoPG) ListByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE date = $1 ORDER BY time ASC`,
		day.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+apptCols+` FROM appointments WHERE patient_id = $1 ORDER BY date DESC, time DESC`,
		patientID)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (r *repoPG) ListForWorklist(ctx context.Context, day time.Time, types []string, includeUntyped bool) ([]*Appointment, error) {
	query := `SELECT ` + apptCols + ` FROM appointments
		WHERE date = $1 AND status IN ('scheduled', 'confirmed') AND (type = ANY($2)`
	if includeUntyped {
		query += ` OR type = ''`
	}
	query += `) ORDER BY time ASC`

	rows, err := r.conn(ctx).Query(ctx, query, day.Format("2006-01-02"), types)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func collect(rows pgx.Rows) ([]*Appointment, error) {
	defer rows.Close()
	var items []*Appointment
	for rows.Next() {
		a, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func opt[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func (r *repoPG) ApplyPatch(ctx context.Context, id uuid.UUID, patch *Patch) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE appointments SET
			date = COALESCE($2, date),
			time = COALESCE($3, time),
			type = COALESCE($4, type),
			status = COALESCE($5, status),
			reason = COALESCE($6, reason),
			updated_at = NOW()
		WHERE id = $1`,
		id, opt(patch.Date), opt(patch.Time), opt(patch.Type), opt(patch.Status), opt(patch.Reason))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
