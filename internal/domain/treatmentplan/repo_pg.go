package treatmentplan

import (
	"context"

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

const planCols = `id, patient_id, template_id, plan_name, start_date, phases, notes, status,
	created_by, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	err := row.Scan(&p.ID, &p.PatientID, &p.TemplateID, &p.PlanName, &p.StartDate,
		&p.Phases, &p.Notes, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_plans (id, patient_id, template_id, plan_name, start_date,
			phases, notes, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.PatientID, p.TemplateID, p.PlanName, p.StartDate,
		p.Phases, p.Notes, p.Status, p.CreatedBy)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx,
		`SELECT `+planCols+` FROM treatment_plans WHERE id = $1`, id))
}

func (r *repoPG) GetLatestByPatient(ctx context.Context, patientID string) (*Plan, error) {
	return scanPlan(r.conn(ctx).QueryRow(ctx, `
		SELECT `+planCols+` FROM treatment_plans
		WHERE patient_id = $1
		ORDER BY created_at DESC, updated_at DESC
		LIMIT 1`, patientID))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID string) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+planCols+` FROM treatment_plans
		WHERE patient_id = $1
		ORDER BY created_at DESC`, patientID)
	if err != nil {
		return nil, err
	}
	return collectPlans(rows)
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Plan, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM treatment_plans ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectPlans(rows)
}

func collectPlans(rows pgx.Rows) ([]*Plan, error) {
	defer rows.Close()
	var items []*Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
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
		UPDATE treatment_plans SET
			template_id = COALESCE($2, template_id),
			plan_name = COALESCE($3, plan_name),
			start_date = COALESCE($4, start_date),
			phases = COALESCE($5, phases),
			notes = COALESCE($6, notes),
			status = COALESCE($7, status),
			created_by = COALESCE($8, created_by),
			updated_at = NOW()
		WHERE id = $1`,
		id, opt(patch.TemplateID), opt(patch.PlanName), opt(patch.StartDate),
		opt(patch.Phases), opt(patch.Notes), opt(patch.Status), opt(patch.CreatedBy))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) UpsertPhaseStatus(ctx context.Context, ps *PhaseStatus) error {
	ps.ID = uuid.New()
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO treatment_phase_status
			(id, treatment_plan_id, phase_name, status, started_date, completed_date, notes, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (treatment_plan_id, phase_name) DO UPDATE SET
			status = EXCLUDED.status,
			started_date = EXCLUDED.started_date,
			completed_date = EXCLUDED.completed_date,
			notes = EXCLUDED.notes,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING id, updated_at`,
		ps.ID, ps.TreatmentPlanID, ps.PhaseName, ps.Status, ps.StartedDate,
		ps.CompletedDate, ps.Notes, ps.UpdatedBy).Scan(&ps.ID, &ps.UpdatedAt)
}

func (r *repoPG) ListPhaseStatuses(ctx context.Context, planID uuid.UUID) ([]*PhaseStatus, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, treatment_plan_id, phase_name, status, started_date, completed_date,
			notes, updated_by, updated_at
		FROM treatment_phase_status
		WHERE treatment_plan_id = $1
		ORDER BY updated_at ASC`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*PhaseStatus
	for rows.Next() {
		var ps PhaseStatus
		if err := rows.Scan(&ps.ID, &ps.TreatmentPlanID, &ps.PhaseName, &ps.Status,
			&ps.StartedDate, &ps.CompletedDate, &ps.Notes, &ps.UpdatedBy, &ps.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, &ps)
	}
	return items, rows.Err()
}
