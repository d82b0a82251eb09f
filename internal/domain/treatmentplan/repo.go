package treatmentplan

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Plan, error)
	// GetLatestByPatient returns the patient's most recent plan by creation
	// time, ties broken by update time.
	GetLatestByPatient(ctx context.Context, patientID string) (*Plan, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Plan, error)
	ListAll(ctx context.Context) ([]*Plan, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch *Patch) error
	// UpsertPhaseStatus inserts or overwrites the row keyed on
	// (treatment_plan_id, phase_name).
	UpsertPhaseStatus(ctx context.Context, ps *PhaseStatus) error
	ListPhaseStatuses(ctx context.Context, planID uuid.UUID) ([]*PhaseStatus, error)
}
