package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListByDate(ctx context.Context, day time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListForWorklist(ctx context.Context, day time.Time, types []string, includeUntyped bool) ([]*Appointment, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch *Patch) error
}
