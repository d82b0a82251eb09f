package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/arogya/acms/internal/domain/phase"
)

// ErrDuplicateID reports a registration number collision on Create.
var ErrDuplicateID = errors.New("patient id already exists")

// Repository persists patient records. Get and patch operations key on the
// public registration number, not the row id.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPatientID(ctx context.Context, patientID string) (*Patient, error)
	CountByIDPrefix(ctx context.Context, prefix string) (int, error)
	Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error)
	ApplyPatch(ctx context.Context, patientID string, patch *Patch) error
	UpdateStatus(ctx context.Context, patientID string, status phase.PatientStatus) error
}
