package timeline

import "context"

type Repository interface {
	Create(ctx context.Context, e *Entry) error
	ListByPatient(ctx context.Context, patientID string) ([]*Entry, error)
}
