package timeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/arogya/acms/internal/domain/phase"
)

// Entry is one row of a patient's journey log. Entries are append-only:
// a phase that is revisited gets a new entry rather than an update, and
// readers take the latest entry per phase as authoritative.
type Entry struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	PatientID     string       `db:"patient_id" json:"patientId"`
	Phase         string       `db:"phase" json:"phase"`
	Status        phase.Status `db:"status" json:"status"`
	CompletedDate *time.Time   `db:"completed_date" json:"completedDate,omitempty"`
	Notes         string       `db:"notes" json:"notes,omitempty"`
	CreatedBy     string       `db:"created_by" json:"createdBy"`
	CreatedAt     time.Time    `db:"created_at" json:"createdAt"`
}
