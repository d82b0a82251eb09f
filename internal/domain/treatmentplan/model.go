package treatmentplan

import (
	"time"

	"github.com/google/uuid"
)

type PlanStatus string

const (
	StatusDraft      PlanStatus = "draft"
	StatusActive     PlanStatus = "active"
	StatusInProgress PlanStatus = "in_progress"
	StatusApproved   PlanStatus = "approved"
	StatusCompleted  PlanStatus = "completed"
	StatusCancelled  PlanStatus = "cancelled"
)

var validPlanStatuses = map[PlanStatus]bool{
	StatusDraft:      true,
	StatusActive:     true,
	StatusInProgress: true,
	StatusApproved:   true,
	StatusCompleted:  true,
	StatusCancelled:  true,
}

// PlanPhase is one protocol step of a treatment plan, stored as part of the
// plan's phases JSONB array in the order it should render.
type PlanPhase struct {
	Phase     string `json:"phase"`
	Steps     string `json:"steps"`
	Duration  string `json:"duration"`
	StartTime string `json:"startTime"`
}

// Plan is a patient's treatment protocol, materialized from a template or
// from the doctor's free-text decision.
type Plan struct {
	ID         uuid.UUID   `db:"id" json:"id"`
	PatientID  string      `db:"patient_id" json:"patientId"`
	TemplateID string      `db:"template_id" json:"templateId,omitempty"`
	PlanName   string      `db:"plan_name" json:"planName"`
	StartDate  *time.Time  `db:"start_date" json:"startDate,omitempty"`
	Phases     []PlanPhase `db:"phases" json:"phases"`
	Notes      string      `db:"notes" json:"notes,omitempty"`
	Status     PlanStatus  `db:"status" json:"status"`
	CreatedBy  string      `db:"created_by" json:"createdBy"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// Patch carries the updatable plan fields. Nil means keep.
type Patch struct {
	TemplateID *string      `json:"templateId,omitempty"`
	PlanName   *string      `json:"planName,omitempty"`
	StartDate  *time.Time   `json:"startDate,omitempty"`
	Phases     *[]PlanPhase `json:"phases,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
	Status     *PlanStatus  `json:"status,omitempty"`
	CreatedBy  *string      `json:"createdBy,omitempty"`
}

func (p *Patch) empty() bool {
	return p.TemplateID == nil && p.PlanName == nil && p.StartDate == nil &&
		p.Phases == nil && p.Notes == nil && p.Status == nil && p.CreatedBy == nil
}

// PhaseStatus tracks execution of a single plan phase. One row per
// (plan, phase name); repeated updates overwrite in place.
type PhaseStatus struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	TreatmentPlanID uuid.UUID  `db:"treatment_plan_id" json:"treatmentPlanId"`
	PhaseName       string     `db:"phase_name" json:"phaseName"`
	Status          string     `db:"status" json:"status"`
	StartedDate     *time.Time `db:"started_date" json:"startedDate,omitempty"`
	CompletedDate   *time.Time `db:"completed_date" json:"completedDate,omitempty"`
	Notes           string     `db:"notes" json:"notes,omitempty"`
	UpdatedBy       string     `db:"updated_by" json:"updatedBy"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updatedAt"`
}

// Decision is the treatment choice recorded during a consultation, from
// which a plan is materialized. PhasesText is the doctor's free-text
// protocol; when present it overrides any template.
type Decision struct {
	Type        string `json:"type"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	PhasesText  string `json:"phasesText,omitempty"`
}
