// Package phase defines the canonical clinical vocabulary shared by the
// workflow engine, the timeline, and the patient record: the five tracked
// phases, per-phase execution statuses, and the macro patient status with
// its total order.
package phase

import "strings"

// Phase identifies one of the five tracked clinical phases.
type Phase string

const (
	Registration  Phase = "registration"
	Nursing       Phase = "nursing"
	Counseling    Phase = "counseling"
	Consultation  Phase = "consultation"
	TreatmentPlan Phase = "treatment-plan"
)

// All lists the phases in clinical order.
var All = []Phase{Registration, Nursing, Counseling, Consultation, TreatmentPlan}

var labels = map[Phase]string{
	Registration:  "Registration",
	Nursing:       "Nursing",
	Counseling:    "Counseling",
	Consultation:  "Consultation",
	TreatmentPlan: "Treatment Plan",
}

// Label returns the display label for the phase.
func (p Phase) Label() string { return labels[p] }

// Valid reports whether p is one of the five tracked phases.
func (p Phase) Valid() bool {
	_, ok := labels[p]
	return ok
}

// Parse maps a phase identifier or display label ("nursing", "Nursing",
// "Treatment Plan") to its canonical Phase. Matching is case-insensitive
// and treats runs of whitespace as a single hyphen. Unrecognized values
// report ok=false; timeline entries may legitimately carry labels outside
// this vocabulary (treatment plan phase names) and callers skip those.
func Parse(s string) (Phase, bool) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), "-"))
	p := Phase(norm)
	if p.Valid() {
		return p, true
	}
	return "", false
}

// Status is the execution status of a single phase.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// ValidStatus reports whether s is a known phase status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// PatientStatus is the macro status a patient carries through the pipeline.
type PatientStatus string

const (
	Registered                  PatientStatus = "registered"
	AppointmentScheduled        PatientStatus = "appointment_scheduled"
	NursingInProgress           PatientStatus = "nursing_in_progress"
	NursingComplete             PatientStatus = "nursing_complete"
	CounselingInProgress        PatientStatus = "counseling_in_progress"
	CounselingPaymentDiscussion PatientStatus = "counseling_payment_discussion"
	CounselingFinalizing        PatientStatus = "counseling_finalizing"
	CounselingComplete          PatientStatus = "counseling_complete"
	ConsultationInProgress      PatientStatus = "consultation_in_progress"
	ConsultationComplete        PatientStatus = "consultation_complete"
)

var statusRank = map[PatientStatus]int{
	Registered:                  0,
	AppointmentScheduled:        1,
	NursingInProgress:           2,
	NursingComplete:             3,
	CounselingInProgress:        4,
	CounselingPaymentDiscussion: 5,
	CounselingFinalizing:        6,
	CounselingComplete:          7,
	ConsultationInProgress:      8,
	ConsultationComplete:        9,
}

// ValidPatientStatus reports whether s is a known macro status.
func ValidPatientStatus(s PatientStatus) bool {
	_, ok := statusRank[s]
	return ok
}

// Rank returns the position of s in the pipeline order. Unknown statuses
// rank as -1.
func (s PatientStatus) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

// Before reports whether s precedes other in the pipeline. A transition
// from s to other is a forward move iff s.Before(other).
func (s PatientStatus) Before(other PatientStatus) bool {
	return s.Rank() < other.Rank()
}
