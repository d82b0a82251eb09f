package workflow

import (
	"github.com/arogya/acms/internal/domain/patient"
	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/domain/timeline"
)

// PhaseState is the derived execution status of one clinical phase.
type PhaseState struct {
	Phase  phase.Phase  `json:"phase"`
	Label  string       `json:"label"`
	Status phase.Status `json:"status"`
}

// derive computes the status of each of the five phases from the patient
// record, then overlays the timeline: the latest entry for a phase is
// authoritative over the record-derived status.
func derive(p *patient.Patient, overlay map[phase.Phase]*timeline.Entry) []PhaseState {
	states := make([]PhaseState, 0, len(phase.All))
	for _, ph := range phase.All {
		status := phase.StatusPending
		if recordComplete(p, ph) {
			status = phase.StatusCompleted
		}
		if e, ok := overlay[ph]; ok {
			status = e.Status
		}
		states = append(states, PhaseState{Phase: ph, Label: ph.Label(), Status: status})
	}
	return states
}

// recordComplete reports whether the patient record alone marks the phase
// done. Each phase has a characteristic footprint: a stamped date, or data
// only that department writes.
func recordComplete(p *patient.Patient, ph phase.Phase) bool {
	switch ph {
	case phase.Registration:
		return p.RegistrationDate != nil
	case phase.Nursing:
		return p.NursingDate != nil || len(p.PastConditions) > 0
	case phase.Counseling:
		return p.CounselingDate != nil || (p.PaymentPlanType != nil && *p.PaymentPlanType != "")
	case phase.Consultation:
		return p.ConsultationDate != nil || (p.Diagnosis != nil && *p.Diagnosis != "")
	case phase.TreatmentPlan:
		return p.TreatmentPlanID != nil
	}
	return false
}
