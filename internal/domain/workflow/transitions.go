package workflow

import "github.com/arogya/acms/internal/domain/phase"

// selection describes how pulling a patient into a department's working
// view moves their macro status. A patient whose current status is not in
// the from set is left untouched, so re-selecting someone already being
// seen (or already past the department) never moves them backwards.
type selection struct {
	from map[phase.PatientStatus]bool
	to   phase.PatientStatus
}

var selections = map[phase.Phase]selection{
	phase.Nursing: {
		from: map[phase.PatientStatus]bool{
			phase.Registered:           true,
			phase.AppointmentScheduled: true,
		},
		to: phase.NursingInProgress,
	},
	phase.Counseling: {
		from: map[phase.PatientStatus]bool{
			phase.NursingComplete:      true,
			phase.AppointmentScheduled: true,
		},
		to: phase.CounselingInProgress,
	},
	phase.Consultation: {
		from: map[phase.PatientStatus]bool{
			phase.CounselingComplete:   true,
			phase.AppointmentScheduled: true,
		},
		to: phase.ConsultationInProgress,
	},
}

// Counseling tab identifiers, matching the sub-steps of the counseling
// workspace.
const (
	TabPaymentPlan = "payment-plan"
	TabNotes       = "notes"
)

// counselingAdvance maps a counseling sub-tab to the statuses it may
// advance from and the status it lands on.
var counselingAdvance = map[string]selection{
	TabPaymentPlan: {
		from: map[phase.PatientStatus]bool{
			phase.CounselingInProgress: true,
		},
		to: phase.CounselingPaymentDiscussion,
	},
	TabNotes: {
		from: map[phase.PatientStatus]bool{
			phase.CounselingInProgress:        true,
			phase.CounselingPaymentDiscussion: true,
		},
		to: phase.CounselingFinalizing,
	},
}
