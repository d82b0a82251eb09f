package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/patient"
	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/domain/timeline"
	"github.com/arogya/acms/internal/domain/treatmentplan"
	"github.com/arogya/acms/internal/platform/auth"
)

// patientStore is the slice of the patient service the engine drives.
type patientStore interface {
	Get(ctx context.Context, patientID string) (*patient.Patient, error)
	ApplyPatch(ctx context.Context, patientID string, patch *patient.Patch) error
	SetStatus(ctx context.Context, patientID string, to phase.PatientStatus) error
}

type timelineStore interface {
	AppendEntry(ctx context.Context, patientID, phaseLabel string, status phase.Status, notes, createdBy string) error
	LatestPerPhase(ctx context.Context, patientID string) (map[phase.Phase]*timeline.Entry, error)
}

type planMaterializer interface {
	Materialize(ctx context.Context, patientID string, d treatmentplan.Decision, actor auth.Actor) (*treatmentplan.Plan, error)
}

// Service is the workflow engine: it derives per-phase statuses, moves
// patients between departments, and runs the per-department completion
// flows.
type Service struct {
	patients patientStore
	timeline timelineStore
	plans    planMaterializer
	log      zerolog.Logger
}

func NewService(patients patientStore, tl timelineStore, plans planMaterializer, log zerolog.Logger) *Service {
	return &Service{patients: patients, timeline: tl, plans: plans, log: log}
}

// PhaseStatuses derives the five phase statuses for a patient: the record
// footprint first, then the timeline overlay.
func (s *Service) PhaseStatuses(ctx context.Context, patientID string) ([]PhaseState, error) {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	overlay, err := s.timeline.LatestPerPhase(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return derive(p, overlay), nil
}

// SelectForPhase pulls a patient into a department's working view. The
// returned patient reflects any status change; a patient outside the
// phase's entry statuses is returned unchanged.
func (s *Service) SelectForPhase(ctx context.Context, patientID string, ph phase.Phase) (*patient.Patient, error) {
	sel, ok := selections[ph]
	if !ok {
		return nil, fmt.Errorf("phase %s does not support selection", ph)
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	if !sel.from[p.Status] {
		return p, nil
	}
	if err := s.patients.SetStatus(ctx, patientID, sel.to); err != nil {
		return nil, err
	}
	p.Status = sel.to
	return p, nil
}

// AdvanceCounseling moves a patient through the counseling sub-steps as
// the counselor switches tabs. Only real moves are written.
func (s *Service) AdvanceCounseling(ctx context.Context, patientID, tab string) (*patient.Patient, error) {
	adv, ok := counselingAdvance[tab]
	if !ok {
		return nil, fmt.Errorf("unknown counseling tab: %s", tab)
	}
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("patient not found")
	}
	if !adv.from[p.Status] {
		return p, nil
	}
	if err := s.patients.SetStatus(ctx, patientID, adv.to); err != nil {
		return nil, err
	}
	p.Status = adv.to
	return p, nil
}

// CompleteNursing merges the nursing assessment, stamps the nursing date,
// marks the patient nursing_complete, and records the phase on the
// timeline.
func (s *Service) CompleteNursing(ctx context.Context, patientID string, form *patient.Patch, actor auth.Actor) error {
	notes := ""
	if form.NursingNotes != nil {
		notes = *form.NursingNotes
	}
	return s.complete(ctx, patientID, form, completion{
		stampDate: func(now time.Time) { form.NursingDate = &now },
		status:    phase.NursingComplete,
		phase:     phase.Nursing,
		notes:     notes,
	}, actor)
}

// CompleteCounseling merges the counseling outcome, stamps the counseling
// date, marks the patient counseling_complete, and records the phase on
// the timeline.
func (s *Service) CompleteCounseling(ctx context.Context, patientID string, form *patient.Patch, actor auth.Actor) error {
	notes := ""
	if form.CounselingNotes != nil {
		notes = *form.CounselingNotes
	}
	return s.complete(ctx, patientID, form, completion{
		stampDate: func(now time.Time) { form.CounselingDate = &now },
		status:    phase.CounselingComplete,
		phase:     phase.Counseling,
		notes:     notes,
	}, actor)
}

// CompleteConsultation merges the consultation findings, stamps the
// consultation date, marks the patient consultation_complete, and records
// the phase. When the doctor recorded a treatment decision, the plan is
// materialized and linked; a plan failure is logged and does not undo the
// completed consultation.
func (s *Service) CompleteConsultation(ctx context.Context, patientID string, form *patient.Patch, decision *treatmentplan.Decision, actor auth.Actor) error {
	notes := ""
	if form.Observations != nil {
		notes = *form.Observations
	}
	err := s.complete(ctx, patientID, form, completion{
		stampDate: func(now time.Time) { form.ConsultationDate = &now },
		status:    phase.ConsultationComplete,
		phase:     phase.Consultation,
		notes:     notes,
	}, actor)
	if err != nil {
		return err
	}

	if decision == nil || decision.Type == "" {
		return nil
	}
	plan, err := s.plans.Materialize(ctx, patientID, *decision, actor)
	if err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID).
			Msg("treatment plan creation failed after consultation")
		return nil
	}
	link := &patient.Patch{TreatmentPlanID: &plan.ID}
	if err := s.patients.ApplyPatch(ctx, patientID, link); err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID).
			Msg("could not link treatment plan to patient")
	}
	return nil
}

type completion struct {
	stampDate func(now time.Time)
	status    phase.PatientStatus
	phase     phase.Phase
	notes     string
}

func (s *Service) complete(ctx context.Context, patientID string, form *patient.Patch, c completion, actor auth.Actor) error {
	p, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}

	c.stampDate(time.Now())
	if err := s.patients.ApplyPatch(ctx, patientID, form); err != nil {
		return err
	}

	// Re-submitting a form for a phase the patient is already past keeps
	// the merged record but leaves the status where it is.
	if c.status.Rank() > p.Status.Rank() {
		if err := s.patients.SetStatus(ctx, patientID, c.status); err != nil {
			return err
		}
	}

	if err := s.timeline.AppendEntry(ctx, patientID, c.phase.Label(),
		phase.StatusCompleted, c.notes, actor.Attribution()); err != nil {
		s.log.Warn().Err(err).Str("patient_id", patientID).Str("phase", c.phase.Label()).
			Msg("could not record phase completion on timeline")
	}
	return nil
}
