package treatmentplan

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/platform/auth"
)

// timelineAppender records phase progress on the patient timeline.
type timelineAppender interface {
	AppendEntry(ctx context.Context, patientID, phaseLabel string, status phase.Status, notes, createdBy string) error
}

type Service struct {
	repo     Repository
	timeline timelineAppender
	log      zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetTimeline wires the timeline recorder. Wired in main after all services
// are constructed.
func (s *Service) SetTimeline(t timelineAppender) { s.timeline = t }

func (s *Service) Create(ctx context.Context, p *Plan) error {
	if p.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !validPlanStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if p.Phases == nil {
		p.Phases = []PlanPhase{}
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Plan, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Update merges the supplied fields into the plan. A patch carrying no
// recognized field is rejected.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch *Patch) error {
	if patch.empty() {
		return fmt.Errorf("no valid fields to update")
	}
	if patch.Status != nil && !validPlanStatuses[*patch.Status] {
		return fmt.Errorf("invalid status: %s", *patch.Status)
	}
	return s.repo.ApplyPatch(ctx, id, patch)
}

// Materialize turns a consultation's treatment decision into an active
// plan. Free-text phases override any template with a single synthetic
// phase; ivf/iui decisions without free text take the matching template;
// anything else materializes as a custom plan with no phases.
func (s *Service) Materialize(ctx context.Context, patientID string, d Decision, actor auth.Actor) (*Plan, error) {
	if d.Type == "" {
		return nil, fmt.Errorf("treatment type is required")
	}

	templateID := templateIDForType(d.Type)
	var phases []PlanPhase
	switch {
	case d.PhasesText != "":
		steps := d.Description
		if steps == "" {
			steps = d.PhasesText
		}
		duration := "TBD"
		if d.Duration != "" {
			duration = d.Duration + " days"
		}
		start := d.StartDate
		if start == "" {
			start = "To be determined"
		}
		phases = []PlanPhase{{Phase: "Treatment Plan", Steps: steps, Duration: duration, StartTime: start}}
	case templateID != "":
		tpl, _ := TemplateByID(templateID)
		phases = tpl.Phases
	}
	if templateID == "" {
		templateID = "custom"
	}

	planName := d.Name
	if planName == "" {
		planName = fmt.Sprintf("%s Treatment Plan", strings.ToUpper(d.Type))
	}

	startDate := time.Now()
	if d.StartDate != "" {
		if parsed, err := time.ParseInLocation("2006-01-02", d.StartDate, time.Local); err == nil {
			startDate = parsed
		}
	}

	createdBy := actor.ID
	if createdBy == "" {
		createdBy = actor.Name
	}
	if createdBy == "" {
		createdBy = "doctor"
	}

	plan := &Plan{
		PatientID:  patientID,
		TemplateID: templateID,
		PlanName:   planName,
		StartDate:  &startDate,
		Phases:     phases,
		Notes:      d.Description,
		Status:     StatusActive,
		CreatedBy:  createdBy,
	}
	if err := s.repo.Create(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdatePhaseStatus records progress on one phase of the patient's current
// plan. The write keys on (plan, phase name) so repeats overwrite in place,
// and every write appends a timeline entry.
func (s *Service) UpdatePhaseStatus(ctx context.Context, patientID string, ps *PhaseStatus, actor auth.Actor) error {
	if ps.PhaseName == "" {
		return fmt.Errorf("phase name is required")
	}
	if !phase.ValidStatus(phase.Status(ps.Status)) {
		return fmt.Errorf("invalid status: %s", ps.Status)
	}

	plan, err := s.repo.GetLatestByPatient(ctx, patientID)
	if err != nil {
		return fmt.Errorf("treatment plan not found")
	}
	ps.TreatmentPlanID = plan.ID
	if ps.UpdatedBy == "" {
		ps.UpdatedBy = actor.Attribution()
	}
	if ps.Status == string(phase.StatusCompleted) && ps.CompletedDate == nil {
		now := time.Now()
		ps.CompletedDate = &now
	}
	if ps.Status == string(phase.StatusInProgress) && ps.StartedDate == nil {
		now := time.Now()
		ps.StartedDate = &now
	}

	if err := s.repo.UpsertPhaseStatus(ctx, ps); err != nil {
		return err
	}

	if s.timeline != nil {
		if err := s.timeline.AppendEntry(ctx, patientID, ps.PhaseName,
			phase.Status(ps.Status), ps.Notes, ps.UpdatedBy); err != nil {
			s.log.Warn().Err(err).Str("patient_id", patientID).Str("phase", ps.PhaseName).
				Msg("could not record phase status on timeline")
		}
	}
	return nil
}

// PhaseStatuses lists the execution rows of the patient's current plan.
func (s *Service) PhaseStatuses(ctx context.Context, patientID string) ([]*PhaseStatus, error) {
	plan, err := s.repo.GetLatestByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("treatment plan not found")
	}
	return s.repo.ListPhaseStatuses(ctx, plan.ID)
}

func (s *Service) PhaseStatusesByPlan(ctx context.Context, planID uuid.UUID) ([]*PhaseStatus, error) {
	return s.repo.ListPhaseStatuses(ctx, planID)
}

// BoardItem is one patient's row on the treatment board: their current
// plan and its phase execution rows.
type BoardItem struct {
	Plan          *Plan          `json:"plan"`
	PhaseStatuses []*PhaseStatus `json:"phaseStatuses"`
}

// Board renders every patient's most recent non-cancelled plan. A patient
// whose plans are all cancelled does not appear.
func (s *Service) Board(ctx context.Context) ([]*BoardItem, error) {
	plans, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]*Plan)
	for _, p := range plans {
		if p.Status == StatusCancelled {
			continue
		}
		cur, ok := latest[p.PatientID]
		if !ok || moreRecent(p, cur) {
			latest[p.PatientID] = p
		}
	}

	items := make([]*BoardItem, 0, len(latest))
	for _, p := range latest {
		statuses, err := s.repo.ListPhaseStatuses(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if statuses == nil {
			statuses = []*PhaseStatus{}
		}
		items = append(items, &BoardItem{Plan: p, PhaseStatuses: statuses})
	}

	// Newest plans at the top.
	sort.Slice(items, func(i, j int) bool {
		return moreRecent(items[i].Plan, items[j].Plan)
	})
	return items, nil
}

func moreRecent(a, b *Plan) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.UpdatedAt.After(b.UpdatedAt)
}
