package treatmentplan

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/platform/auth"
)

type psKey struct {
	plan      uuid.UUID
	phaseName string
}

type mockRepo struct {
	plans    []*Plan
	statuses map[psKey]*PhaseStatus
	clock    time.Time
}

func newMockRepo() *mockRepo {
	return &mockRepo{statuses: map[psKey]*PhaseStatus{}, clock: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)}
}

// tick hands out strictly increasing timestamps so creation order is
// unambiguous.
func (m *mockRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *mockRepo) Create(ctx context.Context, p *Plan) error {
	p.ID = uuid.New()
	p.CreatedAt = m.tick()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	m.plans = append(m.plans, &cp)
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	for _, p := range m.plans {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) GetLatestByPatient(ctx context.Context, patientID string) (*Plan, error) {
	var latest *Plan
	for _, p := range m.plans {
		if p.PatientID != patientID {
			continue
		}
		if latest == nil || moreRecent(p, latest) {
			latest = p
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("not found")
	}
	cp := *latest
	return &cp, nil
}

func (m *mockRepo) ListByPatient(ctx context.Context, patientID string) ([]*Plan, error) {
	var out []*Plan
	for _, p := range m.plans {
		if p.PatientID == patientID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockRepo) ListAll(ctx context.Context) ([]*Plan, error) {
	return m.plans, nil
}

func (m *mockRepo) ApplyPatch(ctx context.Context, id uuid.UUID, patch *Patch) error {
	for _, p := range m.plans {
		if p.ID != id {
			continue
		}
		if patch.PlanName != nil {
			p.PlanName = *patch.PlanName
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Notes != nil {
			p.Notes = *patch.Notes
		}
		p.UpdatedAt = m.tick()
		return nil
	}
	return fmt.Errorf("not found")
}

func (m *mockRepo) UpsertPhaseStatus(ctx context.Context, ps *PhaseStatus) error {
	key := psKey{plan: ps.TreatmentPlanID, phaseName: ps.PhaseName}
	if existing, ok := m.statuses[key]; ok {
		ps.ID = existing.ID
	}
	ps.UpdatedAt = m.tick()
	cp := *ps
	m.statuses[key] = &cp
	return nil
}

func (m *mockRepo) ListPhaseStatuses(ctx context.Context, planID uuid.UUID) ([]*PhaseStatus, error) {
	var out []*PhaseStatus
	for _, ps := range m.statuses {
		if ps.TreatmentPlanID == planID {
			out = append(out, ps)
		}
	}
	return out, nil
}

type mockTimeline struct {
	entries []string
	fail    bool
}

func (m *mockTimeline) AppendEntry(ctx context.Context, patientID, phaseLabel string, status phase.Status, notes, createdBy string) error {
	if m.fail {
		return fmt.Errorf("timeline unavailable")
	}
	m.entries = append(m.entries, patientID+"/"+phaseLabel+"/"+string(status))
	return nil
}

func newTestService() (*Service, *mockRepo, *mockTimeline) {
	repo := newMockRepo()
	tl := &mockTimeline{}
	svc := NewService(repo, zerolog.Nop())
	svc.SetTimeline(tl)
	return svc, repo, tl
}

var doctor = auth.Actor{ID: "u-4", Username: "doctor", Name: "Dr. Meera Iyer", Role: auth.RoleDoctor}

func TestTemplates(t *testing.T) {
	ivf, ok := TemplateByID("ivf_standard")
	if !ok {
		t.Fatal("ivf_standard template missing")
	}
	if len(ivf.Phases) != 7 {
		t.Errorf("ivf phases = %d; want 7", len(ivf.Phases))
	}
	if ivf.Phases[0].Phase != "I. Preparation" {
		t.Errorf("first ivf phase = %q", ivf.Phases[0].Phase)
	}
	if ivf.Phases[6].Steps != "Luteal Support: Medication to maintain uterine lining. Pregnancy Test: Blood test for hCG" {
		t.Errorf("ivf result steps = %q", ivf.Phases[6].Steps)
	}

	iui, ok := TemplateByID("iui_standard")
	if !ok {
		t.Fatal("iui_standard template missing")
	}
	if len(iui.Phases) != 4 {
		t.Errorf("iui phases = %d; want 4", len(iui.Phases))
	}
	if iui.Phases[2].Phase != "III. Insemination" {
		t.Errorf("third iui phase = %q", iui.Phases[2].Phase)
	}

	if _, ok := TemplateByID("icsi_standard"); ok {
		t.Error("unexpected template")
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, repo, _ := newTestService()

	p := &Plan{PatientID: "ACMS-2026-101", PlanName: "IVF Plan"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if repo.plans[0].Status != StatusDraft {
		t.Errorf("status = %s; want draft", repo.plans[0].Status)
	}

	if err := svc.Create(context.Background(), &Plan{PlanName: "no patient"}); err == nil {
		t.Error("expected error for missing patient id")
	}
}

func TestMaterialize_TemplatePlan(t *testing.T) {
	svc, _, _ := newTestService()

	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101", Decision{Type: "ivf"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if plan.TemplateID != "ivf_standard" {
		t.Errorf("template = %q; want ivf_standard", plan.TemplateID)
	}
	if plan.PlanName != "IVF Treatment Plan" {
		t.Errorf("plan name = %q", plan.PlanName)
	}
	if len(plan.Phases) != 7 {
		t.Errorf("phases = %d; want 7", len(plan.Phases))
	}
	if plan.Status != StatusActive {
		t.Errorf("status = %s; want active", plan.Status)
	}
	if plan.CreatedBy != "u-4" {
		t.Errorf("createdBy = %q; want u-4", plan.CreatedBy)
	}
}

func TestMaterialize_FreeTextOverridesTemplate(t *testing.T) {
	svc, _, _ := newTestService()

	d := Decision{
		Type:       "ivf",
		PhasesText: "Custom monitoring protocol",
		Duration:   "30",
		StartDate:  "2026-09-01",
	}
	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101", d, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if len(plan.Phases) != 1 {
		t.Fatalf("phases = %d; want 1", len(plan.Phases))
	}
	ph := plan.Phases[0]
	if ph.Phase != "Treatment Plan" {
		t.Errorf("phase = %q; want Treatment Plan", ph.Phase)
	}
	if ph.Steps != "Custom monitoring protocol" {
		t.Errorf("steps = %q", ph.Steps)
	}
	if ph.Duration != "30 days" {
		t.Errorf("duration = %q; want 30 days", ph.Duration)
	}
	if ph.StartTime != "2026-09-01" {
		t.Errorf("startTime = %q", ph.StartTime)
	}
}

func TestMaterialize_FreeTextDefaults(t *testing.T) {
	svc, _, _ := newTestService()

	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101",
		Decision{Type: "other", PhasesText: "Watchful waiting"}, auth.Actor{})
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if plan.TemplateID != "custom" {
		t.Errorf("template = %q; want custom", plan.TemplateID)
	}
	ph := plan.Phases[0]
	if ph.Duration != "TBD" {
		t.Errorf("duration = %q; want TBD", ph.Duration)
	}
	if ph.StartTime != "To be determined" {
		t.Errorf("startTime = %q; want To be determined", ph.StartTime)
	}
	if plan.CreatedBy != "doctor" {
		t.Errorf("createdBy = %q; want doctor", plan.CreatedBy)
	}
}

func TestUpdate_RequiresRecognizedField(t *testing.T) {
	svc, _, _ := newTestService()
	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101", Decision{Type: "iui"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	if err := svc.Update(context.Background(), plan.ID, &Patch{}); err == nil {
		t.Error("expected error for empty patch")
	}

	name := "Revised IUI Plan"
	if err := svc.Update(context.Background(), plan.ID, &Patch{PlanName: &name}); err != nil {
		t.Errorf("Update: %v", err)
	}
}

func TestUpdatePhaseStatus_UpsertAndTimeline(t *testing.T) {
	svc, repo, tl := newTestService()
	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101", Decision{Type: "ivf"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	ps := &PhaseStatus{PhaseName: "II. Stimulation", Status: "in-progress"}
	if err := svc.UpdatePhaseStatus(context.Background(), "ACMS-2026-101", ps, doctor); err != nil {
		t.Fatalf("UpdatePhaseStatus: %v", err)
	}
	if ps.TreatmentPlanID != plan.ID {
		t.Error("phase status not attached to the latest plan")
	}
	if ps.StartedDate == nil {
		t.Error("in-progress status should stamp started date")
	}

	done := &PhaseStatus{PhaseName: "II. Stimulation", Status: "completed"}
	if err := svc.UpdatePhaseStatus(context.Background(), "ACMS-2026-101", done, doctor); err != nil {
		t.Fatalf("UpdatePhaseStatus repeat: %v", err)
	}
	if done.CompletedDate == nil {
		t.Error("completed status should stamp completed date")
	}

	statuses, _ := repo.ListPhaseStatuses(context.Background(), plan.ID)
	if len(statuses) != 1 {
		t.Errorf("phase status rows = %d; want 1 after repeated upsert", len(statuses))
	}
	if statuses[0].Status != "completed" {
		t.Errorf("status = %q; want completed", statuses[0].Status)
	}
	if len(tl.entries) != 2 {
		t.Errorf("timeline entries = %d; want one per write", len(tl.entries))
	}
}

func TestUpdatePhaseStatus_TimelineFailureTolerated(t *testing.T) {
	svc, repo, tl := newTestService()
	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101", Decision{Type: "ivf"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	tl.fail = true

	ps := &PhaseStatus{PhaseName: "I. Preparation", Status: "completed"}
	if err := svc.UpdatePhaseStatus(context.Background(), "ACMS-2026-101", ps, doctor); err != nil {
		t.Fatalf("upsert should tolerate timeline failure: %v", err)
	}
	statuses, _ := repo.ListPhaseStatuses(context.Background(), plan.ID)
	if len(statuses) != 1 {
		t.Errorf("phase status rows = %d; want 1", len(statuses))
	}
}

func TestUpdatePhaseStatus_NoPlan(t *testing.T) {
	svc, _, _ := newTestService()
	ps := &PhaseStatus{PhaseName: "I. Preparation", Status: "in-progress"}
	err := svc.UpdatePhaseStatus(context.Background(), "ACMS-2026-999", ps, doctor)
	if err == nil || err.Error() != "treatment plan not found" {
		t.Errorf("err = %v; want treatment plan not found", err)
	}
}

func TestBoard_DedupAndCancelled(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first, err := svc.Materialize(ctx, "ACMS-2026-101", Decision{Type: "iui"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	second, err := svc.Materialize(ctx, "ACMS-2026-101", Decision{Type: "ivf"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	_ = first

	if _, err := svc.Materialize(ctx, "ACMS-2026-202", Decision{Type: "iui"}, doctor); err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	cancelledOnly, err := svc.Materialize(ctx, "ACMS-2026-303", Decision{Type: "ivf"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	cancelled := StatusCancelled
	if err := svc.Update(ctx, cancelledOnly.ID, &Patch{Status: &cancelled}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	items, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("board items = %d; want 2", len(items))
	}
	for _, item := range items {
		if item.Plan.PatientID == "ACMS-2026-101" && item.Plan.ID != second.ID {
			t.Error("board should show the most recent plan per patient")
		}
		if item.Plan.PatientID == "ACMS-2026-303" {
			t.Error("cancelled-only patient should not appear")
		}
	}
}

func TestBoard_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	patients := []string{
		"ACMS-2026-101", "ACMS-2026-102", "ACMS-2026-103", "ACMS-2026-104",
		"ACMS-2026-105", "ACMS-2026-106", "ACMS-2026-107", "ACMS-2026-108",
	}
	for _, id := range patients {
		if _, err := svc.Materialize(ctx, id, Decision{Type: "iui"}, doctor); err != nil {
			t.Fatalf("Materialize %s: %v", id, err)
		}
	}

	items, err := svc.Board(ctx)
	if err != nil {
		t.Fatalf("Board: %v", err)
	}
	if len(items) != len(patients) {
		t.Fatalf("board items = %d; want %d", len(items), len(patients))
	}
	for i := 1; i < len(items); i++ {
		if items[i].Plan.CreatedAt.After(items[i-1].Plan.CreatedAt) {
			t.Fatalf("board not newest-first: item %d (%s) created after item %d (%s)",
				i, items[i].Plan.PatientID, i-1, items[i-1].Plan.PatientID)
		}
	}
	if items[0].Plan.PatientID != patients[len(patients)-1] {
		t.Errorf("top of board = %s; want the most recently created plan", items[0].Plan.PatientID)
	}
}

func TestUpdate_AcceptsFullStatusSet(t *testing.T) {
	svc, repo, _ := newTestService()
	plan, err := svc.Materialize(context.Background(), "ACMS-2026-101", Decision{Type: "ivf"}, doctor)
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}

	for _, status := range []PlanStatus{StatusInProgress, StatusApproved, StatusCompleted} {
		s := status
		if err := svc.Update(context.Background(), plan.ID, &Patch{Status: &s}); err != nil {
			t.Errorf("Update to %s: %v", status, err)
		}
	}
	if repo.plans[0].Status != StatusCompleted {
		t.Errorf("status = %s; want completed", repo.plans[0].Status)
	}

	bogus := PlanStatus("archived")
	if err := svc.Update(context.Background(), plan.ID, &Patch{Status: &bogus}); err == nil {
		t.Error("expected error for unknown status")
	}
}
