package patient

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/platform/auth"
)

type mockRepo struct {
	store     map[string]*Patient
	createErr error
	creates   int
}

func newMockRepo() *mockRepo { return &mockRepo{store: map[string]*Patient{}} }

func (m *mockRepo) Create(ctx context.Context, p *Patient) error {
	m.creates++
	if m.createErr != nil {
		return m.createErr
	}
	if _, exists := m.store[p.PatientID]; exists {
		return ErrDuplicateID
	}
	p.ID = uuid.New()
	cp := *p
	m.store[p.PatientID] = &cp
	return nil
}

func (m *mockRepo) CountByIDPrefix(ctx context.Context, prefix string) (int, error) {
	n := 0
	for id := range m.store {
		if strings.HasPrefix(id, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	for _, p := range m.store {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	p, ok := m.store[patientID]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.store {
		if s, ok := params["status"]; ok && string(p.Status) != s {
			continue
		}
		if q, ok := params["q"]; ok && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			continue
		}
		cp := *p
		items = append(items, &cp)
	}
	return items, len(items), nil
}

func (m *mockRepo) ApplyPatch(ctx context.Context, patientID string, patch *Patch) error {
	p, ok := m.store[patientID]
	if !ok {
		return fmt.Errorf("not found")
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Email != nil {
		p.Email = patch.Email
	}
	if patch.PastConditions != nil {
		p.PastConditions = *patch.PastConditions
	}
	if patch.NursingNotes != nil {
		p.NursingNotes = patch.NursingNotes
	}
	if patch.PaymentPlanType != nil {
		p.PaymentPlanType = patch.PaymentPlanType
	}
	if patch.CounselingNotes != nil {
		p.CounselingNotes = patch.CounselingNotes
	}
	if patch.Diagnosis != nil {
		p.Diagnosis = patch.Diagnosis
	}
	if patch.Observations != nil {
		p.Observations = patch.Observations
	}
	if patch.NursingDate != nil {
		p.NursingDate = patch.NursingDate
	}
	if patch.CounselingDate != nil {
		p.CounselingDate = patch.CounselingDate
	}
	if patch.ConsultationDate != nil {
		p.ConsultationDate = patch.ConsultationDate
	}
	if patch.TreatmentPlanID != nil {
		p.TreatmentPlanID = patch.TreatmentPlanID
	}
	return nil
}

func (m *mockRepo) UpdateStatus(ctx context.Context, patientID string, status phase.PatientStatus) error {
	p, ok := m.store[patientID]
	if !ok {
		return fmt.Errorf("not found")
	}
	p.Status = status
	return nil
}

type mockTimeline struct {
	entries []string
	fail    bool
}

func (m *mockTimeline) AppendEntry(ctx context.Context, patientID, phaseLabel string, status phase.Status, notes, createdBy string) error {
	if m.fail {
		return fmt.Errorf("timeline unavailable")
	}
	m.entries = append(m.entries, phaseLabel+"/"+string(status))
	return nil
}

type mockBooker struct {
	booked int
	fail   bool
}

func (m *mockBooker) BookRegistrationVisit(ctx context.Context, patientID, patientName string) error {
	if m.fail {
		return fmt.Errorf("schedule full")
	}
	m.booked++
	return nil
}

type mockObserver struct {
	transitions []string
}

func (m *mockObserver) ObserveTransition(from, to string) {
	m.transitions = append(m.transitions, from+">"+to)
}

func newTestService() (*Service, *mockRepo, *mockTimeline, *mockBooker) {
	repo := newMockRepo()
	tl := &mockTimeline{}
	bk := &mockBooker{}
	svc := NewService(repo, zerolog.Nop())
	svc.SetTimeline(tl)
	svc.SetBooker(bk)
	return svc, repo, tl, bk
}

var testActor = auth.Actor{ID: "u-1", Username: "reception", Name: "Reception Staff", Role: auth.RoleReception}

func TestRegister_Defaults(t *testing.T) {
	svc, repo, tl, bk := newTestService()

	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if matched, _ := regexp.MatchString(`^ACMS-\d{4}-\d{3}$`, p.PatientID); !matched {
		t.Errorf("patient id %q does not match ACMS-<year>-<NNN>", p.PatientID)
	}
	if p.Status != phase.Registered {
		t.Errorf("status = %s; want registered", p.Status)
	}
	if p.RegistrationDate == nil {
		t.Error("registration date not stamped")
	}
	if _, err := repo.GetByPatientID(context.Background(), p.PatientID); err != nil {
		t.Error("patient not persisted")
	}
	if len(tl.entries) != 1 || tl.entries[0] != "Registration/completed" {
		t.Errorf("timeline entries = %v; want [Registration/completed]", tl.entries)
	}
	if bk.booked != 1 {
		t.Errorf("booked = %d; want 1", bk.booked)
	}
}

func TestRegister_SequentialIDs(t *testing.T) {
	svc, _, _, _ := newTestService()
	year := time.Now().Year()

	first := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	second := &Patient{Name: "Meera Nair", Phone: "9876500000"}
	if err := svc.Register(context.Background(), first, testActor); err != nil {
		t.Fatalf("Register first: %v", err)
	}
	if err := svc.Register(context.Background(), second, testActor); err != nil {
		t.Fatalf("Register second: %v", err)
	}

	if want := fmt.Sprintf("ACMS-%d-001", year); first.PatientID != want {
		t.Errorf("first id = %q; want %q", first.PatientID, want)
	}
	if want := fmt.Sprintf("ACMS-%d-002", year); second.PatientID != want {
		t.Errorf("second id = %q; want %q", second.PatientID, want)
	}
}

func TestRegister_RetriesOnlyOnDuplicateID(t *testing.T) {
	svc, repo, _, _ := newTestService()
	year := time.Now().Year()

	// A record already holds the number the sequence would hand out next,
	// so the first attempt collides and the suffix is bumped.
	taken := fmt.Sprintf("ACMS-%d-002", year)
	occupied := &Patient{PatientID: taken, Name: "Walk In", Phone: "111"}
	if err := svc.Register(context.Background(), occupied, testActor); err != nil {
		t.Fatalf("Register occupied: %v", err)
	}

	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if want := fmt.Sprintf("ACMS-%d-003", year); p.PatientID != want {
		t.Errorf("patient id = %q; want %q", p.PatientID, want)
	}

	// Any other persistence error surfaces immediately, without retrying.
	repo.createErr = fmt.Errorf("connection reset")
	repo.creates = 0
	if err := svc.Register(context.Background(), &Patient{Name: "X", Phone: "1"}, testActor); err == nil {
		t.Fatal("expected persistence error")
	}
	if repo.creates != 1 {
		t.Errorf("creates = %d; want 1 (no retry on non-duplicate error)", repo.creates)
	}
}

func TestRegister_TimelineFailureDoesNotFail(t *testing.T) {
	svc, repo, tl, bk := newTestService()
	tl.fail = true

	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register should tolerate timeline failure: %v", err)
	}
	if _, err := repo.GetByPatientID(context.Background(), p.PatientID); err != nil {
		t.Error("patient not persisted")
	}
	if bk.booked != 1 {
		t.Errorf("booked = %d; want 1", bk.booked)
	}
}

func TestRegister_RequiresNameAndPhone(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.Register(context.Background(), &Patient{Phone: "123"}, testActor); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.Register(context.Background(), &Patient{Name: "X"}, testActor); err == nil {
		t.Error("expected error for missing phone")
	}
}

func TestRegister_BookingFailureDoesNotFail(t *testing.T) {
	svc, _, _, bk := newTestService()
	bk.fail = true

	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register should tolerate booking failure: %v", err)
	}
}

func TestRegister_KeepsProvidedID(t *testing.T) {
	svc, _, _, _ := newTestService()
	p := &Patient{PatientID: "ACMS-2026-777", Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.PatientID != "ACMS-2026-777" {
		t.Errorf("patient id = %q; want ACMS-2026-777", p.PatientID)
	}
}

func TestApplyPatch_PreservesOmittedFields(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}

	diagnosis := "PCOS"
	if err := svc.ApplyPatch(context.Background(), p.PatientID, &Patch{Diagnosis: &diagnosis}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}

	got, _ := repo.GetByPatientID(context.Background(), p.PatientID)
	if got.Name != "Asha Rao" || got.Phone != "9876543210" {
		t.Errorf("omitted fields changed: name=%q phone=%q", got.Name, got.Phone)
	}
	if got.Diagnosis == nil || *got.Diagnosis != "PCOS" {
		t.Error("patched field not applied")
	}
}

func TestApplyPatch_UnknownPatient(t *testing.T) {
	svc, _, _, _ := newTestService()
	name := "X"
	err := svc.ApplyPatch(context.Background(), "ACMS-2026-000", &Patch{Name: &name})
	if err == nil || err.Error() != "patient not found" {
		t.Errorf("err = %v; want patient not found", err)
	}
}

func TestApplyPatch_RejectsBackwardsStatus(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}
	repo.store[p.PatientID].Status = phase.ConsultationComplete

	back := phase.NursingInProgress
	if err := svc.ApplyPatch(context.Background(), p.PatientID, &Patch{Status: &back}); err == nil {
		t.Error("expected error for backwards status change")
	}

	got, _ := repo.GetByPatientID(context.Background(), p.PatientID)
	if got.Status != phase.ConsultationComplete {
		t.Errorf("status = %s; want consultation_complete", got.Status)
	}
}

func TestApplyPatch_RejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newTestService()
	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}
	bogus := phase.PatientStatus("archived")
	if err := svc.ApplyPatch(context.Background(), p.PatientID, &Patch{Status: &bogus}); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestSetStatus_ForwardAndIdempotent(t *testing.T) {
	svc, repo, _, _ := newTestService()
	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.SetStatus(context.Background(), p.PatientID, phase.AppointmentScheduled); err != nil {
		t.Fatalf("SetStatus forward: %v", err)
	}
	if err := svc.SetStatus(context.Background(), p.PatientID, phase.AppointmentScheduled); err != nil {
		t.Fatalf("SetStatus same: %v", err)
	}
	if err := svc.SetStatus(context.Background(), p.PatientID, phase.Registered); err == nil {
		t.Error("expected error for backwards SetStatus")
	}

	got, _ := repo.GetByPatientID(context.Background(), p.PatientID)
	if got.Status != phase.AppointmentScheduled {
		t.Errorf("status = %s; want appointment_scheduled", got.Status)
	}
}

func TestSetStatus_CountsTransitions(t *testing.T) {
	svc, _, _, _ := newTestService()
	obs := &mockObserver{}
	svc.SetMetrics(obs)

	p := &Patient{Name: "Asha Rao", Phone: "9876543210"}
	if err := svc.Register(context.Background(), p, testActor); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.SetStatus(context.Background(), p.PatientID, phase.AppointmentScheduled); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	// Re-setting the same status is a no-op and must not count.
	if err := svc.SetStatus(context.Background(), p.PatientID, phase.AppointmentScheduled); err != nil {
		t.Fatalf("SetStatus same: %v", err)
	}

	want := []string{"registered>appointment_scheduled"}
	if len(obs.transitions) != 1 || obs.transitions[0] != want[0] {
		t.Errorf("transitions = %v; want %v", obs.transitions, want)
	}

	// A status change riding a merge patch counts as well.
	to := phase.NursingInProgress
	if err := svc.ApplyPatch(context.Background(), p.PatientID, &Patch{Status: &to}); err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}
	if len(obs.transitions) != 2 || obs.transitions[1] != "appointment_scheduled>nursing_in_progress" {
		t.Errorf("transitions = %v", obs.transitions)
	}
}
