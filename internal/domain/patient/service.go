package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/platform/auth"
)

// timelineAppender records workflow events on the patient timeline.
type timelineAppender interface {
	AppendEntry(ctx context.Context, patientID, phaseLabel string, status phase.Status, notes, createdBy string) error
}

// visitBooker books the reception walk-in appointment created alongside a
// registration.
type visitBooker interface {
	BookRegistrationVisit(ctx context.Context, patientID, patientName string) error
}

// transitionObserver counts applied status transitions for the metrics
// endpoint.
type transitionObserver interface {
	ObserveTransition(from, to string)
}

type Service struct {
	repo     Repository
	timeline timelineAppender
	booker   visitBooker
	metrics  transitionObserver
	log      zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// SetTimeline wires the timeline recorder. Wired in main after all services
// are constructed.
func (s *Service) SetTimeline(t timelineAppender) { s.timeline = t }

// SetBooker wires the appointment booker used during registration.
func (s *Service) SetBooker(b visitBooker) { s.booker = b }

// SetMetrics wires the transition counter.
func (s *Service) SetMetrics(m transitionObserver) { s.metrics = m }

// Register creates a new patient record, stamps the registration, records
// the first timeline entry, and books the same-day reception visit. The
// timeline entry and the visit booking are best-effort: their failure is
// logged but does not fail the registration.
func (s *Service) Register(ctx context.Context, p *Patient, actor auth.Actor) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Phone == "" {
		return fmt.Errorf("phone is required")
	}

	generated := p.PatientID == ""
	prefix := fmt.Sprintf("ACMS-%d-", time.Now().Year())
	seq := 0
	if generated {
		// Registration numbers run in sequence within the year,
		// ACMS-2026-001, ACMS-2026-002 and so on.
		n, err := s.repo.CountByIDPrefix(ctx, prefix)
		if err != nil {
			return fmt.Errorf("allocate patient id: %w", err)
		}
		seq = n + 1
		p.PatientID = fmt.Sprintf("%s%03d", prefix, seq)
	}
	p.Status = phase.Registered
	now := time.Now()
	p.RegistrationDate = &now

	err := s.repo.Create(ctx, p)
	// Concurrent registrations can race to the same sequence number. Bump
	// the suffix and try again, but only on a uniqueness conflict.
	for attempt := 0; generated && errors.Is(err, ErrDuplicateID) && attempt < 3; attempt++ {
		seq++
		p.PatientID = fmt.Sprintf("%s%03d", prefix, seq)
		err = s.repo.Create(ctx, p)
	}
	if err != nil {
		return err
	}

	if s.timeline != nil {
		if err := s.timeline.AppendEntry(ctx, p.PatientID, phase.Registration.Label(),
			phase.StatusCompleted, "", actor.Attribution()); err != nil {
			s.log.Warn().Err(err).Str("patient_id", p.PatientID).
				Msg("could not record registration on timeline")
		}
	}

	if s.booker != nil {
		if err := s.booker.BookRegistrationVisit(ctx, p.PatientID, p.Name); err != nil {
			s.log.Warn().Err(err).Str("patient_id", p.PatientID).
				Msg("registration visit booking failed")
		}
	}

	return nil
}

func (s *Service) Get(ctx context.Context, patientID string) (*Patient, error) {
	return s.repo.GetByPatientID(ctx, patientID)
}

func (s *Service) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.Search(ctx, params, limit, offset)
}

// ApplyPatch merges the supplied fields into the record. Omitted fields are
// preserved. A status change rides along only when it is a known status and
// does not move the patient backwards.
func (s *Service) ApplyPatch(ctx context.Context, patientID string, patch *Patch) error {
	current, err := s.repo.GetByPatientID(ctx, patientID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}

	if patch.Status != nil {
		if err := s.checkTransition(current.Status, *patch.Status); err != nil {
			return err
		}
	}

	if err := s.repo.ApplyPatch(ctx, patientID, patch); err != nil {
		return err
	}

	if patch.Status != nil && *patch.Status != current.Status {
		if err := s.repo.UpdateStatus(ctx, patientID, *patch.Status); err != nil {
			return err
		}
		if s.metrics != nil {
			s.metrics.ObserveTransition(string(current.Status), string(*patch.Status))
		}
	}
	return nil
}

// Status returns the patient's current macro status.
func (s *Service) Status(ctx context.Context, patientID string) (phase.PatientStatus, error) {
	p, err := s.repo.GetByPatientID(ctx, patientID)
	if err != nil {
		return "", fmt.Errorf("patient not found")
	}
	return p.Status, nil
}

// SetStatus moves the patient to a new macro status, enforcing the forward-
// only invariant. Setting the current status again is a no-op.
func (s *Service) SetStatus(ctx context.Context, patientID string, to phase.PatientStatus) error {
	current, err := s.repo.GetByPatientID(ctx, patientID)
	if err != nil {
		return fmt.Errorf("patient not found")
	}
	if to == current.Status {
		return nil
	}
	if err := s.checkTransition(current.Status, to); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, patientID, to); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(current.Status), string(to))
	}
	return nil
}

func (s *Service) checkTransition(from, to phase.PatientStatus) error {
	if !phase.ValidPatientStatus(to) {
		return fmt.Errorf("invalid status: %s", to)
	}
	if to.Rank() < from.Rank() {
		return fmt.Errorf("status cannot move backwards from %s to %s", from, to)
	}
	return nil
}
