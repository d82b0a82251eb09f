package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/phase"
)

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Append records a journey event. A completed entry is stamped with its
// completion time; in-progress and pending entries carry none.
func (s *Service) Append(ctx context.Context, e *Entry) error {
	if e.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if e.Phase == "" {
		return fmt.Errorf("phase is required")
	}
	if e.Status == "" {
		e.Status = phase.StatusCompleted
	}
	if !phase.ValidStatus(e.Status) {
		return fmt.Errorf("invalid status: %s", e.Status)
	}
	if e.Status == phase.StatusCompleted && e.CompletedDate == nil {
		now := time.Now()
		e.CompletedDate = &now
	}
	if e.Status != phase.StatusCompleted {
		e.CompletedDate = nil
	}
	if e.CreatedBy == "" {
		e.CreatedBy = "system"
	}
	return s.repo.Create(ctx, e)
}

// AppendEntry is the form other services use to record events without
// constructing an Entry themselves.
func (s *Service) AppendEntry(ctx context.Context, patientID, phaseLabel string, status phase.Status, notes, createdBy string) error {
	return s.Append(ctx, &Entry{
		PatientID: patientID,
		Phase:     phaseLabel,
		Status:    status,
		Notes:     notes,
		CreatedBy: createdBy,
	})
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Entry, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// LatestPerPhase reduces the append-only log to the most recent entry for
// each phase, keyed by the parsed phase identifier. Entries whose phase
// label is not recognized are skipped.
func (s *Service) LatestPerPhase(ctx context.Context, patientID string) (map[phase.Phase]*Entry, error) {
	entries, err := s.repo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	latest := make(map[phase.Phase]*Entry)
	for _, e := range entries {
		ph, ok := phase.Parse(e.Phase)
		if !ok {
			continue
		}
		latest[ph] = e
	}
	return latest, nil
}
