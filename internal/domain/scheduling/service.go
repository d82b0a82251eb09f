package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/arogya/acms/internal/domain/phase"
)

// consultationTypes are the visit types a doctor's day worklist pulls in.
// Untyped bookings count as consultations as well.
var consultationTypes = []string{"consultation", "follow-up", "checkup", "procedure"}

// patientStatuses exposes the patient lookups the booking flow needs.
type patientStatuses interface {
	Status(ctx context.Context, patientID string) (phase.PatientStatus, error)
	SetStatus(ctx context.Context, patientID string, to phase.PatientStatus) error
}

type Service struct {
	repo     Repository
	patients patientStatuses
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// SetPatients wires the patient status accessor. Wired in main after all
// services are constructed.
func (s *Service) SetPatients(p patientStatuses) { s.patients = p }

// Create books a visit. Bookings in the past are rejected. A freshly
// registered patient advances to appointment_scheduled; patients already
// further along keep their status.
func (s *Service) Create(ctx context.Context, a *Appointment) error {
	if a.PatientID == "" {
		return fmt.Errorf("patient id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.Time == "" {
		return fmt.Errorf("time is required")
	}
	if a.Type == "" {
		a.Type = "consultation"
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}

	slot, err := s.slotTime(a)
	if err != nil {
		return err
	}
	// Slots carry minute precision, so the comparison drops seconds too:
	// a 10:00 slot is still bookable at 10:00:59.
	now := s.now()
	nowMinute := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), now.Minute(), 0, 0, time.Local)
	if slot.Before(nowMinute) {
		return fmt.Errorf("cannot book an appointment in the past")
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}

	if s.patients != nil {
		current, err := s.patients.Status(ctx, a.PatientID)
		if err == nil && current == phase.Registered {
			if err := s.patients.SetStatus(ctx, a.PatientID, phase.AppointmentScheduled); err != nil {
				s.log.Warn().Err(err).Str("patient_id", a.PatientID).
					Msg("could not advance patient after booking")
			}
		}
	}
	return nil
}

// slotTime combines the booking's date and "HH:MM" slot into a wall-clock
// instant. A malformed slot is a validation error.
func (s *Service) slotTime(a *Appointment) (time.Time, error) {
	t, err := time.ParseInLocation("15:04", a.Time, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", a.Time)
	}
	d := a.Date
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.Local), nil
}

// BookRegistrationVisit books the same-day walk-in created alongside a new
// registration. The slot is the current time, so the past check passes.
func (s *Service) BookRegistrationVisit(ctx context.Context, patientID, patientName string) error {
	now := s.now()
	return s.Create(ctx, &Appointment{
		PatientID:   patientID,
		PatientName: patientName,
		Date:        time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local),
		Time:        now.Format("15:04"),
		Type:        "new",
		Reason:      "New patient registration",
	})
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDate(ctx context.Context, day time.Time) ([]*Appointment, error) {
	return s.repo.ListByDate(ctx, day)
}

func (s *Service) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID)
}

// Worklist returns a department's bookings still to be seen on the given
// day. Cancelled and completed visits never appear.
func (s *Service) Worklist(ctx context.Context, department string, day time.Time) ([]*Appointment, error) {
	switch department {
	case "nursing":
		return s.repo.ListForWorklist(ctx, day, []string{"nursing"}, false)
	case "consultation":
		return s.repo.ListForWorklist(ctx, day, consultationTypes, true)
	}
	return nil, fmt.Errorf("unknown department: %s", department)
}

func (s *Service) ApplyPatch(ctx context.Context, id uuid.UUID, patch *Patch) error {
	if patch.Status != nil && !validStatuses[*patch.Status] {
		return fmt.Errorf("invalid status: %s", *patch.Status)
	}
	return s.repo.ApplyPatch(ctx, id, patch)
}
