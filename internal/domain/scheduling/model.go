package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusPending   AppointmentStatus = "pending"
)

var validStatuses = map[AppointmentStatus]bool{
	StatusScheduled: true,
	StatusConfirmed: true,
	StatusCompleted: true,
	StatusCancelled: true,
	StatusPending:   true,
}

// Appointment is a booked clinic visit. Date carries the calendar day and
// Time the wall-clock slot as "HH:MM"; the two are combined when checking
// that a booking is not in the past.
type Appointment struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	PatientID   string            `db:"patient_id" json:"patientId"`
	PatientName string            `db:"patient_name" json:"patientName"`
	Date        time.Time         `db:"date" json:"date"`
	Time        string            `db:"time" json:"time"`
	Type        string            `db:"type" json:"type"`
	Status      AppointmentStatus `db:"status" json:"status"`
	Reason      string            `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `db:"updated_at" json:"updatedAt"`
}

// Patch carries the updatable appointment fields. Nil means keep.
type Patch struct {
	Date   *time.Time         `json:"date,omitempty"`
	Time   *string            `json:"time,omitempty"`
	Type   *string            `json:"type,omitempty"`
	Status *AppointmentStatus `json:"status,omitempty"`
	Reason *string            `json:"reason,omitempty"`
}
