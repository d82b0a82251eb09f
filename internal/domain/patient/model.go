package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/arogya/acms/internal/domain/phase"
)

// Patient is the clinic-wide record a patient accumulates as they move
// through registration, nursing, counseling, and consultation. Sections
// owned by later departments stay nil until that department writes them.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"-"`
	PatientID string    `db:"patient_id" json:"patient_id"`

	// Demographics (registration)
	Name             string     `db:"name" json:"name"`
	DateOfBirth      *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender           *string    `db:"gender" json:"gender,omitempty"`
	Phone            string     `db:"phone" json:"phone"`
	Email            *string    `db:"email" json:"email,omitempty"`
	Address          *string    `db:"address" json:"address,omitempty"`
	PartnerName      *string    `db:"partner_name" json:"partner_name,omitempty"`
	EmergencyContact *string    `db:"emergency_contact" json:"emergency_contact,omitempty"`
	ReferralSource   *string    `db:"referral_source" json:"referral_source,omitempty"`

	// Nursing intake
	BloodPressure     *string      `db:"blood_pressure" json:"blood_pressure,omitempty"`
	Pulse             *string      `db:"pulse" json:"pulse,omitempty"`
	Temperature       *string      `db:"temperature" json:"temperature,omitempty"`
	Weight            *string      `db:"weight" json:"weight,omitempty"`
	Height            *string      `db:"height" json:"height,omitempty"`
	PastConditions    []string     `db:"past_conditions" json:"past_conditions,omitempty"`
	KnownAllergies    []string     `db:"known_allergies" json:"known_allergies,omitempty"`
	FamilyHistory     []string     `db:"family_history" json:"family_history,omitempty"`
	PreviousSurgeries []string     `db:"previous_surgeries" json:"previous_surgeries,omitempty"`
	OngoingTherapies  []string     `db:"ongoing_therapies" json:"ongoing_therapies,omitempty"`
	Medications       []Medication `db:"medications" json:"medications,omitempty"`
	NursingNotes      *string      `db:"nursing_notes" json:"nursing_notes,omitempty"`

	// Counseling
	TreatmentOptions         []string `db:"treatment_options" json:"treatment_options,omitempty"`
	PatientConcerns          *string  `db:"patient_concerns" json:"patient_concerns,omitempty"`
	CounselorRecommendations *string  `db:"counselor_recommendations" json:"counselor_recommendations,omitempty"`
	EstimatedCost            *float64 `db:"estimated_cost" json:"estimated_cost,omitempty"`
	PaymentPlanType          *string  `db:"payment_plan_type" json:"payment_plan_type,omitempty"`
	InstallmentAmount        *float64 `db:"installment_amount" json:"installment_amount,omitempty"`
	InstallmentCount         *int     `db:"installment_count" json:"installment_count,omitempty"`
	PaymentDiscussion        *string  `db:"payment_discussion" json:"payment_discussion,omitempty"`
	PaymentStatus            *string  `db:"payment_status" json:"payment_status,omitempty"`
	CounselingNotes          *string  `db:"counseling_notes" json:"counseling_notes,omitempty"`

	// Consultation
	Diagnosis          *string  `db:"diagnosis" json:"diagnosis,omitempty"`
	SecondaryDiagnosis *string  `db:"secondary_diagnosis" json:"secondary_diagnosis,omitempty"`
	Observations       *string  `db:"observations" json:"observations,omitempty"`
	Recommendations    *string  `db:"recommendations" json:"recommendations,omitempty"`
	Prescriptions      []string `db:"prescriptions" json:"prescriptions,omitempty"`
	LabTests           []string `db:"lab_tests" json:"lab_tests,omitempty"`
	Scans              []string `db:"scans" json:"scans,omitempty"`
	CustomTests        []string `db:"custom_tests" json:"custom_tests,omitempty"`

	// Workflow
	Status           phase.PatientStatus `db:"status" json:"status"`
	TreatmentPlanID  *uuid.UUID          `db:"treatment_plan_id" json:"treatment_plan_id,omitempty"`
	RegistrationDate *time.Time          `db:"registration_date" json:"registration_date,omitempty"`
	NursingDate      *time.Time          `db:"nursing_date" json:"nursing_date,omitempty"`
	CounselingDate   *time.Time          `db:"counseling_date" json:"counseling_date,omitempty"`
	ConsultationDate *time.Time          `db:"consultation_date" json:"consultation_date,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Medication is one entry in the nursing medication list.
type Medication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

// Patch carries a partial update. Nil fields are left untouched; set fields
// overwrite. Slices follow the same rule: nil means "keep", an empty slice
// clears the list.
type Patch struct {
	Name             *string    `json:"name,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Gender           *string    `json:"gender,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Email            *string    `json:"email,omitempty"`
	Address          *string    `json:"address,omitempty"`
	PartnerName      *string    `json:"partner_name,omitempty"`
	EmergencyContact *string    `json:"emergency_contact,omitempty"`
	ReferralSource   *string    `json:"referral_source,omitempty"`

	BloodPressure     *string       `json:"blood_pressure,omitempty"`
	Pulse             *string       `json:"pulse,omitempty"`
	Temperature       *string       `json:"temperature,omitempty"`
	Weight            *string       `json:"weight,omitempty"`
	Height            *string       `json:"height,omitempty"`
	PastConditions    *[]string     `json:"past_conditions,omitempty"`
	KnownAllergies    *[]string     `json:"known_allergies,omitempty"`
	FamilyHistory     *[]string     `json:"family_history,omitempty"`
	PreviousSurgeries *[]string     `json:"previous_surgeries,omitempty"`
	OngoingTherapies  *[]string     `json:"ongoing_therapies,omitempty"`
	Medications       *[]Medication `json:"medications,omitempty"`
	NursingNotes      *string       `json:"nursing_notes,omitempty"`

	TreatmentOptions         *[]string `json:"treatment_options,omitempty"`
	PatientConcerns          *string   `json:"patient_concerns,omitempty"`
	CounselorRecommendations *string   `json:"counselor_recommendations,omitempty"`
	EstimatedCost            *float64  `json:"estimated_cost,omitempty"`
	PaymentPlanType          *string   `json:"payment_plan_type,omitempty"`
	InstallmentAmount        *float64  `json:"installment_amount,omitempty"`
	InstallmentCount         *int      `json:"installment_count,omitempty"`
	PaymentDiscussion        *string   `json:"payment_discussion,omitempty"`
	PaymentStatus            *string   `json:"payment_status,omitempty"`
	CounselingNotes          *string   `json:"counseling_notes,omitempty"`

	Diagnosis          *string   `json:"diagnosis,omitempty"`
	SecondaryDiagnosis *string   `json:"secondary_diagnosis,omitempty"`
	Observations       *string   `json:"observations,omitempty"`
	Recommendations    *string   `json:"recommendations,omitempty"`
	Prescriptions      *[]string `json:"prescriptions,omitempty"`
	LabTests           *[]string `json:"lab_tests,omitempty"`
	Scans              *[]string `json:"scans,omitempty"`
	CustomTests        *[]string `json:"custom_tests,omitempty"`

	Status           *phase.PatientStatus `json:"status,omitempty"`
	TreatmentPlanID  *uuid.UUID           `json:"treatment_plan_id,omitempty"`
	NursingDate      *time.Time           `json:"nursing_date,omitempty"`
	CounselingDate   *time.Time           `json:"counseling_date,omitempty"`
	ConsultationDate *time.Time           `json:"consultation_date,omitempty"`
}
