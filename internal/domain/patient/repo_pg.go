package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arogya/acms/internal/domain/phase"
	"github.com/arogya/acms/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const patientCols = `id, patient_id, name, date_of_birth, gender, phone, email, address,
	partner_name, emergency_contact, referral_source,
	blood_pressure, pulse, temperature, weight, height,
	past_conditions, known_allergies, family_history, previous_surgeries,
	ongoing_therapies, medications, nursing_notes,
	treatment_options, patient_concerns, counselor_recommendations,
	estimated_cost, payment_plan_type, installment_amount, installment_count,
	payment_discussion, payment_status, counseling_notes,
	diagnosis, secondary_diagnosis, observations, recommendations,
	prescriptions, lab_tests, scans, custom_tests,
	status, treatment_plan_id,
	registration_date, nursing_date, counseling_date, consultation_date,
	created_at, updated_at`

func (r *repoPG) scan(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PatientID, &p.Name, &p.DateOfBirth, &p.Gender, &p.Phone,
		&p.Email, &p.Address, &p.PartnerName, &p.EmergencyContact, &p.ReferralSource,
		&p.BloodPressure, &p.Pulse, &p.Temperature, &p.Weight, &p.Height,
		&p.PastConditions, &p.KnownAllergies, &p.FamilyHistory, &p.PreviousSurgeries,
		&p.OngoingTherapies, &p.Medications, &p.NursingNotes,
		&p.TreatmentOptions, &p.PatientConcerns, &p.CounselorRecommendations,
		&p.EstimatedCost, &p.PaymentPlanType, &p.InstallmentAmount, &p.InstallmentCount,
		&p.PaymentDiscussion, &p.PaymentStatus, &p.CounselingNotes,
		&p.Diagnosis, &p.SecondaryDiagnosis, &p.Observations, &p.Recommendations,
		&p.Prescriptions, &p.LabTests, &p.Scans, &p.CustomTests,
		&p.Status, &p.TreatmentPlanID,
		&p.RegistrationDate, &p.NursingDate, &p.CounselingDate, &p.ConsultationDate,
		&p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (id, patient_id, name, date_of_birth, gender, phone, email, address,
			partner_name, emergency_contact, referral_source,
			blood_pressure, pulse, temperature, weight, height,
			past_conditions, known_allergies, family_history, previous_surgeries,
			ongoing_therapies, medications, nursing_notes,
			treatment_options, patient_concerns, counselor_recommendations,
			estimated_cost, payment_plan_type, installment_amount, installment_count,
			payment_discussion, payment_status, counseling_notes,
			diagnosis, secondary_diagnosis, observations, recommendations,
			prescriptions, lab_tests, scans, custom_tests,
			status, treatment_plan_id,
			registration_date, nursing_date, counseling_date, consultation_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
			$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,$39,$40,
			$41,$42,$43,$44,$45,$46,$47)`,
		p.ID, p.PatientID, p.Name, p.DateOfBirth, p.Gender, p.Phone, p.Email, p.Address,
		p.PartnerName, p.EmergencyContact, p.ReferralSource,
		p.BloodPressure, p.Pulse, p.Temperature, p.Weight, p.Height,
		p.PastConditions, p.KnownAllergies, p.FamilyHistory, p.PreviousSurgeries,
		p.OngoingTherapies, p.Medications, p.NursingNotes,
		p.TreatmentOptions, p.PatientConcerns, p.CounselorRecommendations,
		p.EstimatedCost, p.PaymentPlanType, p.InstallmentAmount, p.InstallmentCount,
		p.PaymentDiscussion, p.PaymentStatus, p.CounselingNotes,
		p.Diagnosis, p.SecondaryDiagnosis, p.Observations, p.Recommendations,
		p.Prescriptions, p.LabTests, p.Scans, p.CustomTests,
		p.Status, p.TreatmentPlanID,
		p.RegistrationDate, p.NursingDate, p.CounselingDate, p.ConsultationDate)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateID
	}
	return err
}

func (r *repoPG) CountByIDPrefix(ctx context.Context, prefix string) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM patients WHERE patient_id LIKE $1 || '%'`, prefix).Scan(&n)
	return n, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
}

func (r *repoPG) GetByPatientID(ctx context.Context, patientID string) (*Patient, error) {
	return r.scan(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE patient_id = $1`, patientID))
}

func (r *repoPG) Search(ctx context.Context, params map[string]string, limit, offset int) ([]*Patient, int, error) {
	query := `SELECT ` + patientCols + ` FROM patients WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM patients WHERE 1=1`
	var args []interface{}
	idx := 1

	if q, ok := params["q"]; ok && q != "" {
		clause := fmt.Sprintf(` AND (name ILIKE $%d OR phone ILIKE $%d OR patient_id ILIKE $%d)`, idx, idx, idx)
		query += clause
		countQuery += clause
		args = append(args, "%"+q+"%")
		idx++
	}
	if s, ok := params["status"]; ok && s != "" {
		query += fmt.Sprintf(` AND status = $%d`, idx)
		countQuery += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, s)
		idx++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Patient
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}

// opt unwraps an optional patch field for COALESCE updates: nil keeps the
// stored value, a set pointer overwrites it.
func opt[T any](p *T) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func (r *repoPG) ApplyPatch(ctx context.Context, patientID string, patch *Patch) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			name = COALESCE($2, name),
			date_of_birth = COALESCE($3, date_of_birth),
			gender = COALESCE($4, gender),
			phone = COALESCE($5, phone),
			email = COALESCE($6, email),
			address = COALESCE($7, address),
			partner_name = COALESCE($8, partner_name),
			emergency_contact = COALESCE($9, emergency_contact),
			referral_source = COALESCE($10, referral_source),
			blood_pressure = COALESCE($11, blood_pressure),
			pulse = COALESCE($12, pulse),
			temperature = COALESCE($13, temperature),
			weight = COALESCE($14, weight),
			height = COALESCE($15, height),
			past_conditions = COALESCE($16, past_conditions),
			known_allergies = COALESCE($17, known_allergies),
			family_history = COALESCE($18, family_history),
			previous_surgeries = COALESCE($19, previous_surgeries),
			ongoing_therapies = COALESCE($20, ongoing_therapies),
			medications = COALESCE($21, medications),
			nursing_notes = COALESCE($22, nursing_notes),
			treatment_options = COALESCE($23, treatment_options),
			patient_concerns = COALESCE($24, patient_concerns),
			counselor_recommendations = COALESCE($25, counselor_recommendations),
			estimated_cost = COALESCE($26, estimated_cost),
			payment_plan_type = COALESCE($27, payment_plan_type),
			installment_amount = COALESCE($28, installment_amount),
			installment_count = COALESCE($29, installment_count),
			payment_discussion = COALESCE($30, payment_discussion),
			payment_status = COALESCE($31, payment_status),
			counseling_notes = COALESCE($32, counseling_notes),
			diagnosis = COALESCE($33, diagnosis),
			secondary_diagnosis = COALESCE($34, secondary_diagnosis),
			observations = COALESCE($35, observations),
			recommendations = COALESCE($36, recommendations),
			prescriptions = COALESCE($37, prescriptions),
			lab_tests = COALESCE($38, lab_tests),
			scans = COALESCE($39, scans),
			custom_tests = COALESCE($40, custom_tests),
			treatment_plan_id = COALESCE($41, treatment_plan_id),
			nursing_date = COALESCE($42, nursing_date),
			counseling_date = COALESCE($43, counseling_date),
			consultation_date = COALESCE($44, consultation_date),
			updated_at = NOW()
		WHERE patient_id = $1`,
		patientID,
		opt(patch.Name), opt(patch.DateOfBirth), opt(patch.Gender), opt(patch.Phone),
		opt(patch.Email), opt(patch.Address), opt(patch.PartnerName),
		opt(patch.EmergencyContact), opt(patch.ReferralSource),
		opt(patch.BloodPressure), opt(patch.Pulse), opt(patch.Temperature),
		opt(patch.Weight), opt(patch.Height),
		opt(patch.PastConditions), opt(patch.KnownAllergies), opt(patch.FamilyHistory),
		opt(patch.PreviousSurgeries), opt(patch.OngoingTherapies), opt(patch.Medications),
		opt(patch.NursingNotes),
		opt(patch.TreatmentOptions), opt(patch.PatientConcerns), opt(patch.CounselorRecommendations),
		opt(patch.EstimatedCost), opt(patch.PaymentPlanType), opt(patch.InstallmentAmount),
		opt(patch.InstallmentCount), opt(patch.PaymentDiscussion), opt(patch.PaymentStatus),
		opt(patch.CounselingNotes),
		opt(patch.Diagnosis), opt(patch.SecondaryDiagnosis), opt(patch.Observations),
		opt(patch.Recommendations), opt(patch.Prescriptions), opt(patch.LabTests),
		opt(patch.Scans), opt(patch.CustomTests),
		opt(patch.TreatmentPlanID),
		opt(patch.NursingDate), opt(patch.CounselingDate), opt(patch.ConsultationDate))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, patientID string, status phase.PatientStatus) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE patients SET status = $2, updated_at = NOW() WHERE patient_id = $1`,
		patientID, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
