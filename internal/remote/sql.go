package remote

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// SQLStore talks to the hosted Postgres directly, for deployments that have a
// DSN instead of a REST endpoint. Same table shapes as the REST path.
type SQLStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewSQLStore(db *sql.DB, logger *zap.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

func (s *SQLStore) SelectUsers(ctx context.Context) ([]UserRow, error) {
	const q = `
SELECT id, email, password, pin, first_name, last_name, name, dob, role,
       avatar, specialty, session_value, commission_rate
FROM users
ORDER BY name;
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	out := make([]UserRow, 0, 16)
	for rows.Next() {
		var (
			r                            nullableUserCols
			sessionValue, commissionRate sql.NullFloat64
		)
		if err := rows.Scan(&r.id, &r.email, &r.password, &r.pin, &r.firstName,
			&r.lastName, &r.name, &r.dob, &r.role, &r.avatar, &r.specialty,
			&sessionValue, &commissionRate); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u := UserRow{
			ID:             r.id,
			Email:          r.email.String,
			Password:       r.password.String,
			PIN:            r.pin.String,
			FirstName:      r.firstName.String,
			LastName:       r.lastName.String,
			Name:           r.name.String,
			Role:           r.role.String,
			Avatar:         r.avatar.String,
			Specialty:      r.specialty.String,
			SessionValue:   FlexFloat(sessionValue.Float64),
			CommissionRate: FlexFloat(commissionRate.Float64),
		}
		if r.dob.Valid {
			dob := r.dob.String
			u.DOB = &dob
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

type nullableUserCols struct {
	id                           string
	email, password, pin         sql.NullString
	firstName, lastName, name    sql.NullString
	role, avatar, specialty, dob sql.NullString
}

func (s *SQLStore) SelectPatients(ctx context.Context) ([]PatientRow, error) {
	const q = `
SELECT id, first_name, last_name, date_of_birth, diagnosis, insurance, avatar,
       affiliate_number, school, support_teacher, therapeutic_companion,
       responsible, assigned_professionals, clinical_history, documents
FROM patients
ORDER BY last_name, first_name;
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select patients: %w", err)
	}
	defer rows.Close()

	out := make([]PatientRow, 0, 16)
	for rows.Next() {
		var (
			p                                      PatientRow
			firstName, lastName, dob               sql.NullString
			diagnosis, insurance, avatar           sql.NullString
			affiliate, school                      sql.NullString
			supportTeacher, companion, responsible []byte
			history, documents                     []byte
			assigned                               pq.StringArray
		)
		if err := rows.Scan(&p.ID, &firstName, &lastName, &dob, &diagnosis,
			&insurance, &avatar, &affiliate, &school, &supportTeacher,
			&companion, &responsible, &assigned, &history, &documents); err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		p.FirstName = firstName.String
		p.LastName = lastName.String
		p.Diagnosis = diagnosis.String
		p.Insurance = insurance.String
		p.Avatar = avatar.String
		p.AffiliateNumber = affiliate.String
		p.School = school.String
		p.AssignedProfessionals = assigned
		if dob.Valid {
			d := dob.String
			p.DateOfBirth = &d
		}
		unmarshalColumn(supportTeacher, &p.SupportTeacher, s.logger)
		unmarshalColumn(companion, &p.TherapeuticCompanion, s.logger)
		unmarshalColumn(responsible, &p.Responsible, s.logger)
		unmarshalColumn(history, &p.ClinicalHistory, s.logger)
		unmarshalColumn(documents, &p.Documents, s.logger)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) SelectAppointments(ctx context.Context) ([]AppointmentRow, error) {
	const q = `
SELECT id, patient_id, professional_id, "start", "end",
       particular_value, insurance_value, base_value
FROM appointments
ORDER BY "start";
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("select appointments: %w", err)
	}
	defer rows.Close()

	out := make([]AppointmentRow, 0, 32)
	for rows.Next() {
		var (
			a                     AppointmentRow
			patientID, proID      sql.NullString
			start, end            sql.NullString
			particular, insurance sql.NullFloat64
			base                  sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &patientID, &proID, &start, &end,
			&particular, &insurance, &base); err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		a.PatientID = patientID.String
		a.ProfessionalID = proID.String
		if start.Valid {
			v := start.String
			a.Start = &v
		}
		if end.Valid {
			v := end.String
			a.End = &v
		}
		a.ParticularValue = FlexFloat(particular.Float64)
		a.InsuranceValue = FlexFloat(insurance.Float64)
		a.BaseValue = FlexFloat(base.Float64)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *SQLStore) UpsertUsers(ctx context.Context, rows []UserRow) error {
	if len(rows) == 0 {
		return nil
	}
	const q = `
INSERT INTO users (id, email, password, pin, first_name, last_name, name, dob,
                   role, avatar, specialty, session_value, commission_rate)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    email = EXCLUDED.email, password = EXCLUDED.password, pin = EXCLUDED.pin,
    first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
    name = EXCLUDED.name, dob = EXCLUDED.dob, role = EXCLUDED.role,
    avatar = EXCLUDED.avatar, specialty = EXCLUDED.specialty,
    session_value = EXCLUDED.session_value,
    commission_rate = EXCLUDED.commission_rate;
`
	return s.inTx(ctx, "upsert users", func(tx *sql.Tx) error {
		for _, r := range rows {
			if _, err := tx.ExecContext(ctx, q, r.ID, r.Email, r.Password,
				r.PIN, r.FirstName, r.LastName, r.Name, r.DOB, r.Role,
				r.Avatar, r.Specialty, float64(r.SessionValue),
				float64(r.CommissionRate)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStore) UpsertPatients(ctx context.Context, rows []PatientRow) error {
	if len(rows) == 0 {
		return nil
	}
	const q = `
INSERT INTO patients (id, first_name, last_name, date_of_birth, diagnosis,
                      insurance, avatar, affiliate_number, school,
                      support_teacher, therapeutic_companion, responsible,
                      assigned_professionals, clinical_history, documents)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
ON CONFLICT (id) DO UPDATE SET
    first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
    date_of_birth = EXCLUDED.date_of_birth, diagnosis = EXCLUDED.diagnosis,
    insurance = EXCLUDED.insurance, avatar = EXCLUDED.avatar,
    affiliate_number = EXCLUDED.affiliate_number, school = EXCLUDED.school,
    support_teacher = EXCLUDED.support_teacher,
    therapeutic_companion = EXCLUDED.therapeutic_companion,
    responsible = EXCLUDED.responsible,
    assigned_professionals = EXCLUDED.assigned_professionals,
    clinical_history = EXCLUDED.clinical_history,
    documents = EXCLUDED.documents;
`
	return s.inTx(ctx, "upsert patients", func(tx *sql.Tx) error {
		for _, r := range rows {
			if _, err := tx.ExecContext(ctx, q, r.ID, r.FirstName, r.LastName,
				r.DateOfBirth, r.Diagnosis, r.Insurance, r.Avatar,
				r.AffiliateNumber, r.School,
				marshalColumn(r.SupportTeacher),
				marshalColumn(r.TherapeuticCompanion),
				marshalColumn(r.Responsible),
				pq.Array(r.AssignedProfessionals),
				marshalColumn(r.ClinicalHistory),
				marshalColumn(r.Documents)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStore) UpsertAppointments(ctx context.Context, rows []AppointmentRow) error {
	if len(rows) == 0 {
		return nil
	}
	const q = `
INSERT INTO appointments (id, patient_id, professional_id, "start", "end",
                          particular_value, insurance_value, base_value)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
    patient_id = EXCLUDED.patient_id,
    professional_id = EXCLUDED.professional_id,
    "start" = EXCLUDED."start", "end" = EXCLUDED."end",
    particular_value = EXCLUDED.particular_value,
    insurance_value = EXCLUDED.insurance_value,
    base_value = EXCLUDED.base_value;
`
	return s.inTx(ctx, "upsert appointments", func(tx *sql.Tx) error {
		for _, r := range rows {
			if _, err := tx.ExecContext(ctx, q, r.ID, r.PatientID,
				r.ProfessionalID, r.Start, r.End, float64(r.ParticularValue),
				float64(r.InsuranceValue), float64(r.BaseValue)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLStore) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "users", id)
}

func (s *SQLStore) DeletePatient(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "patients", id)
}

func (s *SQLStore) DeleteAppointment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "appointments", id)
}

func (s *SQLStore) deleteByID(ctx context.Context, table, id string) error {
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1;`, table)
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", table, id, err)
	}
	return nil
}

func (s *SQLStore) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

// marshalColumn serializes a JSON column value. lib/pq sends []byte as bytea,
// so the value goes over as text for the jsonb cast.
func marshalColumn(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return string(b)
}

// unmarshalColumn fills dst from a JSON column, leaving it zero on NULL or
// malformed content. Bad rows degrade, they never fail the batch.
func unmarshalColumn(raw []byte, dst any, logger *zap.Logger) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil && logger != nil {
		logger.Warn("malformed json column ignored", zap.Error(err))
	}
}
