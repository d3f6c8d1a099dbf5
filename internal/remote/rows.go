// Package remote talks to the hosted relational datastore. It exposes the
// three clinic tables through the RowStore interface with two backends: a
// PostgREST-style REST client and a direct Postgres connection.
package remote

import (
	"bytes"
	"strconv"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

// FlexFloat is a float64 column that tolerates string, null and empty-string
// encodings on the wire. Hosted stores are loose about numeric columns;
// anything unparseable degrades to zero instead of failing the batch.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	if b[0] == '"' {
		b = bytes.Trim(b, `"`)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexFloat(v)
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

// UserRow is the users table shape.
type UserRow struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"password"`
	PIN            string    `json:"pin"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Name           string    `json:"name"`
	DOB            *string   `json:"dob"`
	Role           string    `json:"role"`
	Avatar         string    `json:"avatar"`
	Specialty      string    `json:"specialty"`
	SessionValue   FlexFloat `json:"session_value"`
	CommissionRate FlexFloat `json:"commission_rate"`
}

// PatientRow is the patients table shape. Contact objects and the clinical
// collections live in JSON columns; assigned professionals in a text array.
type PatientRow struct {
	ID                    string                    `json:"id"`
	FirstName             string                    `json:"first_name"`
	LastName              string                    `json:"last_name"`
	DateOfBirth           *string                   `json:"date_of_birth"`
	Diagnosis             string                    `json:"diagnosis"`
	Insurance             string                    `json:"insurance"`
	Avatar                string                    `json:"avatar"`
	AffiliateNumber       string                    `json:"affiliate_number"`
	School                string                    `json:"school"`
	SupportTeacher        *domain.ContactPerson     `json:"support_teacher"`
	TherapeuticCompanion  *domain.ContactPerson     `json:"therapeutic_companion"`
	Responsible           *domain.ResponsiblePerson `json:"responsible"`
	AssignedProfessionals []string                  `json:"assigned_professionals"`
	ClinicalHistory       []domain.ClinicalNote     `json:"clinical_history"`
	Documents             []domain.Document         `json:"documents"`
}

// AppointmentRow is the appointments table shape.
type AppointmentRow struct {
	ID              string    `json:"id"`
	PatientID       string    `json:"patient_id"`
	ProfessionalID  string    `json:"professional_id"`
	Start           *string   `json:"start"`
	End             *string   `json:"end"`
	ParticularValue FlexFloat `json:"particular_value"`
	InsuranceValue  FlexFloat `json:"insurance_value"`
	BaseValue       FlexFloat `json:"base_value"`
}
