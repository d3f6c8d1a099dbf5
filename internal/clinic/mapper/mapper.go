// Package mapper translates between the in-memory entity shape and the remote
// row shape. Translation is lossless except that empty-string date fields are
// normalized to NULL on the way out (relational date columns reject empty
// strings). The mapper itself never fails: malformed upstream data degrades to
// zero values instead of failing the batch.
package mapper

import (
	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	"github.com/guidari-center/guidari-backend/internal/remote"
)

func UserFromRow(r remote.UserRow) domain.User {
	u := domain.User{
		ID:             r.ID,
		Email:          r.Email,
		Password:       r.Password,
		PIN:            r.PIN,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Name:           r.Name,
		DOB:            strFromNull(r.DOB),
		Role:           domain.Role(r.Role),
		Avatar:         r.Avatar,
		Specialty:      r.Specialty,
		SessionValue:   float64(r.SessionValue),
		CommissionRate: float64(r.CommissionRate),
	}
	if u.Role == "" {
		u.Role = domain.RoleProfessional
	}
	if u.Name == "" {
		u.Name = u.FullName()
	}
	return u
}

func UserToRow(u domain.User) remote.UserRow {
	return remote.UserRow{
		ID:             u.ID,
		Email:          u.Email,
		Password:       u.Password,
		PIN:            u.PIN,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		Name:           u.Name,
		DOB:            nullFromStr(u.DOB),
		Role:           string(u.Role),
		Avatar:         u.Avatar,
		Specialty:      u.Specialty,
		SessionValue:   remote.FlexFloat(u.SessionValue),
		CommissionRate: remote.FlexFloat(u.CommissionRate),
	}
}

func PatientFromRow(r remote.PatientRow) domain.Patient {
	p := domain.Patient{
		ID:                    r.ID,
		FirstName:             r.FirstName,
		LastName:              r.LastName,
		DateOfBirth:           strFromNull(r.DateOfBirth),
		Diagnosis:             r.Diagnosis,
		Insurance:             r.Insurance,
		Avatar:                r.Avatar,
		AffiliateNumber:       r.AffiliateNumber,
		School:                r.School,
		AssignedProfessionals: r.AssignedProfessionals,
		ClinicalHistory:       r.ClinicalHistory,
		Documents:             r.Documents,
	}
	if r.SupportTeacher != nil {
		p.SupportTeacher = *r.SupportTeacher
	}
	if r.TherapeuticCompanion != nil {
		p.TherapeuticCompanion = *r.TherapeuticCompanion
	}
	if r.Responsible != nil {
		p.Responsible = *r.Responsible
	}
	if p.AssignedProfessionals == nil {
		p.AssignedProfessionals = []string{}
	}
	if p.ClinicalHistory == nil {
		p.ClinicalHistory = []domain.ClinicalNote{}
	}
	if p.Documents == nil {
		p.Documents = []domain.Document{}
	}
	return p
}

func PatientToRow(p domain.Patient) remote.PatientRow {
	supportTeacher := p.SupportTeacher
	companion := p.TherapeuticCompanion
	responsible := p.Responsible
	r := remote.PatientRow{
		ID:                    p.ID,
		FirstName:             p.FirstName,
		LastName:              p.LastName,
		DateOfBirth:           nullFromStr(p.DateOfBirth),
		Diagnosis:             p.Diagnosis,
		Insurance:             p.Insurance,
		Avatar:                p.Avatar,
		AffiliateNumber:       p.AffiliateNumber,
		School:                p.School,
		SupportTeacher:        &supportTeacher,
		TherapeuticCompanion:  &companion,
		Responsible:           &responsible,
		AssignedProfessionals: p.AssignedProfessionals,
		ClinicalHistory:       p.ClinicalHistory,
		Documents:             p.Documents,
	}
	if r.AssignedProfessionals == nil {
		r.AssignedProfessionals = []string{}
	}
	if r.ClinicalHistory == nil {
		r.ClinicalHistory = []domain.ClinicalNote{}
	}
	if r.Documents == nil {
		r.Documents = []domain.Document{}
	}
	return r
}

func AppointmentFromRow(r remote.AppointmentRow) domain.Appointment {
	return domain.Appointment{
		ID:              r.ID,
		PatientID:       r.PatientID,
		ProfessionalID:  r.ProfessionalID,
		Start:           strFromNull(r.Start),
		End:             strFromNull(r.End),
		ParticularValue: float64(r.ParticularValue),
		InsuranceValue:  float64(r.InsuranceValue),
		BaseValue:       float64(r.BaseValue),
	}
}

func AppointmentToRow(a domain.Appointment) remote.AppointmentRow {
	return remote.AppointmentRow{
		ID:              a.ID,
		PatientID:       a.PatientID,
		ProfessionalID:  a.ProfessionalID,
		Start:           nullFromStr(a.Start),
		End:             nullFromStr(a.End),
		ParticularValue: remote.FlexFloat(a.ParticularValue),
		InsuranceValue:  remote.FlexFloat(a.InsuranceValue),
		BaseValue:       remote.FlexFloat(a.BaseValue),
	}
}

func UsersFromRows(rows []remote.UserRow) []domain.User {
	out := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		out = append(out, UserFromRow(r))
	}
	return out
}

func UsersToRows(users []domain.User) []remote.UserRow {
	out := make([]remote.UserRow, 0, len(users))
	for _, u := range users {
		out = append(out, UserToRow(u))
	}
	return out
}

func PatientsFromRows(rows []remote.PatientRow) []domain.Patient {
	out := make([]domain.Patient, 0, len(rows))
	for _, r := range rows {
		out = append(out, PatientFromRow(r))
	}
	return out
}

func PatientsToRows(patients []domain.Patient) []remote.PatientRow {
	out := make([]remote.PatientRow, 0, len(patients))
	for _, p := range patients {
		out = append(out, PatientToRow(p))
	}
	return out
}

func AppointmentsFromRows(rows []remote.AppointmentRow) []domain.Appointment {
	out := make([]domain.Appointment, 0, len(rows))
	for _, r := range rows {
		out = append(out, AppointmentFromRow(r))
	}
	return out
}

func AppointmentsToRows(appts []domain.Appointment) []remote.AppointmentRow {
	out := make([]remote.AppointmentRow, 0, len(appts))
	for _, a := range appts {
		out = append(out, AppointmentToRow(a))
	}
	return out
}

func strFromNull(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullFromStr maps the empty string to NULL; date columns reject ''.
func nullFromStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
