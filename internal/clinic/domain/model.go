package domain

import (
	"slices"
	"sort"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleProfessional Role = "PROFESSIONAL"
)

// User is a staff record: either the administrator or a treating professional.
// Name is stored redundantly; callers keep it consistent with the name parts.
type User struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Password       string  `json:"password,omitempty"`
	PIN            string  `json:"pin,omitempty"`
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Name           string  `json:"name"`
	DOB            string  `json:"dob,omitempty"`
	Role           Role    `json:"role"`
	Avatar         string  `json:"avatar,omitempty"`
	Specialty      string  `json:"specialty,omitempty"`
	SessionValue   float64 `json:"sessionValue"`
	CommissionRate float64 `json:"commissionRate"`
}

// FullName derives the display name from the stored parts.
func (u User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return u.Name
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type DocType string

const (
	DocFactura  DocType = "Factura"
	DocInforme  DocType = "Informe"
	DocPlanilla DocType = "Planilla"
	DocOtro     DocType = "Otro"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pendiente"
	PaymentPaid    PaymentStatus = "pagada"
)

// Document is a tracked file reference owned by a patient. Amount, receipt
// number and payment status are only meaningful for type Factura; financial
// aggregation ignores every other type.
type Document struct {
	ID            string        `json:"id"`
	PatientID     string        `json:"patientId"`
	Type          DocType       `json:"type"`
	Name          string        `json:"name"`
	Date          string        `json:"date"`
	URL           string        `json:"url,omitempty"`
	Amount        float64       `json:"amount,omitempty"`
	ReceiptNumber string        `json:"receiptNumber,omitempty"`
	Status        PaymentStatus `json:"status,omitempty"`
}

type ContactPerson struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type ResponsiblePerson struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// ClinicalNote is append-only by convention: there is no edit or delete path.
type ClinicalNote struct {
	ID             string `json:"id"`
	Date           string `json:"date"`
	ProfessionalID string `json:"professionalId"`
	Content        string `json:"content"`
}

type Patient struct {
	ID                    string            `json:"id"`
	FirstName             string            `json:"firstName"`
	LastName              string            `json:"lastName"`
	DateOfBirth           string            `json:"dateOfBirth"`
	Diagnosis             string            `json:"diagnosis"`
	Insurance             string            `json:"insurance"`
	Avatar                string            `json:"avatar,omitempty"`
	AffiliateNumber       string            `json:"affiliateNumber,omitempty"`
	School                string            `json:"school,omitempty"`
	SupportTeacher        ContactPerson     `json:"supportTeacher"`
	TherapeuticCompanion  ContactPerson     `json:"therapeuticCompanion"`
	Responsible           ResponsiblePerson `json:"responsible"`
	AssignedProfessionals []string          `json:"assignedProfessionals"`
	ClinicalHistory       []ClinicalNote    `json:"clinicalHistory"`
	Documents             []Document        `json:"documents"`
}

// AddNote inserts a clinical note keeping the history ordered by date
// descending (newest first). Equal dates keep insertion order among
// themselves, newest insertion first.
func (p *Patient) AddNote(n ClinicalNote) {
	p.ClinicalHistory = append([]ClinicalNote{n}, p.ClinicalHistory...)
	sort.SliceStable(p.ClinicalHistory, func(i, j int) bool {
		return p.ClinicalHistory[i].Date > p.ClinicalHistory[j].Date
	})
}

// Clone returns a copy whose nested slices do not share backing arrays with
// the receiver, so a cloned snapshot can be edited freely.
func (p Patient) Clone() Patient {
	out := p
	out.AssignedProfessionals = slices.Clone(p.AssignedProfessionals)
	out.ClinicalHistory = slices.Clone(p.ClinicalHistory)
	out.Documents = slices.Clone(p.Documents)
	return out
}

// IsAssigned reports whether the given professional treats this patient.
func (p Patient) IsAssigned(professionalID string) bool {
	for _, id := range p.AssignedProfessionals {
		if id == professionalID {
			return true
		}
	}
	return false
}

// Appointment is a one-hour session between a patient and a professional.
// BaseValue is the sum of the particular and insurance amounts and is the
// basis for session-based commission accounting.
type Appointment struct {
	ID              string  `json:"id"`
	PatientID       string  `json:"patientId"`
	ProfessionalID  string  `json:"professionalId"`
	Start           string  `json:"start"`
	End             string  `json:"end"`
	ParticularValue float64 `json:"particularValue"`
	InsuranceValue  float64 `json:"insuranceValue"`
	BaseValue       float64 `json:"baseValue"`
}

type LogStatus string

const (
	LogSuccess LogStatus = "success"
	LogError   LogStatus = "error"
)

// LogEntry is a diagnostic record of a cloud operation. Entries are never
// replayed; only the most recent ones are retained.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp string    `json:"timestamp"`
	Action    string    `json:"action"`
	Status    LogStatus `json:"status"`
	Message   string    `json:"message"`
}
