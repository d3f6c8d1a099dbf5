// Package billing derives the center's aggregate financial figures from the
// in-memory collections. Nothing is cached: every call recomputes from the
// current data.
package billing

import (
	"strconv"
	"strings"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

// FallbackRate applies when an invoice or session cannot be attributed to a
// known professional.
const FallbackRate = 0.60

// LiabilityBasis selects which records feed the staff commission figure:
// paid invoices (cash basis) or all sessions regardless of invoicing
// (conservative liability estimate). The center-net formula is provisional
// either way; see the design notes.
type LiabilityBasis string

const (
	BasisPaidInvoices LiabilityBasis = "invoices"
	BasisSessions     LiabilityBasis = "sessions"
)

// Filter narrows the records under consideration. Zero values mean "all".
// Dates are inclusive ISO-8601 day bounds.
type Filter struct {
	From           string
	To             string
	PatientID      string
	ProfessionalID string
	DocType        domain.DocType
}

func (f Filter) matchDate(date string) bool {
	day := date
	if i := strings.IndexByte(day, 'T'); i >= 0 {
		day = day[:i]
	}
	if f.From != "" && day < f.From {
		return false
	}
	if f.To != "" && day > f.To {
		return false
	}
	return true
}

// Summary is the four-figure panel: collected revenue, outstanding
// receivables, staff commission liability and the center's net share.
type Summary struct {
	Collected      float64 `json:"collected"`
	Outstanding    float64 `json:"outstanding"`
	StaffLiability float64 `json:"staffLiability"`
	CenterNet      float64 `json:"centerNet"`
}

type Calculator struct {
	professionals []domain.User
	patients      []domain.Patient
	appointments  []domain.Appointment
}

func NewCalculator(professionals []domain.User, patients []domain.Patient, appointments []domain.Appointment) *Calculator {
	return &Calculator{
		professionals: professionals,
		patients:      patients,
		appointments:  appointments,
	}
}

// Documents returns the patient documents that pass the filter. When the
// filter names a professional, only documents of patients assigned to that
// professional are considered.
func (c *Calculator) Documents(f Filter) []domain.Document {
	var out []domain.Document
	for _, p := range c.patients {
		if f.PatientID != "" && p.ID != f.PatientID {
			continue
		}
		if f.ProfessionalID != "" && !p.IsAssigned(f.ProfessionalID) {
			continue
		}
		for _, d := range p.Documents {
			if f.DocType != "" && d.Type != f.DocType {
				continue
			}
			if !f.matchDate(d.Date) {
				continue
			}
			out = append(out, d)
		}
	}
	return out
}

// Sessions returns the appointments that pass the filter.
func (c *Calculator) Sessions(f Filter) []domain.Appointment {
	var out []domain.Appointment
	for _, a := range c.appointments {
		if f.ProfessionalID != "" && a.ProfessionalID != f.ProfessionalID {
			continue
		}
		if f.PatientID != "" && a.PatientID != f.PatientID {
			continue
		}
		if !f.matchDate(a.Start) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Summarize computes the aggregate figures for the filtered records. Center
// net is collected revenue minus liability: uncollected receivables are
// deliberately excluded (cash-basis accounting).
func (c *Calculator) Summarize(f Filter, basis LiabilityBasis) Summary {
	var s Summary

	invoiceFilter := f
	invoiceFilter.DocType = domain.DocFactura
	for _, d := range c.Documents(invoiceFilter) {
		switch d.Status {
		case domain.PaymentPaid:
			s.Collected += d.Amount
		case domain.PaymentPending:
			s.Outstanding += d.Amount
		}
	}

	switch basis {
	case BasisSessions:
		for _, a := range c.Sessions(f) {
			s.StaffLiability += a.BaseValue * c.rateFor(a.ProfessionalID)
		}
	default:
		for _, d := range c.Documents(invoiceFilter) {
			if d.Status != domain.PaymentPaid {
				continue
			}
			s.StaffLiability += d.Amount * c.invoiceRate(d)
		}
	}

	s.CenterNet = s.Collected - s.StaffLiability
	return s
}

// rateFor resolves a professional's commission rate as a fraction, falling
// back when the reference does not resolve.
func (c *Calculator) rateFor(professionalID string) float64 {
	for _, u := range c.professionals {
		if u.ID == professionalID {
			return u.CommissionRate / 100
		}
	}
	return FallbackRate
}

// invoiceRate attributes an invoice to the owning patient's first assigned
// professional. Unknown patients and unassigned patients fall back.
func (c *Calculator) invoiceRate(d domain.Document) float64 {
	for _, p := range c.patients {
		if p.ID != d.PatientID {
			continue
		}
		if len(p.AssignedProfessionals) == 0 {
			return FallbackRate
		}
		return c.rateFor(p.AssignedProfessionals[0])
	}
	return FallbackRate
}

// ProfessionalEarnings is one row of the per-professional breakdown.
type ProfessionalEarnings struct {
	ProfessionalID string  `json:"professionalId"`
	Name           string  `json:"name"`
	Sessions       int     `json:"sessions"`
	Gross          float64 `json:"gross"`
	Commission     float64 `json:"commission"`
	CenterShare    float64 `json:"centerShare"`
}

// EarningsByProfessional aggregates the filtered sessions per professional.
// Staff without sessions still appear with zero rows when they hold the
// professional role, matching the finance board.
func (c *Calculator) EarningsByProfessional(f Filter) []ProfessionalEarnings {
	rows := make([]ProfessionalEarnings, 0, len(c.professionals))
	sessions := c.Sessions(f)

	for _, u := range c.professionals {
		if u.Role != domain.RoleProfessional && !c.hasSessions(u.ID, sessions) {
			continue
		}
		row := ProfessionalEarnings{ProfessionalID: u.ID, Name: u.Name}
		for _, a := range sessions {
			if a.ProfessionalID != u.ID {
				continue
			}
			row.Sessions++
			row.Gross += a.BaseValue
		}
		row.Commission = row.Gross * (u.CommissionRate / 100)
		row.CenterShare = row.Gross - row.Commission
		rows = append(rows, row)
	}
	return rows
}

func (c *Calculator) hasSessions(professionalID string, sessions []domain.Appointment) bool {
	for _, a := range sessions {
		if a.ProfessionalID == professionalID {
			return true
		}
	}
	return false
}

// ParseRate parses a commission-rate input. Anything that does not parse as a
// number coerces to 0; range is not validated here.
func ParseRate(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
