package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

func fixtureCalculator() *Calculator {
	professionals := []domain.User{
		{ID: "pro-1", Name: "Laura Gómez", Role: domain.RoleProfessional, CommissionRate: 70},
		{ID: "pro-2", Name: "Beto Díaz", Role: domain.RoleProfessional, CommissionRate: 50},
	}
	patients := []domain.Patient{
		{
			ID:                    "pat-1",
			FirstName:             "Mateo",
			AssignedProfessionals: []string{"pro-1"},
			Documents: []domain.Document{
				{ID: "inv-1", PatientID: "pat-1", Type: domain.DocFactura, Date: "2026-03-05", Amount: 10000, Status: domain.PaymentPaid},
				{ID: "inv-2", PatientID: "pat-1", Type: domain.DocFactura, Date: "2026-03-20", Amount: 4000, Status: domain.PaymentPending},
				{ID: "rep-1", PatientID: "pat-1", Type: domain.DocInforme, Date: "2026-03-10", Amount: 9999},
			},
		},
		{
			ID:                    "pat-2",
			FirstName:             "Sofía",
			AssignedProfessionals: []string{"pro-2"},
			Documents: []domain.Document{
				{ID: "inv-3", PatientID: "pat-2", Type: domain.DocFactura, Date: "2026-04-01", Amount: 6000, Status: domain.PaymentPaid},
			},
		},
	}
	appointments := []domain.Appointment{
		{ID: "ap-1", PatientID: "pat-1", ProfessionalID: "pro-1", Start: "2026-03-05T10:00:00", BaseValue: 10000},
		{ID: "ap-2", PatientID: "pat-2", ProfessionalID: "pro-2", Start: "2026-04-01T11:00:00", BaseValue: 6000},
		{ID: "ap-3", PatientID: "pat-1", ProfessionalID: "desconocido", Start: "2026-04-02T11:00:00", BaseValue: 1000},
	}
	return NewCalculator(professionals, patients, appointments)
}

func TestSummarizeInvoiceBasis(t *testing.T) {
	c := fixtureCalculator()
	s := c.Summarize(Filter{}, BasisPaidInvoices)

	// Only Factura documents feed the aggregates; the Informe is ignored.
	assert.InDelta(t, 16000, s.Collected, 0.001)
	assert.InDelta(t, 4000, s.Outstanding, 0.001)

	// Paid invoices attributed through each patient's first professional:
	// 10000*0.70 + 6000*0.50.
	assert.InDelta(t, 10000, s.StaffLiability, 0.001)
	assert.InDelta(t, 6000, s.CenterNet, 0.001)
}

func TestSummarizeSessionBasis(t *testing.T) {
	c := fixtureCalculator()
	s := c.Summarize(Filter{}, BasisSessions)

	// 10000*0.70 + 6000*0.50 + 1000*fallback(0.60).
	assert.InDelta(t, 10600, s.StaffLiability, 0.001)
	assert.InDelta(t, 16000-10600, s.CenterNet, 0.001)
}

// Toggling an invoice to paid moves its amount from outstanding to collected
// and raises the center net by amount*(1-rate/100).
func TestInvoiceToggleMovesAggregates(t *testing.T) {
	c := fixtureCalculator()
	before := c.Summarize(Filter{}, BasisPaidInvoices)

	c.patients[0].Documents[1].Status = domain.PaymentPaid
	after := c.Summarize(Filter{}, BasisPaidInvoices)

	assert.InDelta(t, before.Collected+4000, after.Collected, 0.001)
	assert.InDelta(t, before.Outstanding-4000, after.Outstanding, 0.001)
	assert.InDelta(t, before.CenterNet+4000*(1-0.70), after.CenterNet, 0.001)
}

func TestSummarizeDateFilter(t *testing.T) {
	c := fixtureCalculator()
	s := c.Summarize(Filter{From: "2026-03-01", To: "2026-03-31"}, BasisPaidInvoices)

	assert.InDelta(t, 10000, s.Collected, 0.001)
	assert.InDelta(t, 4000, s.Outstanding, 0.001)
}

func TestDocumentsProfessionalScope(t *testing.T) {
	c := fixtureCalculator()

	docs := c.Documents(Filter{ProfessionalID: "pro-2"})
	require.Len(t, docs, 1)
	assert.Equal(t, "inv-3", docs[0].ID)
}

func TestSessionsFilter(t *testing.T) {
	c := fixtureCalculator()

	sessions := c.Sessions(Filter{PatientID: "pat-1", From: "2026-04-01"})
	require.Len(t, sessions, 1)
	assert.Equal(t, "ap-3", sessions[0].ID)
}

func TestEarningsByProfessional(t *testing.T) {
	c := fixtureCalculator()
	rows := c.EarningsByProfessional(Filter{})
	require.Len(t, rows, 2)

	byID := map[string]ProfessionalEarnings{}
	for _, r := range rows {
		byID[r.ProfessionalID] = r
	}

	laura := byID["pro-1"]
	assert.Equal(t, 1, laura.Sessions)
	assert.InDelta(t, 10000, laura.Gross, 0.001)
	assert.InDelta(t, 7000, laura.Commission, 0.001)
	assert.InDelta(t, 3000, laura.CenterShare, 0.001)

	beto := byID["pro-2"]
	assert.InDelta(t, 3000, beto.Commission, 0.001)
}

func TestRateFallback(t *testing.T) {
	c := fixtureCalculator()
	assert.InDelta(t, 0.70, c.rateFor("pro-1"), 0.0001)
	assert.InDelta(t, FallbackRate, c.rateFor("desconocido"), 0.0001)
}

func TestParseRate(t *testing.T) {
	assert.InDelta(t, 65.5, ParseRate("65.5"), 0.0001)
	assert.InDelta(t, 60, ParseRate(" 60 "), 0.0001)
	// Anything unparseable coerces to zero.
	assert.Zero(t, ParseRate("sesenta"))
	assert.Zero(t, ParseRate(""))
}
