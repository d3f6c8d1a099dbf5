package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/auth"
	"github.com/guidari-center/guidari-backend/internal/clinic/billing"
	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
)

// calculator snapshots the three collections into a fresh billing calculator.
// Only roster members with the professional role contribute commission rates.
func (h *Handler) calculator() *billing.Calculator {
	users, _ := h.sync.Users()
	patients, _ := h.sync.Patients()
	appts, _ := h.sync.Appointments()
	return billing.NewCalculator(users, patients, appts)
}

// financeFilter builds the record filter from query parameters. Professionals
// are always scoped to their own records regardless of what they ask for.
func (h *Handler) financeFilter(c *gin.Context) billing.Filter {
	f := billing.Filter{
		From:           c.Query("from"),
		To:             c.Query("to"),
		PatientID:      c.Query("patientId"),
		ProfessionalID: c.Query("professionalId"),
		DocType:        domain.DocType(c.Query("type")),
	}
	if !auth.CallerIsAdmin(c) {
		f.ProfessionalID = auth.CallerID(c)
	}
	return f
}

func (h *Handler) liabilityBasis(c *gin.Context) billing.LiabilityBasis {
	switch billing.LiabilityBasis(c.Query("basis")) {
	case billing.BasisSessions:
		return billing.BasisSessions
	case billing.BasisPaidInvoices:
		return billing.BasisPaidInvoices
	}
	return h.basis
}

func (h *Handler) financeSummary(c *gin.Context) {
	f := h.financeFilter(c)
	basis := h.liabilityBasis(c)
	summary := h.calculator().Summarize(f, basis)
	c.JSON(http.StatusOK, gin.H{"ok": true, "summary": summary, "basis": basis})
}

func (h *Handler) financeProfessionals(c *gin.Context) {
	rows := h.calculator().EarningsByProfessional(h.financeFilter(c))
	c.JSON(http.StatusOK, gin.H{"ok": true, "professionals": rows})
}

// financeReport streams the finance workbook as an attachment.
func (h *Handler) financeReport(c *gin.Context) {
	f := h.financeFilter(c)
	basis := h.liabilityBasis(c)

	data, err := h.calculator().GenerateReport(f, basis)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	filename := fmt.Sprintf("finanzas_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
