package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/auth"
	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
)

func (h *Handler) listPatients(c *gin.Context) {
	patients, version := h.sync.Patients()
	c.JSON(http.StatusOK, gin.H{"ok": true, "patients": patients, "version": version})
}

type savePatientsReq struct {
	Patients []domain.Patient `json:"patients"`
	Version  *uint64          `json:"version"`
}

func (h *Handler) savePatients(c *gin.Context) {
	var req savePatientsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Patients == nil || req.Version == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "patients and version are required"})
		return
	}
	for _, p := range req.Patients {
		if p.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "patient records need an id"})
			return
		}
	}

	version, err := h.sync.SavePatients(c.Request.Context(), req.Patients, *req.Version)
	h.saveResult(c, version, err, nil)
}

func (h *Handler) deletePatient(c *gin.Context) {
	err := h.sync.DeletePatient(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, clinicsync.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "patient not found"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
	}
}

type addNoteReq struct {
	Content string `json:"content"`
	Date    string `json:"date"`
}

// addNote appends a clinical note authored by the caller. Professionals may
// only write on patients assigned to them; the administrator may write on any.
func (h *Handler) addNote(c *gin.Context) {
	var req addNoteReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "content is required"})
		return
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	note := domain.ClinicalNote{
		ID:             domain.NewID(),
		Date:           date,
		ProfessionalID: auth.CallerID(c),
		Content:        strings.TrimSpace(req.Content),
	}

	h.mutatePatient(c, c.Param("id"), true, func(p *domain.Patient) error {
		p.AddNote(note)
		return nil
	}, gin.H{"note": note})
}

type addDocumentReq struct {
	Type          domain.DocType `json:"type"`
	Name          string         `json:"name"`
	Date          string         `json:"date"`
	URL           string         `json:"url"`
	Amount        float64        `json:"amount"`
	ReceiptNumber string         `json:"receiptNumber"`
}

// addDocument stores a document reference under the patient. Invoices start
// unpaid unless toggled later.
func (h *Handler) addDocument(c *gin.Context) {
	var req addDocumentReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "name is required"})
		return
	}
	switch req.Type {
	case domain.DocFactura, domain.DocInforme, domain.DocPlanilla, domain.DocOtro:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unknown document type"})
		return
	}
	date := req.Date
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	doc := domain.Document{
		ID:            domain.NewID(),
		PatientID:     c.Param("id"),
		Type:          req.Type,
		Name:          strings.TrimSpace(req.Name),
		Date:          date,
		URL:           req.URL,
		Amount:        req.Amount,
		ReceiptNumber: req.ReceiptNumber,
	}
	if doc.Type == domain.DocFactura {
		doc.Status = domain.PaymentPending
	}

	h.mutatePatient(c, c.Param("id"), true, func(p *domain.Patient) error {
		p.Documents = append(p.Documents, doc)
		return nil
	}, gin.H{"document": doc})
}

type invoiceStatusReq struct {
	Status domain.PaymentStatus `json:"status"`
}

var errDocumentNotFound = errors.New("document not found")

// setInvoiceStatus flips an invoice between pending and paid, which moves its
// amount between the outstanding and collected aggregates.
func (h *Handler) setInvoiceStatus(c *gin.Context) {
	var req invoiceStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if req.Status != domain.PaymentPending && req.Status != domain.PaymentPaid {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "status must be pendiente or pagada"})
		return
	}
	docID := c.Param("docId")

	h.mutatePatient(c, c.Param("id"), false, func(p *domain.Patient) error {
		for i := range p.Documents {
			if p.Documents[i].ID == docID {
				p.Documents[i].Status = req.Status
				return nil
			}
		}
		return errDocumentNotFound
	}, nil)
}

// mutatePatient applies an in-place change to one patient and persists the
// resulting collection through the versioned save path. When checkAssignment
// is set, professionals are restricted to their own patients.
func (h *Handler) mutatePatient(c *gin.Context, id string, checkAssignment bool, apply func(*domain.Patient) error, extra gin.H) {
	patients, base := h.sync.Patients()

	idx := -1
	for i := range patients {
		if patients[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "patient not found"})
		return
	}
	if checkAssignment && !auth.CallerIsAdmin(c) && !patients[idx].IsAssigned(auth.CallerID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "patient is not assigned to you"})
		return
	}

	if err := apply(&patients[idx]); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		return
	}

	version, err := h.sync.SavePatients(c.Request.Context(), patients, base)
	payload := gin.H{"patient": patients[idx]}
	for k, v := range extra {
		payload[k] = v
	}
	h.saveResult(c, version, err, payload)
}
