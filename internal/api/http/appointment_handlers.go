package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
)

// Session times travel as local wall-clock strings.
const sessionTimeLayout = "2006-01-02T15:04:05"

// Sessions always last one hour.
const sessionDuration = time.Hour

func (h *Handler) listAppointments(c *gin.Context) {
	appts, version := h.sync.Appointments()
	c.JSON(http.StatusOK, gin.H{"ok": true, "appointments": appts, "version": version})
}

type saveAppointmentsReq struct {
	Appointments []domain.Appointment `json:"appointments"`
	Version      *uint64              `json:"version"`
}

func (h *Handler) saveAppointments(c *gin.Context) {
	var req saveAppointmentsReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Appointments == nil || req.Version == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "appointments and version are required"})
		return
	}
	for i := range req.Appointments {
		a := &req.Appointments[i]
		if a.ID == "" || a.PatientID == "" || a.ProfessionalID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "appointments need id, patientId and professionalId"})
			return
		}
		if a.BaseValue == 0 {
			a.BaseValue = a.ParticularValue + a.InsuranceValue
		}
		start, err := time.Parse(sessionTimeLayout, a.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "appointment start must be YYYY-MM-DDTHH:MM:SS"})
			return
		}
		if a.End == "" {
			a.End = start.Add(sessionDuration).Format(sessionTimeLayout)
			continue
		}
		end, err := time.Parse(sessionTimeLayout, a.End)
		if err != nil || end.Sub(start) != sessionDuration {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "sessions last exactly one hour"})
			return
		}
	}

	version, err := h.sync.SaveAppointments(c.Request.Context(), req.Appointments, *req.Version)
	h.saveResult(c, version, err, nil)
}

func (h *Handler) deleteAppointment(c *gin.Context) {
	err := h.sync.DeleteAppointment(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, clinicsync.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "appointment not found"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
	}
}
