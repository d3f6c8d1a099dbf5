package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/guidari-center/guidari-backend/internal/auth"
	"github.com/guidari-center/guidari-backend/internal/clinic/billing"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
	"github.com/guidari-center/guidari-backend/internal/settings"
)

// Handler bundles the service dependencies shared by every route group.
type Handler struct {
	sync     *clinicsync.Synchronizer
	auth     *auth.Service
	settings *settings.Store
	logger   *zap.Logger
	basis    billing.LiabilityBasis
}

func NewHandler(s *clinicsync.Synchronizer, a *auth.Service, st *settings.Store, basis billing.LiabilityBasis, logger *zap.Logger) *Handler {
	if basis == "" {
		basis = billing.BasisPaidInvoices
	}
	return &Handler{sync: s, auth: a, settings: st, logger: logger, basis: basis}
}

// Register attaches all route groups. Everything except the auth endpoints
// sits behind the bearer-token middleware; mutations on shared configuration
// and rosters additionally require the administrator role.
func (h *Handler) Register(rg *gin.RouterGroup) {
	ag := rg.Group("/auth")
	{
		ag.POST("/login", h.login)
		ag.POST("/pin-login", h.pinLogin)
		ag.POST("/register", h.register)
	}

	authed := rg.Group("")
	authed.Use(auth.Middleware(h.auth))
	{
		authed.GET("/me", h.me)

		staff := authed.Group("/staff")
		staff.GET("", h.listStaff)
		staff.PUT("", auth.RequireAdmin(), h.saveStaff)
		staff.DELETE("/:id", auth.RequireAdmin(), h.deleteStaff)

		patients := authed.Group("/patients")
		patients.GET("", h.listPatients)
		patients.PUT("", h.savePatients)
		patients.DELETE("/:id", auth.RequireAdmin(), h.deletePatient)
		patients.POST("/:id/notes", h.addNote)
		patients.POST("/:id/documents", h.addDocument)
		patients.PATCH("/:id/documents/:docId/status", h.setInvoiceStatus)

		appts := authed.Group("/appointments")
		appts.GET("", h.listAppointments)
		appts.PUT("", h.saveAppointments)
		appts.DELETE("/:id", h.deleteAppointment)

		finance := authed.Group("/finance")
		finance.GET("/summary", h.financeSummary)
		finance.GET("/professionals", h.financeProfessionals)
		finance.GET("/report", h.financeReport)

		syncg := authed.Group("/sync")
		syncg.POST("/refresh", h.refresh)
		syncg.GET("/status", h.syncStatus)
		syncg.GET("/logs", h.syncLogs)

		cfg := authed.Group("/settings", auth.RequireAdmin())
		cfg.GET("/remote", h.getRemote)
		cfg.PUT("/remote", h.updateRemote)

		authed.GET("/export", h.exportData)
		authed.POST("/import", auth.RequireAdmin(), h.importData)
	}
}

// saveResult maps the outcome of a versioned save onto the wire. A stale base
// conflicts without mutating; a failed remote write still applied locally, so
// the caller gets the new version with a warning instead of an error.
func (h *Handler) saveResult(c *gin.Context, version uint64, err error, payload gin.H) {
	body := gin.H{"version": version}
	for k, v := range payload {
		body[k] = v
	}

	switch {
	case err == nil:
		body["ok"] = true
		c.JSON(http.StatusOK, body)
	case errors.Is(err, clinicsync.ErrStaleSnapshot):
		body["ok"] = false
		body["error"] = "snapshot is stale, reload and retry"
		c.JSON(http.StatusConflict, body)
	case errors.Is(err, clinicsync.ErrRemoteWrite):
		body["ok"] = true
		body["warning"] = "saved locally, cloud write failed"
		c.JSON(http.StatusAccepted, body)
	default:
		body["ok"] = false
		body["error"] = err.Error()
		c.JSON(http.StatusBadGateway, body)
	}
}
