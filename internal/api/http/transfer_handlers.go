package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
)

// exportData downloads the full dataset as a versioned JSON document suitable
// for importData on another install.
func (h *Handler) exportData(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="guidari_export.json"`)
	c.JSON(http.StatusOK, h.sync.Export())
}

func (h *Handler) importData(c *gin.Context) {
	var snap clinicsync.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}
	if snap.Version != clinicsync.SnapshotVersion {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "unsupported export version"})
		return
	}

	err := h.sync.Import(c.Request.Context(), snap)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, clinicsync.ErrStaleSnapshot):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "data changed during import, retry"})
	case errors.Is(err, clinicsync.ErrRemoteWrite):
		c.JSON(http.StatusAccepted, gin.H{"ok": true, "warning": "imported locally, cloud write failed"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
	}
}
