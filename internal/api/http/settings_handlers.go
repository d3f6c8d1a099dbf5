package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/settings"
)

func (h *Handler) getRemote(c *gin.Context) {
	creds := h.settings.Remote(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ok": true, "remote": creds})
}

// updateRemote persists new cloud credentials. They are read once at startup,
// so the response tells the operator a restart is needed.
func (h *Handler) updateRemote(c *gin.Context) {
	var creds settings.RemoteCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.settings.UpdateRemote(c.Request.Context(), creds); err != nil {
		if errors.Is(err, settings.ErrEmptyCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "restart_required": true})
}
