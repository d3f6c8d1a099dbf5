package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// refresh forces an immediate remote fetch of the three collections. Partial
// failures still apply whatever loaded; the response reports both the states
// and the combined error so the caller can tell what is fresh.
func (h *Handler) refresh(c *gin.Context) {
	err := h.sync.RefreshAll(c.Request.Context())
	body := gin.H{"ok": err == nil, "states": h.sync.States()}
	if err != nil {
		body["error"] = err.Error()
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) syncStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "states": h.sync.States()})
}

func (h *Handler) syncLogs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "logs": h.sync.Log()})
}
