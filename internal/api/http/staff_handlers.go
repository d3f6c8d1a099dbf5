package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/clinic/domain"
	clinicsync "github.com/guidari-center/guidari-backend/internal/clinic/sync"
)

// scrubCredentials blanks the secrets a roster record carries before it goes
// on the wire.
func scrubCredentials(u domain.User) domain.User {
	u.Password = ""
	u.PIN = ""
	return u
}

func (h *Handler) listStaff(c *gin.Context) {
	users, version := h.sync.Users()
	for i := range users {
		users[i] = scrubCredentials(users[i])
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "users": users, "version": version})
}

type saveStaffReq struct {
	Users   []domain.User `json:"users"`
	Version *uint64       `json:"version"`
}

func (h *Handler) saveStaff(c *gin.Context) {
	var req saveStaffReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Users == nil || req.Version == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "users and version are required"})
		return
	}
	// Listed rosters come back without credentials; an empty password or PIN
	// on a known record means "unchanged", not "cleared".
	current, _ := h.sync.Users()
	stored := make(map[string]domain.User, len(current))
	for _, u := range current {
		stored[u.ID] = u
	}
	for i := range req.Users {
		if req.Users[i].ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "staff records need an id"})
			return
		}
		if req.Users[i].Name == "" {
			req.Users[i].Name = req.Users[i].FullName()
		}
		if prev, ok := stored[req.Users[i].ID]; ok {
			if req.Users[i].Password == "" {
				req.Users[i].Password = prev.Password
			}
			if req.Users[i].PIN == "" {
				req.Users[i].PIN = prev.PIN
			}
		}
	}

	version, err := h.sync.SaveStaff(c.Request.Context(), req.Users, *req.Version)
	h.saveResult(c, version, err, nil)
}

func (h *Handler) deleteStaff(c *gin.Context) {
	err := h.sync.DeleteStaff(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	case errors.Is(err, clinicsync.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "staff record not found"})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"ok": false, "error": err.Error()})
	}
}
