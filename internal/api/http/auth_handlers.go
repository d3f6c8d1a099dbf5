package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guidari-center/guidari-backend/internal/auth"
)

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	user, token, err := h.auth.LoginEmail(req.Email, req.Password)
	if err != nil {
		h.authError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": scrubCredentials(user), "token": token})
}

type pinLoginReq struct {
	PIN string `json:"pin"`
}

func (h *Handler) pinLogin(c *gin.Context) {
	var req pinLoginReq
	if err := c.ShouldBindJSON(&req); err != nil || req.PIN == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	user, token, err := h.auth.LoginPIN(req.PIN)
	if err != nil {
		h.authError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": scrubCredentials(user), "token": token})
}

type registerReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	PIN       string `json:"pin"`
	Specialty string `json:"specialty"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	user, token, err := h.auth.Register(c.Request.Context(), auth.RegisterInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		PIN:       req.PIN,
		Specialty: req.Specialty,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "email already registered"})
		case errors.Is(err, auth.ErrInvalidPIN):
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "user": scrubCredentials(user), "token": token})
}

// me resolves the authenticated caller back to the roster record.
func (h *Handler) me(c *gin.Context) {
	id := auth.CallerID(c)
	users, _ := h.sync.Users()
	for _, u := range users {
		if u.ID == id {
			c.JSON(http.StatusOK, gin.H{"ok": true, "user": scrubCredentials(u)})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "staff record not found"})
}

func (h *Handler) authError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "too many attempts"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid credentials"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}
