package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"gira/internal/middleware"
	"gira/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type errorKind struct {
	err    error
	status int
	code   string
}

// порядок важен: первый подходящий вид побеждает
var errorKinds = []errorKind{
	{models.ErrNotFound, http.StatusNotFound, "not_found"},
	{models.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{models.ErrConflictingActiveSprint, http.StatusConflict, "conflicting_active_sprint"},
	{models.ErrOutOfOrderStart, http.StatusConflict, "out_of_order_start"},
	{models.ErrConflict, http.StatusConflict, "conflict"},
	{models.ErrMissingProject, http.StatusBadRequest, "missing_project"},
	{models.ErrInvalidStatus, http.StatusBadRequest, "invalid_status"},
	{models.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{models.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{models.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{models.ErrInactiveUser, http.StatusForbidden, "inactive_user"},
}

// StatusFor maps an error from the core to an HTTP status and a stable code.
func StatusFor(err error) (int, string) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status, k.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func respond(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}

// respondError пишет ошибку в JSON и в лог. Детали 500-х наружу не отдаём.
func (h *Handler) respondError(c *gin.Context, err error) {
	status, code := StatusFor(err)

	entry := h.log.WithFields(logrus.Fields{
		"path":       c.FullPath(),
		"status":     status,
		"request_id": middleware.RequestIDFrom(c),
	}).WithError(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
		msg = "internal error"
	} else {
		entry.Info("request rejected")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg, "code": code})
}

func (h *Handler) badRequest(c *gin.Context, err error) {
	h.respondError(c, fmt.Errorf("bad request body: %v: %w", err, models.ErrInvalidInput))
}

func (h *Handler) parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		h.respondError(c, fmt.Errorf("invalid %s %q: %w", name, c.Param(name), models.ErrInvalidInput))
		return 0, false
	}
	return uint(id), true
}

func currentUserID(c *gin.Context) uint {
	if u := middleware.CurrentUser(c); u != nil {
		return u.ID
	}
	return 0
}
