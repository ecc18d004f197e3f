package handlers

import (
	"net/http"

	"gira/internal/tracker"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListSprints(c *gin.Context) {
	projectID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	sprints, err := h.tracker.ListSprints(c.Request.Context(), projectID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"sprints": sprints})
}

// CreateSprint: пустое имя превращается в "Sprint N".
func (h *Handler) CreateSprint(c *gin.Context) {
	projectID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var in tracker.CreateSprintInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}

	sprint, err := h.tracker.CreateSprint(c.Request.Context(), projectID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"sprint": sprint})
}

func (h *Handler) GetSprint(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.tracker.GetSprint(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"sprint": view})
}

func (h *Handler) StartSprint(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	sprint, err := h.tracker.StartSprint(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"sprint": sprint})
}

func (h *Handler) CompleteSprint(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	view, err := h.tracker.CompleteSprint(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"sprint": view})
}
