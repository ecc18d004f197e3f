package handlers

import (
	"net/http"

	"gira/internal/models"
	"gira/internal/tracker"

	"github.com/gin-gonic/gin"
)

//
// ПРОЕКТЫ
//

// ListProjects поддерживает фильтры ?name= и ?status=.
func (h *Handler) ListProjects(c *gin.Context) {
	var f models.ProjectFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.badRequest(c, err)
		return
	}

	projects, err := h.tracker.ListProjects(c.Request.Context(), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"projects": projects})
}

func (h *Handler) CreateProject(c *gin.Context) {
	var in tracker.CreateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}
	if in.OwnerID == nil {
		if u := currentUserID(c); u != 0 {
			in.OwnerID = &u
		}
	}

	project, err := h.tracker.CreateProject(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"project": project})
}

func (h *Handler) GetProject(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	project, err := h.tracker.GetProject(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"project": project})
}

func (h *Handler) UpdateProject(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var in tracker.UpdateProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}

	project, err := h.tracker.UpdateProject(c.Request.Context(), id, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"project": project})
}

// DeleteProject: мягкое удаление, статус deleted.
func (h *Handler) DeleteProject(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tracker.DeleteProject(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusNoContent, nil)
}

//
// ДОСКА И БЭКЛОГ
//

func (h *Handler) Board(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	board, err := h.tracker.Board(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, board)
}

func (h *Handler) Backlog(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	backlog, err := h.tracker.Backlog(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, backlog)
}
