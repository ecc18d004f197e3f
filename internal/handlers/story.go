package handlers

import (
	"net/http"

	"gira/internal/models"
	"gira/internal/tracker"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateStory(c *gin.Context) {
	projectID, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var in tracker.CreateStoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}

	story, err := h.tracker.CreateStory(c.Request.Context(), projectID, in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"story": story, "priority": story.Priority.Info()})
}

func (h *Handler) GetStory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	story, err := h.tracker.GetStory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"story": story, "priority": story.Priority.Info()})
}

// UpdateStory: отсутствующее поле не меняется, null очищает
// story_points и assignee_id.
func (h *Handler) UpdateStory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var patch models.StoryPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.badRequest(c, err)
		return
	}

	story, err := h.tracker.UpdateStory(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"story": story})
}

type moveRequest struct {
	SprintID *uint `json:"sprint_id"`
}

// MoveStory: sprint_id = null (или отсутствует) возвращает в бэклог.
func (h *Handler) MoveStory(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	story, err := h.tracker.MoveStory(c.Request.Context(), id, req.SprintID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"story": story})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStoryStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	res, err := h.tracker.SetStoryStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}
