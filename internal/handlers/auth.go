package handlers

import (
	"net/http"

	"gira/internal/auth"
	"gira/internal/middleware"
	"gira/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login открывает сессию и заодно выдаёт bearer-токен для API-клиентов.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	token, err := h.tokens.CreateToken(user)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionUserKey, user.ID)
	if err := sess.Save(); err != nil {
		h.respondError(c, err)
		return
	}

	respond(c, http.StatusOK, gin.H{"user": user, "token": token})
}

func (h *Handler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	if err := sess.Save(); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusNoContent, nil)
}

func (h *Handler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.respondError(c, models.ErrUnauthorized)
		return
	}
	respond(c, http.StatusOK, gin.H{"user": user, "initials": user.Initials()})
}
