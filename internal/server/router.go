package server

import (
	"net/http"

	"gira/internal/config"
	"gira/internal/handlers"
	"gira/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const sessionName = "gira_session"

func NewRouter(cfg *config.Config, h *handlers.Handler, users middleware.UserLoader, tokens middleware.TokenParser, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.TokenTTLHours * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// HEALTHCHECK
	r.GET("/health", handlers.Health)

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/logout", h.Logout)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(users, tokens))

	authed.GET("/me", h.Me)

	// ПРОЕКТЫ
	authed.GET("/projects", h.ListProjects)
	authed.POST("/projects", h.CreateProject)
	authed.GET("/projects/:id", h.GetProject)
	authed.PUT("/projects/:id", h.UpdateProject)
	authed.DELETE("/projects/:id", h.DeleteProject)
	authed.GET("/projects/:id/board", h.Board)
	authed.GET("/projects/:id/backlog", h.Backlog)
	authed.GET("/projects/:id/sprints", h.ListSprints)
	authed.POST("/projects/:id/sprints", h.CreateSprint)
	authed.POST("/projects/:id/stories", h.CreateStory)

	// СПРИНТЫ
	authed.GET("/sprints/:id", h.GetSprint)
	authed.POST("/sprints/:id/start", h.StartSprint)
	authed.POST("/sprints/:id/complete", h.CompleteSprint)

	// ИСТОРИИ
	authed.GET("/stories/:id", h.GetStory)
	authed.PATCH("/stories/:id", h.UpdateStory)
	authed.POST("/stories/:id/move", h.MoveStory)
	authed.PUT("/stories/:id/status", h.SetStoryStatus)

	// АУДИТ
	authed.GET("/audit", h.ListAuditLogs)

	return r
}
