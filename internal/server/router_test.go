package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gira/internal/auth"
	"gira/internal/config"
	"gira/internal/database"
	"gira/internal/handlers"
	"gira/internal/logging"
	"gira/internal/middleware"
	"gira/internal/models"
	"gira/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *database.Store
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := database.NewTestStore(t)
	log := logging.Discard()
	tr := tracker.NewService(store, log)
	as := auth.NewService(store, log)
	tm := auth.NewTokenManager("test-secret", time.Hour)
	h := handlers.New(tr, as, tm, log)
	cfg := &config.Config{SessionSecret: "test-secret", TokenTTLHours: 1}

	return &testAPI{t: t, router: NewRouter(cfg, h, as, tm, log), store: store}
}

func (a *testAPI) do(method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (a *testAPI) expectError(rec *httptest.ResponseRecorder, status int, code string) {
	a.t.Helper()
	require.Equal(a.t, status, rec.Code, rec.Body.String())
	assert.Equal(a.t, code, decode[errorBody](a.t, rec).Code)
}

func (a *testAPI) login() {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", auth.RegisterInput{
		Username: "tester", Email: "tester@example.com", Password: "password123",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "tester", "password": "password123"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	a.token = decode[struct {
		Token string `json:"token"`
	}](a.t, rec).Token
	require.NotEmpty(a.t, a.token)
}

type projectBody struct {
	Project models.Project `json:"project"`
}

type sprintBody struct {
	Sprint models.SprintView `json:"sprint"`
}

type storyBody struct {
	Story models.Story `json:"story"`
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestAuthRequired(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/projects", nil)
	api.expectError(rec, http.StatusUnauthorized, "unauthorized")

	api.token = "garbage"
	rec = api.do(http.MethodGet, "/api/projects", nil)
	api.expectError(rec, http.StatusUnauthorized, "unauthorized")

	rec = api.do(http.MethodGet, "/api/me", nil, func(r *http.Request) {
		r.Header.Set("Authorization", "Basic abc")
	})
	api.expectError(rec, http.StatusUnauthorized, "unauthorized")
}

func TestLoginFlow(t *testing.T) {
	api := newTestAPI(t)
	api.login()

	rec := api.do(http.MethodGet, "/api/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[struct {
		User     models.User `json:"user"`
		Initials string      `json:"initials"`
	}](t, rec)
	assert.Equal(t, "tester", me.User.Username)
	assert.Equal(t, "TE", me.Initials)
	assert.NotContains(t, rec.Body.String(), "password")

	t.Run("session cookie", func(t *testing.T) {
		api.token = ""
		rec := api.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "tester", "password": "password123"})
		require.Equal(t, http.StatusOK, rec.Code)
		cookies := rec.Result().Cookies()
		require.NotEmpty(t, cookies)

		withCookies := func(r *http.Request) {
			for _, c := range cookies {
				r.AddCookie(c)
			}
		}
		rec = api.do(http.MethodGet, "/api/me", nil, withCookies)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = api.do(http.MethodPost, "/api/auth/logout", nil, withCookies)
		require.Equal(t, http.StatusNoContent, rec.Code)

		// logout переписывает cookie пустой сессией
		cleared := rec.Result().Cookies()
		require.NotEmpty(t, cleared)
		rec = api.do(http.MethodGet, "/api/me", nil, func(r *http.Request) {
			for _, c := range cleared {
				r.AddCookie(c)
			}
		})
		api.expectError(rec, http.StatusUnauthorized, "unauthorized")
	})

	t.Run("bad credentials", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "tester", "password": "nope"})
		api.expectError(rec, http.StatusUnauthorized, "invalid_credentials")
	})

	t.Run("duplicate registration", func(t *testing.T) {
		rec := api.do(http.MethodPost, "/api/auth/register", auth.RegisterInput{
			Username: "tester", Email: "x@example.com", Password: "password123",
		})
		api.expectError(rec, http.StatusConflict, "conflict")
	})

	t.Run("inactive account", func(t *testing.T) {
		u, err := api.store.UserByUsername(context.Background(), "tester")
		require.NoError(t, err)
		u.IsActive = false
		require.NoError(t, api.store.SaveUser(context.Background(), u))

		rec := api.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "tester", "password": "password123"})
		api.expectError(rec, http.StatusForbidden, "inactive_user")
	})
}

func TestSprintFlow(t *testing.T) {
	api := newTestAPI(t)
	api.login()

	rec := api.do(http.MethodPost, "/api/projects", map[string]string{"name": "Demo", "key": "DEMO"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode[projectBody](t, rec).Project
	require.NotNil(t, project.OwnerID)

	projectPath := "/api/projects/" + itoa(project.ID)

	rec = api.do(http.MethodPost, projectPath+"/sprints", map[string]string{})
	require.Equal(t, http.StatusCreated, rec.Code)
	s1 := decode[sprintBody](t, rec).Sprint
	assert.Equal(t, "Sprint 1", s1.Name)

	rec = api.do(http.MethodPost, projectPath+"/sprints", map[string]string{"goal": "later"})
	require.Equal(t, http.StatusCreated, rec.Code)
	s2 := decode[sprintBody](t, rec).Sprint

	rec = api.do(http.MethodPost, "/api/sprints/"+itoa(s2.ID)+"/start", nil)
	api.expectError(rec, http.StatusConflict, "out_of_order_start")

	rec = api.do(http.MethodPost, "/api/sprints/"+itoa(s1.ID)+"/complete", nil)
	api.expectError(rec, http.StatusConflict, "invalid_transition")

	rec = api.do(http.MethodPost, "/api/sprints/"+itoa(s1.ID)+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	started := decode[sprintBody](t, rec).Sprint
	assert.Equal(t, models.SprintActive, started.Status)
	assert.Equal(t, models.SprintLength, started.EndDate.Sub(*started.StartDate))

	rec = api.do(http.MethodPost, "/api/sprints/"+itoa(s2.ID)+"/start", nil)
	api.expectError(rec, http.StatusConflict, "conflicting_active_sprint")

	rec = api.do(http.MethodPost, projectPath+"/stories", map[string]any{"title": "Login form", "story_points": 3, "priority": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	story := decode[storyBody](t, rec).Story
	assert.Nil(t, story.SprintID)
	storyPath := "/api/stories/" + itoa(story.ID)

	rec = api.do(http.MethodPost, storyPath+"/move", map[string]any{"sprint_id": s1.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	moved := decode[storyBody](t, rec).Story
	require.NotNil(t, moved.SprintID)
	assert.Equal(t, models.StoryTodo, moved.Status)

	rec = api.do(http.MethodPut, storyPath+"/status", map[string]string{"status": "finished"})
	api.expectError(rec, http.StatusBadRequest, "invalid_status")

	rec = api.do(http.MethodPut, storyPath+"/status", map[string]string{"status": "done"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[tracker.StoryResult](t, rec)
	assert.NotNil(t, res.Story.CompletedAt)
	require.NotNil(t, res.Stats)
	assert.Equal(t, 100.0, res.Stats.CompletionRate)

	rec = api.do(http.MethodGet, projectPath+"/board", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[tracker.Board](t, rec)
	require.NotNil(t, board.Sprint)
	assert.Len(t, board.Done, 1)

	rec = api.do(http.MethodPost, "/api/sprints/"+itoa(s1.ID)+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	done := decode[sprintBody](t, rec).Sprint
	assert.Equal(t, models.SprintCompleted, done.Status)
	assert.Equal(t, models.SprintStats{
		Total: 1, Completed: 1, CompletionRate: 100, Done: 1, TotalPoints: 3, CompletedPoints: 3,
	}, done.Stats)

	rec = api.do(http.MethodGet, projectPath+"/sprints", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Sprints []models.SprintView `json:"sprints"`
	}](t, rec)
	assert.Len(t, list.Sprints, 2)

	rec = api.do(http.MethodGet, "/api/audit?entity=sprint&entity_id="+itoa(s1.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode[struct {
		Logs []models.AuditLog `json:"logs"`
	}](t, rec).Logs
	require.Len(t, logs, 3)
	assert.Equal(t, "complete", logs[0].Action)
	require.NotNil(t, logs[0].UserID)
}

func TestStoryPatch(t *testing.T) {
	api := newTestAPI(t)
	api.login()

	rec := api.do(http.MethodPost, "/api/projects", map[string]string{"name": "Patch"})
	require.Equal(t, http.StatusCreated, rec.Code)
	project := decode[projectBody](t, rec).Project

	rec = api.do(http.MethodPost, "/api/projects/"+itoa(project.ID)+"/stories", map[string]any{
		"title": "Export", "description": "csv", "story_points": 8,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	storyPath := "/api/stories/" + itoa(decode[storyBody](t, rec).Story.ID)

	rec = api.do(http.MethodPatch, storyPath, `{"description":"csv and xlsx"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[storyBody](t, rec).Story
	assert.Equal(t, "csv and xlsx", got.Description)
	require.NotNil(t, got.StoryPoints)
	assert.Equal(t, 8, *got.StoryPoints)

	rec = api.do(http.MethodPatch, storyPath, `{"story_points":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode[storyBody](t, rec).Story.StoryPoints)

	rec = api.do(http.MethodPatch, storyPath, `{"story_points":"many"}`)
	api.expectError(rec, http.StatusBadRequest, "invalid_input")

	rec = api.do(http.MethodGet, storyPath, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Export", decode[storyBody](t, rec).Story.Title)
}

func TestErrorMapping(t *testing.T) {
	api := newTestAPI(t)
	api.login()

	api.expectError(api.do(http.MethodGet, "/api/stories/abc", nil), http.StatusBadRequest, "invalid_input")
	api.expectError(api.do(http.MethodGet, "/api/stories/0", nil), http.StatusBadRequest, "invalid_input")
	api.expectError(api.do(http.MethodGet, "/api/stories/999", nil), http.StatusNotFound, "not_found")
	api.expectError(api.do(http.MethodGet, "/api/sprints/999", nil), http.StatusNotFound, "not_found")
	api.expectError(api.do(http.MethodGet, "/api/projects/999/board", nil), http.StatusNotFound, "not_found")
	api.expectError(
		api.do(http.MethodPost, "/api/projects/999/stories", map[string]string{"title": "lost"}),
		http.StatusBadRequest, "missing_project",
	)
	api.expectError(api.do(http.MethodPost, "/api/projects", `{"name":`), http.StatusBadRequest, "invalid_input")
}

func TestProjectEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.login()

	for _, name := range []string{"Web shop", "Mobile app", "Web admin"} {
		rec := api.do(http.MethodPost, "/api/projects", map[string]string{"name": name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := api.do(http.MethodGet, "/api/projects?name=web", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Projects []models.Project `json:"projects"`
	}](t, rec).Projects
	require.Len(t, list, 2)
	assert.Equal(t, "Web admin", list[0].Name)

	path := "/api/projects/" + itoa(list[0].ID)
	rec = api.do(http.MethodPut, path, map[string]string{"status": "archived"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ProjectArchived, decode[projectBody](t, rec).Project.Status)

	rec = api.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	api.expectError(api.do(http.MethodGet, path, nil), http.StatusNotFound, "not_found")
	api.expectError(
		api.do(http.MethodPost, path+"/sprints", map[string]string{}),
		http.StatusBadRequest, "missing_project",
	)

	rec = api.do(http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[struct {
		Projects []models.Project `json:"projects"`
	}](t, rec).Projects, 2)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
