package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/calendar"
	"github.com/taskflow/taskflow-api/internal/focus"
	"github.com/taskflow/taskflow-api/internal/handler"
	"github.com/taskflow/taskflow-api/internal/model"
	"github.com/taskflow/taskflow-api/internal/repo"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/internal/suggest"
	"github.com/taskflow/taskflow-api/internal/views"
)

func setupE2EServer(t *testing.T) (*httptest.Server, func()) {
	pool, cleanup := SetupTestDB(t)
	TruncateTables(t, pool)

	logger := zap.NewNop()

	jwtManager := auth.NewJWTManager(auth.DefaultJWTConfig("e2e-secret"))
	authService := auth.NewService(repo.NewUserRepo(pool), auth.NewPasswordHasher(), jwtManager, logger)

	stores := store.NewManager(repo.NewTaskRepo(pool), nil, logger)
	focusService := focus.NewService(nil, logger)
	calendarSync := calendar.NewSync("", "", "", logger)
	aiClient := suggest.NewClient("")

	r := handler.NewRouter(handler.Handlers{
		Auth:     handler.NewAuthHandler(authService, logger),
		Tasks:    handler.NewTaskHandler(stores, logger),
		Views:    handler.NewViewHandler(stores, logger),
		Focus:    handler.NewFocusHandler(focusService, logger),
		Suggest:  handler.NewSuggestHandler(aiClient, stores, logger),
		Calendar: handler.NewCalendarHandler(calendarSync, stores, logger),
		Game:     handler.NewGameHandler(stores, focusService, logger),
		JWT:      jwtManager,
	})

	server := httptest.NewServer(r)

	cleanupFunc := func() {
		focusService.Shutdown()
		server.Close()
		cleanup()
	}

	return server, cleanupFunc
}

func signUp(t *testing.T, server *httptest.Server, email string) auth.Identity {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"email":    email,
		"password": "a strong password",
	})
	resp, err := http.Post(server.URL+"/api/auth/signup", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var identity auth.Identity
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&identity))
	return identity
}

func doAuthed(t *testing.T, token, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestE2E_FullWorkflow(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	identity := signUp(t, server, "e2e@example.com")
	token := identity.AccessToken

	// 1. Create task
	resp := doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks",
		model.TaskDraft{Title: "E2E Test Task", Priority: model.PriorityHigh})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.Task
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	require.NotEmpty(t, created.ID)
	assert.Equal(t, "E2E Test Task", created.Title)
	assert.Equal(t, model.StatusPending, created.Status)

	// 2. Get task
	resp = doAuthed(t, token, http.MethodGet, server.URL+"/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched model.Task
	json.NewDecoder(resp.Body).Decode(&fetched)
	resp.Body.Close()
	assert.Equal(t, created.ID, fetched.ID)

	// 3. Update task
	resp = doAuthed(t, token, http.MethodPut, server.URL+"/api/tasks/"+created.ID,
		map[string]string{"title": "Updated E2E Task"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updated model.Task
	json.NewDecoder(resp.Body).Decode(&updated)
	resp.Body.Close()
	assert.Equal(t, "Updated E2E Task", updated.Title)

	// 4. Toggle completion
	resp = doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks/"+created.ID+"/toggle", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled model.Task
	json.NewDecoder(resp.Body).Decode(&toggled)
	resp.Body.Close()
	assert.Equal(t, model.StatusCompleted, toggled.Status)
	assert.NotNil(t, toggled.CompletedAt)

	// 5. List tasks
	resp = doAuthed(t, token, http.MethodGet, server.URL+"/api/tasks", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tasks []model.Task
	json.NewDecoder(resp.Body).Decode(&tasks)
	resp.Body.Close()
	assert.Len(t, tasks, 1)

	// 6. Delete task
	resp = doAuthed(t, token, http.MethodDelete, server.URL+"/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// 7. Verify deletion
	resp = doAuthed(t, token, http.MethodGet, server.URL+"/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_AuthRequired(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	resp, err := http.Get(server.URL + "/api/tasks")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_OwnersAreIsolated(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	alice := signUp(t, server, "alice@example.com")
	bob := signUp(t, server, "bob@example.com")

	resp := doAuthed(t, alice.AccessToken, http.MethodPost, server.URL+"/api/tasks",
		model.TaskDraft{Title: "Alice's task"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.Task
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	// Bob sees an empty list and cannot reach Alice's task
	resp = doAuthed(t, bob.AccessToken, http.MethodGet, server.URL+"/api/tasks", nil)
	var tasks []model.Task
	json.NewDecoder(resp.Body).Decode(&tasks)
	resp.Body.Close()
	assert.Empty(t, tasks)

	resp = doAuthed(t, bob.AccessToken, http.MethodGet, server.URL+"/api/tasks/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_ViewsAndReorder(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	identity := signUp(t, server, "views@example.com")
	token := identity.AccessToken

	var ids []string
	for i := 0; i < 5; i++ {
		resp := doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks",
			model.TaskDraft{Title: fmt.Sprintf("Task %d", i)})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var created model.Task
		json.NewDecoder(resp.Body).Decode(&created)
		resp.Body.Close()
		ids = append(ids, created.ID)
	}

	// complete two of them
	for _, id := range ids[:2] {
		resp := doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks/"+id+"/toggle", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	t.Run("kanban", func(t *testing.T) {
		resp := doAuthed(t, token, http.MethodGet, server.URL+"/api/views/kanban", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var board views.Board
		json.NewDecoder(resp.Body).Decode(&board)
		resp.Body.Close()
		assert.Len(t, board.Pending, 3)
		assert.Len(t, board.Completed, 2)
	})

	t.Run("matrix excludes completed", func(t *testing.T) {
		resp := doAuthed(t, token, http.MethodGet, server.URL+"/api/views/matrix", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var matrix views.Matrix
		json.NewDecoder(resp.Body).Decode(&matrix)
		resp.Body.Close()
		total := len(matrix.DoFirst) + len(matrix.Schedule) + len(matrix.Delegate) + len(matrix.Eliminate)
		assert.Equal(t, 3, total)
	})

	t.Run("reorder survives reload", func(t *testing.T) {
		resp := doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks/reorder",
			map[string]int{"source_index": 0, "destination_index": 4})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var reordered []model.Task
		json.NewDecoder(resp.Body).Decode(&reordered)
		resp.Body.Close()

		require.Len(t, reordered, 5)
		assert.Equal(t, ids[0], reordered[4].ID)
		for i, task := range reordered {
			assert.Equal(t, i, task.Order)
		}
	})

	t.Run("analytics", func(t *testing.T) {
		resp := doAuthed(t, token, http.MethodGet, server.URL+"/api/views/analytics", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var analytics struct {
			Weekly []views.DayCount `json:"weekly"`
			Delta  views.WeekDelta  `json:"delta"`
		}
		json.NewDecoder(resp.Body).Decode(&analytics)
		resp.Body.Close()

		assert.Len(t, analytics.Weekly, 7)
		assert.Equal(t, 2, analytics.Delta.ThisWeek)
	})
}

func TestE2E_FocusFlow(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	identity := signUp(t, server, "focus@example.com")
	token := identity.AccessToken

	resp := doAuthed(t, token, http.MethodPost, server.URL+"/api/focus/start",
		map[string]any{"task_id": "", "duration_minutes": 25})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var session focus.Session
	json.NewDecoder(resp.Body).Decode(&session)
	resp.Body.Close()
	assert.Equal(t, focus.StateRunning, session.State)
	assert.Equal(t, 25*60, session.RemainingSeconds)

	resp = doAuthed(t, token, http.MethodPost, server.URL+"/api/focus/pause", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	json.NewDecoder(resp.Body).Decode(&session)
	resp.Body.Close()
	assert.Equal(t, focus.StatePaused, session.State)

	resp = doAuthed(t, token, http.MethodPost, server.URL+"/api/focus/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	json.NewDecoder(resp.Body).Decode(&session)
	resp.Body.Close()
	assert.Equal(t, focus.StateRunning, session.State)
	assert.Equal(t, 25*60, session.RemainingSeconds)

	resp = doAuthed(t, token, http.MethodPost, server.URL+"/api/focus/stop", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()
}

func TestE2E_GameSummary(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	identity := signUp(t, server, "game@example.com")
	token := identity.AccessToken

	resp := doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks",
		model.TaskDraft{Title: "First win"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.Task
	json.NewDecoder(resp.Body).Decode(&created)
	resp.Body.Close()

	resp = doAuthed(t, token, http.MethodPost, server.URL+"/api/tasks/"+created.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doAuthed(t, token, http.MethodGet, server.URL+"/api/game/summary", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary struct {
		Streak int `json:"streak"`
		Points int `json:"points"`
		Level  int `json:"level"`
	}
	json.NewDecoder(resp.Body).Decode(&summary)
	resp.Body.Close()

	assert.Equal(t, 1, summary.Streak)
	assert.Equal(t, 10, summary.Points)
	assert.Equal(t, 1, summary.Level)
}

func TestE2E_HealthCheck(t *testing.T) {
	server, cleanup := setupE2EServer(t)
	defer cleanup()

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	json.NewDecoder(resp.Body).Decode(&health)
	resp.Body.Close()

	assert.Equal(t, "ok", health["status"])
}
