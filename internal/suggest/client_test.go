package suggest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-api/internal/model"
)

func geminiReply(t *testing.T, text string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, ":generateContent")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]string{{"text": text}},
				},
			}},
		})
	}
}

func TestClient_Suggest(t *testing.T) {
	payload := `{
		"suggestions": [
			{"title": "Morning run", "priority": "high", "category": "health", "due_date": "2026-03-12"},
			{"title": "Refill pantry", "priority": "low", "category": "shopping"}
		],
		"explanation": "Based on your health goals."
	}`
	srv := httptest.NewServer(geminiReply(t, payload))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)
	resp, err := client.Suggest(context.Background(), "what should I do tomorrow?", nil)

	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 2)
	assert.Equal(t, "Morning run", resp.Suggestions[0].Title)
	assert.Equal(t, model.PriorityHigh, resp.Suggestions[0].Priority)
	assert.Equal(t, "Based on your health goals.", resp.Explanation)
}

func TestClient_Suggest_StripsCodeFence(t *testing.T) {
	fenced := "```json\n{\"suggestions\": [{\"title\": \"Fenced task\", \"priority\": \"medium\", \"category\": \"work\"}]}\n```"
	srv := httptest.NewServer(geminiReply(t, fenced))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)
	resp, err := client.Suggest(context.Background(), "suggest something", nil)

	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Fenced task", resp.Suggestions[0].Title)
}

func TestClient_Suggest_MalformedPayloadDegrades(t *testing.T) {
	srv := httptest.NewServer(geminiReply(t, "Sure! Here are some ideas: 1. Go shopping 2. Exercise"))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)
	resp, err := client.Suggest(context.Background(), "suggest something", nil)

	require.NoError(t, err)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, "Error parsing suggestions", resp.Suggestions[0].Title)
	assert.Equal(t, "Could not parse AI response properly.", resp.Explanation)
}

func TestClient_Suggest_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error": {"message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`)
	}))
	defer srv.Close()

	client := NewClient("test-key").WithBaseURL(srv.URL)
	_, err := client.Suggest(context.Background(), "suggest something", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestClient_Suggest_NoAPIKey(t *testing.T) {
	client := NewClient("")
	_, err := client.Suggest(context.Background(), "suggest something", nil)
	assert.Error(t, err)
}

func TestClient_Suggest_PromptIncludesRecentTasks(t *testing.T) {
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Contents[0].Parts[0].Text
		geminiReply(t, `{"suggestions": [{"title": "x"}]}`)(w, r)
	}))
	defer srv.Close()

	recent := make([]model.Task, 15)
	for i := range recent {
		recent[i] = model.Task{
			Title:    fmt.Sprintf("Task %d", i),
			Status:   model.StatusPending,
			Priority: model.PriorityMedium,
			Category: model.CategoryWork,
		}
	}

	client := NewClient("test-key").WithBaseURL(srv.URL)
	_, err := client.Suggest(context.Background(), "more of the same", recent)

	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "Task 0")
	assert.Contains(t, gotPrompt, "Task 9")
	assert.NotContains(t, gotPrompt, "Task 10") // context is capped
}

func TestSuggestion_Draft(t *testing.T) {
	s := Suggestion{
		Title:    "Book dentist",
		Priority: "high",
		Category: "health",
		DueDate:  "2026-04-01",
	}

	draft := s.Draft(time.UTC)

	assert.Equal(t, model.PriorityHigh, draft.Priority)
	assert.Equal(t, model.CategoryHealth, draft.Category)
	require.NotNil(t, draft.DueDate)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), *draft.DueDate)
}

func TestSuggestion_Draft_Fallbacks(t *testing.T) {
	s := Suggestion{Title: "Vague idea", Priority: "critical", Category: "stuff", DueDate: "soon"}

	draft := s.Draft(time.UTC)

	assert.Equal(t, model.PriorityMedium, draft.Priority)
	assert.Equal(t, model.CategoryOther, draft.Category)
	assert.Nil(t, draft.DueDate)
}
