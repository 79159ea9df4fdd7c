// Package suggest asks a hosted generative model for task drafts. The
// model is told to answer in a strict JSON shape; when it doesn't, the
// response degrades to a single synthetic error suggestion so callers
// always get something renderable.
package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/taskflow/taskflow-api/internal/model"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-pro"

	// maxContextTasks caps how much of the user's list is quoted into the
	// prompt.
	maxContextTasks = 10
	suggestionCount = 3
)

// Response is what the handler renders: drafts plus an optional
// model-written explanation.
type Response struct {
	Suggestions []Suggestion `json:"suggestions"`
	Explanation string       `json:"explanation,omitempty"`
}

// Suggestion mirrors model.TaskDraft but keeps the due date as the plain
// YYYY-MM-DD string the model emits.
type Suggestion struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Priority    model.Priority `json:"priority"`
	Category    model.Category `json:"category"`
	IsUrgent    bool           `json:"is_urgent,omitempty"`
	IsImportant bool           `json:"is_important,omitempty"`
	DueDate     string         `json:"due_date,omitempty"`
}

// Client calls the generateContent endpoint of a Gemini-style API.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		model:   defaultModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at a different endpoint, used in tests.
func (c *Client) WithBaseURL(url string) *Client {
	c.baseURL = url
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
	Config   genConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type genConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Suggest generates task drafts for the prompt, giving the model a slice
// of the user's recent tasks as context.
func (c *Client) Suggest(ctx context.Context, prompt string, recent []model.Task) (Response, error) {
	if c.apiKey == "" {
		return Response{}, fmt.Errorf("suggestion API key not configured")
	}
	if strings.TrimSpace(prompt) == "" {
		return Response{}, fmt.Errorf("empty prompt")
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: c.formatPrompt(prompt, recent)}}}},
		Config:   genConfig{Temperature: 0.7, MaxOutputTokens: 2048},
	})
	if err != nil {
		return Response{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("suggestion request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return Response{}, fmt.Errorf("suggestion API: %s", apiErr.Error.Message)
		}
		return Response{}, fmt.Errorf("suggestion API: status %d", resp.StatusCode)
	}

	var gen generateResponse
	if err := json.Unmarshal(data, &gen); err != nil {
		return Response{}, fmt.Errorf("decode suggestion response: %w", err)
	}
	if len(gen.Candidates) == 0 || len(gen.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("suggestion API returned no candidates")
	}

	return parseSuggestions(gen.Candidates[0].Content.Parts[0].Text), nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// parseSuggestions extracts the JSON payload from model output, tolerating
// code fences. A malformed payload becomes one synthetic suggestion rather
// than an error.
func parseSuggestions(text string) Response {
	payload := strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(payload); m != nil {
		payload = strings.TrimSpace(m[1])
	}

	var out Response
	if err := json.Unmarshal([]byte(payload), &out); err != nil || len(out.Suggestions) == 0 {
		return Response{
			Suggestions: []Suggestion{{
				Title:       "Error parsing suggestions",
				Description: "Try a different prompt or contact support if this persists.",
				Priority:    model.PriorityMedium,
				Category:    model.CategoryOther,
			}},
			Explanation: "Could not parse AI response properly.",
		}
	}
	return out
}

func (c *Client) formatPrompt(prompt string, recent []model.Task) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant integrated into a todo app. The user is asking for help with task suggestions.\n\n")
	fmt.Fprintf(&b, "USER PROMPT: %q\n", prompt)

	if len(recent) > 0 {
		if len(recent) > maxContextTasks {
			recent = recent[:maxContextTasks]
		}
		b.WriteString("\nEXISTING TASKS (for context):\n")
		for _, t := range recent {
			fmt.Fprintf(&b, "- [%s/%s/%s] %s\n", t.Status, t.Priority, t.Category, t.Title)
		}
	}

	fmt.Fprintf(&b, `
Generate %d task suggestions. Your response must be valid JSON following this structure exactly:
{
  "suggestions": [
    {
      "title": "Task title",
      "description": "Task description (optional)",
      "priority": "high|medium|low",
      "category": "work|personal|shopping|health|other",
      "is_urgent": true,
      "is_important": true,
      "due_date": "YYYY-MM-DD"
    }
  ],
  "explanation": "Brief explanation of your suggestions (optional)"
}

Ensure each suggestion is practical, specific, and actionable. Do not include any text outside of the JSON response.
`, suggestionCount)
	return b.String()
}

// Draft converts a suggestion into a task draft, resolving the due date in
// the given location. Unparseable dates are dropped rather than rejected.
func (s Suggestion) Draft(loc *time.Location) model.TaskDraft {
	d := model.TaskDraft{
		Title:       s.Title,
		Description: s.Description,
		Priority:    s.Priority,
		Category:    s.Category,
		IsUrgent:    s.IsUrgent,
		IsImportant: s.IsImportant,
	}
	if !d.Priority.Valid() {
		d.Priority = model.PriorityMedium
	}
	if !d.Category.Valid() {
		d.Category = model.CategoryOther
	}
	if s.DueDate != "" {
		if due, err := time.ParseInLocation("2006-01-02", s.DueDate, loc); err == nil {
			d.DueDate = &due
		}
	}
	return d
}
