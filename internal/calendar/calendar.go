// Package calendar pushes scheduled tasks into Google Calendar. Each
// event carries the task id as a private extended property so a repeated
// push updates the existing event instead of duplicating it.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/taskflow/taskflow-api/internal/model"
)

const taskIDProperty = "taskflow_task_id"

// defaultEventLength is used because tasks carry a single due instant, not
// a span.
const defaultEventLength = time.Hour

var (
	ErrNotConnected = errors.New("calendar not connected")
	ErrNoDueDate    = errors.New("task has no due date")
)

// Sync manages per-owner calendar connections.
type Sync struct {
	oauth  *oauth2.Config
	logger *zap.Logger

	mu       sync.Mutex
	services map[string]*calendarapi.Service
}

func NewSync(clientID, clientSecret, redirectURL string, logger *zap.Logger) *Sync {
	return &Sync{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{calendarapi.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		logger:   logger,
		services: make(map[string]*calendarapi.Service),
	}
}

// AuthURL returns the consent page URL for the OAuth flow.
func (s *Sync) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Connect exchanges the OAuth authorization code and opens a calendar
// service for the owner.
func (s *Sync) Connect(ctx context.Context, ownerID, authCode string) error {
	token, err := s.oauth.Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("exchange auth code: %w", err)
	}

	srv, err := calendarapi.NewService(ctx, option.WithTokenSource(s.oauth.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("create calendar service: %w", err)
	}

	s.mu.Lock()
	s.services[ownerID] = srv
	s.mu.Unlock()

	s.logger.Info("calendar connected", zap.String("owner_id", ownerID))
	return nil
}

// Disconnect forgets the owner's calendar connection.
func (s *Sync) Disconnect(ownerID string) {
	s.mu.Lock()
	delete(s.services, ownerID)
	s.mu.Unlock()
}

// Connected reports whether the owner has an open connection.
func (s *Sync) Connected(ownerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.services[ownerID]
	return ok
}

// InsertEvent pushes the task to the owner's primary calendar. A task
// without a due date fails the precondition before any remote call.
func (s *Sync) InsertEvent(ctx context.Context, ownerID string, task model.Task) (string, error) {
	if task.DueDate == nil {
		return "", ErrNoDueDate
	}

	s.mu.Lock()
	srv, ok := s.services[ownerID]
	s.mu.Unlock()
	if !ok {
		return "", ErrNotConnected
	}

	event := BuildEvent(task)

	existing, err := s.findByTaskID(srv, task.ID)
	if err != nil {
		return "", fmt.Errorf("search calendar events: %w", err)
	}
	if existing != nil {
		updated, err := srv.Events.Patch("primary", existing.Id, event).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("update calendar event: %w", err)
		}
		return updated.Id, nil
	}

	created, err := srv.Events.Insert("primary", event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.Id, nil
}

// BuildEvent maps a task onto a calendar event. The task must have a
// due date.
func BuildEvent(task model.Task) *calendarapi.Event {
	start := *task.DueDate
	end := start.Add(defaultEventLength)
	return &calendarapi.Event{
		Summary:     task.Title,
		Description: task.Description,
		Start:       &calendarapi.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendarapi.EventDateTime{DateTime: end.Format(time.RFC3339)},
		ExtendedProperties: &calendarapi.EventExtendedProperties{
			Private: map[string]string{taskIDProperty: task.ID},
		},
	}
}

func (s *Sync) findByTaskID(srv *calendarapi.Service, taskID string) (*calendarapi.Event, error) {
	events, err := srv.Events.List("primary").
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", taskIDProperty, taskID)).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
