package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/model"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/internal/views"
	"github.com/taskflow/taskflow-api/pkg/respond"
)

// ViewHandler serves the derived read models: kanban board, Eisenhower
// matrix, calendar buckets and weekly analytics. Views never mutate the
// task collection.
type ViewHandler struct {
	stores *store.Manager
	logger *zap.Logger
	now    func() time.Time
}

func NewViewHandler(stores *store.Manager, logger *zap.Logger) *ViewHandler {
	return &ViewHandler{
		stores: stores,
		logger: logger,
		now:    time.Now,
	}
}

func (h *ViewHandler) Kanban(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respond.JSON(w, r, http.StatusOK, views.Kanban(tasks))
}

func (h *ViewHandler) Matrix(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respond.JSON(w, r, http.StatusOK, views.Quadrants(tasks))
}

func (h *ViewHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	respond.JSON(w, r, http.StatusOK, views.CalendarBuckets(tasks, location(r)))
}

func (h *ViewHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	tasks, ok := h.snapshot(w, r)
	if !ok {
		return
	}

	loc := location(r)
	now := h.now()
	respond.JSON(w, r, http.StatusOK, map[string]any{
		"weekly":     views.WeeklySeries(tasks, now, loc),
		"categories": views.CategoryShares(tasks),
		"overdue":    views.OverdueCount(tasks, now),
		"delta":      views.CompletionDelta(tasks, now, loc),
	})
}

func (h *ViewHandler) snapshot(w http.ResponseWriter, r *http.Request) ([]model.Task, bool) {
	s, err := h.stores.ForOwner(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.logger.Error("failed to load task store", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return nil, false
	}

	criteria := criteriaFromQuery(r)
	return views.Filter(s.Snapshot(), criteria), true
}

// location resolves the tz query parameter, falling back to UTC when it is
// absent or unknown.
func location(r *http.Request) *time.Location {
	name := r.URL.Query().Get("tz")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
