package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/model"
	"github.com/taskflow/taskflow-api/internal/repo"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/internal/views"
	"github.com/taskflow/taskflow-api/pkg/respond"
)

type TaskHandler struct {
	stores *store.Manager
	logger *zap.Logger
}

func NewTaskHandler(stores *store.Manager, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		stores: stores,
		logger: logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var draft model.TaskDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.Create(r.Context(), draft)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// List returns the owner's tasks filtered by the query criteria, in
// current order.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	criteria := criteriaFromQuery(r)
	respond.JSON(w, r, http.StatusOK, views.Filter(s.Snapshot(), criteria))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if err := s.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourceIndex      int `json:"source_index"`
		DestinationIndex int `json:"destination_index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	tasks, err := s.Reorder(r.Context(), req.SourceIndex, req.DestinationIndex)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

// Move drops a task into a named Eisenhower quadrant.
func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quadrant string `json:"quadrant"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	urgent, important, ok := views.QuadrantFlags(req.Quadrant)
	if !ok {
		respond.Error(w, r, http.StatusBadRequest, "unknown quadrant")
		return
	}

	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.MoveToQuadrant(r.Context(), chi.URLParam(r, "id"), urgent, important)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID     string           `json:"user_id"`
		Permission model.Permission `json:"permission"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.Share(r.Context(), chi.URLParam(r, "id"), req.UserID, req.Permission)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Unshare(w http.ResponseWriter, r *http.Request) {
	s, err := h.store(r)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := s.Unshare(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "uid"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) store(r *http.Request) (*store.Store, error) {
	return h.stores.ForOwner(r.Context(), auth.OwnerID(r.Context()))
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, "validation error")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func criteriaFromQuery(r *http.Request) model.FilterCriteria {
	q := r.URL.Query()
	return model.FilterCriteria{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
}
