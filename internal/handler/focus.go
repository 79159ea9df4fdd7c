package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/focus"
	"github.com/taskflow/taskflow-api/pkg/respond"
)

type FocusHandler struct {
	service *focus.Service
	logger  *zap.Logger
}

func NewFocusHandler(service *focus.Service, logger *zap.Logger) *FocusHandler {
	return &FocusHandler{
		service: service,
		logger:  logger,
	}
}

func (h *FocusHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TaskID          string `json:"task_id"`
		DurationMinutes int    `json:"duration_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DurationMinutes < 0 {
		respond.Error(w, r, http.StatusBadRequest, "duration must not be negative")
		return
	}

	session := h.service.Start(auth.OwnerID(r.Context()), req.TaskID, req.DurationMinutes)
	respond.JSON(w, r, http.StatusOK, session)
}

func (h *FocusHandler) Pause(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Pause(auth.OwnerID(r.Context()))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, session)
}

func (h *FocusHandler) Resume(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Resume(auth.OwnerID(r.Context()))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, session)
}

func (h *FocusHandler) Reset(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.Reset(auth.OwnerID(r.Context()))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, session)
}

func (h *FocusHandler) Stop(w http.ResponseWriter, r *http.Request) {
	h.service.Stop(auth.OwnerID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *FocusHandler) State(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.service.State(auth.OwnerID(r.Context())))
}

func (h *FocusHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, focus.ErrInvalidTransition):
		respond.Error(w, r, http.StatusConflict, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
