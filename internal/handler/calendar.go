package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/calendar"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/pkg/respond"
)

type CalendarHandler struct {
	sync   *calendar.Sync
	stores *store.Manager
	logger *zap.Logger
}

func NewCalendarHandler(sync *calendar.Sync, stores *store.Manager, logger *zap.Logger) *CalendarHandler {
	return &CalendarHandler{
		sync:   sync,
		stores: stores,
		logger: logger,
	}
}

// AuthURL hands the client the Google consent URL to start the OAuth
// flow. The owner id rides along as the state parameter.
func (h *CalendarHandler) AuthURL(w http.ResponseWriter, r *http.Request) {
	url := h.sync.AuthURL(auth.OwnerID(r.Context()))
	respond.JSON(w, r, http.StatusOK, map[string]string{"auth_url": url})
}

func (h *CalendarHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	if err := h.sync.Connect(r.Context(), auth.OwnerID(r.Context()), req.Code); err != nil {
		h.logger.Error("calendar connect failed", zap.Error(err))
		respond.Error(w, r, http.StatusBadGateway, "calendar connection failed")
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]bool{"connected": true})
}

func (h *CalendarHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	h.sync.Disconnect(auth.OwnerID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *CalendarHandler) Status(w http.ResponseWriter, r *http.Request) {
	connected := h.sync.Connected(auth.OwnerID(r.Context()))
	respond.JSON(w, r, http.StatusOK, map[string]bool{"connected": connected})
}

// Export pushes one task onto the owner's primary Google calendar. A
// task already exported is patched in place rather than duplicated.
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerID(r.Context())

	s, err := h.stores.ForOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to load task store", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	task, err := s.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	eventID, err := h.sync.InsertEvent(r.Context(), ownerID, task)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]string{"event_id": eventID})
}

func (h *CalendarHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, calendar.ErrNotConnected):
		respond.Error(w, r, http.StatusConflict, "calendar not connected")
	case errors.Is(err, calendar.ErrNoDueDate):
		respond.Error(w, r, http.StatusPreconditionFailed, "task has no due date")
	default:
		h.logger.Error("calendar export failed", zap.Error(err))
		respond.Error(w, r, http.StatusBadGateway, "calendar export failed")
	}
}
