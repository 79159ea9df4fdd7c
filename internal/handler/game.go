package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/focus"
	"github.com/taskflow/taskflow-api/internal/game"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/pkg/respond"
)

// GameHandler serves the gamification summary: achievements, points,
// level, streak and today's challenges, all derived on read.
type GameHandler struct {
	stores *store.Manager
	focus  *focus.Service
	logger *zap.Logger
	now    func() time.Time
}

func NewGameHandler(stores *store.Manager, focusSvc *focus.Service, logger *zap.Logger) *GameHandler {
	return &GameHandler{
		stores: stores,
		focus:  focusSvc,
		logger: logger,
		now:    time.Now,
	}
}

func (h *GameHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ownerID := auth.OwnerID(r.Context())

	s, err := h.stores.ForOwner(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to load task store", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	summary := game.BuildSummary(s.Snapshot(), h.focus.Completions(ownerID), h.now(), location(r))
	respond.JSON(w, r, http.StatusOK, summary)
}
