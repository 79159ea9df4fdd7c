package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow-api/internal/auth"
	"github.com/taskflow/taskflow-api/internal/store"
	"github.com/taskflow/taskflow-api/internal/suggest"
	"github.com/taskflow/taskflow-api/pkg/respond"
)

// SuggestHandler asks the AI backend for task ideas grounded in the
// owner's recent tasks.
type SuggestHandler struct {
	client *suggest.Client
	stores *store.Manager
	logger *zap.Logger
}

func NewSuggestHandler(client *suggest.Client, stores *store.Manager, logger *zap.Logger) *SuggestHandler {
	return &SuggestHandler{
		client: client,
		stores: stores,
		logger: logger,
	}
}

func (h *SuggestHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		respond.Error(w, r, http.StatusBadRequest, "prompt must not be empty")
		return
	}

	s, err := h.stores.ForOwner(r.Context(), auth.OwnerID(r.Context()))
	if err != nil {
		h.logger.Error("failed to load task store", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	resp, err := h.client.Suggest(r.Context(), req.Prompt, s.Snapshot())
	if err != nil {
		h.logger.Error("suggestion request failed", zap.Error(err))
		respond.Error(w, r, http.StatusBadGateway, "suggestion service unavailable")
		return
	}
	respond.JSON(w, r, http.StatusOK, resp)
}
