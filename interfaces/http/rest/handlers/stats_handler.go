package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/pkg/common"
)

// StatsHandler handles completion statistics requests
type StatsHandler struct {
	data   *store.DataStore
	logger *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(data *store.DataStore, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{
		data:   data,
		logger: logger,
	}
}

// CompletionRate handles GET /stats/completion with an optional subject=
// filter. Counts only; percentage rendering (including the zero-total
// case) belongs to the client.
func (h *StatsHandler) CompletionRate(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	common.RespondJSON(w, http.StatusOK, h.data.GetCompletionRate(subject))
}
