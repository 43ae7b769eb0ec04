package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/domain/core/entities"
	"scholarmind/pkg/common"
)

// SessionHandler handles study-session log requests
type SessionHandler struct {
	data   *store.DataStore
	logger *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(data *store.DataStore, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		data:   data,
		logger: logger,
	}
}

// CreateSessionRequest is the body for logging a study session. All
// fields are optional; the record is stored as supplied.
type CreateSessionRequest struct {
	Subject         string    `json:"subject,omitempty"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	StartedAt       time.Time `json:"startedAt,omitempty"`
	EndedAt         time.Time `json:"endedAt,omitempty"`
	Notes           string    `json:"notes,omitempty"`
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	session := h.data.AddSession(entities.SessionInput{
		Subject:         req.Subject,
		DurationSeconds: req.DurationSeconds,
		StartedAt:       req.StartedAt,
		EndedAt:         req.EndedAt,
		Notes:           req.Notes,
	})

	common.RespondJSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.data.Sessions())
}
