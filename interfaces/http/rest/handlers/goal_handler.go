package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/domain/core/entities"
	"scholarmind/domain/core/valueobjects"
	"scholarmind/pkg/common"
	"scholarmind/pkg/utils"
)

// GoalHandler handles goal CRUD and query requests
type GoalHandler struct {
	data   *store.DataStore
	logger *zap.Logger
}

// NewGoalHandler creates a new goal handler
func NewGoalHandler(data *store.DataStore, logger *zap.Logger) *GoalHandler {
	return &GoalHandler{
		data:   data,
		logger: logger,
	}
}

// CreateGoalRequest is the body for creating a goal. Title and subject
// are required here, at the caller boundary; the store itself appends
// whatever it is handed.
type CreateGoalRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Subject     string `json:"subject" validate:"required,min=1,max=100"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// UpdateGoalRequest is the body for a partial goal update
type UpdateGoalRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Completed   *bool   `json:"completed,omitempty"`
}

// CreateGoal handles POST /goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	var req CreateGoalRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	date, err := valueobjects.ParseDay(req.Date)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	goal := h.data.AddGoal(store.GoalInput{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Date:        date,
	})

	common.RespondJSON(w, http.StatusCreated, goal)
}

// ListGoals handles GET /goals with optional date= or subject= filters
func (h *GoalHandler) ListGoals(w http.ResponseWriter, r *http.Request) {
	if dateParam := r.URL.Query().Get("date"); dateParam != "" {
		date, err := valueobjects.ParseDay(dateParam)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		common.RespondJSON(w, http.StatusOK, h.data.GetGoalsByDate(date))
		return
	}

	if subject := r.URL.Query().Get("subject"); subject != "" {
		common.RespondJSON(w, http.StatusOK, h.data.GetGoalsBySubject(subject))
		return
	}

	common.RespondJSON(w, http.StatusOK, h.data.Goals())
}

// UpdateGoal handles PUT /goals/{goalID}
func (h *GoalHandler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalID")
	if goalID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "goal ID is required")
		return
	}

	var req UpdateGoalRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	patch := entities.GoalPatch{
		Title:       req.Title,
		Subject:     req.Subject,
		Description: req.Description,
		Completed:   req.Completed,
	}
	if req.Date != nil {
		date, err := valueobjects.ParseDay(*req.Date)
		if err != nil {
			common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		patch.Date = &date
	}

	h.data.UpdateGoal(goalID, patch)
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "goal updated"})
}

// DeleteGoal handles DELETE /goals/{goalID}
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalID")
	if goalID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "goal ID is required")
		return
	}

	h.data.DeleteGoal(goalID)
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "goal deleted"})
}

// ToggleGoal handles POST /goals/{goalID}/toggle
func (h *GoalHandler) ToggleGoal(w http.ResponseWriter, r *http.Request) {
	goalID := chi.URLParam(r, "goalID")
	if goalID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "goal ID is required")
		return
	}

	h.data.ToggleGoalCompletion(goalID)
	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "goal toggled"})
}
