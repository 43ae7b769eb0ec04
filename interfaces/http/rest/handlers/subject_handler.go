package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/pkg/common"
	"scholarmind/pkg/utils"
)

// SubjectHandler handles subject requests
type SubjectHandler struct {
	data   *store.DataStore
	logger *zap.Logger
}

// NewSubjectHandler creates a new subject handler
func NewSubjectHandler(data *store.DataStore, logger *zap.Logger) *SubjectHandler {
	return &SubjectHandler{
		data:   data,
		logger: logger,
	}
}

// CreateSubjectRequest is the body for creating a subject
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CreateSubject handles POST /subjects. A case-insensitive name collision
// is a conflict the caller must show the user.
func (h *SubjectHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var req CreateSubjectRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	subject, err := h.data.AddSubject(req.Name)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, subject)
}

// ListSubjects handles GET /subjects
func (h *SubjectHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.data.Subjects())
}

// DeleteSubject handles DELETE /subjects/{subjectID}. Deletion is blocked
// while goals reference the subject.
func (h *SubjectHandler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	subjectID := chi.URLParam(r, "subjectID")
	if subjectID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "subject ID is required")
		return
	}

	if err := h.data.DeleteSubject(subjectID); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "subject deleted"})
}
