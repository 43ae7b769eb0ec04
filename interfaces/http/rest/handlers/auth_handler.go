package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"scholarmind/application/store"
	"scholarmind/pkg/auth"
	"scholarmind/pkg/common"
	"scholarmind/pkg/utils"
)

const maxBodyBytes = 64 * 1024

// AuthHandler handles authentication and app-lock requests
type AuthHandler struct {
	sessions *store.SessionStore
	tokens   *auth.TokenService
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions *store.SessionStore, tokens *auth.TokenService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// CredentialsRequest is the body for login and signup
type CredentialsRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	DisplayName string `json:"displayName,omitempty" validate:"omitempty,max=100"`
}

// PasscodeRequest carries a 4-digit app-lock code
type PasscodeRequest struct {
	Code string `json:"code" validate:"required,len=4,numeric"`
}

// AuthResponse is returned on successful login or signup
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse is the identity shape exposed to clients
type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// StateResponse is the derived presentation-facing session state
type StateResponse struct {
	Loading       bool          `json:"loading"`
	Authenticated bool          `json:"authenticated"`
	PasscodeSet   bool          `json:"passcodeSet"`
	User          *UserResponse `json:"user,omitempty"`
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.sessions.Signup(r.Context(), req.Email, req.Password, req.DisplayName); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusCreated)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.sessions.Login(r.Context(), req.Email, req.Password); err != nil {
		common.RespondAppError(w, err)
		return
	}

	h.respondWithToken(w, http.StatusOK)
}

// Logout handles POST /auth/logout. Local storage for the identity is
// erased before sign-out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context()); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// SetupPasscode handles POST /auth/passcode
func (h *AuthHandler) SetupPasscode(w http.ResponseWriter, r *http.Request) {
	var req PasscodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if err := h.sessions.SetupPasscode(r.Context(), req.Code); err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"message": "passcode configured"})
}

// VerifyPasscode handles POST /auth/passcode/verify. The code path also
// accepts the biometric sentinel submitted by the mobile client.
func (h *AuthHandler) VerifyPasscode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code" validate:"required"`
	}
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]bool{
		"unlocked": h.sessions.VerifyPasscode(req.Code),
	})
}

// Unlock handles POST /auth/unlock, the explicit biometric path
func (h *AuthHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]bool{
		"unlocked": h.sessions.VerifyBiometric(),
	})
}

// State handles GET /auth/state
func (h *AuthHandler) State(w http.ResponseWriter, r *http.Request) {
	resp := StateResponse{
		Loading:       h.sessions.Loading(),
		Authenticated: h.sessions.IsAuthenticated(),
		PasscodeSet:   h.sessions.IsPasscodeSet(),
	}
	if ident := h.sessions.Identity(); ident != nil {
		resp.User = &UserResponse{
			ID:          ident.ID,
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
		}
	}

	common.RespondJSON(w, http.StatusOK, resp)
}

// respondWithToken issues a session token for the now-current identity
func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int) {
	ident := h.sessions.Identity()
	if ident == nil {
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "no identity after authentication")
		return
	}

	token, err := h.tokens.GenerateToken(ident.ID, ident.Email, ident.DisplayName)
	if err != nil {
		h.logger.Error("Failed to generate token", zap.Error(err))
		common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "failed to generate token")
		return
	}

	common.RespondJSON(w, status, AuthResponse{
		Token: token,
		User: UserResponse{
			ID:          ident.ID,
			Email:       ident.Email,
			DisplayName: ident.DisplayName,
		},
	})
}
