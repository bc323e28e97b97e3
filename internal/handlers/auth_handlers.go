package handlers

import (
	"net/http"

	"github.com/yasinhessnawi1/backoffice-auth/internal/auth"
	"github.com/yasinhessnawi1/backoffice-auth/internal/constants"
	"github.com/yasinhessnawi1/backoffice-auth/internal/models"
	"github.com/yasinhessnawi1/backoffice-auth/internal/utils"
)

// AuthHandler handles the authentication routes of one account kind.
type AuthHandler struct {
	authService AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthServiceInterface) *AuthHandler {
	if authService == nil {
		panic("authService cannot be nil")
	}
	return &AuthHandler{
		authService: authService,
	}
}

// Register handles account registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	result, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, constants.MsgRegistered, h.tokenPayload(result))
}

// Login handles account authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	result, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, constants.MsgLoggedIn, h.tokenPayload(result))
}

// Logout revokes the bearer token of the request. The route is guarded by
// auth.RequireSignedToken, so the token is known to be well formed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	bearer, ok := auth.GetBearerToken(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	accountID, _ := auth.GetAccountID(r)

	if err := h.authService.Logout(r.Context(), accountID, bearer); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, constants.MsgLoggedOut, nil)
}

// Forgot handles a password reset link request
func (h *AuthHandler) Forgot(w http.ResponseWriter, r *http.Request) {
	var req models.ForgotPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	if err := h.authService.Forgot(r.Context(), &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, constants.MsgResetLinkSent, nil)
}

// Reset handles the submission of a new password from a reset link
func (h *AuthHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	status, err := h.authService.Reset(r.Context(), &req)
	if err != nil {
		utils.ErrorFromAppError(w, utils.ParseError(err))
		return
	}

	utils.JSON(w, http.StatusOK, status.Message(), map[string]string{
		"status": status.Key(),
	})
}

// Me returns the account that owns the bearer token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account, ok := auth.GetAccount(r)
	if !ok {
		utils.Unauthorized(w, "")
		return
	}

	utils.JSON(w, http.StatusOK, constants.MsgAuthenticated, map[string]interface{}{
		h.authService.Kind().ResponseKey(): account.Sanitize(),
	})
}

func (h *AuthHandler) tokenPayload(result *models.AuthResult) map[string]interface{} {
	return map[string]interface{}{
		"token":                            result.Token,
		h.authService.Kind().ResponseKey(): result.Account,
	}
}
