package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

// AuthHandler groups account registration and login.
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	account, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrAccountExists) {
			httputil.WriteConflict(w, "Account already exists")
			return
		}
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, account)
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid address or password")
			return
		}
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	// Also set an HttpOnly cookie for browser clients
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    resp.AccessToken,
		Path:     "/",
		MaxAge:   resp.ExpiresIn,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, http.StatusOK, resp)
}
