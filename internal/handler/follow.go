package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

type FollowHandler struct {
	followService *service.FollowService
	logger        *zap.Logger
}

func NewFollowHandler(followService *service.FollowService, logger *zap.Logger) *FollowHandler {
	return &FollowHandler{followService: followService, logger: logger}
}

// Follow handles POST /users/{account}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.followService.Follow(r.Context(), p, chi.URLParam(r, "account")); err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Unfollow handles DELETE /users/{account}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), p, chi.URLParam(r, "account")); err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetFollowings handles GET /users/{account}/followings
func (h *FollowHandler) GetFollowings(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.followService.GetFollowings(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.FollowListResponse{Accounts: accounts})
}

// GetFollowers handles GET /users/{account}/followers
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.followService.GetFollowers(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.FollowListResponse{Accounts: accounts})
}

// Status handles GET /users/{account}/following-status
// Reports whether the caller follows {account}.
func (h *FollowHandler) Status(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	following, err := h.followService.IsFollowing(r.Context(), p.Account, chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.FollowStatusResponse{IsFollowing: following})
}
