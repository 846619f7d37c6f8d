package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

type TweetHandler struct {
	tweetService *service.TweetService
	logger       *zap.Logger
}

func NewTweetHandler(tweetService *service.TweetService, logger *zap.Logger) *TweetHandler {
	return &TweetHandler{tweetService: tweetService, logger: logger}
}

// Create handles POST /tweets
func (h *TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req model.CreateTweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	tweet, err := h.tweetService.Create(r.Context(), p, req)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, tweet)
}

// GetByID handles GET /tweets/{id}
func (h *TweetHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	tweetID, ok := parseTweetID(w, r)
	if !ok {
		return
	}

	tweet, err := h.tweetService.Get(r.Context(), tweetID)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tweet)
}

// Timeline handles GET /timeline?offset&limit
func (h *TweetHandler) Timeline(w http.ResponseWriter, r *http.Request) {
	offset, limit, ok := parsePage(w, r)
	if !ok {
		return
	}

	tweets, err := h.tweetService.Timeline(r.Context(), offset, limit)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.TimelineResponse{Tweets: tweets, Offset: offset, Limit: limit})
}

// UserTweets handles GET /users/{account}/tweets. With ?offset or ?limit it
// uses the paginated form, which needs V4.
func (h *TweetHandler) UserTweets(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")

	if !hasPageParams(r) {
		tweets, err := h.tweetService.UserTweets(r.Context(), account)
		if err != nil {
			httputil.WriteDomainError(w, h.logger, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, model.TimelineResponse{Tweets: tweets, Limit: len(tweets)})
		return
	}

	offset, limit, ok := parsePage(w, r)
	if !ok {
		return
	}
	tweets, err := h.tweetService.UserTweetsPage(r.Context(), account, offset, limit)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.TimelineResponse{Tweets: tweets, Offset: offset, Limit: limit})
}

// Like handles POST /tweets/{id}/likes
func (h *TweetHandler) Like(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	tweetID, ok := parseTweetID(w, r)
	if !ok {
		return
	}

	if err := h.tweetService.Like(r.Context(), p, tweetID); err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetLikes handles GET /users/{account}/likes
func (h *TweetHandler) GetLikes(w http.ResponseWriter, r *http.Request) {
	tweets, err := h.tweetService.GetLikes(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.TimelineResponse{Tweets: tweets, Limit: len(tweets)})
}
