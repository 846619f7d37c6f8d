package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

type CommentHandler struct {
	commentService *service.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService *service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{commentService: commentService, logger: logger}
}

// Create handles POST /tweets/{id}/comments
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	tweetID, ok := parseTweetID(w, r)
	if !ok {
		return
	}

	var req model.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	comment, err := h.commentService.Create(r.Context(), p, tweetID, req)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, comment)
}

// List handles GET /tweets/{id}/comments
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	tweetID, ok := parseTweetID(w, r)
	if !ok {
		return
	}

	comments, err := h.commentService.GetByTweetID(r.Context(), tweetID)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}
