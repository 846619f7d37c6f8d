package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

type MediaHandler struct {
	mediaService *service.MediaService // nil when R2 is not configured
	logger       *zap.Logger
}

func NewMediaHandler(mediaService *service.MediaService, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{mediaService: mediaService, logger: logger}
}

// PresignAttachment handles POST /media/attachments/presign
// Returns a presigned URL for uploading a tweet attachment directly to R2.
func (h *MediaHandler) PresignAttachment(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}
	if h.mediaService == nil {
		writeMediaError(w, h.logger, model.ErrMediaDisabled)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB is plenty for JSON
	var req model.PresignAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	req.ContentType = strings.TrimSpace(req.ContentType)
	if req.ContentType == "" {
		httputil.WriteBadRequest(w, "content_type is required")
		return
	}

	res, err := h.mediaService.PresignAttachment(r.Context(), req)
	if err != nil {
		writeMediaError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}
