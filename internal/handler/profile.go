package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

type ProfileHandler struct {
	profileService *service.ProfileService
	logger         *zap.Logger
}

func NewProfileHandler(profileService *service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// ChangeIcon handles PUT /me/icon
func (h *ProfileHandler) ChangeIcon(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req model.ChangeIconRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.profileService.ChangeIconURL(r.Context(), p, req.URL); err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.IconResponse{Account: p.Account, IconURL: req.URL})
}

// UploadIcon handles POST /me/icon/upload (multipart, field "icon")
func (h *ProfileHandler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	maxFormSize := int64(model.MaxIconSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Icon exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	file, header, err := r.FormFile("icon")
	if err != nil {
		httputil.WriteBadRequest(w, "icon file is required")
		return
	}
	defer file.Close()

	result, err := h.profileService.UploadIcon(r.Context(), p, file, header)
	if err != nil {
		writeMediaError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.IconResponse{Account: p.Account, IconURL: result.URL})
}

// GetIcon handles GET /users/{account}/icon
func (h *ProfileHandler) GetIcon(w http.ResponseWriter, r *http.Request) {
	account := chi.URLParam(r, "account")

	icon, err := h.profileService.GetUserIcon(r.Context(), account)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.IconResponse{Account: account, IconURL: icon})
}

// GetProfile handles GET /users/{account}/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profileService.GetProfile(r.Context(), chi.URLParam(r, "account"))
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, profile)
}

func writeMediaError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "File too large")
	case errors.Is(err, model.ErrInvalidImageType):
		httputil.WriteBadRequestWithCode(w, model.CodeInvalidImageType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
	case errors.Is(err, model.ErrMediaDisabled):
		httputil.WriteError(w, http.StatusServiceUnavailable, httputil.ErrCodeMediaDisabled, "Media storage is not configured")
	default:
		httputil.WriteDomainError(w, logger, err)
	}
}
