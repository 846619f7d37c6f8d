package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/service"
)

// SchemaHandler exposes the schema version controller to operators.
type SchemaHandler struct {
	schemaService *service.SchemaService
	logger        *zap.Logger
}

func NewSchemaHandler(schemaService *service.SchemaService, logger *zap.Logger) *SchemaHandler {
	return &SchemaHandler{schemaService: schemaService, logger: logger}
}

// Status handles GET /admin/schema
func (h *SchemaHandler) Status(w http.ResponseWriter, r *http.Request) {
	if _, ok := requirePrincipal(w, r); !ok {
		return
	}

	status, err := h.schemaService.Status(r.Context())
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}

// Initialize handles POST /admin/schema/{version}
func (h *SchemaHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	p, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	// authorization is checked before the version is parsed
	if !p.Operator {
		httputil.WriteDomainError(w, h.logger, model.ErrNotOperator)
		return
	}

	version, err := model.ParseSchemaVersion(chi.URLParam(r, "version"))
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}

	rec, err := h.schemaService.Initialize(r.Context(), p, version)
	if err != nil {
		httputil.WriteDomainError(w, h.logger, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}
