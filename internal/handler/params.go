package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tweetledger/internal/httputil"
	"tweetledger/internal/model"
	"tweetledger/internal/transport/http/middleware"
)

// requirePrincipal writes a 401 and returns false when the request is
// unauthenticated.
func requirePrincipal(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
	}
	return p, ok
}

func parseTweetID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, "Invalid tweet ID")
		return 0, false
	}
	return id, true
}

// parsePage reads ?offset&limit. Missing values default to 0 and
// DefaultPageLimit. Negative values are left for the service to reject.
func parsePage(w http.ResponseWriter, r *http.Request) (offset, limit int, ok bool) {
	offset, limit = 0, model.DefaultPageLimit

	if s := r.URL.Query().Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid offset")
			return 0, 0, false
		}
		offset = v
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid limit")
			return 0, 0, false
		}
		if v > model.MaxPageLimit {
			httputil.WriteBadRequest(w, "limit must be at most "+strconv.Itoa(model.MaxPageLimit))
			return 0, 0, false
		}
		limit = v
	}
	return offset, limit, true
}

func hasPageParams(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("offset") || q.Has("limit")
}
