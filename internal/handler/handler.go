package handler

import (
	"net/http"
	"strconv"

	"roomhub-commerce-api/internal/middleware"
	"roomhub-commerce-api/pkg/apierror"

	"github.com/go-chi/chi/v5"
)

// currentUser reads the authenticated user ID placed in context by the
// identity middleware.
func currentUser(r *http.Request) (int64, error) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		return 0, apierror.Unauthorized("")
	}
	return userID, nil
}

// pathID parses a numeric URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest(name + " must be a positive integer")
	}
	return id, nil
}

// queryInt parses an optional integer query parameter, returning def when
// absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
