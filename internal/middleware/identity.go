package middleware

import (
	"context"
	"net/http"
	"strconv"

	"roomhub-commerce-api/pkg/apierror"
)

// UserIDKey is the context key for the authenticated user's ID.
const UserIDKey contextKey = "user_id"

// Identity reads the caller's identity from the X-User-ID header set by the
// authenticating gateway. Requests without a valid ID are rejected; this
// service never sees credentials itself.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			writeError(w, apierror.Unauthorized("X-User-ID header required"))
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeError(w, apierror.Unauthorized("invalid X-User-ID header"))
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID retrieves the authenticated user ID from context. The second
// return is false when the request did not pass through Identity.
func GetUserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserIDKey).(int64)
	return id, ok
}

// writeError writes an API error response.
func writeError(w http.ResponseWriter, err *apierror.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_, _ = w.Write(err.ToJSON())
}
