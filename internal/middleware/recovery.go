package middleware

import (
	"net/http"
	"runtime/debug"

	"roomhub-commerce-api/pkg/apierror"

	"github.com/sirupsen/logrus"
)

// Recovery recovers from panics and turns them into a 500 response.
func Recovery(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(logrus.Fields{
						"panic":      err,
						"path":       r.URL.Path,
						"request_id": GetRequestID(r.Context()),
					}).Error(string(debug.Stack()))

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write(apierror.InternalError("").ToJSON())
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
