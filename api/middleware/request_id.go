package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/orderform-backend/api/validators"
	"github.com/angelmondragon/orderform-backend/pkg/logger"
)

const (
	requestIDHeader    = "X-Request-Id"
	maxRequestIDLength = 64
)

// RequestID tags each request with an id, echoed on the response and
// attached to the request's log context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := callerRequestID(r.Header.Get(requestIDHeader))
			if !ok {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// callerRequestID accepts an upstream id only if it is short, visible ASCII.
// Anything else would end up verbatim in log lines.
func callerRequestID(raw string) (string, bool) {
	id := validators.SanitizeString(raw, maxRequestIDLength)
	if id == "" {
		return "", false
	}
	if strings.IndexFunc(id, func(c rune) bool { return c <= ' ' || c > '~' }) >= 0 {
		return "", false
	}
	return id, true
}
