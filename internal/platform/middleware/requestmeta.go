package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"marksman/pkg/requestcontext"
)

// RequestMeta stamps each request with an id and a request-scoped time. All
// date arithmetic downstream reads the clock from context, so one request
// computes every window against a single instant.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		requestID := r.Header.Get("X-Request-Id")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx = requestcontext.WithRequestID(ctx, requestID)
		ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))
		w.Header().Set("X-Request-Id", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
