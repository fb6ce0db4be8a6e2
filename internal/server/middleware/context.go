package middleware

import (
	"context"
	"net/http"
	"time"

	"chatrelay/internal/utils"
	contextutils "chatrelay/internal/utils/context"
	logutils "chatrelay/internal/utils/logger"
)

// withContext takes the server's context including its logger, injects a
// request ID and timeout, and sets it as the request's context.
func withContext(srvCtx context.Context, next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		// the server's logger rides along on every request context
		ctx = logutils.ContextWithLogger(ctx, logutils.FromContext(srvCtx))

		// Generate request ID
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}
		// Add request ID to context and response headers
		ctx = contextutils.WithRequestID(ctx, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
