package middleware

import (
	"context"
	"net/http"

	"github.com/edi-app/edi-intake/pkg/logger"

	"github.com/google/uuid"
)

type traceKey struct{}

// RequestID assigns every request a trace id, honouring one supplied by the
// caller. The id rides in the context, the context logger and the response
// header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), traceKey{}, traceID)
		ctx = logger.With(ctx, "trace_id", traceID)

		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TraceID returns the request's trace id, or empty outside a request.
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
