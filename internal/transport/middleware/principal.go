package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/auth"
)

// Authenticate resolves the bearer token into a principal and stores it,
// together with the capability the token earns, in the request context.
// Requests without a verifiable token never reach the guarded handlers.
func Authenticate(verifier *auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, apperrors.ErrMissingToken)
				return
			}

			principal, err := verifier.ParseToken(token)
			if err != nil {
				logger.Warn("token rejected",
					"error", err,
					"path", r.URL.Path,
					"trace_id", TraceID(r.Context()))

				appErr, ok := apperrors.IsAppError(err)
				if !ok {
					appErr = apperrors.ErrInvalidToken
				}
				writeAuthError(w, appErr)
				return
			}

			ctx := auth.ContextWithPrincipal(r.Context(), principal)
			ctx = auth.ContextWithCapability(ctx, auth.CapabilityFor(principal))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func writeAuthError(w http.ResponseWriter, appErr *apperrors.AppError) {
	status, body := appErr.ToHTTPResponse()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
