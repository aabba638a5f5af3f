package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fournil/internal/admin/service"
)

type SessionResolver interface {
	Session(ctx context.Context, tokenString string) (*service.Principal, error)
}

// RequireAdmin rejects requests without a valid admin session. A missing
// or unverifiable token is a 401; a valid session without the admin role
// is a 403.
func RequireAdmin(sessions SessionResolver, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeAuthError(w, http.StatusUnauthorized, "AUTH_ERROR", "authentication required")
				return
			}

			principal, err := sessions.Session(r.Context(), token)
			if err != nil {
				logger.Debug("session resolution failed", zap.Error(err))
				writeAuthError(w, http.StatusUnauthorized, "AUTH_ERROR", "invalid or expired session")
				return
			}

			if !principal.IsAdmin {
				writeAuthError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
				return
			}

			next.ServeHTTP(w, r.WithContext(service.WithPrincipal(r.Context(), principal)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeAuthError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error":   code,
		"message": message,
	})
}
