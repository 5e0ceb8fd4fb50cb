package common

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const (
	ctxParticipantID contextKey = "participant_id"
	ctxRole          contextKey = "role"
)

// AuthMiddleware validates the bearer token and injects the participant
// identity into the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			http.Error(w, "invalid auth header", http.StatusUnauthorized)
			return
		}

		claims, err := ValidToken(parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), ctxParticipantID, claims.ParticipantID)
		ctx = context.WithValue(ctx, ctxRole, Role(claims.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// IdentityFromContext returns the authenticated participant, if any.
func IdentityFromContext(ctx context.Context) (string, Role, bool) {
	id, ok := ctx.Value(ctxParticipantID).(string)
	if !ok {
		return "", "", false
	}
	role, ok := ctx.Value(ctxRole).(Role)
	if !ok {
		return "", "", false
	}
	return id, role, true
}
