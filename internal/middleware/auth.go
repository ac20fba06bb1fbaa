package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/celulas/celulas-api/internal/pkg/jwt"
	"github.com/celulas/celulas-api/internal/pkg/response"
)

type contextKey string

const (
	ExternalIDKey contextKey = "external_id"
	UserKey       contextKey = "domain_user"
	routeKey      contextKey = "route"
)

// Auth returns middleware that validates the identity-provider session token
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			claims, err := jwtService.ValidateIdentityToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			ctx := context.WithValue(r.Context(), ExternalIDKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken reads the Authorization header, falling back to ?token= for websocket upgrades
func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if isWebsocketUpgrade(r) {
			return r.URL.Query().Get("token")
		}
		return ""
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// GetExternalID extracts the identity-provider subject from context
func GetExternalID(ctx context.Context) string {
	if id, ok := ctx.Value(ExternalIDKey).(string); ok {
		return id
	}
	return ""
}

// WithExternalID stores an authenticated subject in ctx
func WithExternalID(ctx context.Context, externalID string) context.Context {
	return context.WithValue(ctx, ExternalIDKey, externalID)
}
