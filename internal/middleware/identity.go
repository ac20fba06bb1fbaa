package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
)

// UserResolver loads the domain user behind an authenticated subject
type UserResolver interface {
	Resolve(ctx context.Context, externalID string) (*user.User, error)
}

// ResolveUser loads the domain user on every request. Must run after Auth.
func ResolveUser(resolver UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			externalID := GetExternalID(r.Context())
			if externalID == "" {
				response.Unauthorized(w, "Authentication required")
				return
			}

			u, err := resolver.Resolve(r.Context(), externalID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					response.NotFound(w, "User profile not found")
					return
				}
				errorhandler.Internal(r.Context(), w, "identity.resolve", err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}

// GetUser returns the resolved domain user, or nil
func GetUser(ctx context.Context) *user.User {
	if u, ok := ctx.Value(UserKey).(*user.User); ok {
		return u
	}
	return nil
}

// WithUser stores a resolved domain user in ctx
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, UserKey, u)
}

// RequireRoles returns middleware that checks the domain user's role
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r.Context())
			if u == nil {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !user.HasRole(u, roles...) {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireLeader returns middleware that requires leader, supervisor or pastor
func RequireLeader() func(http.Handler) http.Handler {
	return RequireRoles(user.RoleLiderCelula, user.RoleSupervisor, user.RolePastor)
}

// RequireAdmin returns middleware that requires a platform operator
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := GetUser(r.Context())
			if u == nil {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if !u.IsAdmin {
				response.Forbidden(w, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
