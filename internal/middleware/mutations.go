package middleware

import (
	"context"
	"net/http"

	"github.com/celulas/celulas-api/internal/pkg/response"
)

// MutationChecker reports whether writes to domain data are currently allowed
type MutationChecker interface {
	IsDomainMutationEnabled(ctx context.Context) bool
}

// RequireDomainMutations refuses writes with 423 while the kill switch is off.
// Safe methods always pass and never touch the flag store.
func RequireDomainMutations(checker MutationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			if !checker.IsDomainMutationEnabled(r.Context()) {
				response.Locked(w, "Domain mutations are temporarily locked")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
