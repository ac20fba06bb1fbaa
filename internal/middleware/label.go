package middleware

import (
	"context"
	"net/http"
)

const unlabeledRoute = "unlabeled"

// routeInfo is shared between outer observers (logger, metrics) and the
// Label middleware that runs deeper in the chain.
type routeInfo struct {
	label string
}

// Label names the route for request logs and metrics
func Label(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, info := withRouteInfo(r)
			info.label = name
			next.ServeHTTP(w, r)
		})
	}
}

// RouteLabel returns the label set by Label, or "unlabeled"
func RouteLabel(ctx context.Context) string {
	if info, ok := ctx.Value(routeKey).(*routeInfo); ok && info.label != "" {
		return info.label
	}
	return unlabeledRoute
}

func withRouteInfo(r *http.Request) (*http.Request, *routeInfo) {
	if info, ok := r.Context().Value(routeKey).(*routeInfo); ok {
		return r, info
	}
	info := &routeInfo{}
	return r.WithContext(context.WithValue(r.Context(), routeKey, info)), info
}
