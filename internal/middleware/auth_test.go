package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/celulas/celulas-api/internal/pkg/jwt"
)

func TestAuthMiddlewareAllowsValidIdentityToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", "")
	token, err := jwtSvc.GenerateIdentityToken("user_2abc", "ana@igreja.test", time.Minute)
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	var subject string
	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = GetExternalID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if subject != "user_2abc" {
		t.Fatalf("expected subject user_2abc, got %q", subject)
	}
}

func TestAuthMiddlewareRejectsMissingOrBadToken(t *testing.T) {
	jwtSvc := jwt.NewService("secret", "")
	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		protected.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401, got %d", header, w.Code)
		}
	}
}

func TestAuthMiddlewareAcceptsQueryTokenOnWebsocketUpgrade(t *testing.T) {
	jwtSvc := jwt.NewService("secret", "")
	token, err := jwtSvc.GenerateIdentityToken("user_ws", "", time.Minute)
	if err != nil {
		t.Fatalf("token gen failed: %v", err)
	}

	protected := Auth(jwtSvc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/ws/notifications?token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()
	protected.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for websocket query token, got %d", w.Code)
	}

	plain := httptest.NewRequest(http.MethodGet, "/api/credits/me?token="+token, nil)
	w = httptest.NewRecorder()
	protected.ServeHTTP(w, plain)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for query token without upgrade, got %d", w.Code)
	}
}
