package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/config"
	"github.com/celulas/celulas-api/internal/pkg/clerk"
	"github.com/celulas/celulas-api/internal/pkg/database/dbtest"
	"github.com/celulas/celulas-api/internal/pkg/jwt"
)

type testServer struct {
	*app
	jwt     *jwt.Service
	igreja  uuid.UUID
	member  uuid.UUID
	admin   uuid.UUID
	handler http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	igreja := dbtest.SeedIgreja(t, db, "Igreja Central")
	member := dbtest.SeedUser(t, db, igreja, "discipulo")
	admin := dbtest.SeedUser(t, db, igreja, "pastor")
	dbtest.Exec(t, db, `UPDATE users SET is_admin = ? WHERE id = ?`, true, admin)

	jwtSvc := jwt.NewService("test-secret", "")
	a := newApp(appDeps{
		Config: &config.Config{
			AllowedOrigins:            []string{"http://localhost:3000"},
			RateLimitPerMinute:        1000,
			RateLimitBurst:            1000,
			NotificationRetentionDays: 90,
			MetricsEnabled:            true,
		},
		DB:       db,
		JWT:      jwtSvc,
		Mirror:   clerk.NewClient("http://127.0.0.1:1", "", time.Second),
		Registry: prometheus.NewRegistry(),
	})
	t.Cleanup(a.shutdown)

	return &testServer{app: a, jwt: jwtSvc, igreja: igreja, member: member, admin: admin, handler: a.router}
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := s.jwt.GenerateIdentityToken("ext_"+userID.String(), "", time.Minute)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAuthenticatedRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/igrejas/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/igrejas/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, "/api/igrejas/me", s.token(t, s.member), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Igreja Central")

	w = s.do(t, http.MethodGet, "/api/notifications/unread-count", s.token(t, s.member), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/igrejas/me", s.token(t, uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPublicInvitationLookup(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/convites/deadbeef", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/convites/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/admin/dashboard", s.token(t, s.member), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/dashboard", s.token(t, s.admin), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDomainMutationFlagLocksWrites(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.token(t, s.admin)
	path := "/api/trilhas/" + uuid.NewString() + "/solicitacoes"

	w := s.do(t, http.MethodPut, "/api/admin/feature-flags/ENABLE_DOMAIN_MUTATIONS", adminToken, map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, path, s.token(t, s.member), map[string]string{"area_id": uuid.NewString()})
	assert.Equal(t, http.StatusLocked, w.Code)
	assert.Contains(t, w.Body.String(), "DOMAIN_MUTATIONS_LOCKED")

	w = s.do(t, http.MethodPost, "/api/credits/consume", s.token(t, s.member), map[string]string{"feature": "trilha.certificado"})
	assert.Equal(t, http.StatusLocked, w.Code)

	w = s.do(t, http.MethodPost, "/api/credits/validate", s.token(t, s.member), map[string]string{"feature": "trilha.certificado"})
	assert.NotEqual(t, http.StatusLocked, w.Code)

	w = s.do(t, http.MethodGet, "/api/igrejas/me", s.token(t, s.member), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPut, "/api/admin/feature-flags/ENABLE_DOMAIN_MUTATIONS", adminToken, map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, path, s.token(t, s.member), map[string]string{"area_id": uuid.NewString()})
	assert.NotEqual(t, http.StatusLocked, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/health", "", nil)

	w := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "celulas_http_requests_total")
	assert.Contains(t, w.Body.String(), `route="health"`)
}
