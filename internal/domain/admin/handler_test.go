package admin

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
)

func adminRouter(h *Handler, actor *user.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), actor)))
		})
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdmin())
		h.RegisterAdminRoutes(r)
	})
	return r
}

func TestAdminConsoleEndpoints(t *testing.T) {
	s := seed(t)
	h := NewHandler(s.svc)
	operator := &user.User{ID: uuid.New(), Role: user.RolePastor, IsAdmin: true}

	w := httptest.NewRecorder()
	adminRouter(h, &user.User{ID: uuid.New(), Role: user.RolePastor}).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	adminRouter(h, operator).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pendentes":2`)
	assert.Contains(t, w.Body.String(), `"in_circulation":40`)

	w = httptest.NewRecorder()
	adminRouter(h, operator).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/?role=bispo", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	adminRouter(h, operator).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/users/?role=discipulo&limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":2`)

	w = httptest.NewRecorder()
	adminRouter(h, operator).ServeHTTP(w, httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/users/%s", s.leader),
		strings.NewReader(`{"role":"pastor","is_admin":true}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"role":"pastor"`)
	assert.Contains(t, w.Body.String(), `"is_admin":true`)

	w = httptest.NewRecorder()
	adminRouter(h, operator).ServeHTTP(w, httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/users/%s", s.leader),
		strings.NewReader(`{"role":"bispo"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	adminRouter(h, operator).ServeHTTP(w, httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/admin/users/%s", uuid.New()),
		strings.NewReader(`{"role":"pastor"}`)))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
