package convite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/database"
)

type allowWrites struct{}

func (allowWrites) IsDomainMutationEnabled(context.Context) bool { return true }

func (f *fixture) router(actor *user.User) http.Handler {
	h := NewHandler(f.svc)
	r := chi.NewRouter()
	h.PublicRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), actor)))
			})
		})
		r.Mount("/convites", h.Routes(middleware.RequireDomainMutations(allowWrites{})))
	})
	return r
}

func TestConviteEndpoints(t *testing.T) {
	f := newFixture(t)
	h := f.router(f.leader)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/convites/", strings.NewReader(`{"email":"visitante@igreja.test","expira_em_horas":2}`)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		Data ConviteResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.Data.Token)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/convites/"+created.Data.Token, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"igreja_nome":"Igreja Vida Nova"`)
	assert.NotContains(t, w.Body.String(), "visitante@igreja.test")

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/convites/unknown-token", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	f.svc.now = func() time.Time { return database.Now().Add(3 * time.Hour) }
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/convites/"+created.Data.Token, nil))
	assert.Equal(t, http.StatusGone, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/convites/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"visualizacoes":1`)
}

func TestConviteCreateRequiresLeader(t *testing.T) {
	f := newFixture(t)
	member := &user.User{ID: f.leader.ID, Role: user.RoleDiscipulo, IgrejaID: f.leader.IgrejaID}

	w := httptest.NewRecorder()
	f.router(member).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/convites/", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	f.router(f.leader).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/convites/", strings.NewReader(`{"email":"nope"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
