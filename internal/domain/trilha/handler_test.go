package trilha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/database/dbtest"
	"github.com/celulas/celulas-api/internal/pkg/response"
)

type staticGate bool

func (g staticGate) IsDomainMutationEnabled(context.Context) bool { return bool(g) }

func (w *world) router(actor *user.User, writes bool) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(rw, req.WithContext(middleware.WithUser(req.Context(), actor)))
		})
	})
	r.Mount("/trilhas", NewHandler(w.svc).Routes(middleware.RequireDomainMutations(staticGate(writes))))
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, strings.NewReader(body)))
	return w
}

func TestCreateSolicitacaoEndpoint(t *testing.T) {
	w := newWorld(t)
	area := dbtest.SeedArea(t, w.db, w.igrejaID, w.supervisor.ID)
	path := fmt.Sprintf("/trilhas/%s/solicitacoes", w.trilhaID)

	rec := serve(w.router(w.leader, true), http.MethodPost, path,
		fmt.Sprintf(`{"usuario_id":%q,"area_id":%q,"observacao":"pronto"}`, w.member.ID, area))
	w.svc.Wait()

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		Data SolicitacaoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "PENDENTE", body.Data.Status)
	assert.Equal(t, w.member.ID.String(), body.Data.UsuarioID)

	rec = serve(w.router(w.leader, true), http.MethodPost, path, `{"area_id":"not-a-uuid"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolicitacaoWritesLocked(t *testing.T) {
	w := newWorld(t)
	area := dbtest.SeedArea(t, w.db, w.igrejaID, w.supervisor.ID)
	h := w.router(w.leader, false)

	rec := serve(h, http.MethodPost, fmt.Sprintf("/trilhas/%s/solicitacoes", w.trilhaID),
		fmt.Sprintf(`{"area_id":%q}`, area))
	require.Equal(t, http.StatusLocked, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "DOMAIN_MUTATIONS_LOCKED", body.Error.Code)

	rec = serve(h, http.MethodGet, "/trilhas/", "")
	assert.Equal(t, http.StatusOK, rec.Code, "reads stay open")
}

func TestUpdateStatusEndpoint(t *testing.T) {
	w := newWorld(t)
	area := dbtest.SeedArea(t, w.db, w.igrejaID, w.supervisor.ID)
	sol := w.create(t, w.leader, w.member.ID, area)
	path := fmt.Sprintf("/trilhas/%s/solicitacoes/%s", w.trilhaID, sol.ID)

	rec := serve(w.router(w.leader, true), http.MethodPatch, path, `{"status":"APROVADA"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(w.router(w.supervisor, true), http.MethodPatch, path, `{"status":"CANCELADA"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(w.router(w.supervisor, true), http.MethodPatch, path, `{"status":"REJEITADA","observacao":"aguardar"}`)
	w.svc.Wait()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"REJEITADA"`)

	rec = serve(w.router(w.member, true), http.MethodGet, fmt.Sprintf("/trilhas/%s/solicitacoes", w.trilhaID), "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(w.router(w.leader, true), http.MethodGet, fmt.Sprintf("/trilhas/%s/solicitacoes?status=REJEITADA", w.trilhaID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []SolicitacaoResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "aguardar", list.Data[0].Observacao)
}
