package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/celulas/celulas-api/internal/domain/user"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, externalID string) (*user.User, error) {
	args := m.Called(ctx, externalID)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestResolveUserStoresDomainUser(t *testing.T) {
	resolver := &mockResolver{}
	leader := &user.User{ExternalID: "user_1", Role: user.RoleLiderCelula}
	resolver.On("Resolve", mock.Anything, "user_1").Return(leader, nil)

	var got *user.User
	h := ResolveUser(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithExternalID(req.Context(), "user_1"))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Same(t, leader, got)
	resolver.AssertExpectations(t)
}

func TestResolveUserFailures(t *testing.T) {
	cases := []struct {
		name       string
		externalID string
		err        error
		want       int
	}{
		{"unauthenticated", "", nil, http.StatusUnauthorized},
		{"no profile", "user_x", user.ErrUserNotFound, http.StatusNotFound},
		{"store error", "user_y", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := &mockResolver{}
			if tc.externalID != "" {
				resolver.On("Resolve", mock.Anything, tc.externalID).Return(nil, tc.err)
			}

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.externalID != "" {
				req = req.WithContext(WithExternalID(req.Context(), tc.externalID))
			}
			w := httptest.NewRecorder()
			ResolveUser(resolver)(http.HandlerFunc(okHandler)).ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gate := RequireRoles(user.RoleSupervisor, user.RolePastor)(http.HandlerFunc(okHandler))

	cases := []struct {
		name string
		user *user.User
		want int
	}{
		{"missing identity", nil, http.StatusUnauthorized},
		{"member", &user.User{Role: user.RoleDiscipulo}, http.StatusForbidden},
		{"leader", &user.User{Role: user.RoleLiderCelula}, http.StatusForbidden},
		{"supervisor", &user.User{Role: user.RoleSupervisor}, http.StatusOK},
		{"pastor", &user.User{Role: user.RolePastor}, http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.user != nil {
				req = req.WithContext(WithUser(req.Context(), tc.user))
			}
			w := httptest.NewRecorder()
			gate.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusForbidden {
				assert.JSONEq(t, `{"success":false,"error":{"code":"FORBIDDEN","message":"Insufficient permissions"}}`, w.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	gate := RequireAdmin()(http.HandlerFunc(okHandler))

	pastor := httptest.NewRequest(http.MethodGet, "/", nil)
	pastor = pastor.WithContext(WithUser(pastor.Context(), &user.User{Role: user.RolePastor}))
	w := httptest.NewRecorder()
	gate.ServeHTTP(w, pastor)
	assert.Equal(t, http.StatusForbidden, w.Code)

	operator := httptest.NewRequest(http.MethodGet, "/", nil)
	operator = operator.WithContext(WithUser(operator.Context(), &user.User{Role: user.RoleDiscipulo, IsAdmin: true}))
	w = httptest.NewRecorder()
	gate.ServeHTTP(w, operator)
	assert.Equal(t, http.StatusOK, w.Code)
}
