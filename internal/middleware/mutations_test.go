package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type staticChecker struct {
	enabled bool
	calls   int
}

func (c *staticChecker) IsDomainMutationEnabled(ctx context.Context) bool {
	c.calls++
	return c.enabled
}

func TestRequireDomainMutations(t *testing.T) {
	cases := []struct {
		method  string
		enabled bool
		want    int
	}{
		{http.MethodGet, false, http.StatusOK},
		{http.MethodHead, false, http.StatusOK},
		{http.MethodOptions, false, http.StatusOK},
		{http.MethodPost, false, http.StatusLocked},
		{http.MethodPatch, false, http.StatusLocked},
		{http.MethodDelete, false, http.StatusLocked},
		{http.MethodPost, true, http.StatusOK},
		{http.MethodPut, true, http.StatusOK},
	}

	for _, tc := range cases {
		checker := &staticChecker{enabled: tc.enabled}
		h := RequireDomainMutations(checker)(http.HandlerFunc(okHandler))

		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(tc.method, "/api/trilhas/x/solicitacoes", nil))

		assert.Equal(t, tc.want, w.Code, "%s enabled=%v", tc.method, tc.enabled)
		if tc.want == http.StatusLocked {
			assert.Contains(t, w.Body.String(), "DOMAIN_MUTATIONS_LOCKED")
			assert.Contains(t, w.Body.String(), "Domain mutations are temporarily locked")
		}
	}
}

func TestRequireDomainMutationsSkipsStoreForReads(t *testing.T) {
	checker := &staticChecker{enabled: false}
	h := RequireDomainMutations(checker)(http.HandlerFunc(okHandler))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Zero(t, checker.calls)
}
