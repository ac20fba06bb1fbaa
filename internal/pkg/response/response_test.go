package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestLocked(t *testing.T) {
	w := httptest.NewRecorder()
	Locked(w, "Domain mutations are temporarily locked")

	assert.Equal(t, http.StatusLocked, w.Code)
	body := decode(t, w)
	assert.False(t, body.Success)
	assert.Equal(t, "DOMAIN_MUTATIONS_LOCKED", body.Error.Code)
	assert.Equal(t, "Domain mutations are temporarily locked", body.Error.Message)
}

func TestPaymentRequiredCarriesDetails(t *testing.T) {
	w := httptest.NewRecorder()
	PaymentRequired(w, "Insufficient credits", map[string]string{"credits_remaining": "2", "credits_required": "5"})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	body := decode(t, w)
	assert.Equal(t, "INSUFFICIENT_CREDITS", body.Error.Code)
	assert.Equal(t, "5", body.Error.Details["credits_required"])
}

func TestOKEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	OK(w, map[string]int{"credits": 3})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"credits":3}}`, w.Body.String())
}
