package errorhandler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/celulas/celulas-api/internal/pkg/logger"
	"github.com/celulas/celulas-api/internal/pkg/response"
)

func TestInternalHidesCause(t *testing.T) {
	var logs bytes.Buffer
	l := zerolog.New(&logs)
	ctx := logger.WithRequestID(logger.WithContext(context.Background(), &l), "req-7")

	w := httptest.NewRecorder()
	Internal(ctx, w, "credit.adjust", errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")

	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)

	assert.Contains(t, logs.String(), "connection refused")
	assert.Contains(t, logs.String(), `"request_id":"req-7"`)
	assert.Contains(t, logs.String(), `"operation":"credit.adjust"`)
}

func TestLogExternalServiceError(t *testing.T) {
	var logs bytes.Buffer
	l := zerolog.New(&logs)
	ctx := logger.WithContext(context.Background(), &l)

	LogExternalServiceError(ctx, "clerk", "users.metadata", errors.New("status=502"))

	assert.Contains(t, logs.String(), `"level":"error"`)
	assert.Contains(t, logs.String(), `"external_service":"clerk"`)
	assert.Contains(t, logs.String(), `"endpoint":"users.metadata"`)
	assert.Contains(t, logs.String(), "status=502")
}
