package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridClientSend(t *testing.T) {
	var got sendGridRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sg_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	t.Cleanup(server.Close)

	client := NewSendGridClient(SendGridConfig{APIKey: "sg_test", FromEmail: "noreply@celulas.test", FromName: "Células", Endpoint: server.URL})
	err := client.Send(context.Background(), &EmailMessage{To: "ana@igreja.test", Subject: "Oi", HTMLContent: "<p>oi</p>", TextContent: "oi"})
	require.NoError(t, err)

	require.Len(t, got.Personalizations, 1)
	assert.Equal(t, "ana@igreja.test", got.Personalizations[0].To[0].Email)
	assert.Equal(t, "noreply@celulas.test", got.From.Email)
	require.Len(t, got.Content, 2)
	assert.Equal(t, "text/plain", got.Content[0].Type)
	assert.Equal(t, "text/html", got.Content[1].Type)
}

func TestSendGridClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	t.Cleanup(server.Close)

	client := NewSendGridClient(SendGridConfig{Endpoint: server.URL})
	err := client.Send(context.Background(), &EmailMessage{To: "ana@igreja.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Contains(t, err.Error(), "bad key")
}

type captureSender struct {
	mu   sync.Mutex
	msgs []*EmailMessage
}

func (c *captureSender) Send(_ context.Context, msg *EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestServiceRendersInvitation(t *testing.T) {
	sender := &captureSender{}
	svc := NewService(sender)

	expires := time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC)
	svc.SendConviteInvitation("joao@igreja.test", "Igreja Vida Nova", "Célula Betel", "https://app.test/convite/abc", expires)
	svc.Queue("x@igreja.test", "", "missing", "ignored", nil)
	svc.Close()
	svc.Close()

	require.Len(t, sender.msgs, 1)
	msg := sender.msgs[0]
	assert.Equal(t, "joao@igreja.test", msg.To)
	assert.Equal(t, "Você foi convidado para Igreja Vida Nova", msg.Subject)
	assert.Contains(t, msg.HTMLContent, "Célula Betel")
	assert.Contains(t, msg.HTMLContent, "https://app.test/convite/abc")
	assert.Contains(t, msg.HTMLContent, "09/03/2026")
}
