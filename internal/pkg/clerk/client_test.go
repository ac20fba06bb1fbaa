package clerk

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUpdatePublicMetadataSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid method"))
			return
		}
		if r.URL.Path != "/v1/users/user_2abc/metadata" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("invalid path"))
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk_test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var body map[string]map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if body["public_metadata"]["creditsRemaining"] != float64(7) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("missing credits"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id": "user_2abc",
			"public_metadata": map[string]interface{}{
				"creditsRemaining": 7,
				"theme":            "dark",
			},
		})
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "sk_test", time.Second)
	user, err := client.UpdatePublicMetadata(context.Background(), "user_2abc", map[string]interface{}{"creditsRemaining": 7})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user.ID != "user_2abc" || user.PublicMetadata["theme"] != "dark" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestUpdatePublicMetadataHTTPErrorIncludesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("user not found"))
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "sk_test", time.Second)
	_, err := client.UpdatePublicMetadata(context.Background(), "user_missing", map[string]interface{}{"creditsRemaining": 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status=404") || !strings.Contains(err.Error(), "body=user not found") {
		t.Fatalf("expected status and body in error, got %v", err)
	}
}

func TestUpdatePublicMetadataTimeoutClassified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL, "sk_test", 20*time.Millisecond)
	_, err := client.UpdatePublicMetadata(context.Background(), "user_1", map[string]interface{}{})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !strings.Contains(err.Error(), "clerk timeout") {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestUpdatePublicMetadataWithoutSecret(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "", time.Second)
	_, err := client.UpdatePublicMetadata(context.Background(), "user_1", map[string]interface{}{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
