package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookClient_Send(t *testing.T) {
	var got map[string]any
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type: %s", ct)
		}
		auth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewWebhookClient(ts.URL, "tok", 5*time.Second)
	status, err := c.Send(context.Background(), map[string]any{"error_name": "DeadlockError"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "DeadlockError", got["error_name"])
	assert.Equal(t, "Bearer tok", auth)
}

func TestWebhookClient_NoTokenNoHeader(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
	}))
	defer ts.Close()

	_, err := NewWebhookClient(ts.URL, "", time.Second).Send(context.Background(), map[string]any{})

	require.NoError(t, err)
	assert.Empty(t, auth)
}

func TestWebhookClient_Rejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	status, err := NewWebhookClient(ts.URL, "", time.Second).Send(context.Background(), map[string]any{})

	assert.Equal(t, http.StatusBadGateway, status)
	assert.True(t, errors.Is(err, ErrWebhookRejected), "got %v", err)
}

func TestWebhookClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := ts.URL
	ts.Close()

	status, err := NewWebhookClient(url, "", time.Second).Send(context.Background(), map[string]any{})

	assert.Zero(t, status)
	assert.True(t, errors.Is(err, ErrWebhookUnreachable), "got %v", err)
}

func TestWebhookClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	_, err := NewWebhookClient(ts.URL, "", 50*time.Millisecond).Send(context.Background(), map[string]any{})

	assert.True(t, errors.Is(err, ErrWebhookTimeout), "got %v", err)
}
