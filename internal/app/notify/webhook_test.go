package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPost(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewWebhookPoster(srv.URL, nil)
	p.Post(context.Background(), "project.created", map[string]any{"project_id": "p1"})

	require.NotNil(t, got)
	assert.Equal(t, "project.created", got["event"])
	payload, ok := got["payload"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "p1", payload["project_id"])
}

func TestWebhookFailureIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewWebhookPoster(srv.URL, nil)
	// Must not panic or propagate anything.
	p.Post(context.Background(), "project.updated", nil)
}

func TestNilPosterIsNoOp(t *testing.T) {
	p := NewWebhookPoster("", nil)
	require.Nil(t, p)
	p.Post(context.Background(), "project.created", nil)
}
