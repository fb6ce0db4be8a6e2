package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ollama "chatrelay/internal/api/ollama/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat", r.URL.Path)

		var req ollama.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "User: hi\n", req.Messages[0].Content)

		json.NewEncoder(w).Encode(ollama.Response{
			Model:   req.Model,
			Message: ollama.Message{Role: "assistant", Content: "hello"},
			Done:    true,
		})
	}))
	defer upstream.Close()

	be := New(Options{
		Name:     "model_b",
		Endpoint: upstream.URL,
		Model:    "llama3",
		Timeout:  5 * time.Second,
	})

	text, err := be.Complete(context.Background(), "User: hi\n")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "model_b", be.Name())
}

func TestCompleteUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ollama.Response{Error: "model 'llama3' not found"})
	}))
	defer upstream.Close()

	be := New(Options{Name: "model_b", Endpoint: upstream.URL, Model: "llama3"})

	_, err := be.Complete(context.Background(), "User: hi\n")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model 'llama3' not found")
}

func TestCompleteUnreachable(t *testing.T) {
	be := New(Options{
		Name:     "model_b",
		Endpoint: "http://127.0.0.1:1",
		Model:    "llama3",
		Timeout:  time.Second,
	})

	_, err := be.Complete(context.Background(), "User: hi\n")
	assert.Error(t, err)
}
