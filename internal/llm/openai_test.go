package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, chunks []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		require.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, chunk := range chunks {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", chunk)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func TestOpenAICompatible_StreamsCompletion(t *testing.T) {
	srv := sseServer(t, []string{"The answer ", "is ", "42."})
	defer srv.Close()

	client, err := NewOpenAICompatible(Config{BaseURL: srv.URL + "/v1", Model: "test-model"})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), TaskSynthesize, "what is the answer?")
	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", out)
}

func TestOpenAICompatible_CompleteJSONStripsFences(t *testing.T) {
	srv := sseServer(t, []string{"```json\n", `{"status": "pass"}`, "\n```"})
	defer srv.Close()

	client, err := NewOpenAICompatible(Config{BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)

	out, err := client.CompleteJSON(context.Background(), TaskFactcheck, "check this")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "pass"}`, out)
}

func TestOpenAICompatible_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "bad key")
	}))
	defer srv.Close()

	client, err := NewOpenAICompatible(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), TaskRerank, "prompt")
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.StatusCode)
}

func TestOpenAICompatible_SendsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\ndata: [DONE]\n\n")
	}))
	defer srv.Close()

	client, err := NewOpenAICompatible(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), TaskRerank, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestOpenAICompatible_NonStreamingFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"plain response"}}]}`)
	}))
	defer srv.Close()

	client, err := NewOpenAICompatible(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), TaskRerank, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "plain response", out)
}

func TestOpenAICompatible_RequiresBaseURL(t *testing.T) {
	_, err := NewOpenAICompatible(Config{})
	assert.Error(t, err)
}
