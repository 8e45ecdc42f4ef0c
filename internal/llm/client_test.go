package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wferrors "github.com/officina-ai/officina/pkg/workflow/errors"
)

func TestStructured_DecodesJSON(t *testing.T) {
	type location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}

	client := NewScripted(`{"latitude": 45.46, "longitude": 9.19}`)
	loc, err := Structured[location](context.Background(), client, CompletionRequest{})

	require.NoError(t, err)
	assert.InDelta(t, 45.46, loc.Latitude, 1e-9)
	assert.InDelta(t, 9.19, loc.Longitude, 1e-9)
}

func TestStructured_StripsCodeFence(t *testing.T) {
	type out struct {
		Answer string `json:"answer"`
	}

	for _, content := range []string{
		"```json\n{\"answer\": \"yes\"}\n```",
		"```\n{\"answer\": \"yes\"}\n```",
		"  {\"answer\": \"yes\"}  ",
	} {
		client := NewScripted(content)
		v, err := Structured[out](context.Background(), client, CompletionRequest{})
		require.NoError(t, err, "content: %q", content)
		assert.Equal(t, "yes", v.Answer)
	}
}

func TestStructured_InvalidJSON(t *testing.T) {
	client := NewScripted("definitely not json")
	_, err := Structured[map[string]any](context.Background(), client, CompletionRequest{})
	assert.ErrorContains(t, err, "decode structured output")
}

func TestScriptedClient_RepeatsLastResponse(t *testing.T) {
	client := NewScripted("one", "two")

	for _, want := range []string{"one", "two", "two"} {
		resp, err := client.Complete(context.Background(), CompletionRequest{})
		require.NoError(t, err)
		assert.Equal(t, want, resp.Content)
	}
	assert.Equal(t, 3, client.Calls())
}

func TestOpenAIClient_Complete(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o",
			"choices": [{"message": {"content": "hello"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "test-key", WithModel("gpt-4o"))
	resp, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{User("hi")},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, 12, resp.Usage.TotalTokens)
	assert.Equal(t, "gpt-4o", gotBody.Model)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, RoleUser, gotBody.Messages[0].Role)
}

func TestOpenAIClient_SchemaInPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices": [{"message": {"content": "{}"}}]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "k")
	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages:       []Message{User("extract")},
		ResponseSchema: json.RawMessage(`{"type":"object"}`),
		SchemaName:     "coordinates",
	})
	require.NoError(t, err)

	rf, ok := got["response_format"].(map[string]any)
	require.True(t, ok, "response_format missing")
	assert.Equal(t, "json_schema", rf["type"])
	schema := rf["json_schema"].(map[string]any)
	assert.Equal(t, "coordinates", schema["name"])
	assert.Equal(t, true, schema["strict"])
}

func TestOpenAIClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "recovered"}}]}`))
	}))
	defer srv.Close()

	cfg := wferrors.RetryConfig{MaxAttempts: 3, InitialBackoff: 1, MaxBackoff: 1, BackoffFactor: 1}
	client := NewOpenAIClient(srv.URL, "k", WithRetryConfig(cfg))

	resp, err := client.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content)
	assert.Equal(t, int32(3), calls.Load())
}

func TestOpenAIClient_PermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "bad-key")
	_, err := client.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())

	var statusErr *wferrors.HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.Status)
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(srv.URL, "k")
	_, err := client.Complete(context.Background(), CompletionRequest{Messages: []Message{User("hi")}})
	assert.ErrorContains(t, err, "no choices")
}
