package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/inboxpilot/internal/llm"
)

func newAPIServer(t *testing.T, handler func(body map[string]any) (int, string)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("x-api-key"))
		assert.NotEmpty(t, r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		status, resp := handler(body)
		w.WriteHeader(status)
		w.Write([]byte(resp))
	}))
}

func textResponse(text string) string {
	resp := map[string]any{
		"content": []map[string]any{{"type": "text", "text": text}},
	}
	b, _ := json.Marshal(resp)
	return string(b)
}

func TestCompleteReturnsText(t *testing.T) {
	srv := newAPIServer(t, func(body map[string]any) (int, string) {
		return http.StatusOK, textResponse("hello back")
	})
	defer srv.Close()

	c := llm.New(llm.Config{APIKey: "test-key", BaseURL: srv.URL})

	text, err := c.Complete(context.Background(), "be brief", "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello back", text)
}

func TestCompleteJSONAppendsInstructionAndDecodes(t *testing.T) {
	var seenPrompt string
	srv := newAPIServer(t, func(body map[string]any) (int, string) {
		msgs := body["messages"].([]any)
		seenPrompt = msgs[0].(map[string]any)["content"].(string)
		return http.StatusOK, textResponse(`{"answer": 42}`)
	})
	defer srv.Close()

	c := llm.New(llm.Config{APIKey: "test-key", BaseURL: srv.URL})

	var out struct {
		Answer int `json:"answer"`
	}
	require.NoError(t, c.CompleteJSON(context.Background(), "sys", "the question", &out))
	assert.Equal(t, 42, out.Answer)
	assert.Contains(t, seenPrompt, "Respond ONLY with valid JSON")
}

func TestCompleteJSONStripsCodeFence(t *testing.T) {
	srv := newAPIServer(t, func(body map[string]any) (int, string) {
		return http.StatusOK, textResponse("```json\n{\"answer\": 7}\n```")
	})
	defer srv.Close()

	c := llm.New(llm.Config{APIKey: "test-key", BaseURL: srv.URL})

	var out struct {
		Answer int `json:"answer"`
	}
	require.NoError(t, c.CompleteJSON(context.Background(), "sys", "q", &out))
	assert.Equal(t, 7, out.Answer)
}

func TestCompleteJSONMalformedOutputIsGenerationError(t *testing.T) {
	srv := newAPIServer(t, func(body map[string]any) (int, string) {
		return http.StatusOK, textResponse("sorry, I cannot do JSON today")
	})
	defer srv.Close()

	c := llm.New(llm.Config{APIKey: "test-key", BaseURL: srv.URL})

	var out map[string]any
	err := c.CompleteJSON(context.Background(), "sys", "q", &out)
	require.Error(t, err)
	assert.True(t, llm.IsGenerationError(err))
}

func TestCompleteAPIErrorSurfacesMessage(t *testing.T) {
	srv := newAPIServer(t, func(body map[string]any) (int, string) {
		return http.StatusTooManyRequests,
			`{"type": "error", "error": {"type": "rate_limit_error", "message": "slow down"}}`
	})
	defer srv.Close()

	c := llm.New(llm.Config{APIKey: "test-key", BaseURL: srv.URL})

	_, err := c.Complete(context.Background(), "sys", "q")
	require.Error(t, err)
	assert.True(t, llm.IsGenerationError(err))
	assert.Contains(t, err.Error(), "slow down")
}
