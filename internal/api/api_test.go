package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/postgen/internal/corpus"
	"github.com/abdulachik/postgen/internal/generator"
	"github.com/abdulachik/postgen/internal/post"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.response, f.err
}

func intPtr(n int) *int { return &n }

func newTestServer(t *testing.T, llm *fakeLLM) (http.Handler, *Handler) {
	t.Helper()
	idx := corpus.New([]post.EnrichedPost{
		{Text: "Got the offer!", LineCount: intPtr(2), Language: "English", Tags: []string{"Job Search"}},
		{Text: "Stay calm", LineCount: intPtr(7), Language: "English", Tags: []string{"Mental Health"}},
		{Text: "Fake recruiter alert", LineCount: intPtr(3), Language: "Hinglish", Tags: []string{"Scams", "Job Search"}},
	}, nil)
	live := corpus.NewLive(idx)
	gen := generator.New(generator.Config{LLM: llm, Examples: live})
	h := NewHandler(live, gen, nil)
	return NewServer(h), h
}

func do(t *testing.T, srv http.Handler, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestHealthCheck(t *testing.T) {
	srv, h := newTestServer(t, &fakeLLM{})

	rec, body := do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(3), body["posts"])

	h.Health().Record(ComponentLLM, errors.New("unauthorized"), "")
	rec, body = do(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
	components := body["components"].(map[string]any)
	assert.Equal(t, "unauthorized", components[ComponentLLM].(map[string]any)["message"])
}

func TestListTagsAndCategories(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})

	_, body := do(t, srv, http.MethodGet, "/api/v1/tags", nil)
	assert.Equal(t, []any{"Job Search", "Mental Health", "Scams"}, body["tags"])

	_, body = do(t, srv, http.MethodGet, "/api/v1/categories", nil)
	categories := body["categories"].([]any)
	require.Len(t, categories, 3)
	assert.Equal(t, map[string]any{"name": "Career", "tags": []any{"Job Search"}}, categories[0])
	assert.Equal(t, "Mental Health", categories[1].(map[string]any)["name"])
	assert.Equal(t, "Scams", categories[2].(map[string]any)["name"])
}

func TestListOptions(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})
	_, body := do(t, srv, http.MethodGet, "/api/v1/options", nil)
	assert.Equal(t, []any{"Short", "Medium", "Long"}, body["lengths"])
	assert.Len(t, body["tones"], len(post.Tones))
}

func TestListExamples(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})

	rec, body := do(t, srv, http.MethodGet, "/api/v1/examples?length=Short&language=Hinglish&tag=Job%20Search", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	examples := body["examples"].([]any)
	require.Len(t, examples, 1)
	assert.Equal(t, "Fake recruiter alert", examples[0].(map[string]any)["text"])

	_, body = do(t, srv, http.MethodGet, "/api/v1/examples?length=Long&language=English&tag=Job%20Search", nil)
	assert.Equal(t, []any{}, body["examples"])

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/examples?length=Tiny&language=English", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/examples?length=Short&language=English&limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratePosts(t *testing.T) {
	t.Run("single post", func(t *testing.T) {
		llm := &fakeLLM{response: "<think>draft</think>Keep applying."}
		srv, h := newTestServer(t, llm)

		rec, body := do(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
			"length": "Short", "language": "English", "tag": "Job Search",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{"Keep applying."}, body["posts"])
		assert.Equal(t, float64(0), body["failed"])
		assert.Equal(t, "Professional", body["request"].(map[string]any)["tone"])

		st, ok := h.Health().Status(ComponentLLM)
		require.True(t, ok)
		assert.True(t, st.Healthy)
	})

	t.Run("variants are clamped", func(t *testing.T) {
		llm := &fakeLLM{response: "post"}
		srv, _ := newTestServer(t, llm)

		_, body := do(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
			"length": "Medium", "language": "Hindi", "tag": "Scams", "variants": 9,
		})
		assert.Len(t, body["posts"], generator.MaxVariants)
		assert.Equal(t, generator.MaxVariants, llm.calls)
	})

	t.Run("llm failure returns fallback", func(t *testing.T) {
		srv, h := newTestServer(t, &fakeLLM{err: errors.New("rate limited")})

		rec, body := do(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
			"length": "Long", "language": "Marathi", "tag": "Motivation", "variants": 2,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []any{generator.FallbackMessage, generator.FallbackMessage}, body["posts"])
		assert.Equal(t, float64(2), body["failed"])
		assert.False(t, h.Health().Healthy())
	})

	t.Run("invalid request", func(t *testing.T) {
		llm := &fakeLLM{}
		srv, _ := newTestServer(t, llm)

		rec, body := do(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
			"length": "Short", "language": "French", "tag": "Job Search",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, body["error"], "unknown language")
		assert.Zero(t, llm.calls)
	})

	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newTestServer(t, &fakeLLM{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCorrelationID(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set(CorrelationHeader, "abc-123")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(CorrelationHeader))

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil))
	assert.Len(t, rec.Header().Get(CorrelationHeader), 36)
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, &fakeLLM{})
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/v1/posts", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOnReload(t *testing.T) {
	_, h := newTestServer(t, &fakeLLM{})
	cb := h.OnReload()

	cb(nil, errors.New("bad json"))
	st, ok := h.Health().Status(ComponentCorpus)
	require.True(t, ok)
	assert.False(t, st.Healthy)

	cb(corpus.New(nil, nil), nil)
	st, _ = h.Health().Status(ComponentCorpus)
	assert.True(t, st.Healthy)
	assert.Equal(t, "0 posts loaded", st.Message)
	assert.False(t, st.LastSuccess.IsZero())
}
