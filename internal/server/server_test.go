package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ats-analyzer/internal/pipeline"
	"github.com/jonathan/ats-analyzer/internal/rules"
	"github.com/jonathan/ats-analyzer/internal/server/ratelimit"
	"github.com/jonathan/ats-analyzer/internal/types"
)

const sampleResume = `JANE DOE
jane@example.com | (555) 123-4567

EXPERIENCE
- Built Golang services on Kubernetes, reducing latency by 40%
- Led a team of 5 engineers

EDUCATION
B.S. Computer Science, 2018

SKILLS
Go, Python, PostgreSQL, Docker`

func newTestServer(t *testing.T, cfg Config) (*Server, *rules.Cache) {
	t.Helper()
	cache := rules.NewCache(rules.EmbeddedSource{}, nil)
	analyzer := pipeline.New(cache, pipeline.Options{})
	s := New(cfg, analyzer, cache)
	t.Cleanup(s.rateLimiter.Stop)
	return s, cache
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestHandleAnalyze(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/analyze", AnalyzeRequest{
		Text:           sampleResume,
		JobDescription: "Golang and Kubernetes engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.GreaterOrEqual(t, report.Score, 10.0)
	assert.LessOrEqual(t, report.Score, 95.0)
	assert.NotEmpty(t, report.Verdict)
	assert.True(t, report.Breakdown.SkillsRelevance.UsesJobDescription)
	assert.True(t, report.Analysis.Signals.ContactInfo.Email != "")
}

func TestHandleAnalyze_BadRequests(t *testing.T) {
	s, _ := newTestServer(t, Config{MaxBodyBytes: 256})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{name: "malformed json", body: "{not json", status: http.StatusBadRequest},
		{name: "missing text", body: AnalyzeRequest{}, status: http.StatusBadRequest},
		{name: "body too large", body: AnalyzeRequest{Text: strings.Repeat("x", 1024)}, status: http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s.Handler(), http.MethodPost, "/analyze", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, types.CodeInvalidInput, decodeError(t, rec).Code)
		})
	}
}

func TestHandleAnalyze_MethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/analyze", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleAnalyzeBatch(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := doJSON(t, s.Handler(), http.MethodPost, "/analyze/batch", BatchRequest{Items: []AnalyzeRequest{
		{ID: "first", Text: sampleResume},
		{Text: "EXPERIENCE\n- Built things"},
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp BatchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 0, resp.Failed)
	assert.Equal(t, "first", resp.Items[0].ID)
	assert.Equal(t, 1, resp.Items[1].Index)
	assert.True(t, strings.HasSuffix(resp.Items[1].ID, "-1"))
	for _, item := range resp.Items {
		assert.NotNil(t, item.Report)
	}
}

func TestHandleAnalyzeBatch_Limits(t *testing.T) {
	s, _ := newTestServer(t, Config{MaxBatchItems: 2})

	t.Run("empty batch", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/analyze/batch", BatchRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("item without text", func(t *testing.T) {
		rec := doJSON(t, s.Handler(), http.MethodPost, "/analyze/batch", BatchRequest{Items: []AnalyzeRequest{{ID: "x"}}})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Error, "Text")
	})

	t.Run("too many items", func(t *testing.T) {
		items := []AnalyzeRequest{{Text: "a"}, {Text: "b"}, {Text: "c"}}
		rec := doJSON(t, s.Handler(), http.MethodPost, "/analyze/batch", BatchRequest{Items: items})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Error, "limit is 2")
	})
}

func TestHandleRules(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := doJSON(t, s.Handler(), http.MethodGet, "/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RulesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "embedded", resp.Source)
	assert.Len(t, resp.Versions, len(rules.Documents))
	assert.Equal(t, "2.1.0", resp.Versions[rules.DocScoring])
	assert.False(t, resp.LoadedAt.IsZero())
}

func TestHandleReloadRules(t *testing.T) {
	s, cache := newTestServer(t, Config{})

	before, err := cache.Get(context.Background())
	require.NoError(t, err)

	rec := doJSON(t, s.Handler(), http.MethodPost, "/rules/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	after, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}

type brokenRules struct{ err error }

func (b brokenRules) Get(context.Context) (*rules.Set, error)    { return nil, b.err }
func (b brokenRules) Reload(context.Context) (*rules.Set, error) { return nil, b.err }
func (brokenRules) SourceName() string                           { return "broken" }

func TestHandleReloadRules_ConfigError(t *testing.T) {
	cfgErr := &types.ConfigError{Code: types.CodeConfigInvalidJSON, Source: rules.DocKeywords, Message: "bad json"}
	rc := brokenRules{err: cfgErr}
	s := New(Config{}, pipeline.New(rc, pipeline.Options{}), rc)
	defer s.rateLimiter.Stop()

	rec := doJSON(t, s.Handler(), http.MethodPost, "/rules/reload", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, types.CodeConfigInvalidJSON, decodeError(t, rec).Code)

	rec = doJSON(t, s.Handler(), http.MethodPost, "/analyze", AnalyzeRequest{Text: sampleResume})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequestIDPropagation(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "trace-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "trace-123", rec.Header().Get(requestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	rec := doJSON(t, s.Handler(), http.MethodOptions, "/analyze", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiting(t *testing.T) {
	s, _ := newTestServer(t, Config{RateLimit: ratelimit.NewConfig(60, 1, "")})
	h := s.Handler()

	first := doJSON(t, h, http.MethodPost, "/analyze", AnalyzeRequest{Text: sampleResume})
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "60", first.Header().Get("X-RateLimit-Limit"))

	second := doJSON(t, h, http.MethodPost, "/analyze", AnalyzeRequest{Text: sampleResume})
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Equal(t, "RATE_LIMITED", decodeError(t, second).Code)

	// health is never limited
	health := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"input", &types.InputError{Stage: "scoring", Field: "sections", Message: "nil"}, http.StatusBadRequest},
		{"config", &types.ConfigError{Code: types.CodeConfigFileNotFound}, http.StatusInternalServerError},
		{"internal", &types.InternalError{Stage: "scoring", Cause: errors.New("boom")}, http.StatusInternalServerError},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestStart_Shutdown(t *testing.T) {
	s, _ := newTestServer(t, Config{Port: 0})
	s.httpServer.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
