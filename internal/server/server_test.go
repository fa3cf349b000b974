package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/spacesedan/fieldpulse/config"
	"github.com/spacesedan/fieldpulse/internal/analysis"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	result   models.AnalysisResult
	err      error
	phase    sentiment.Phase
	degraded bool

	mu    sync.Mutex
	texts []string
}

func (f *fakeAnalyzer) Analyze(text string) (models.AnalysisResult, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()
	return f.result, f.err
}

func (f *fakeAnalyzer) Phase() sentiment.Phase { return f.phase }
func (f *fakeAnalyzer) KeywordsDegraded() bool { return f.degraded }

func testConfig() *config.Config {
	return &config.Config{
		Env:             "test",
		ServerAddr:      ":0",
		CORSOrigins:     []string{"*"},
		MaxTextLength:   50,
		RateLimitMax:    100,
		RateLimitWindow: time.Minute,
	}
}

func newTestServer(t *testing.T, cfg *config.Config, a Analyzer, opts ...Option) *Server {
	t.Helper()
	s := New(cfg, a, opts...)
	s.RegisterRoutes()
	return s
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

var positiveResult = models.AnalysisResult{
	Sentiment:  models.SentimentPositive,
	Confidence: 0.42,
	Keywords:   []string{"crop", "yield", "excellent", "year"},
	Scores:     models.Scores{Positive: 0.42, Negative: 0, Neutral: 0.58, Compound: 0.61},
}

func TestAnalyze_Success(t *testing.T) {
	for _, path := range []string{"/analyze-sentiment", "/api/analyze"} {
		t.Run(path, func(t *testing.T) {
			fa := &fakeAnalyzer{result: positiveResult, phase: sentiment.PhaseReady}
			s := newTestServer(t, testConfig(), fa)

			resp, body := doRequest(t, s.App, http.MethodPost, path, `{"text":"The crop yield was excellent this year!"}`)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
			assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

			var got models.AnalysisResult
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, positiveResult, got)
			assert.Equal(t, []string{"The crop yield was excellent this year!"}, fa.texts)
		})
	}
}

func TestAnalyze_NoText(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"invalid json", `{"text":`},
		{"missing field", `{"message":"hello"}`},
		{"blank text", `{"text":"   "}`},
		{"wrong type", `{"text":42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fa := &fakeAnalyzer{phase: sentiment.PhaseReady}
			s := newTestServer(t, testConfig(), fa)

			resp, body := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"error":"No text provided"}`, string(body))
			assert.Empty(t, fa.texts)
		})
	}
}

func TestAnalyze_TextTooLong(t *testing.T) {
	fa := &fakeAnalyzer{phase: sentiment.PhaseReady}
	s := newTestServer(t, testConfig(), fa)

	text := strings.Repeat("é", 51)
	resp, body := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", fmt.Sprintf(`{"text":%q}`, text))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, http.StatusRequestEntityTooLarge, errResp.Status)
	assert.Empty(t, fa.texts)

	resp, _ = doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", fmt.Sprintf(`{"text":%q}`, text[:len(text)-2]))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAnalyze_AnalyzerUnavailable(t *testing.T) {
	fa := &fakeAnalyzer{
		err:   fmt.Errorf("%w: %w", sentiment.ErrAnalyzerUnavailable, errors.New("lexicon missing")),
		phase: sentiment.PhaseFailed,
	}
	s := newTestServer(t, testConfig(), fa)

	resp, body := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"Rain came late"}`)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.Equal(t, "Service Unavailable", errResp.Error)
	assert.Equal(t, http.StatusServiceUnavailable, errResp.Status)
	assert.NotContains(t, string(body), "lexicon missing")
}

func TestAnalyze_UnexpectedError(t *testing.T) {
	fa := &fakeAnalyzer{err: errors.New("boom"), phase: sentiment.PhaseReady}
	s := newTestServer(t, testConfig(), fa)

	resp, body := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"Rain came late"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Internal Server Error","message":"An unexpected error occurred","status":500}`, string(body))
}

func TestAnalyze_RealPipeline(t *testing.T) {
	scorer := sentiment.NewScorer()
	require.NoError(t, scorer.Load())
	s := newTestServer(t, testConfig(), analysis.NewAnalyzer(scorer, nil))

	resp, body := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"The crop yield was excellent this year!"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var got models.AnalysisResult
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, models.SentimentPositive, got.Sentiment)
	assert.Equal(t, got.Scores.Positive, got.Confidence)
	assert.Subset(t, []string{"crop", "yield", "excellent", "year"}, got.Keywords)
	assert.InDelta(t, 1.0, got.Scores.Positive+got.Scores.Negative+got.Scores.Neutral, 1e-6)
}

func TestNotFound(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeAnalyzer{phase: sentiment.PhaseReady})

	resp, body := doRequest(t, s.App, http.MethodGet, "/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not Found","message":"The requested resource was not found","status":404}`, string(body))
}

func TestAPIInfo(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeAnalyzer{phase: sentiment.PhaseReady})

	resp, body := doRequest(t, s.App, http.MethodGet, "/api-info", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info models.ServiceInfo
	require.NoError(t, json.Unmarshal(body, &info))
	assert.Equal(t, ServiceName, info.Name)
	assert.Equal(t, "2.0.0", info.Version)
	assert.Equal(t, "Team AgriConnect AI", info.DevelopedBy)
	require.Contains(t, info.Endpoints, "/analyze-sentiment")
	assert.Equal(t, "POST", info.Endpoints["/analyze-sentiment"].Method)
	assert.Equal(t, "The crop yield was excellent this year!", info.Endpoints["/analyze-sentiment"].Example.Text)
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		analyzer   *fakeAnalyzer
		wantCode   int
		wantStatus string
		wantKw     string
	}{
		{"ready", &fakeAnalyzer{phase: sentiment.PhaseReady}, http.StatusOK, "healthy", "primary"},
		{"not loaded yet", &fakeAnalyzer{phase: sentiment.PhaseUninitialized}, http.StatusOK, "healthy", "primary"},
		{"keyword fallback", &fakeAnalyzer{phase: sentiment.PhaseReady, degraded: true}, http.StatusOK, "healthy", "fallback"},
		{"failed", &fakeAnalyzer{phase: sentiment.PhaseFailed}, http.StatusServiceUnavailable, "unhealthy", "primary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, testConfig(), tt.analyzer)

			resp, body := doRequest(t, s.App, http.MethodGet, "/api/health", "")
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var health models.HealthStatus
			require.NoError(t, json.Unmarshal(body, &health))
			assert.Equal(t, tt.wantStatus, health.Status)
			assert.Equal(t, ServiceName, health.Service)
			assert.Equal(t, ServiceVersion, health.Version)
			assert.Equal(t, tt.analyzer.phase.String(), health.Analyzer)
			assert.Equal(t, tt.wantKw, health.Keywords)
			assert.Equal(t, "memory", health.RateLimiter)
		})
	}
}

func TestProbes(t *testing.T) {
	tests := []struct {
		phase     sentiment.Phase
		wantReady int
	}{
		{sentiment.PhaseUninitialized, http.StatusServiceUnavailable},
		{sentiment.PhaseLoading, http.StatusServiceUnavailable},
		{sentiment.PhaseReady, http.StatusOK},
		{sentiment.PhaseFailed, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.phase.String(), func(t *testing.T) {
			s := newTestServer(t, testConfig(), &fakeAnalyzer{phase: tt.phase})

			resp, _ := doRequest(t, s.App, http.MethodGet, "/healthz", "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = doRequest(t, s.App, http.MethodGet, "/readyz", "")
			assert.Equal(t, tt.wantReady, resp.StatusCode)
		})
	}
}

func TestHome(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeAnalyzer{phase: sentiment.PhaseReady})

	resp, body := doRequest(t, s.App, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/html")
	assert.Contains(t, string(body), "AgriConnect AI - Farmer Sentiment Analysis")
	assert.Contains(t, string(body), `maxlength="50"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeAnalyzer{phase: sentiment.PhaseReady})

	resp, body := doRequest(t, s.App, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "fieldpulse_analyzer_unavailable_total")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, testConfig(), &fakeAnalyzer{phase: sentiment.PhaseReady})

	req := httptest.NewRequest(http.MethodGet, "/api-info", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://farm.example")
	resp, err := s.App.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
}

type fakeCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
	calls  atomic.Int32
}

func (f *fakeCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimit_InMemory(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	s := newTestServer(t, cfg, &fakeAnalyzer{result: positiveResult, phase: sentiment.PhaseReady})

	for i := 0; i < 2; i++ {
		resp, _ := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"good harvest"}`)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, body := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"good harvest"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Contains(t, string(body), "Rate limit exceeded")

	resp, _ = doRequest(t, s.App, http.MethodGet, "/api-info", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "only analyze routes are limited")
}

func TestRateLimit_SharedCounter(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 2
	counter := &fakeCounter{}
	var healthy atomic.Bool
	healthy.Store(true)
	s := newTestServer(t, cfg, &fakeAnalyzer{result: positiveResult, phase: sentiment.PhaseReady}, WithRateCounter(counter, &healthy))

	resp, _ := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"good harvest"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "2", resp.Header.Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Remaining"))

	resp, _ = doRequest(t, s.App, http.MethodPost, "/api/analyze", `{"text":"good harvest"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"good harvest"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))

	_, body := doRequest(t, s.App, http.MethodGet, "/api/health", "")
	assert.Contains(t, string(body), `"rate_limiter":"valkey"`)
}

func TestRateLimit_FailsOpen(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitMax = 1

	t.Run("store error", func(t *testing.T) {
		counter := &fakeCounter{err: errors.New("connection refused")}
		s := newTestServer(t, cfg, &fakeAnalyzer{result: positiveResult, phase: sentiment.PhaseReady}, WithRateCounter(counter, nil))

		for i := 0; i < 3; i++ {
			resp, _ := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"good harvest"}`)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
		assert.Equal(t, int32(3), counter.calls.Load())
	})

	t.Run("store unhealthy", func(t *testing.T) {
		counter := &fakeCounter{}
		var healthy atomic.Bool
		s := newTestServer(t, cfg, &fakeAnalyzer{result: positiveResult, phase: sentiment.PhaseReady}, WithRateCounter(counter, &healthy))

		for i := 0; i < 3; i++ {
			resp, _ := doRequest(t, s.App, http.MethodPost, "/analyze-sentiment", `{"text":"good harvest"}`)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
		assert.Zero(t, counter.calls.Load())

		_, body := doRequest(t, s.App, http.MethodGet, "/api/health", "")
		assert.Contains(t, string(body), `"rate_limiter":"valkey-unhealthy"`)
	})
}
