package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spacesedan/fieldpulse/internal/keywords"
	"github.com/spacesedan/fieldpulse/internal/models"
)

// Analysis pipeline metrics
var (
	// AnalysesTotal counts completed analyses by sentiment label
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldpulse_analyses_total",
			Help: "Total completed analyses by sentiment label",
		},
		[]string{"sentiment"},
	)

	// AnalysisDuration tracks end to end pipeline latency in seconds
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldpulse_analysis_duration_seconds",
			Help:    "Analysis pipeline duration in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25},
		},
	)

	// KeywordExtractionsTotal counts keyword extractions by path (primary/fallback)
	KeywordExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldpulse_keyword_extractions_total",
			Help: "Total keyword extractions by path",
		},
		[]string{"path"},
	)

	// AnalyzerUnavailableTotal counts analyses rejected because the lexicon failed to load
	AnalyzerUnavailableTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldpulse_analyzer_unavailable_total",
			Help: "Total analyses rejected because the sentiment analyzer is unavailable",
		},
	)
)

// HTTP metrics
var (
	// RateLimitedTotal counts requests rejected by the rate limiter by backing store
	RateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldpulse_rate_limited_total",
			Help: "Total requests rejected by the rate limiter",
		},
		[]string{"store"},
	)

	// RateLimitStoreErrors counts rate limit store failures that let a request through
	RateLimitStoreErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldpulse_rate_limit_store_errors_total",
			Help: "Total rate limit store errors (request allowed)",
		},
	)
)

// Stream consumer metrics
var (
	// ConsumerMessagesTotal counts consumed feedback messages by outcome (analyzed/skipped/failed)
	ConsumerMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldpulse_consumer_messages_total",
			Help: "Total consumed feedback messages by outcome",
		},
		[]string{"status"},
	)

	// ConsumerBatchSize tracks the number of results published per flush
	ConsumerBatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fieldpulse_consumer_batch_size",
			Help:    "Analyzed feedback results published per flush",
			Buckets: []float64{1, 2, 5, 10, 20, 50},
		},
	)
)

// Recorder reports analysis observations to the package level collectors.
type Recorder struct{}

func (Recorder) ObserveAnalysis(label models.SentimentLabel, elapsed time.Duration) {
	AnalysesTotal.WithLabelValues(string(label)).Inc()
	AnalysisDuration.Observe(elapsed.Seconds())
}

func (Recorder) ObserveKeywordPath(path keywords.Path) {
	KeywordExtractionsTotal.WithLabelValues(string(path)).Inc()
}

func (Recorder) ObserveUnavailable() {
	AnalyzerUnavailableTotal.Inc()
}
