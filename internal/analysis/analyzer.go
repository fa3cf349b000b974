// Package analysis merges sentiment scoring and keyword extraction into a
// single AnalysisResult. HTTP, Kafka and the CLI all go through Analyzer.
package analysis

import (
	"strings"
	"time"

	"github.com/spacesedan/fieldpulse/internal/keywords"
	"github.com/spacesedan/fieldpulse/internal/models"
	"github.com/spacesedan/fieldpulse/internal/sentiment"
	"github.com/spacesedan/fieldpulse/internal/textclean"
)

// Scorer is the part of sentiment.Scorer the analyzer depends on.
type Scorer interface {
	Load() error
	Score(text string) (models.Scores, error)
	Phase() sentiment.Phase
}

// Recorder receives one observation per analysis.
type Recorder interface {
	ObserveAnalysis(label models.SentimentLabel, elapsed time.Duration)
	ObserveKeywordPath(path keywords.Path)
	ObserveUnavailable()
}

type nopRecorder struct{}

func (nopRecorder) ObserveAnalysis(models.SentimentLabel, time.Duration) {}
func (nopRecorder) ObserveKeywordPath(keywords.Path)                     {}
func (nopRecorder) ObserveUnavailable()                                  {}

type Analyzer struct {
	scorer        Scorer
	extractor     *keywords.Extractor
	recorder      Recorder
	stripMarkdown bool
	topN          int
}

type Option func(*Analyzer)

func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) {
		if r != nil {
			a.recorder = r
		}
	}
}

// WithMarkdownStripping reduces markdown input to plain text before analysis.
func WithMarkdownStripping(enabled bool) Option {
	return func(a *Analyzer) {
		a.stripMarkdown = enabled
	}
}

func WithTopN(n int) Option {
	return func(a *Analyzer) {
		a.topN = n
	}
}

func NewAnalyzer(scorer Scorer, extractor *keywords.Extractor, opts ...Option) *Analyzer {
	if extractor == nil {
		extractor = keywords.NewExtractor()
	}
	a := &Analyzer{
		scorer:    scorer,
		extractor: extractor,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze scores text and extracts its keywords. Blank text yields a neutral
// result with zero confidence and never reaches the scorer. An error wrapping
// sentiment.ErrAnalyzerUnavailable means the scorer failed to initialize.
func (a *Analyzer) Analyze(text string) (models.AnalysisResult, error) {
	start := time.Now()

	if strings.TrimSpace(text) == "" {
		a.recorder.ObserveAnalysis(models.SentimentNeutral, time.Since(start))
		return EmptyResult(), nil
	}

	// Input that is nothing but markup or links is analyzed as written.
	if a.stripMarkdown {
		if plain := textclean.ToPlainText(text); plain != "" {
			text = plain
		}
	}

	scores, err := a.scorer.Score(text)
	if err != nil {
		a.recorder.ObserveUnavailable()
		return models.AnalysisResult{}, err
	}

	label, confidence := sentiment.Classify(scores)

	kws, path := a.extractor.ExtractWithPath(text, a.topN)
	a.recorder.ObserveKeywordPath(path)

	a.recorder.ObserveAnalysis(label, time.Since(start))

	return models.AnalysisResult{
		Sentiment:  label,
		Confidence: confidence,
		Keywords:   kws,
		Scores:     scores,
	}, nil
}

// Load initializes the scorer eagerly instead of on the first request.
func (a *Analyzer) Load() error {
	return a.scorer.Load()
}

// Phase reports the scorer lifecycle phase.
func (a *Analyzer) Phase() sentiment.Phase {
	return a.scorer.Phase()
}

// KeywordsDegraded reports whether every extraction takes the fallback path.
func (a *Analyzer) KeywordsDegraded() bool {
	return !a.extractor.PrimaryAvailable()
}

func EmptyResult() models.AnalysisResult {
	return models.AnalysisResult{
		Sentiment:  models.SentimentNeutral,
		Confidence: 0,
		Keywords:   []string{},
		Scores:     models.Scores{},
	}
}
