// Package sentiment scores text polarity with the VADER lexicon model.
package sentiment

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/fieldpulse/internal/models"
)

// Scorer is an explicitly constructed handle on the VADER lexicon.
// After Load completes it is read-only and safe for concurrent use.
type Scorer struct {
	loader LoaderFunc

	once    sync.Once
	phase   atomic.Int32
	sia     *govader.SentimentIntensityAnalyzer
	loadErr error
}

type Option func(*Scorer)

// WithLoader replaces the default VADER loader.
func WithLoader(fn LoaderFunc) Option {
	return func(s *Scorer) {
		s.loader = fn
	}
}

// WithOverlay merges the YAML overlay at path into the lexicon during Load.
func WithOverlay(path string) Option {
	return func(s *Scorer) {
		s.loader = VaderLoader(path)
	}
}

func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{loader: VaderLoader("")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load initializes the lexicon exactly once. Concurrent callers block until
// the first load finishes. A failed load is permanent.
func (s *Scorer) Load() error {
	s.once.Do(func() {
		s.phase.Store(int32(PhaseLoading))
		start := time.Now()

		sia, err := s.loader()
		if err == nil && sia == nil {
			err = errors.New("loader returned no analyzer")
		}
		if err != nil {
			s.loadErr = fmt.Errorf("%w: %w", ErrAnalyzerUnavailable, err)
			s.phase.Store(int32(PhaseFailed))
			slog.Error("[Sentiment] Failed to load lexicon, scorer disabled until restart",
				slog.String("error", err.Error()))
			return
		}

		s.sia = sia
		s.phase.Store(int32(PhaseReady))
		slog.Info("[Sentiment] Lexicon loaded",
			slog.Int("entries", len(sia.Lexicon)),
			slog.Duration("elapsed", time.Since(start)))
	})

	return s.loadErr
}

func (s *Scorer) Phase() Phase {
	return Phase(s.phase.Load())
}

// Score returns the polarity vector for text. Blank text yields the zero
// vector. Once loading failed every call returns ErrAnalyzerUnavailable.
func (s *Scorer) Score(text string) (models.Scores, error) {
	if err := s.Load(); err != nil {
		return models.Scores{}, err
	}

	if strings.TrimSpace(text) == "" {
		return models.Scores{}, nil
	}

	return toScores(s.sia.PolarityScores(text)), nil
}
