package sentiment

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonreiter/govader"
	"github.com/spacesedan/fieldpulse/internal/lexicon"
	"github.com/spacesedan/fieldpulse/internal/models"
)

// LoaderFunc builds the VADER analyzer. It runs at most once per Scorer.
type LoaderFunc func() (*govader.SentimentIntensityAnalyzer, error)

// VaderLoader builds the stock VADER lexicon and, when overlayPath is set,
// merges the domain overlay on top of it.
func VaderLoader(overlayPath string) LoaderFunc {
	return func() (sia *govader.SentimentIntensityAnalyzer, err error) {
		defer func() {
			if r := recover(); r != nil {
				sia, err = nil, fmt.Errorf("build vader lexicon: %v", r)
			}
		}()

		sia = govader.NewSentimentIntensityAnalyzer()
		if len(sia.Lexicon) == 0 {
			return nil, errors.New("vader lexicon is empty")
		}

		if overlayPath == "" {
			return sia, nil
		}

		overlay, err := lexicon.LoadOverlay(overlayPath)
		if err != nil {
			return nil, err
		}
		for word, valence := range overlay.Valences {
			sia.Lexicon[word] = valence
		}

		slog.Info("[Sentiment] Merged lexicon overlay",
			slog.String("path", overlayPath),
			slog.String("domain", overlay.Domain),
			slog.Int("entries", overlay.Len()))

		return sia, nil
	}
}

// toScores clamps compound into [-1, 1] and rescales the proportional
// masses so they sum to exactly 1. Text with no scorable tokens is neutral.
func toScores(raw govader.Sentiment) models.Scores {
	compound := min(max(raw.Compound, -1), 1)
	pos := max(raw.Positive, 0)
	neg := max(raw.Negative, 0)
	neu := max(raw.Neutral, 0)

	sum := pos + neg + neu
	if sum <= 0 {
		return models.Scores{Neutral: 1, Compound: compound}
	}

	return models.Scores{
		Positive: pos / sum,
		Negative: neg / sum,
		Neutral:  neu / sum,
		Compound: compound,
	}
}
