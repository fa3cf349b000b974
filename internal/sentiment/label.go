package sentiment

import "github.com/spacesedan/fieldpulse/internal/models"

const (
	PositiveThreshold = 0.05
	NegativeThreshold = -0.05
)

// Classify derives the label from the compound score and returns the
// polarity component matching that label as its confidence.
func Classify(scores models.Scores) (models.SentimentLabel, float64) {
	switch {
	case scores.Compound >= PositiveThreshold:
		return models.SentimentPositive, scores.Positive
	case scores.Compound <= NegativeThreshold:
		return models.SentimentNegative, scores.Negative
	default:
		return models.SentimentNeutral, scores.Neutral
	}
}
