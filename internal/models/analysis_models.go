package models

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "positive"
	SentimentNegative SentimentLabel = "negative"
	SentimentNeutral  SentimentLabel = "neutral"
)

// Scores is the polarity vector produced by the sentiment scorer.
// Positive, Negative and Neutral sum to 1 for non-empty text.
type Scores struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Compound float64 `json:"compound"`
}

type AnalysisResult struct {
	Sentiment  SentimentLabel `json:"sentiment"`
	Confidence float64        `json:"confidence"`
	Keywords   []string       `json:"keywords"`
	Scores     Scores         `json:"scores"`
}
