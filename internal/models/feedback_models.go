package models

import "time"

// FeedbackSubmission is the message consumed from the feedback topic.
type FeedbackSubmission struct {
	FeedbackID  string    `json:"feedback_id"`
	Source      string    `json:"source"`
	Text        string    `json:"text"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AnalyzedFeedback is published to the results topic. The submitted text is not carried over.
type AnalyzedFeedback struct {
	AnalysisID string         `json:"analysis_id"`
	FeedbackID string         `json:"feedback_id"`
	Source     string         `json:"source"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Result     AnalysisResult `json:"result"`
}
