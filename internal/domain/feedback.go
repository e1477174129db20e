package domain

import "time"

// Feedback verdicts
const (
	FeedbackPositive = "positive"
	FeedbackNegative = "negative"
)

// FeedbackEvent is a user verdict on a rendered bot message
type FeedbackEvent struct {
	MessageID string    `json:"message_id"`
	Query     string    `json:"query"` // the message text the verdict is tied to
	Verdict   string    `json:"verdict"`
	CreatedAt time.Time `json:"created_at"`
}

// ValidVerdict reports whether v is a recognized feedback verdict
func ValidVerdict(v string) bool {
	return v == FeedbackPositive || v == FeedbackNegative
}

// FeedbackRequest is the request to record feedback for a message
type FeedbackRequest struct {
	MessageID string `json:"message_id" binding:"required"`
	Query     string `json:"query" binding:"required"`
	Feedback  string `json:"feedback" binding:"required"`
}
