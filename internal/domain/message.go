package domain

import "time"

// Message roles
const (
	RoleUser  = "user"
	RoleBot   = "bot"
	RoleError = "error"
)

// Message represents one entry in a chat transcript. Messages are immutable
// once appended; only the full transcript may be cleared.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`     // user, bot, error
	Body      string    `json:"body"`     // HTML for bot messages, plain text otherwise
	Audio     bool      `json:"audio"`    // audio playback affordance
	Feedback  bool      `json:"feedback"` // feedback controls eligible
	CreatedAt time.Time `json:"created_at"`
}

// Session represents a chat session owning an ordered transcript
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// QueryRequest is the request to submit a chat query
type QueryRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Query     string `json:"query" binding:"required"`
}

// QueryResponse is the response to a submitted query: the messages appended
// by this round, in append order (user message first).
type QueryResponse struct {
	SessionID string     `json:"session_id"`
	Messages  []*Message `json:"messages"`
}
