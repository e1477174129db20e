// Package transcript defines the append-only message log behind the chat
// surface. The renderer and services depend on the Log interface so they can
// run against the in-memory implementation in tests and the SQLite-backed
// repository in the server.
package transcript

import "github.com/chatdeck/chatdeck/internal/domain"

// Log is an ordered, append-only message store. Messages are immutable once
// appended; the only bulk operation is a full per-session clear.
type Log interface {
	// Append stores a message at the end of its session's transcript
	Append(msg *domain.Message) error
	// Messages returns a session's transcript in append order
	Messages(sessionID string) ([]*domain.Message, error)
	// Clear removes a session's entire transcript
	Clear(sessionID string) error
}
