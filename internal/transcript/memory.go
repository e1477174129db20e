package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// MemoryLog is an in-process transcript and session store, used in tests and
// when the gateway runs without a database path configured.
type MemoryLog struct {
	mu       sync.Mutex
	messages map[string][]*domain.Message
	sessions map[string]*domain.Session
}

// NewMemoryLog creates an empty in-memory log
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{
		messages: make(map[string][]*domain.Message),
		sessions: make(map[string]*domain.Session),
	}
}

// CreateSession registers a session, assigning an ID when absent
func (l *MemoryLog) CreateSession(session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions[session.ID] = session
	return nil
}

// GetSession returns a session by ID, or nil when unknown
func (l *MemoryLog) GetSession(id string) (*domain.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions[id], nil
}

// Append stores a message at the end of its session's transcript
func (l *MemoryLog) Append(msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages[msg.SessionID] = append(l.messages[msg.SessionID], msg)
	return nil
}

// Messages returns a session's transcript in append order
func (l *MemoryLog) Messages(sessionID string) ([]*domain.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stored := l.messages[sessionID]
	out := make([]*domain.Message, len(stored))
	copy(out, stored)
	return out, nil
}

// Clear removes a session's entire transcript
func (l *MemoryLog) Clear(sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.messages, sessionID)
	return nil
}
