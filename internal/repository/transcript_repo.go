package repository

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// TranscriptRepository persists sessions and their append-only transcripts.
// It implements transcript.Log.
type TranscriptRepository struct {
	db *DB
}

// NewTranscriptRepository creates a new transcript repository
func NewTranscriptRepository(db *DB) *TranscriptRepository {
	return &TranscriptRepository{db: db}
}

// CreateSession creates a new session
func (r *TranscriptRepository) CreateSession(session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	session.CreatedAt = now
	session.UpdatedAt = now

	_, err := r.db.Exec(`
		INSERT INTO sessions (id, created_at, updated_at)
		VALUES (?, ?, ?)
	`, session.ID, session.CreatedAt, session.UpdatedAt)

	return err
}

// GetSession retrieves a session by ID
func (r *TranscriptRepository) GetSession(id string) (*domain.Session, error) {
	session := &domain.Session{}

	err := r.db.QueryRow(`
		SELECT id, created_at, updated_at
		FROM sessions WHERE id = ?
	`, id).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Append stores a message at the end of its session's transcript. Ordering
// is kept with an explicit per-session sequence number rather than the
// timestamp, so same-millisecond appends stay in insert order.
func (r *TranscriptRepository) Append(msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO messages (id, session_id, role, body, audio, feedback, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?,
			(SELECT COALESCE(MAX(seq), 0) + 1 FROM messages WHERE session_id = ?),
			?)
	`, msg.ID, msg.SessionID, msg.Role, msg.Body, msg.Audio, msg.Feedback,
		msg.SessionID, msg.CreatedAt)

	if err == nil {
		_, err = r.db.Exec(`UPDATE sessions SET updated_at = ? WHERE id = ?`,
			time.Now(), msg.SessionID)
	}
	return err
}

// Messages returns a session's transcript in append order
func (r *TranscriptRepository) Messages(sessionID string) ([]*domain.Message, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, role, body, audio, feedback, created_at
		FROM messages WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		message := &domain.Message{}
		if err := rows.Scan(&message.ID, &message.SessionID, &message.Role,
			&message.Body, &message.Audio, &message.Feedback, &message.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// Clear removes a session's entire transcript
func (r *TranscriptRepository) Clear(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM messages WHERE session_id = ?`, sessionID)
	return err
}

// CountQueries returns the total number of user messages
func (r *TranscriptRepository) CountQueries() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM messages WHERE role = 'user'`).Scan(&count)
	return count, err
}

// CountSessions returns the total number of sessions
func (r *TranscriptRepository) CountSessions() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}
