package repository

import (
	"time"

	"github.com/google/uuid"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// FeedbackRepository persists feedback events for later review
type FeedbackRepository struct {
	db *DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Record stores one feedback event
func (r *FeedbackRepository) Record(event *domain.FeedbackEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO feedback_events (id, message_id, query, verdict, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.New().String(), event.MessageID, event.Query, event.Verdict, event.CreatedAt)

	return err
}

// HasVerdict reports whether a verdict was already recorded for a message
func (r *FeedbackRepository) HasVerdict(messageID string) (bool, error) {
	var count int
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM feedback_events WHERE message_id = ?
	`, messageID).Scan(&count)
	return count > 0, err
}

// List returns the most recent feedback events
func (r *FeedbackRepository) List(limit int) ([]*domain.FeedbackEvent, error) {
	rows, err := r.db.Query(`
		SELECT message_id, query, verdict, created_at
		FROM feedback_events
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.FeedbackEvent
	for rows.Next() {
		event := &domain.FeedbackEvent{}
		if err := rows.Scan(&event.MessageID, &event.Query, &event.Verdict, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// Count returns the total number of feedback events
func (r *FeedbackRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM feedback_events`).Scan(&count)
	return count, err
}
