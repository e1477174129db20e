package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// FeedbackSender reports a verdict to the analysis backend
type FeedbackSender interface {
	SendFeedback(ctx context.Context, query, verdict string) error
}

// FeedbackStore persists feedback events
type FeedbackStore interface {
	Record(event *domain.FeedbackEvent) error
	HasVerdict(messageID string) (bool, error)
}

// FeedbackService records verdicts with optimistic once-per-message
// semantics: the recorded flag is taken before the backend call and rolled
// back on failure so the caller may retry.
type FeedbackService struct {
	sender FeedbackSender
	store  FeedbackStore
	logger *zap.Logger

	mu       sync.Mutex
	recorded map[string]bool
}

// NewFeedbackService creates a new feedback service. store may be nil when
// events are not persisted locally.
func NewFeedbackService(sender FeedbackSender, store FeedbackStore, logger *zap.Logger) *FeedbackService {
	return &FeedbackService{
		sender:   sender,
		store:    store,
		logger:   logger,
		recorded: make(map[string]bool),
	}
}

// Record submits one verdict for a message. A second verdict for a message
// whose first submission succeeded returns ErrFeedbackRecorded; with a store
// configured the check also holds across restarts.
func (s *FeedbackService) Record(ctx context.Context, req *domain.FeedbackRequest) error {
	if !domain.ValidVerdict(req.Feedback) {
		return fmt.Errorf("%w: unknown verdict %q", domain.ErrInvalidRequest, req.Feedback)
	}

	if s.store != nil {
		prior, err := s.store.HasVerdict(req.MessageID)
		if err != nil {
			s.logger.Warn("failed to check persisted feedback", zap.Error(err))
		} else if prior {
			return domain.ErrFeedbackRecorded
		}
	}

	s.mu.Lock()
	if s.recorded[req.MessageID] {
		s.mu.Unlock()
		return domain.ErrFeedbackRecorded
	}
	s.recorded[req.MessageID] = true
	s.mu.Unlock()

	if err := s.sender.SendFeedback(ctx, req.Query, req.Feedback); err != nil {
		// Roll back so the user can retry
		s.mu.Lock()
		delete(s.recorded, req.MessageID)
		s.mu.Unlock()
		return fmt.Errorf("feedback submission failed: %w", err)
	}

	if s.store != nil {
		event := &domain.FeedbackEvent{
			MessageID: req.MessageID,
			Query:     req.Query,
			Verdict:   req.Feedback,
		}
		if err := s.store.Record(event); err != nil {
			s.logger.Warn("failed to persist feedback event", zap.Error(err))
		}
	}

	return nil
}
