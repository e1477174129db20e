package service

import (
	"context"

	"github.com/chatdeck/chatdeck/internal/domain"
	"github.com/chatdeck/chatdeck/internal/repository"
)

// Stats represents gateway statistics
type Stats struct {
	TotalSessions int `json:"total_sessions"`
	TotalQueries  int `json:"total_queries"`
	TotalFeedback int `json:"total_feedback"`
}

// AdminService handles admin operations
type AdminService struct {
	transcriptRepo *repository.TranscriptRepository
	feedbackRepo   *repository.FeedbackRepository
}

// NewAdminService creates a new admin service
func NewAdminService(
	transcriptRepo *repository.TranscriptRepository,
	feedbackRepo *repository.FeedbackRepository,
) *AdminService {
	return &AdminService{
		transcriptRepo: transcriptRepo,
		feedbackRepo:   feedbackRepo,
	}
}

// GetStats returns gateway statistics
func (s *AdminService) GetStats(ctx context.Context) (*Stats, error) {
	sessions, err := s.transcriptRepo.CountSessions()
	if err != nil {
		return nil, err
	}
	queries, err := s.transcriptRepo.CountQueries()
	if err != nil {
		return nil, err
	}
	feedback, err := s.feedbackRepo.Count()
	if err != nil {
		return nil, err
	}

	return &Stats{
		TotalSessions: sessions,
		TotalQueries:  queries,
		TotalFeedback: feedback,
	}, nil
}

// ListFeedback returns the most recent feedback events
func (s *AdminService) ListFeedback(ctx context.Context, limit int) ([]*domain.FeedbackEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.feedbackRepo.List(limit)
}
