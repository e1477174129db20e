package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/domain"
	"github.com/chatdeck/chatdeck/internal/render"
	"github.com/chatdeck/chatdeck/internal/transcript"
)

// Querier submits a query to the analysis backend
type Querier interface {
	Query(ctx context.Context, query string) (*domain.Response, error)
}

// SessionStore persists chat sessions
type SessionStore interface {
	CreateSession(session *domain.Session) error
	GetSession(id string) (*domain.Session, error)
}

// ChatService owns the query pipeline: append the user message, ask the
// backend, render the reply, append the results. Backend failures never
// escape as errors; they become error messages in the transcript.
type ChatService struct {
	upstream Querier
	log      transcript.Log
	sessions SessionStore
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[string]bool
}

// NewChatService creates a new chat service
func NewChatService(upstream Querier, log transcript.Log, sessions SessionStore, logger *zap.Logger) *ChatService {
	return &ChatService{
		upstream: upstream,
		log:      log,
		sessions: sessions,
		logger:   logger,
		inflight: make(map[string]bool),
	}
}

// Submit handles one query round. Empty or whitespace-only input is a no-op:
// nothing is appended and nothing is sent. A caller-supplied session must
// already exist, and a second submission while one is in flight for the same
// session is rejected.
func (s *ChatService) Submit(ctx context.Context, req *domain.QueryRequest) (*domain.QueryResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}

	sessionID := req.SessionID
	if sessionID == "" {
		session := &domain.Session{}
		if err := s.sessions.CreateSession(session); err != nil {
			return nil, err
		}
		sessionID = session.ID
	} else if session, err := s.sessions.GetSession(sessionID); err != nil {
		return nil, err
	} else if session == nil {
		return nil, domain.ErrNotFound
	}

	if err := s.acquire(sessionID); err != nil {
		return nil, err
	}
	defer s.release(sessionID)

	userMsg := &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Body:      query,
	}
	if err := s.log.Append(userMsg); err != nil {
		return nil, err
	}
	appended := []*domain.Message{userMsg}

	resp, err := s.upstream.Query(ctx, query)

	var rendered []*domain.Message
	if err != nil {
		s.logger.Warn("query failed", zap.String("session_id", sessionID), zap.Error(err))
		rendered = []*domain.Message{{Role: domain.RoleError, Body: err.Error()}}
	} else {
		rendered = render.Render(resp)
	}

	for _, msg := range rendered {
		msg.SessionID = sessionID
		if err := s.log.Append(msg); err != nil {
			return nil, err
		}
		appended = append(appended, msg)
	}

	return &domain.QueryResponse{
		SessionID: sessionID,
		Messages:  appended,
	}, nil
}

// Messages returns a session's transcript in append order
func (s *ChatService) Messages(ctx context.Context, sessionID string) ([]*domain.Message, error) {
	if session, err := s.sessions.GetSession(sessionID); err != nil {
		return nil, err
	} else if session == nil {
		return nil, domain.ErrNotFound
	}
	return s.log.Messages(sessionID)
}

// Clear removes a session's entire transcript
func (s *ChatService) Clear(ctx context.Context, sessionID string) error {
	return s.log.Clear(sessionID)
}

func (s *ChatService) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight[sessionID] {
		return domain.ErrQueryInFlight
	}
	s.inflight[sessionID] = true
	return nil
}

func (s *ChatService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, sessionID)
}
