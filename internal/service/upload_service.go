package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/upstream"
)

// Uploader forwards a document to the analysis backend
type Uploader interface {
	Upload(ctx context.Context, content []byte) (*upstream.UploadResult, error)
}

// UploadService forwards user documents for backend analysis
type UploadService struct {
	upstream Uploader
	maxSize  int64
	logger   *zap.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(up Uploader, maxSize int64, logger *zap.Logger) *UploadService {
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &UploadService{
		upstream: up,
		maxSize:  maxSize,
		logger:   logger,
	}
}

// Process reads one uploaded file and forwards it upstream
func (s *UploadService) Process(ctx context.Context, filename string, r io.Reader) (*upstream.UploadResult, error) {
	content, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return nil, fmt.Errorf("file exceeds maximum upload size of %d bytes", s.maxSize)
	}

	s.logger.Info("forwarding document for analysis",
		zap.String("filename", filename),
		zap.Int("size", len(content)),
	)
	return s.upstream.Upload(ctx, content)
}
