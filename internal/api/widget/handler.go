package widget

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chatdeck/chatdeck/internal/domain"
	"github.com/chatdeck/chatdeck/internal/service"
)

// Handler handles widget API requests
type Handler struct {
	chatService     *service.ChatService
	feedbackService *service.FeedbackService
	audioService    *service.AudioService
	uploadService   *service.UploadService
}

// NewHandler creates a new widget handler
func NewHandler(
	chatService *service.ChatService,
	feedbackService *service.FeedbackService,
	audioService *service.AudioService,
	uploadService *service.UploadService,
) *Handler {
	return &Handler{
		chatService:     chatService,
		feedbackService: feedbackService,
		audioService:    audioService,
		uploadService:   uploadService,
	}
}

// RegisterRoutes registers widget routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/query", h.Query)
	r.GET("/messages/:session_id", h.Messages)
	r.DELETE("/messages/:session_id", h.ClearMessages)
	r.POST("/feedback", h.Feedback)
	r.POST("/transcribe", h.Transcribe)
	r.POST("/synthesize", h.Synthesize)
	r.POST("/upload", h.Upload)

	record := r.Group("/record")
	{
		record.POST("/start", h.StartRecording)
		record.POST("/stop", h.StopRecording)
	}

	play := r.Group("/play")
	{
		play.GET("", h.PlaybackStatus)
		play.POST("", h.Play)
		play.DELETE("", h.StopPlayback)
	}
}

// Query submits a user query and returns the messages it appended
func (h *Handler) Query(c *gin.Context) {
	var req domain.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.chatService.Submit(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyQuery):
			c.JSON(http.StatusBadRequest, gin.H{"error": "empty query"})
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, domain.ErrQueryInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "query already in flight"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Messages returns a session's transcript in append order
func (h *Handler) Messages(c *gin.Context) {
	sessionID := c.Param("session_id")

	messages, err := h.chatService.Messages(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": sessionID, "messages": messages})
}

// ClearMessages removes a session's entire transcript
func (h *Handler) ClearMessages(c *gin.Context) {
	sessionID := c.Param("session_id")

	if err := h.chatService.Clear(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// Feedback records a verdict for a rendered bot message
func (h *Handler) Feedback(c *gin.Context) {
	var req domain.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.feedbackService.Record(c.Request.Context(), &req); err != nil {
		switch {
		case errors.Is(err, domain.ErrFeedbackRecorded):
			c.JSON(http.StatusConflict, gin.H{"error": "feedback already recorded"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			// Recoverable: the widget re-enables its controls for a retry
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
}

// Transcribe accepts browser-captured audio and returns its transcription
func (h *Handler) Transcribe(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	text, err := h.audioService.Transcribe(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcription": text})
}

// Synthesize returns speech audio for a piece of text
func (h *Handler) Synthesize(c *gin.Context) {
	var req struct {
		Input string `json:"input" binding:"required"`
		Voice string `json:"voice"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	audio, err := h.audioService.Synthesize(c.Request.Context(), req.Input, req.Voice)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}

// Upload forwards a document to the backend for analysis
func (h *Handler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	result, err := h.uploadService.Process(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if result.Error != "" {
		c.JSON(http.StatusBadGateway, gin.H{"error": result.Error})
		return
	}

	c.JSON(http.StatusOK, result)
}

// StartRecording begins a local capture session (kiosk mode)
func (h *Handler) StartRecording(c *gin.Context) {
	if err := h.audioService.StartRecording(c.Request.Context()); err != nil {
		switch {
		case errors.Is(err, domain.ErrCaptureBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "recording already active"})
		case errors.Is(err, domain.ErrMicrophoneDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "recording"})
}

// StopRecording ends the local capture session and returns the transcription
func (h *Handler) StopRecording(c *gin.Context) {
	text, err := h.audioService.StopRecording(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"transcription": text})
}

// Play speaks a bot message through the shared playback slot
func (h *Handler) Play(c *gin.Context) {
	var req struct {
		SessionID string `json:"session_id" binding:"required"`
		MessageID string `json:"message_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.audioService.Play(c.Request.Context(), req.SessionID, req.MessageID); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		case errors.Is(err, domain.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "playing"})
}

// PlaybackStatus reports which message the playback slot is speaking
func (h *Handler) PlaybackStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"playing": h.audioService.NowPlaying()})
}

// StopPlayback halts the active playback, if any
func (h *Handler) StopPlayback(c *gin.Context) {
	h.audioService.StopPlayback()
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}
