package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/api"
	"github.com/chatdeck/chatdeck/internal/audio"
	"github.com/chatdeck/chatdeck/internal/config"
	"github.com/chatdeck/chatdeck/internal/repository"
	"github.com/chatdeck/chatdeck/internal/service"
	"github.com/chatdeck/chatdeck/internal/transcript"
	"github.com/chatdeck/chatdeck/internal/upstream"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Transcript storage: SQLite when a database path is configured,
	// in-memory otherwise. Without persistence the admin surface has
	// nothing to report and stays unregistered.
	var (
		transcriptLog transcript.Log
		sessions      service.SessionStore
		feedbackStore service.FeedbackStore
		adminService  *service.AdminService
	)
	if cfg.Database.Path == "" {
		mem := transcript.NewMemoryLog()
		transcriptLog = mem
		sessions = mem
		logger.Info("No database path configured, transcripts are in-memory")
	} else {
		db, err := repository.NewDB(cfg.Database.Path)
		if err != nil {
			logger.Fatal("Failed to initialize database", zap.Error(err))
		}
		defer db.Close()

		transcriptRepo := repository.NewTranscriptRepository(db)
		feedbackRepo := repository.NewFeedbackRepository(db)
		transcriptLog = transcriptRepo
		sessions = transcriptRepo
		feedbackStore = feedbackRepo
		adminService = service.NewAdminService(transcriptRepo, feedbackRepo)
	}

	// Upstream analysis backend client
	backend := upstream.New(upstream.Config{
		BaseURL:  cfg.Upstream.BaseURL,
		Protocol: cfg.Upstream.Protocol,
		Timeout:  cfg.Upstream.Timeout,
	})

	// Local audio devices (kiosk mode); nil when not configured
	var capture *audio.Capture
	if cfg.Audio.CaptureCommand != "" {
		recorder := audio.NewCommandRecorder(cfg.Audio.CaptureCommand)
		capture = audio.NewCapture(recorder, backend, logger)
	}
	var playback *audio.PlaybackManager
	if cfg.Audio.PlaybackCommand != "" {
		player := audio.NewCommandPlayer(cfg.Audio.PlaybackCommand)
		playback = audio.NewPlaybackManager(backend, player, cfg.Audio.Voice, logger)
	}

	// Initialize services
	chatService := service.NewChatService(backend, transcriptLog, sessions, logger)
	feedbackService := service.NewFeedbackService(backend, feedbackStore, logger)
	audioService := service.NewAudioService(backend, capture, playback, transcriptLog, logger)
	uploadService := service.NewUploadService(backend, cfg.Upload.MaxSizeBytes, logger)

	// Setup router
	router := api.SetupRouter(
		chatService,
		feedbackService,
		audioService,
		uploadService,
		adminService,
		api.RouterConfig{
			APIKey:       cfg.Admin.APIKey,
			AllowOrigins: cfg.Server.AllowOrigins,
		},
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting ChatDeck gateway",
			zap.String("address", cfg.Address()),
			zap.String("upstream", cfg.Upstream.BaseURL),
			zap.String("protocol", cfg.Upstream.Protocol),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Stop any active playback before exit
	audioService.StopPlayback()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
