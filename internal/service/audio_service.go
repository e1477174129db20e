package service

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/audio"
	"github.com/chatdeck/chatdeck/internal/domain"
	"github.com/chatdeck/chatdeck/internal/render"
	"github.com/chatdeck/chatdeck/internal/transcript"
)

// SpeechClient is the upstream surface the audio service needs
type SpeechClient interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
	Synthesize(ctx context.Context, input, voice string) ([]byte, error)
}

// AudioService orchestrates transcription, speech synthesis, and the local
// capture/playback devices of kiosk deployments. capture and playback are
// nil when local audio is disabled; the proxy paths work either way.
type AudioService struct {
	speech   SpeechClient
	capture  *audio.Capture
	playback *audio.PlaybackManager
	log      transcript.Log
	logger   *zap.Logger
}

// NewAudioService creates a new audio service
func NewAudioService(
	speech SpeechClient,
	capture *audio.Capture,
	playback *audio.PlaybackManager,
	log transcript.Log,
	logger *zap.Logger,
) *AudioService {
	return &AudioService{
		speech:   speech,
		capture:  capture,
		playback: playback,
		log:      log,
		logger:   logger,
	}
}

// Transcribe forwards browser-captured audio for transcription
func (s *AudioService) Transcribe(ctx context.Context, filename string, r io.Reader) (string, error) {
	return s.speech.Transcribe(ctx, filename, r)
}

// Synthesize fetches speech audio for a piece of text
func (s *AudioService) Synthesize(ctx context.Context, input, voice string) ([]byte, error) {
	return s.speech.Synthesize(ctx, input, voice)
}

// StartRecording begins a local capture session. The session outlives the
// request that started it, so the capture device gets a detached context.
func (s *AudioService) StartRecording(ctx context.Context) error {
	if s.capture == nil {
		return fmt.Errorf("local audio capture is not enabled")
	}
	return s.capture.Start(context.WithoutCancel(ctx))
}

// StopRecording ends the local capture session and returns the transcription
func (s *AudioService) StopRecording(ctx context.Context) (string, error) {
	if s.capture == nil {
		return "", fmt.Errorf("local audio capture is not enabled")
	}
	return s.capture.Stop(ctx)
}

// Play speaks a bot message through the shared playback slot. Only messages
// with the audio affordance are eligible.
func (s *AudioService) Play(ctx context.Context, sessionID, messageID string) error {
	if s.playback == nil {
		return fmt.Errorf("local audio playback is not enabled")
	}

	messages, err := s.log.Messages(sessionID)
	if err != nil {
		return err
	}
	for _, msg := range messages {
		if msg.ID != messageID {
			continue
		}
		if !msg.Audio {
			return fmt.Errorf("%w: message has no audio affordance", domain.ErrInvalidRequest)
		}
		return s.playback.Play(ctx, messageID, render.PlainText(msg.Body))
	}
	return domain.ErrNotFound
}

// NowPlaying returns the ID of the message currently playing, or ""
func (s *AudioService) NowPlaying() string {
	if s.playback == nil {
		return ""
	}
	return s.playback.Playing()
}

// StopPlayback halts the active playback, if any
func (s *AudioService) StopPlayback() {
	if s.playback != nil {
		s.playback.Stop()
	}
}
