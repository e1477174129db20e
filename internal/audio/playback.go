package audio

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Synthesizer fetches speech audio for a piece of text
type Synthesizer interface {
	Synthesize(ctx context.Context, input, voice string) ([]byte, error)
}

// Player starts device playback of an audio payload and returns a handle
// that stops it.
type Player interface {
	Play(audio []byte) (Handle, error)
}

// Handle is an active playback that can be stopped
type Handle interface {
	Stop()
}

// PlaybackManager owns the single shared playback slot: starting playback
// for one message stops whatever is currently playing first.
type PlaybackManager struct {
	synth  Synthesizer
	player Player
	voice  string
	logger *zap.Logger

	mu        sync.Mutex
	current   Handle
	currentID string
}

// NewPlaybackManager creates a playback manager with no active playback
func NewPlaybackManager(synth Synthesizer, player Player, voice string, logger *zap.Logger) *PlaybackManager {
	return &PlaybackManager{
		synth:  synth,
		player: player,
		voice:  voice,
		logger: logger,
	}
}

// Play synthesizes speech for a message and starts playing it, stopping any
// playback that is already running.
func (m *PlaybackManager) Play(ctx context.Context, messageID, text string) error {
	audio, err := m.synth.Synthesize(ctx, text, m.voice)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Stop()
		m.current = nil
		m.currentID = ""
	}

	handle, err := m.player.Play(audio)
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}

	m.current = handle
	m.currentID = messageID
	m.logger.Debug("playback started", zap.String("message_id", messageID))
	return nil
}

// Stop halts the active playback, if any
func (m *PlaybackManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		m.current.Stop()
		m.current = nil
		m.currentID = ""
	}
}

// Playing returns the ID of the message currently playing, or ""
func (m *PlaybackManager) Playing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentID
}
