// Package audio owns microphone capture and speech playback. Devices are
// injected behind small interfaces so the state machines can be driven in
// tests without real hardware.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// Capture states
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

// Recorder is the capture device. Start returns a channel of audio chunks
// that closes when the device stops; an error from Start means access was
// denied. Stop releases the device and must be safe to call exactly once
// per successful Start.
type Recorder interface {
	Start(ctx context.Context) (<-chan []byte, error)
	Stop() error
}

// Transcriber submits assembled audio for transcription
type Transcriber interface {
	Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error)
}

// Capture is the recording state machine: idle -> recording -> transcribing
// -> idle. At most one session is active at a time; the chunk buffer and the
// device are released on every exit path.
type Capture struct {
	recorder    Recorder
	transcriber Transcriber
	logger      *zap.Logger

	mu     sync.Mutex
	state  State
	chunks [][]byte
	done   chan struct{}
}

// NewCapture creates a capture state machine in the idle state
func NewCapture(recorder Recorder, transcriber Transcriber, logger *zap.Logger) *Capture {
	return &Capture{
		recorder:    recorder,
		transcriber: transcriber,
		logger:      logger,
	}
}

// State returns the current capture state
func (c *Capture) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start begins a recording session. Starting while a session is active
// returns ErrCaptureBusy; a denied device leaves the machine idle.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle {
		return domain.ErrCaptureBusy
	}

	chunks, err := c.recorder.Start(ctx)
	if err != nil {
		c.logger.Warn("recorder start refused", zap.Error(err))
		return fmt.Errorf("%w: %v", domain.ErrMicrophoneDenied, err)
	}

	c.state = StateRecording
	c.chunks = nil
	c.done = make(chan struct{})

	go c.buffer(chunks, c.done)
	return nil
}

// buffer accumulates chunks until the recorder closes its channel
func (c *Capture) buffer(chunks <-chan []byte, done chan struct{}) {
	for chunk := range chunks {
		c.mu.Lock()
		c.chunks = append(c.chunks, chunk)
		c.mu.Unlock()
	}
	close(done)
}

// Stop ends the recording session, releases the device, and submits the
// buffered audio for transcription. The machine returns to idle whether or
// not transcription succeeds.
func (c *Capture) Stop(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.state != StateRecording {
		c.mu.Unlock()
		return "", fmt.Errorf("no active recording (state %s)", c.state)
	}
	c.state = StateTranscribing
	done := c.done
	c.mu.Unlock()

	stopErr := c.recorder.Stop()
	<-done // all chunks buffered once the channel closes

	c.mu.Lock()
	audio := bytes.Join(c.chunks, nil)
	c.chunks = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
	}()

	if stopErr != nil {
		return "", fmt.Errorf("failed to stop recorder: %w", stopErr)
	}

	text, err := c.transcriber.Transcribe(ctx, "recording.webm", bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	return text, nil
}
