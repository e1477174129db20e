package audio

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandRecorder captures audio by running an external capture command
// (arecord, sox, ffmpeg) and streaming its stdout. Used in kiosk deployments
// where the gateway host owns the microphone.
type CommandRecorder struct {
	command string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewCommandRecorder creates a recorder for a capture command line
func NewCommandRecorder(command string) *CommandRecorder {
	return &CommandRecorder{command: command}
}

// Start launches the capture command and streams stdout chunks
func (r *CommandRecorder) Start(ctx context.Context) (<-chan []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return nil, fmt.Errorf("capture command already running")
	}

	parts := strings.Fields(r.command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no capture command configured")
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start capture command: %w", err)
	}
	r.cmd = cmd

	chunks := make(chan []byte)
	go func() {
		defer close(chunks)
		buf := make([]byte, 4096)
		for {
			n, err := stdout.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				chunks <- chunk
			}
			if err != nil {
				return
			}
		}
	}()

	return chunks, nil
}

// Stop terminates the capture command and releases the device
func (r *CommandRecorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil
	}
	cmd := r.cmd
	r.cmd = nil

	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	// Exit status is expected to be non-zero after a kill
	_ = cmd.Wait()
	return nil
}

// CommandPlayer plays audio by piping it to an external player command
// (aplay, mpg123, ffplay).
type CommandPlayer struct {
	command string
}

// NewCommandPlayer creates a player for a playback command line
func NewCommandPlayer(command string) *CommandPlayer {
	return &CommandPlayer{command: command}
}

// Play pipes the audio payload to the player command and returns a handle
// that kills it.
func (p *CommandPlayer) Play(audio []byte) (Handle, error) {
	parts := strings.Fields(p.command)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no playback command configured")
	}

	cmd := exec.Command(parts[0], parts[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start playback command: %w", err)
	}

	go func() {
		_, _ = stdin.Write(audio)
		stdin.Close()
		_ = cmd.Wait()
	}()

	return &commandHandle{cmd: cmd}, nil
}

type commandHandle struct {
	once sync.Once
	cmd  *exec.Cmd
}

func (h *commandHandle) Stop() {
	h.once.Do(func() {
		if h.cmd.Process != nil {
			_ = h.cmd.Process.Kill()
		}
	})
}
