package audio

import (
	"context"
	"errors"
	"io"
	"testing"

	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/domain"
)

type fakeRecorder struct {
	chunks   chan []byte
	startErr error
	started  int
	stopped  int
}

func (r *fakeRecorder) Start(ctx context.Context) (<-chan []byte, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	r.started++
	r.chunks = make(chan []byte, 16)
	return r.chunks, nil
}

func (r *fakeRecorder) Stop() error {
	r.stopped++
	close(r.chunks)
	return nil
}

type fakeTranscriber struct {
	received []byte
	text     string
	err      error
}

func (t *fakeTranscriber) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	t.received, _ = io.ReadAll(audio)
	return t.text, t.err
}

func TestCaptureRoundTrip(t *testing.T) {
	rec := &fakeRecorder{}
	tr := &fakeTranscriber{text: "hello world"}
	capture := NewCapture(rec, tr, zap.NewNop())

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if capture.State() != StateRecording {
		t.Errorf("state = %s", capture.State())
	}

	rec.chunks <- []byte("abc")
	rec.chunks <- []byte("def")

	text, err := capture.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if text != "hello world" {
		t.Errorf("transcription = %q", text)
	}
	if string(tr.received) != "abcdef" {
		t.Errorf("assembled audio = %q", tr.received)
	}
	if rec.stopped != 1 {
		t.Errorf("device stopped %d times", rec.stopped)
	}
	if capture.State() != StateIdle {
		t.Errorf("state after stop = %s", capture.State())
	}
}

func TestCaptureSecondStartRejected(t *testing.T) {
	rec := &fakeRecorder{}
	capture := NewCapture(rec, &fakeTranscriber{}, zap.NewNop())

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := capture.Start(context.Background()); !errors.Is(err, domain.ErrCaptureBusy) {
		t.Errorf("expected ErrCaptureBusy, got %v", err)
	}
	if rec.started != 1 {
		t.Errorf("device started %d times", rec.started)
	}

	// Session must reach idle before a new start is allowed
	if _, err := capture.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := capture.Start(context.Background()); err != nil {
		t.Errorf("start after idle: %v", err)
	}
}

func TestCapturePermissionDenied(t *testing.T) {
	rec := &fakeRecorder{startErr: errors.New("device busy")}
	capture := NewCapture(rec, &fakeTranscriber{}, zap.NewNop())

	err := capture.Start(context.Background())
	if !errors.Is(err, domain.ErrMicrophoneDenied) {
		t.Fatalf("expected ErrMicrophoneDenied, got %v", err)
	}
	if capture.State() != StateIdle {
		t.Errorf("denied start must leave the machine idle, state = %s", capture.State())
	}
}

func TestCaptureTranscriptionFailureReturnsToIdle(t *testing.T) {
	rec := &fakeRecorder{}
	tr := &fakeTranscriber{err: errors.New("upstream down")}
	capture := NewCapture(rec, tr, zap.NewNop())

	if err := capture.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	rec.chunks <- []byte("abc")

	if _, err := capture.Stop(context.Background()); err == nil {
		t.Fatal("expected transcription error")
	}
	if rec.stopped != 1 {
		t.Errorf("device must be released on the failure path, stopped = %d", rec.stopped)
	}
	if capture.State() != StateIdle {
		t.Errorf("state after failed stop = %s", capture.State())
	}
}

func TestStopWithoutRecording(t *testing.T) {
	capture := NewCapture(&fakeRecorder{}, &fakeTranscriber{}, zap.NewNop())

	if _, err := capture.Stop(context.Background()); err == nil {
		t.Fatal("expected error stopping an idle capture")
	}
}
