package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chatdeck/chatdeck/internal/audio"
	"github.com/chatdeck/chatdeck/internal/domain"
	"github.com/chatdeck/chatdeck/internal/service"
	"github.com/chatdeck/chatdeck/internal/transcript"
	"github.com/chatdeck/chatdeck/internal/upstream"
)

type fakeBackend struct {
	resp          *domain.Response
	feedbackErr   error
	transcription string
}

func (b *fakeBackend) Query(ctx context.Context, query string) (*domain.Response, error) {
	return b.resp, nil
}

func (b *fakeBackend) SendFeedback(ctx context.Context, query, verdict string) error {
	return b.feedbackErr
}

func (b *fakeBackend) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	return b.transcription, nil
}

func (b *fakeBackend) Synthesize(ctx context.Context, input, voice string) ([]byte, error) {
	return []byte("mp3-bytes"), nil
}

func (b *fakeBackend) Upload(ctx context.Context, content []byte) (*upstream.UploadResult, error) {
	return &upstream.UploadResult{Message: "uploaded"}, nil
}

type fakeSessions struct {
	ids map[string]bool
}

func (s *fakeSessions) CreateSession(session *domain.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	s.ids[session.ID] = true
	return nil
}

func (s *fakeSessions) GetSession(id string) (*domain.Session, error) {
	if !s.ids[id] {
		return nil, nil
	}
	return &domain.Session{ID: id}, nil
}

type fakeHandle struct{}

func (fakeHandle) Stop() {}

type fakePlayer struct{}

func (fakePlayer) Play(data []byte) (audio.Handle, error) {
	return fakeHandle{}, nil
}

type idleRecorder struct {
	chunks chan []byte
}

func (r *idleRecorder) Start(ctx context.Context) (<-chan []byte, error) {
	r.chunks = make(chan []byte)
	return r.chunks, nil
}

func (r *idleRecorder) Stop() error {
	close(r.chunks)
	return nil
}

func setupRouter(backend *fakeBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	log := transcript.NewMemoryLog()
	sessions := &fakeSessions{ids: make(map[string]bool)}

	capture := audio.NewCapture(&idleRecorder{}, backend, logger)
	playback := audio.NewPlaybackManager(backend, fakePlayer{}, "alloy", logger)
	chatService := service.NewChatService(backend, log, sessions, logger)
	feedbackService := service.NewFeedbackService(backend, nil, logger)
	audioService := service.NewAudioService(backend, capture, playback, log, logger)
	uploadService := service.NewUploadService(backend, 1<<20, logger)

	handler := NewHandler(chatService, feedbackService, audioService, uploadService)
	r := gin.New()
	handler.RegisterRoutes(r.Group("/api/widget"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestQueryEndpoint(t *testing.T) {
	content, _ := json.Marshal("the answer")
	backend := &fakeBackend{resp: &domain.Response{Type: domain.TypeText, Content: content}}
	r := setupRouter(backend)

	resp := postJSON(t, r, "/api/widget/query", map[string]string{"query": "a question"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result domain.QueryResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Messages) != 2 {
		t.Errorf("got %d messages", len(result.Messages))
	}
}

func TestQueryEndpointWhitespaceOnly(t *testing.T) {
	r := setupRouter(&fakeBackend{})

	resp := postJSON(t, r, "/api/widget/query", map[string]string{"query": "   "})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.Code)
	}
}

func TestQueryUnknownSession(t *testing.T) {
	content, _ := json.Marshal("hi")
	backend := &fakeBackend{resp: &domain.Response{Type: domain.TypeText, Content: content}}
	r := setupRouter(backend)

	resp := postJSON(t, r, "/api/widget/query", map[string]string{
		"session_id": "never-created", "query": "hello",
	})
	if resp.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMessagesRoundTrip(t *testing.T) {
	content, _ := json.Marshal("hi")
	backend := &fakeBackend{resp: &domain.Response{Type: domain.TypeText, Content: content}}
	r := setupRouter(backend)

	resp := postJSON(t, r, "/api/widget/query", map[string]string{"query": "hello"})
	var submitted domain.QueryResponse
	json.Unmarshal(resp.Body.Bytes(), &submitted)

	req := httptest.NewRequest(http.MethodGet, "/api/widget/messages/"+submitted.SessionID, nil)
	getResp := httptest.NewRecorder()
	r.ServeHTTP(getResp, req)

	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.Code)
	}
	var page struct {
		Messages []*domain.Message `json:"messages"`
	}
	json.Unmarshal(getResp.Body.Bytes(), &page)
	if len(page.Messages) != 2 {
		t.Errorf("got %d messages", len(page.Messages))
	}

	// Full-log clear
	req = httptest.NewRequest(http.MethodDelete, "/api/widget/messages/"+submitted.SessionID, nil)
	delResp := httptest.NewRecorder()
	r.ServeHTTP(delResp, req)
	if delResp.Code != http.StatusOK {
		t.Fatalf("expected 200 on clear, got %d", delResp.Code)
	}
}

func TestMessagesUnknownSession(t *testing.T) {
	r := setupRouter(&fakeBackend{})

	req := httptest.NewRequest(http.MethodGet, "/api/widget/messages/unknown", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.Code)
	}
}

func TestFeedbackOnceThenConflict(t *testing.T) {
	r := setupRouter(&fakeBackend{})

	body := map[string]string{"message_id": "m1", "query": "the answer", "feedback": "positive"}
	if resp := postJSON(t, r, "/api/widget/feedback", body); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp := postJSON(t, r, "/api/widget/feedback", body); resp.Code != http.StatusConflict {
		t.Errorf("expected 409 on duplicate, got %d", resp.Code)
	}
}

func TestTranscribeEndpoint(t *testing.T) {
	backend := &fakeBackend{transcription: "spoken words"}
	r := setupRouter(backend)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "clip.webm")
	part.Write([]byte("audio"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/widget/transcribe", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var result map[string]string
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result["transcription"] != "spoken words" {
		t.Errorf("transcription = %q", result["transcription"])
	}
}

func TestTranscribeWithoutFile(t *testing.T) {
	r := setupRouter(&fakeBackend{})

	req := httptest.NewRequest(http.MethodPost, "/api/widget/transcribe", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.Code)
	}
}

func TestSynthesizeEndpoint(t *testing.T) {
	r := setupRouter(&fakeBackend{})

	resp := postJSON(t, r, "/api/widget/synthesize", map[string]string{"input": "hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if resp.Header().Get("Content-Type") != "audio/mpeg" {
		t.Errorf("content type = %q", resp.Header().Get("Content-Type"))
	}
	if resp.Body.String() != "mp3-bytes" {
		t.Errorf("body = %q", resp.Body.String())
	}
}

func TestRecordStartTwiceConflicts(t *testing.T) {
	r := setupRouter(&fakeBackend{transcription: "dictated"})

	if resp := postJSON(t, r, "/api/widget/record/start", nil); resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	if resp := postJSON(t, r, "/api/widget/record/start", nil); resp.Code != http.StatusConflict {
		t.Errorf("expected 409 while recording, got %d", resp.Code)
	}

	stop := postJSON(t, r, "/api/widget/record/stop", nil)
	if stop.Code != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d: %s", stop.Code, stop.Body.String())
	}
	var result map[string]string
	json.Unmarshal(stop.Body.Bytes(), &result)
	if result["transcription"] != "dictated" {
		t.Errorf("transcription = %q", result["transcription"])
	}

	// Back to idle: a new session may start
	if resp := postJSON(t, r, "/api/widget/record/start", nil); resp.Code != http.StatusOK {
		t.Errorf("expected 200 after idle, got %d", resp.Code)
	}
}

func playingID(t *testing.T, r *gin.Engine) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/widget/play", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("playback status: %d", resp.Code)
	}
	var result map[string]string
	json.Unmarshal(resp.Body.Bytes(), &result)
	return result["playing"]
}

func TestPlaybackStatusTracksActiveMessage(t *testing.T) {
	content, _ := json.Marshal("something to say")
	backend := &fakeBackend{resp: &domain.Response{Type: domain.TypeText, Content: content}}
	r := setupRouter(backend)

	resp := postJSON(t, r, "/api/widget/query", map[string]string{"query": "speak up"})
	var submitted domain.QueryResponse
	json.Unmarshal(resp.Body.Bytes(), &submitted)
	if len(submitted.Messages) != 2 {
		t.Fatalf("got %d messages", len(submitted.Messages))
	}
	botID := submitted.Messages[1].ID

	if id := playingID(t, r); id != "" {
		t.Fatalf("expected an idle slot, playing %q", id)
	}

	play := postJSON(t, r, "/api/widget/play", map[string]string{
		"session_id": submitted.SessionID, "message_id": botID,
	})
	if play.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", play.Code, play.Body.String())
	}
	if id := playingID(t, r); id != botID {
		t.Errorf("playing = %q, want %q", id, botID)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/widget/play", nil)
	del := httptest.NewRecorder()
	r.ServeHTTP(del, req)
	if del.Code != http.StatusOK {
		t.Fatalf("expected 200 on stop, got %d", del.Code)
	}
	if id := playingID(t, r); id != "" {
		t.Errorf("slot not released, playing %q", id)
	}
}

func TestUploadEndpoint(t *testing.T) {
	r := setupRouter(&fakeBackend{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", "report.pdf")
	part.Write([]byte("pdf-bytes"))
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/widget/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}
