// Package upstream is the HTTP client for the analysis backend. It is the
// only place backend wire formats are decoded; everything past it works with
// domain types.
package upstream

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// Upstream protocol variants
const (
	ProtocolQuery = "query" // POST /query {query} -> {type, content}
	ProtocolChat  = "chat"  // POST /chat {message} -> {response}
)

// Config holds upstream connection configuration
type Config struct {
	BaseURL  string
	Protocol string
	Timeout  time.Duration
}

// Client talks to the analysis backend
type Client struct {
	baseURL    string
	protocol   string
	httpClient *http.Client
}

// New creates a new upstream client
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = ProtocolQuery
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		protocol: protocol,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Query submits a user query and returns the raw tagged response. Under the
// chat protocol variant the reply has no discriminator; it is folded into a
// text response so the renderer sees a single shape.
func (c *Client) Query(ctx context.Context, query string) (*domain.Response, error) {
	if c.protocol == ProtocolChat {
		return c.chat(ctx, query)
	}

	body, err := c.postJSON(ctx, "/query", map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var resp domain.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: query response: %v", domain.ErrBadShape, err)
	}
	return &resp, nil
}

func (c *Client) chat(ctx context.Context, message string) (*domain.Response, error) {
	body, err := c.postJSON(ctx, "/chat", map[string]string{"message": message})
	if err != nil {
		return nil, err
	}

	var reply struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &reply); err != nil {
		return nil, fmt.Errorf("%w: chat response: %v", domain.ErrBadShape, err)
	}
	content, _ := json.Marshal(reply.Response)
	return &domain.Response{Type: domain.TypeText, Content: content}, nil
}

// Transcribe uploads captured audio as multipart form data and returns the
// transcription text.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build transcribe request: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to buffer audio: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize transcribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transcribe", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var resp struct {
		Transcription string `json:"transcription"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: transcribe response: %v", domain.ErrBadShape, err)
	}
	return resp.Transcription, nil
}

// Synthesize converts text to speech and returns the binary audio payload
func (c *Client) Synthesize(ctx context.Context, input, voice string) ([]byte, error) {
	return c.postJSON(ctx, "/synthesize", map[string]string{
		"input": input,
		"voice": voice,
	})
}

// UploadResult is the backend's reply to a document upload
type UploadResult struct {
	Message  string `json:"message"`
	Analysis string `json:"analysis,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Upload forwards a document to the backend as a base64 payload
func (c *Client) Upload(ctx context.Context, content []byte) (*UploadResult, error) {
	body, err := c.postJSON(ctx, "/upload", map[string]string{
		"file_content": base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		return nil, err
	}

	var result UploadResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: upload response: %v", domain.ErrBadShape, err)
	}
	return &result, nil
}

// SendFeedback reports a verdict for a previously rendered message. The
// backend keys feedback by the message text, not an ID.
func (c *Client) SendFeedback(ctx context.Context, query, verdict string) error {
	_, err := c.postJSON(ctx, "/feedback", map[string]string{
		"query":    query,
		"feedback": verdict,
	})
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// do executes the request and normalizes failures: network errors and non-2xx
// statuses both come back as plain errors carrying the status text, so
// callers surface them uniformly.
func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upstream returned %s", resp.Status)
	}

	return body, nil
}
