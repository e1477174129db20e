package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Response type discriminators used by the analysis backend
const (
	TypeText          = "text"
	TypeDocument      = "document_response"
	TypeVisualization = "visualization"
	TypeChartAnalysis = "chart_analysis"
	TypeError         = "error"
)

// Response is a backend reply, decoded once at the upstream boundary.
// Content stays raw until the variant accessor for the tag is called.
type Response struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// DocumentEntry is one entry of a document_response payload
type DocumentEntry struct {
	Filename    string `json:"filename"`
	PageContent string `json:"page_content"`
}

// Visualization is the decoded payload of a visualization response
type Visualization struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Image   string `json:"image"`
}

// Text decodes a text payload. Content may be a bare string or an object
// carrying the string under a "response" field.
func (r *Response) Text() (string, error) {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(r.Content, &obj); err != nil || obj.Response == "" {
		return "", fmt.Errorf("%w: text content is neither string nor {response}", ErrBadShape)
	}
	return obj.Response, nil
}

// Documents decodes a document_response payload: an ordered sequence of
// entries with page content and a filename, the latter either top-level or
// under a metadata object.
func (r *Response) Documents() ([]DocumentEntry, error) {
	var raw []struct {
		Filename    string `json:"filename"`
		PageContent string `json:"page_content"`
		Metadata    struct {
			Filename string `json:"filename"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(r.Content, &raw); err != nil {
		return nil, fmt.Errorf("%w: document content is not a sequence: %v", ErrBadShape, err)
	}
	entries := make([]DocumentEntry, 0, len(raw))
	for _, e := range raw {
		name := e.Metadata.Filename
		if name == "" {
			name = e.Filename
		}
		entries = append(entries, DocumentEntry{Filename: name, PageContent: e.PageContent})
	}
	return entries, nil
}

// Visualization decodes a visualization payload. The backend sometimes sends
// the payload as a JSON-encoded string, occasionally delimited with single
// quotes; both encodings are accepted.
func (r *Response) Visualization() (*Visualization, error) {
	content := r.Content
	var encoded string
	if err := json.Unmarshal(content, &encoded); err == nil {
		encoded = strings.ReplaceAll(encoded, "'", `"`)
		content = json.RawMessage(encoded)
	}
	var v Visualization
	if err := json.Unmarshal(content, &v); err != nil {
		return nil, fmt.Errorf("%w: visualization content: %v", ErrBadShape, err)
	}
	return &v, nil
}

// ChartAnalysis decodes a chart_analysis payload, which must be an object.
func (r *Response) ChartAnalysis() (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal(r.Content, &obj); err != nil {
		return nil, fmt.Errorf("%w: chart analysis content is not an object: %v", ErrBadShape, err)
	}
	return obj, nil
}

// ErrorText decodes an error payload
func (r *Response) ErrorText() (string, error) {
	var s string
	if err := json.Unmarshal(r.Content, &s); err != nil {
		return "", fmt.Errorf("%w: error content is not a string: %v", ErrBadShape, err)
	}
	return s, nil
}
