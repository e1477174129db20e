// Package render turns decoded backend responses into transcript messages.
// Rendering is a pure function of the response: malformed or unrecognized
// payloads come back as error messages, never as faults.
package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/chatdeck/chatdeck/internal/domain"
)

// Render dispatches on the response discriminator and returns the messages
// to append, in order. It never panics: any shape violation or unknown tag
// yields exactly one error message. A document response carrying an empty
// sequence is the one case that yields no messages at all.
func Render(resp *domain.Response) []*domain.Message {
	messages, err := dispatch(resp)
	if err != nil {
		return []*domain.Message{errorMessage(err.Error())}
	}
	return messages
}

func dispatch(resp *domain.Response) ([]*domain.Message, error) {
	if resp == nil {
		return nil, fmt.Errorf("empty response")
	}

	switch resp.Type {
	case domain.TypeText:
		text, err := resp.Text()
		if err != nil {
			return nil, err
		}
		msg := botMessage(FormatText(text))
		msg.Audio = true
		return []*domain.Message{msg}, nil

	case domain.TypeDocument:
		entries, err := resp.Documents()
		if err != nil {
			return nil, err
		}
		messages := make([]*domain.Message, 0, len(entries))
		for _, entry := range entries {
			messages = append(messages, botMessage(documentHTML(entry)))
		}
		return messages, nil

	case domain.TypeVisualization:
		viz, err := resp.Visualization()
		if err != nil {
			return nil, err
		}
		if viz.Status != "success" {
			if viz.Message != "" {
				return nil, fmt.Errorf("visualization failed: %s", viz.Message)
			}
			return nil, fmt.Errorf("visualization failed")
		}
		body := FormatText(viz.Message)
		if viz.Image != "" {
			body += `<img src="` + viz.Image + `" alt="visualization">`
		}
		return []*domain.Message{botMessage(body)}, nil

	case domain.TypeChartAnalysis:
		analysis, err := resp.ChartAnalysis()
		if err != nil {
			return nil, err
		}
		pretty, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("%w: chart analysis: %v", domain.ErrBadShape, err)
		}
		body := "<pre>" + html.EscapeString(string(pretty)) + "</pre>"
		return []*domain.Message{botMessage(body)}, nil

	case domain.TypeError:
		text, err := resp.ErrorText()
		if err != nil {
			return nil, err
		}
		return []*domain.Message{errorMessage(text)}, nil

	default:
		return nil, fmt.Errorf("unrecognized response type %q", resp.Type)
	}
}

// documentHTML is the fixed template for one document entry
func documentHTML(entry domain.DocumentEntry) string {
	content := strings.ReplaceAll(html.EscapeString(entry.PageContent), "\n", "<br>")
	return "<div class=\"doc-result\"><strong>" + html.EscapeString(entry.Filename) +
		"</strong><br>" + content + "</div>"
}

func botMessage(body string) *domain.Message {
	return &domain.Message{
		Role:     domain.RoleBot,
		Body:     body,
		Feedback: true,
	}
}

func errorMessage(body string) *domain.Message {
	return &domain.Message{
		Role: domain.RoleError,
		Body: body,
	}
}
