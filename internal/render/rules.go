package render

import (
	"html"
	"regexp"
	"strings"
)

// rewriteRule is one step of the text-to-HTML conversion. Rules run in the
// order they are declared; each is a pure substitution over the whole text.
type rewriteRule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(match string) string
}

// textRules is the fixed rewrite pipeline for plain-text responses:
// the restricted "**Response:**" bullet convention first, then bare-URL
// linking, then line breaks. Order matters: the list rule consumes its own
// newlines before the line-break rule runs.
var textRules = []rewriteRule{
	{
		name:    "response-list",
		pattern: regexp.MustCompile(`\*\*Response:\*\*\n((?:- [^\n]*(?:\n|$))+)`),
		apply:   expandResponseList,
	},
	{
		// The optional href="/"> prefix captures URLs already inside an
		// anchor (the attribute itself, or the text right after the
		// opening tag) so they are left alone rather than wrapped twice.
		name:    "links",
		pattern: regexp.MustCompile(`(?:href="|">)?https?://[^\s<>"]+`),
		apply:   wrapLink,
	},
	{
		name:    "line-breaks",
		pattern: regexp.MustCompile(`\n`),
		apply:   func(string) string { return "<br>" },
	},
}

// FormatText converts a plain-text response body to HTML by applying the
// rewrite rules in declaration order.
func FormatText(text string) string {
	for _, rule := range textRules {
		text = rule.pattern.ReplaceAllStringFunc(text, rule.apply)
	}
	return text
}

func expandResponseList(match string) string {
	var b strings.Builder
	b.WriteString("<strong>Response:</strong><ul>")
	for _, line := range strings.Split(match, "\n") {
		if !strings.HasPrefix(line, "- ") {
			continue
		}
		b.WriteString("<li>")
		b.WriteString(strings.TrimPrefix(line, "- "))
		b.WriteString("</li>")
	}
	b.WriteString("</ul>")
	return b.String()
}

func wrapLink(match string) string {
	if strings.HasPrefix(match, `href="`) || strings.HasPrefix(match, `">`) {
		return match
	}
	return `<a href="` + match + `">` + match + `</a>`
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainText strips markup from a rendered body, for speech synthesis
func PlainText(body string) string {
	text := tagPattern.ReplaceAllString(body, " ")
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}
