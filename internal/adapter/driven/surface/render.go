package surface

import (
	"bytes"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Alert bodies are short service-generated text: line breaks are kept as
// written, raw HTML is never passed through, and only inline formatting,
// lists and links survive sanitizing.
var (
	alertMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Strikethrough, extension.Linkify),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
	)
	alertPolicy = newAlertPolicy()
)

func newAlertPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "em", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderBody converts an alert or notification body to sanitized HTML.
// Returns empty string for empty input.
func RenderBody(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := alertMarkdown.Convert([]byte(src), &buf); err != nil {
		return alertPolicy.Sanitize(html.EscapeString(src))
	}
	return alertPolicy.Sanitize(buf.String())
}

// RenderAlert renders heading as an escaped <h2> above the rendered body.
// An empty heading is omitted.
func RenderAlert(heading, body string) string {
	rendered := RenderBody(body)
	if heading == "" {
		return rendered
	}
	return "<h2>" + html.EscapeString(heading) + "</h2>\n" + rendered
}
