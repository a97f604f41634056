// Package render formats sizes and explanation text for display.
package render

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"

	"github.com/hyperjump/docassist/internal/models"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize returns a human-readable size such as "2 MB" or "1.5 KB".
// The unit is the largest power of 1024 not exceeding bytes; the value is truncated to two decimals.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	i := 0
	div := int64(1)
	for i < len(sizeUnits)-1 && bytes >= div*1024 {
		div *= 1024
		i++
	}
	v := math.Trunc(float64(bytes)/float64(div)*100) / 100
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + sizeUnits[i]
}

// Paragraphs splits text on blank lines and drops empty paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Span is a run of explanation text with uniform emphasis.
type Span struct {
	Text string
	Bold bool
}

// Spans splits a paragraph on "**" markers. An unmatched marker is kept as text.
func Spans(paragraph string) []Span {
	parts := strings.Split(paragraph, "**")
	if len(parts)%2 == 0 {
		// odd number of markers: glue the dangling one back onto the last part
		parts[len(parts)-2] += "**" + parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}
	spans := make([]Span, 0, len(parts))
	for i, p := range parts {
		if p == "" {
			continue
		}
		spans = append(spans, Span{Text: p, Bold: i%2 == 1})
	}
	return spans
}

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
		htmlrenderer.WithXHTML(),
	),
)

// MarkdownHTML renders markdown text to an HTML fragment.
func MarkdownHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// ExplanationHTML renders an explanation as an HTML fragment: a heading with the document type
// followed by one paragraph per blank-line separated block of the body.
func ExplanationHTML(e *models.Explanation) (string, error) {
	body, err := MarkdownHTML(strings.ReplaceAll(e.Explanation, "\r\n", "\n"))
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(`<section class="explanation">` + "\n")
	fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(e.DocumentType))
	if e.FileName != "" {
		fmt.Fprintf(&b, "<p class=\"file\">%s</p>\n", html.EscapeString(e.FileName))
	}
	b.WriteString(body)
	b.WriteString("</section>\n")
	return b.String(), nil
}
