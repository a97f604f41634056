// Package cli provides terminal rendering for docassist.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/render"
)

// OutputFormat is the format for explanation output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputHTML is an HTML fragment.
	OutputHTML OutputFormat = "html"
)

// ParseOutputFormat validates s.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputJSON, OutputHTML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json, html)", s)
	}
}

// WriteExplanation writes e to w in the given format.
func WriteExplanation(w io.Writer, e *models.Explanation, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	case OutputHTML:
		out, err := render.ExplanationHTML(e)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		writeExplanationText(w, e)
		return nil
	}
}

func writeExplanationText(w io.Writer, e *models.Explanation) {
	fmt.Fprintf(w, "\n%s\n", e.DocumentType)
	if e.FileName != "" {
		fmt.Fprintf(w, "File: %s\n", e.FileName)
	}
	fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
	for _, p := range render.Paragraphs(e.Explanation) {
		fmt.Fprintf(w, "%s\n\n", strings.ReplaceAll(p, "**", ""))
	}
}

// Truncate truncates s to maxLen runes and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
