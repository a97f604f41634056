// Package export writes chat transcripts to files.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperjump/docassist/internal/models"
)

// Exporter writes a transcript in one format.
type Exporter interface {
	Export(t *models.Transcript, w io.Writer) error
	Extension() string
}

// NewExporter creates an exporter for format.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// FormatForPath returns the format implied by the extension of path, or fallback.
func FormatForPath(path, fallback string) string {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		if _, err := NewExporter(ext); err == nil {
			return ext
		}
	}
	return fallback
}

// DefaultFileName names an export of t taken at now.
func DefaultFileName(t *models.Transcript, ext string, now time.Time) string {
	id := t.SessionID
	if id == "" {
		id = "chat"
	}
	return fmt.Sprintf("%s-%s.%s", id, now.Format("20060102-150405"), ext)
}

// WriteFile exports t to path, creating parent directories. An empty path writes
// DefaultFileName into dir. It returns the path written.
func WriteFile(t *models.Transcript, path, dir, format string, now time.Time) (string, error) {
	exp, err := NewExporter(FormatForPath(path, format))
	if err != nil {
		return "", err
	}
	if path == "" {
		path = filepath.Join(dir, DefaultFileName(t, exp.Extension(), now))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := exp.Export(t, f); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to export transcript: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
