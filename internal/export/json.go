package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/docassist/internal/models"
)

// JSONExporter exports transcripts in JSON format (pretty-printed)
type JSONExporter struct{}

// Export writes t as one JSON document
func (e *JSONExporter) Export(t *models.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

// JSONLExporter exports transcripts in JSONL format (one message per line)
type JSONLExporter struct{}

// Export writes one JSON object per message
func (e *JSONLExporter) Export(t *models.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, msg := range t.Messages {
		obj := map[string]interface{}{
			"session_id": t.SessionID,
			"sender":     msg.Sender,
			"text":       msg.Text,
		}
		if !msg.At.IsZero() {
			obj["at"] = msg.At.Format(time.RFC3339)
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}
	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
