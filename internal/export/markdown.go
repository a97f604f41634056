package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/docassist/internal/models"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

var senderTitles = map[models.Sender]string{
	models.SenderUser:      "You",
	models.SenderAssistant: "Assistant",
	models.SenderSystem:    "System",
}

// Export writes a header and one section per message
func (e *MarkdownExporter) Export(t *models.Transcript, w io.Writer) error {
	title := t.FileName
	if title == "" {
		title = t.SessionID
	}
	_, _ = fmt.Fprintf(w, "# Chat about %s\n\n", title)
	if t.SessionID != "" {
		_, _ = fmt.Fprintf(w, "**Session:** %s  \n", t.SessionID)
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range t.Messages {
		timestamp := ""
		if !msg.At.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.At.Format("2006-01-02 15:04:05"))
		}
		who, ok := senderTitles[msg.Sender]
		if !ok {
			who = string(msg.Sender)
		}
		text := escapeMarkdown(msg.Text)
		if msg.Sender == models.SenderSystem {
			text = "_" + text + "_"
		}
		if _, err := fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", who, timestamp, text); err != nil {
			return err
		}
		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}
	return nil
}

// escapeMarkdown escapes emphasis markers so message text renders literally
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
