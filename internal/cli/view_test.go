package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hyperjump/docassist/internal/controller"
	"github.com/hyperjump/docassist/internal/models"
)

func TestTerminalView_statusAndPanels(t *testing.T) {
	var buf bytes.Buffer
	v := NewTerminalView(&buf)

	v.ShowStatus(controller.StatusSuccess, `File "contract.pdf" uploaded successfully! (2 MB)`)
	v.ShowStatus(controller.StatusError, "Upload failed")
	v.ShowState(models.StateReady, models.PanelActions)
	v.ShowState(models.StateExplaining, models.PanelActions)

	out := buf.String()
	if !strings.Contains(out, `✓ File "contract.pdf" uploaded successfully! (2 MB)`) {
		t.Errorf("missing success line:\n%s", out)
	}
	if !strings.Contains(out, "✗ Upload failed") {
		t.Errorf("missing error line:\n%s", out)
	}
	if strings.Count(out, panelHints[models.PanelActions]) != 1 {
		t.Errorf("actions hint should be printed once per panel change:\n%s", out)
	}
}

func TestTerminalView_explanation(t *testing.T) {
	var buf bytes.Buffer
	v := NewTerminalView(&buf)
	v.ShowExplanation(&models.Explanation{
		FileName:     "contract.pdf",
		DocumentType: "Service Agreement",
		Explanation:  "**Scope:** first\n\nsecond",
	})
	out := buf.String()
	for _, want := range []string{"Service Agreement", "File: contract.pdf", "Scope: first", "second"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestTerminalView_chat(t *testing.T) {
	var buf bytes.Buffer
	v := NewTerminalView(&buf)
	v.SetHints(false)
	v.ShowState(models.StateChatting, models.PanelChat)
	v.ShowMessage(models.Message{Text: "Who are the parties?", Sender: models.SenderUser})
	v.ShowTyping(true)
	v.ShowTyping(false)
	v.ShowMessage(models.Message{Text: "A and B.", Sender: models.SenderAssistant})
	v.ShowMessage(models.Message{Text: "Connection closed.", Sender: models.SenderSystem})
	v.ResetTranscript()
	v.ResetTranscript()

	out := buf.String()
	for _, want := range []string{"You: Who are the parties?", TypingText, "Assistant: A and B.", "Connection closed."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Count(out, TypingText) != 1 {
		t.Errorf("typing indicator should print once:\n%s", out)
	}
	if strings.Count(out, "────────────") != 1 {
		t.Errorf("an empty transcript reset prints nothing:\n%s", out)
	}
	if strings.Contains(out, panelHints[models.PanelChat]) {
		t.Errorf("hints disabled but printed:\n%s", out)
	}
}

func TestTerminalView_WriteStatus(t *testing.T) {
	var buf bytes.Buffer
	v := NewTerminalView(&buf)
	v.WriteStatus(controller.Snapshot{State: models.StateIdle, Panel: models.PanelNone})
	if !strings.Contains(buf.String(), "Session:    none") {
		t.Errorf("idle status:\n%s", buf.String())
	}

	buf.Reset()
	v.WriteStatus(controller.Snapshot{
		State:      models.StateChatting,
		Panel:      models.PanelChat,
		Connected:  true,
		Session:    &models.Session{ID: "DOC-ABC123", FileName: "contract.pdf", FileSizeBytes: 2097152},
		Transcript: &models.Transcript{Messages: []models.Message{{Text: "hi"}}},
	})
	out := buf.String()
	for _, want := range []string{"chatting", "DOC-ABC123", "contract.pdf (2 MB)", "Connected:  true", "Messages:   1"} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}
