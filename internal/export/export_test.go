package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/docassist/internal/models"
)

var at = time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)

func sampleTranscript() *models.Transcript {
	tr := models.NewTranscript(&models.Session{ID: "DOC-ABC123", FileName: "contract.pdf"})
	tr.Append(models.Message{Text: "Hello! I've analyzed your document.", Sender: models.SenderAssistant, At: at})
	tr.Append(models.Message{Text: "Who are the **parties**?", Sender: models.SenderUser, At: at})
	tr.Append(models.Message{Text: "Connection closed.", Sender: models.SenderSystem})
	return tr
}

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		wantErr bool
	}{
		{"md", "md", false},
		{"markdown", "md", false},
		{"json", "json", false},
		{"JSONL", "jsonl", false},
		{"yml", "yaml", false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		exp, err := NewExporter(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewExporter(%q) error = %v", tt.format, err)
			continue
		}
		if err == nil && exp.Extension() != tt.wantExt {
			t.Errorf("NewExporter(%q).Extension() = %q, want %q", tt.format, exp.Extension(), tt.wantExt)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if got := FormatForPath("out/chat.jsonl", "md"); got != "jsonl" {
		t.Errorf("got %q", got)
	}
	if got := FormatForPath("out/chat.txt", "md"); got != "md" {
		t.Errorf("unknown extension should fall back, got %q", got)
	}
	if got := FormatForPath("", "yaml"); got != "yaml" {
		t.Errorf("empty path should fall back, got %q", got)
	}
}

func TestMarkdownExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Chat about contract.pdf",
		"**Session:** DOC-ABC123",
		"**Messages:** 3",
		"**You:** (2024-03-01 10:30:00)",
		`Who are the \*\*parties\*\*?`,
		"_Connection closed._",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
}

func TestJSONExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatal(err)
	}
	var decoded models.Transcript
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.SessionID != "DOC-ABC123" || len(decoded.Messages) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestJSONLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatal(err)
	}
	sc := bufio.NewScanner(&buf)
	lines := 0
	for sc.Scan() {
		var obj map[string]interface{}
		if err := json.Unmarshal(sc.Bytes(), &obj); err != nil {
			t.Fatalf("line %d is not JSON: %v", lines+1, err)
		}
		if obj["session_id"] != "DOC-ABC123" {
			t.Errorf("line %d session_id = %v", lines+1, obj["session_id"])
		}
		lines++
	}
	if lines != 3 {
		t.Errorf("got %d lines, want 3", lines)
	}
}

func TestYAMLExporter(t *testing.T) {
	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(sampleTranscript(), &buf); err != nil {
		t.Fatal(err)
	}
	var decoded models.Transcript
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if decoded.FileName != "contract.pdf" || len(decoded.Messages) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Messages[1].Sender != models.SenderUser {
		t.Errorf("sender = %q", decoded.Messages[1].Sender)
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteFile(sampleTranscript(), "", filepath.Join(dir, "transcripts"), "md", at)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "transcripts", "DOC-ABC123-20240301-103000.md"); path != want {
		t.Errorf("path = %s, want %s", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export not written: %v", err)
	}

	explicit := filepath.Join(dir, "chat.json")
	path, err = WriteFile(sampleTranscript(), explicit, dir, "md", at)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(path)
	if !json.Valid(data) {
		t.Errorf("extension should select JSON, got:\n%s", data)
	}

	if _, err := WriteFile(sampleTranscript(), "", dir, "csv", at); err == nil {
		t.Error("unsupported format should fail")
	}
}
