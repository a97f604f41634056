package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hyperjump/docassist/internal/controller"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/render"
)

// TypingText is shown while a reply is pending.
const TypingText = "Analyzing your question..."

type styles struct {
	success   lipgloss.Style
	failure   lipgloss.Style
	info      lipgloss.Style
	hint      lipgloss.Style
	docType   lipgloss.Style
	meta      lipgloss.Style
	bold      lipgloss.Style
	paragraph lipgloss.Style
	user      lipgloss.Style
	assistant lipgloss.Style
	system    lipgloss.Style
	typing    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		success: r.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true),
		failure: r.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true),
		info: r.NewStyle().
			Foreground(lipgloss.Color("39")),
		hint: r.NewStyle().
			Foreground(lipgloss.Color("243")),
		docType: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1),
		meta: r.NewStyle().
			Foreground(lipgloss.Color("243")).
			Padding(0, 1),
		bold: r.NewStyle().Bold(true),
		paragraph: r.NewStyle().
			Padding(0, 2).
			Width(88),
		user: r.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true),
		assistant: r.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true),
		system: r.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true),
		typing: r.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true),
	}
}

// panelHints tell the user which commands the visible panel accepts.
var panelHints = map[models.Panel]string{
	models.PanelNone:    "Drop a PDF, TXT, JPG or JPEG file into the drop folder, or use /upload <path>.",
	models.PanelActions: "Choose an action: /explain, /chat, or /new for another document.",
	models.PanelResults: "/back returns to the actions, /new starts over.",
	models.PanelChat:    "Ask a question about your document. /clear, /close, /save [path].",
}

// TerminalView renders controller output as styled lines on a writer.
type TerminalView struct {
	mu        sync.Mutex
	w         io.Writer
	st        styles
	panel     models.Panel
	shown     int
	showHints bool
}

var _ controller.View = (*TerminalView)(nil)

// NewTerminalView returns a view writing to w. Colors are used only when w is a terminal.
func NewTerminalView(w io.Writer) *TerminalView {
	return &TerminalView{
		w:         w,
		st:        newStyles(lipgloss.NewRenderer(w)),
		panel:     models.PanelNone,
		showHints: true,
	}
}

// SetHints toggles the panel hint lines.
func (v *TerminalView) SetHints(on bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showHints = on
}

func (v *TerminalView) println(s string) {
	fmt.Fprintln(v.w, s)
}

// Notice prints a line outside of any controller transition.
func (v *TerminalView) Notice(kind controller.StatusKind, text string) {
	v.ShowStatus(kind, text)
}

func (v *TerminalView) ShowStatus(kind controller.StatusKind, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch kind {
	case controller.StatusSuccess:
		v.println(v.st.success.Render("✓ " + text))
	case controller.StatusError:
		v.println(v.st.failure.Render("✗ " + text))
	default:
		v.println(v.st.info.Render("• " + text))
	}
}

func (v *TerminalView) ShowState(_ models.State, panel models.Panel) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if panel == v.panel {
		return
	}
	v.panel = panel
	if hint, ok := panelHints[panel]; ok && v.showHints {
		v.println(v.st.hint.Render(hint))
	}
}

func (v *TerminalView) ShowProcessing(active bool) {
	if !active {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.println(v.st.hint.Render("Processing..."))
}

func (v *TerminalView) ShowExplanation(e *models.Explanation) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.println("")
	v.println(v.st.docType.Render(e.DocumentType))
	if e.FileName != "" {
		v.println(v.st.meta.Render("File: " + e.FileName))
	}
	v.println("")
	for _, p := range render.Paragraphs(e.Explanation) {
		var b strings.Builder
		for _, span := range render.Spans(p) {
			if span.Bold {
				b.WriteString(v.st.bold.Render(span.Text))
			} else {
				b.WriteString(span.Text)
			}
		}
		v.println(v.st.paragraph.Render(b.String()))
		v.println("")
	}
}

func (v *TerminalView) ShowMessage(m models.Message) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown++
	switch m.Sender {
	case models.SenderUser:
		v.println(v.st.user.Render("You: ") + m.Text)
	case models.SenderAssistant:
		v.println(v.st.assistant.Render("Assistant: ") + m.Text)
	default:
		v.println(v.st.system.Render(m.Text))
	}
}

func (v *TerminalView) ShowTyping(active bool) {
	if !active {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.println(v.st.typing.Render(TypingText))
}

func (v *TerminalView) ResetTranscript() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.shown == 0 {
		return
	}
	v.shown = 0
	v.println(v.st.hint.Render("────────────"))
}

// ClearInput is a no-op: the shell has already consumed the line.
func (v *TerminalView) ClearInput() {}

// WriteStatus prints the /status summary of snap.
func (v *TerminalView) WriteStatus(snap controller.Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.w, "State:      %s\n", snap.State)
	fmt.Fprintf(v.w, "Panel:      %s\n", snap.Panel)
	fmt.Fprintf(v.w, "Processing: %t\n", snap.Processing)
	if snap.Session == nil {
		fmt.Fprintf(v.w, "Session:    none\n")
		return
	}
	fmt.Fprintf(v.w, "Session:    %s\n", snap.Session.ID)
	fmt.Fprintf(v.w, "File:       %s (%s)\n", Truncate(snap.Session.FileName, 60), render.FormatFileSize(snap.Session.FileSizeBytes))
	if snap.Panel == models.PanelChat {
		fmt.Fprintf(v.w, "Connected:  %t\n", snap.Connected)
		if snap.Transcript != nil {
			fmt.Fprintf(v.w, "Messages:   %d\n", snap.Transcript.Len())
		}
	}
}
