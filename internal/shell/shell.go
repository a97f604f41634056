// Package shell is the interactive line interface of docassist. Slash commands map to controller
// actions and any other line is sent as a chat message.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/controller"
	"github.com/hyperjump/docassist/internal/export"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/upload"
	"github.com/hyperjump/docassist/pkg/utils"
)

// UnexpectedErrorMessage is shown when a command panics.
const UnexpectedErrorMessage = "An unexpected error occurred. Please try again."

// Controller is the part of *controller.Controller the shell drives.
type Controller interface {
	SubmitFile(ctx context.Context, f upload.File) error
	RequestExplanation(ctx context.Context) error
	RequestChatSession(ctx context.Context) error
	SendChatMessage(text string) error
	ClearChat() error
	CloseChat() error
	Back() error
	ResetSession()
	Snapshot() controller.Snapshot
}

// View prints notices that do not come from a controller transition.
type View interface {
	Notice(kind controller.StatusKind, text string)
	WriteStatus(snap controller.Snapshot)
}

// Shell reads commands from in and drives a Controller.
type Shell struct {
	ctrl         Controller
	view         View
	in           io.Reader
	out          io.Writer
	prompt       string
	exportDir    string
	exportFormat string
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) { s.logger = l }
}

// WithPrompt sets the prompt printed before each line. Empty disables it.
func WithPrompt(p string) Option {
	return func(s *Shell) { s.prompt = p }
}

// WithExport sets where /save writes when no path is given and the default format.
func WithExport(dir, format string) Option {
	return func(s *Shell) {
		s.exportDir = dir
		s.exportFormat = format
	}
}

// WithClock replaces time.Now for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Shell) { s.now = now }
}

// New returns a shell reading from in. Help output goes to out.
func New(ctrl Controller, view View, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		ctrl:         ctrl,
		view:         view,
		in:           in,
		out:          out,
		prompt:       "> ",
		exportDir:    ".",
		exportFormat: "md",
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = utils.OrNop(s.logger)
	return s
}

// Run reads lines until EOF, /quit or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(s.in)
		sc.Buffer(make([]byte, 64*1024), 1024*1024)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-done:
				return
			}
		}
		errc <- sc.Err()
	}()

	s.WriteHelp()
	for {
		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-errc
			}
			if s.Execute(ctx, line) {
				return nil
			}
		}
	}
}

// Execute runs one line and reports whether the shell should exit.
func (s *Shell) Execute(ctx context.Context, line string) (quit bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("shell command panicked", zap.Any("panic", r), zap.String("line", line))
			s.view.Notice(controller.StatusError, UnexpectedErrorMessage)
			quit = false
		}
	}()

	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.report(s.ctrl.SendChatMessage(line), "Start a chat with /chat before sending messages.")
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(name) {
	case "/upload":
		if arg == "" {
			s.view.Notice(controller.StatusError, "Usage: /upload <path>")
			return false
		}
		s.SubmitPath(ctx, arg)
	case "/explain":
		s.report(s.ctrl.RequestExplanation(ctx), "Upload a document first, then use /explain.")
	case "/chat":
		s.report(s.ctrl.RequestChatSession(ctx), "Upload a document first, then use /chat.")
	case "/clear":
		s.report(s.ctrl.ClearChat(), "There is no open chat to clear.")
	case "/close":
		s.report(s.ctrl.CloseChat(), "There is no open chat to close.")
	case "/back":
		s.report(s.ctrl.Back(), "Nothing to go back from.")
	case "/new":
		s.ctrl.ResetSession()
	case "/save":
		s.save(arg)
	case "/status":
		s.view.WriteStatus(s.ctrl.Snapshot())
	case "/help":
		s.WriteHelp()
	case "/quit", "/exit":
		return true
	default:
		s.view.Notice(controller.StatusError, fmt.Sprintf("Unknown command: %s. Type /help for commands.", name))
	}
	return false
}

// SubmitPath uploads the file at path. It is also the entry point of the drop directory.
func (s *Shell) SubmitPath(ctx context.Context, path string) {
	path = CleanPath(path)
	f, err := upload.FromPath(path)
	if err != nil {
		s.logger.Debug("cannot open upload", zap.String("path", path), zap.Error(err))
		s.view.Notice(controller.StatusError, fmt.Sprintf("Cannot read %s: %s", filepath.Base(path), describeOpenError(err)))
		return
	}
	s.report(s.ctrl.SubmitFile(ctx, f), "")
}

func (s *Shell) save(path string) {
	snap := s.ctrl.Snapshot()
	if snap.Transcript == nil || snap.Transcript.Len() == 0 {
		s.view.Notice(controller.StatusError, "There is no chat transcript to save.")
		return
	}
	if path != "" {
		path = CleanPath(path)
	}
	written, err := export.WriteFile(snap.Transcript, path, s.exportDir, s.exportFormat, s.now())
	if err != nil {
		s.logger.Warn("transcript export failed", zap.Error(err))
		s.view.Notice(controller.StatusError, err.Error())
		return
	}
	s.view.Notice(controller.StatusSuccess, "Transcript saved to "+written)
}

// report shows err unless the controller already rendered it.
func (s *Shell) report(err error, invalidHint string) {
	var (
		valErr  *models.ValidationError
		reqErr  *models.RequestError
		connErr *models.ConnectionError
	)
	switch {
	case err == nil,
		errors.Is(err, controller.ErrSuperseded),
		errors.Is(err, controller.ErrEmptyMessage),
		errors.As(err, &valErr),
		errors.As(err, &reqErr),
		errors.As(err, &connErr):
	case errors.Is(err, controller.ErrBusy):
		s.view.Notice(controller.StatusInfo, "Please wait for the current request to finish.")
	case errors.Is(err, controller.ErrCoolingDown):
		s.view.Notice(controller.StatusInfo, "Please wait a moment before sending another message.")
	case errors.Is(err, controller.ErrInvalidState):
		if invalidHint == "" {
			invalidHint = "That action is not available right now."
		}
		s.view.Notice(controller.StatusInfo, invalidHint)
	default:
		s.logger.Debug("command failed", zap.Error(err))
		s.view.Notice(controller.StatusError, models.UserMessage(err))
	}
}

// WriteHelp prints the command list.
func (s *Shell) WriteHelp() {
	fmt.Fprint(s.out, `Commands:
  /upload <path>   upload a PDF, TXT, JPG or JPEG document
  /explain         explain the uploaded document
  /chat            start a chat about the uploaded document
  /clear           clear the chat transcript
  /close, /back    leave the explanation or chat
  /new             discard the document and start over
  /save [path]     export the chat transcript (.md, .json, .jsonl, .yaml)
  /status          show the current session
  /help            show this list
  /quit            exit
While chatting, any other line is sent as a question.
`)
}

// CleanPath undoes the quoting terminals add to dragged-in paths and expands a leading ~.
func CleanPath(p string) string {
	p = strings.TrimSpace(p)
	if len(p) >= 2 {
		if (p[0] == '"' && p[len(p)-1] == '"') || (p[0] == '\'' && p[len(p)-1] == '\'') {
			return expandHome(p[1 : len(p)-1])
		}
	}
	p = strings.ReplaceAll(p, `\ `, " ")
	return expandHome(p)
}

func expandHome(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	return p
}

func describeOpenError(err error) string {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "file not found"
	case errors.Is(err, os.ErrPermission):
		return "permission denied"
	default:
		return err.Error()
	}
}
