// Package controller implements the client session state machine: upload, explanation and chat
// for one document at a time, driven by user actions and backend completions.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/backend"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/render"
	"github.com/hyperjump/docassist/internal/upload"
	"github.com/hyperjump/docassist/pkg/utils"
)

var (
	// ErrBusy is returned when a request is already in flight.
	ErrBusy = errors.New("a request is already in progress")
	// ErrInvalidState is returned when the operation is not available in the current state.
	ErrInvalidState = errors.New("operation not available in the current state")
	// ErrEmptyMessage is returned for chat messages that are blank after trimming.
	ErrEmptyMessage = errors.New("empty message")
	// ErrCoolingDown is returned when a chat message follows the previous one too quickly.
	ErrCoolingDown = errors.New("please wait before sending another message")
	// ErrSuperseded is returned when the session was reset while the request was in flight.
	ErrSuperseded = errors.New("request superseded by a session reset")
)

const (
	connectedMessage = "Connected to the document chat."
	closedMessage    = "Connection closed. Start a new chat to reconnect."
)

// Greeting is the assistant entry that opens every chat transcript.
func Greeting(fileName string) string {
	return fmt.Sprintf("Hello! I've analyzed your document %q. Feel free to ask me any questions about "+
		"its contents, key terms, obligations, or legal implications.", fileName)
}

// Options holds the tunables of a Controller.
type Options struct {
	Policy         upload.Policy
	RequestTimeout time.Duration
	SendCooldown   time.Duration
	BotPrefix      string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithClock replaces time.Now, used for the send cool-down.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns all session state. Every handler runs under one lock, so no two transitions
// interleave; network calls run with the lock released and are guarded by the processing flag.
type Controller struct {
	backend backend.Backend
	view    View
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	mu          sync.Mutex
	state       models.State
	session     *models.Session
	transcript  *models.Transcript
	explanation *models.Explanation
	processing  bool
	typing      bool
	conn        backend.Conn
	connGen     uint64
	epoch       uint64
	lastSend    time.Time

	deletes sync.WaitGroup
}

// New returns a controller in the Idle state.
func New(b backend.Backend, v View, opts Options, extra ...Option) *Controller {
	if v == nil {
		v = NopView{}
	}
	c := &Controller{
		backend: b,
		view:    v,
		opts:    opts,
		now:     time.Now,
		state:   models.StateIdle,
	}
	for _, opt := range extra {
		opt(c)
	}
	c.logger = utils.OrNop(c.logger)
	return c
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	State       models.State
	Panel       models.Panel
	Processing  bool
	Connected   bool
	Session     *models.Session
	Transcript  *models.Transcript
	Explanation *models.Explanation
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		State:      c.state,
		Panel:      c.state.Panel(),
		Processing: c.processing,
		Connected:  c.conn != nil,
		Transcript: c.transcript.Clone(),
	}
	if c.session != nil {
		sess := *c.session
		s.Session = &sess
	}
	if c.explanation != nil {
		e := *c.explanation
		s.Explanation = &e
	}
	return s
}

func (c *Controller) setState(s models.State) {
	c.state = s
	c.view.ShowState(s, s.Panel())
}

// begin marks a request in flight and returns the epoch it belongs to.
func (c *Controller) begin(s models.State, status string) uint64 {
	c.processing = true
	c.view.ShowProcessing(true)
	c.setState(s)
	if status != "" {
		c.view.ShowStatus(StatusInfo, status)
	}
	return c.epoch
}

// finish clears the processing flag unless a reset already did.
func (c *Controller) finish(epoch uint64) bool {
	if epoch != c.epoch {
		return false
	}
	c.processing = false
	c.view.ShowProcessing(false)
	return true
}

func (c *Controller) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) fail(err error) error {
	c.view.ShowStatus(StatusError, models.UserMessage(err))
	return err
}

// SubmitFile validates f and uploads it. A successful upload replaces the current session.
func (c *Controller) SubmitFile(ctx context.Context, f upload.File) error {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	if err := c.opts.Policy.Check(f); err != nil {
		defer c.mu.Unlock()
		return c.fail(err)
	}
	prev := c.state
	if prev == models.StateChatting {
		c.leaveChat()
		prev = models.StateReady
	}
	epoch := c.begin(models.StateUploading, fmt.Sprintf("Uploading %s...", f.Name))
	c.mu.Unlock()

	reqCtx, cancel := c.timeout(ctx)
	res, err := c.backend.Upload(reqCtx, f)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(epoch) {
		if err == nil {
			c.logger.Debug("discarding upload finished after reset", zap.String("session_id", res.SessionID))
			c.deleteAsync(res.SessionID)
		}
		return ErrSuperseded
	}
	if err != nil {
		c.setState(prev)
		return c.fail(err)
	}

	sess := res.Session()
	if sess.FileName == "" {
		sess.FileName = f.Name
	}
	if c.session != nil && c.session.ID != sess.ID {
		c.deleteAsync(c.session.ID)
	}
	c.session = sess
	c.explanation = nil
	c.setState(models.StateReady)
	c.view.ShowStatus(StatusSuccess, fmt.Sprintf("File %q uploaded successfully! (%s)",
		sess.FileName, render.FormatFileSize(sess.FileSizeBytes)))
	c.logger.Debug("session ready", zap.String("session_id", sess.ID))
	return nil
}

// RequestExplanation asks the backend to explain the current document.
func (c *Controller) RequestExplanation(ctx context.Context) error {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != models.StateReady {
		c.mu.Unlock()
		return ErrInvalidState
	}
	sess := *c.session
	epoch := c.begin(models.StateExplaining, "Analyzing document...")
	c.mu.Unlock()

	reqCtx, cancel := c.timeout(ctx)
	e, err := c.backend.Explain(reqCtx, sess.ID)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(epoch) {
		return ErrSuperseded
	}
	if err != nil {
		c.setState(models.StateReady)
		return c.fail(err)
	}
	if e.FileName == "" {
		e.FileName = sess.FileName
	}
	c.explanation = e
	c.setState(models.StateViewingExplanation)
	c.view.ShowExplanation(e)
	return nil
}

// RequestChatSession creates the chat session and opens its connection. A failed connection
// still enters Chatting; the failure is recorded in the transcript.
func (c *Controller) RequestChatSession(ctx context.Context) error {
	c.mu.Lock()
	if c.processing {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.state != models.StateReady {
		c.mu.Unlock()
		return ErrInvalidState
	}
	sess := *c.session
	epoch := c.begin(models.StateChatCreating, "Starting chat session...")
	c.mu.Unlock()

	reqCtx, cancel := c.timeout(ctx)
	defer cancel()
	_, err := c.backend.CreateChat(reqCtx, sess.ID)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		defer c.mu.Unlock()
		c.finish(epoch)
		c.setState(models.StateReady)
		return c.fail(err)
	}
	c.transcript = models.NewTranscript(&sess)
	c.view.ResetTranscript()
	c.setState(models.StateChatting)
	c.appendLocked(models.SenderAssistant, Greeting(sess.FileName))
	c.connGen++
	gen := c.connGen
	c.mu.Unlock()

	conn, err := c.backend.Dial(reqCtx, sess.ID, &connHandler{c: c, gen: gen})

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.finish(epoch) || gen != c.connGen {
		if conn != nil {
			_ = conn.Close()
		}
		if c.state == models.StateChatting && epoch == c.epoch {
			// the backend closed the channel before Dial returned
			return nil
		}
		return ErrSuperseded
	}
	if err != nil {
		c.logger.Debug("chat dial failed", zap.String("session_id", sess.ID), zap.Error(err))
		var connErr *models.ConnectionError
		if !errors.As(err, &connErr) {
			err = &models.ConnectionError{SessionID: sess.ID, Err: err}
		}
		c.appendLocked(models.SenderSystem, models.UserMessage(err))
		return err
	}
	c.conn = conn
	c.lastSend = time.Time{}
	c.appendLocked(models.SenderSystem, connectedMessage)
	return nil
}

// SendChatMessage transmits text on the open connection. Blank text, a closed connection and
// the cool-down window are no-ops reported through sentinel errors.
func (c *Controller) SendChatMessage(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != models.StateChatting || c.conn == nil {
		return ErrInvalidState
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	now := c.now()
	if !c.lastSend.IsZero() && now.Sub(c.lastSend) < c.opts.SendCooldown {
		return ErrCoolingDown
	}
	c.lastSend = now

	c.appendLocked(models.SenderUser, text)
	c.view.ClearInput()
	if err := c.conn.Send(text); err != nil {
		sessID := ""
		if c.session != nil {
			sessID = c.session.ID
		}
		var connErr *models.ConnectionError
		if !errors.As(err, &connErr) {
			err = &models.ConnectionError{SessionID: sessID, Err: err}
		}
		c.logger.Debug("chat send failed", zap.String("session_id", sessID), zap.Error(err))
		c.connGen++
		c.dropConn()
		c.appendLocked(models.SenderSystem, models.UserMessage(err))
		return err
	}
	return nil
}

// OnInboundMessage records a message pushed by the backend on the current connection.
func (c *Controller) OnInboundMessage(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inbound(text)
}

// OnConnectionClosed records that the current connection was closed by the backend.
func (c *Controller) OnConnectionClosed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.connClosed()
	}
}

// OnConnectionError records a failure of the current connection.
func (c *Controller) OnConnectionError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.connFailed(err)
	}
}

func (c *Controller) inbound(text string) {
	if c.state != models.StateChatting || c.transcript == nil {
		return
	}
	if c.opts.BotPrefix != "" {
		text = strings.TrimPrefix(text, c.opts.BotPrefix)
	}
	c.appendLocked(models.SenderAssistant, text)
}

func (c *Controller) connClosed() {
	if c.state != models.StateChatting {
		return
	}
	c.connGen++
	c.dropConn()
	c.appendLocked(models.SenderSystem, closedMessage)
}

func (c *Controller) connFailed(err error) {
	if c.state != models.StateChatting {
		return
	}
	sessID := ""
	if c.session != nil {
		sessID = c.session.ID
	}
	var connErr *models.ConnectionError
	if !errors.As(err, &connErr) {
		err = &models.ConnectionError{SessionID: sessID, Err: err}
	}
	c.logger.Debug("chat connection failed", zap.String("session_id", sessID), zap.Error(err))
	c.connGen++
	c.dropConn()
	c.appendLocked(models.SenderSystem, models.UserMessage(err))
}

// ClearChat empties the transcript and shows the greeting again. The connection stays open.
func (c *Controller) ClearChat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != models.StateChatting {
		return ErrInvalidState
	}
	c.transcript.Reset()
	c.view.ResetTranscript()
	c.appendLocked(models.SenderAssistant, Greeting(c.transcript.FileName))
	return nil
}

// CloseChat closes the connection and returns to Ready. The server-side session is kept.
func (c *Controller) CloseChat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != models.StateChatting {
		return ErrInvalidState
	}
	c.leaveChat()
	c.setState(models.StateReady)
	return nil
}

// Back returns from the explanation or chat panel to Ready.
func (c *Controller) Back() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case models.StateViewingExplanation:
		c.setState(models.StateReady)
	case models.StateChatting:
		c.leaveChat()
		c.setState(models.StateReady)
	default:
		return ErrInvalidState
	}
	return nil
}

// ResetSession tears everything down and returns to Idle. Deletion of the server-side session
// runs in the background and its failure is only logged.
func (c *Controller) ResetSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.leaveChat()
	if c.session != nil {
		c.deleteAsync(c.session.ID)
	}
	c.session = nil
	c.explanation = nil
	c.lastSend = time.Time{}
	if c.processing {
		c.processing = false
		c.view.ShowProcessing(false)
	}
	c.setState(models.StateIdle)
}

// Close resets the session and waits for pending deletions.
func (c *Controller) Close() {
	c.ResetSession()
	c.deletes.Wait()
}

// leaveChat drops the connection and the transcript.
func (c *Controller) leaveChat() {
	c.connGen++
	c.dropConn()
	if c.transcript != nil {
		c.transcript = nil
		c.view.ResetTranscript()
	}
}

func (c *Controller) dropConn() {
	if c.typing {
		c.typing = false
		c.view.ShowTyping(false)
	}
	if c.conn == nil {
		return
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Debug("chat close", zap.Error(err))
	}
	c.conn = nil
}

func (c *Controller) appendLocked(sender models.Sender, text string) {
	m := models.Message{Text: text, Sender: sender, At: c.now()}
	c.transcript.Append(m)
	c.view.ShowMessage(m)
}

func (c *Controller) deleteAsync(sessionID string) {
	c.deletes.Add(1)
	go func() {
		defer c.deletes.Done()
		ctx, cancel := c.timeout(context.Background())
		defer cancel()
		if err := c.backend.DeleteSession(ctx, sessionID); err != nil {
			c.logger.Warn("session delete failed", zap.String("session_id", sessionID), zap.Error(err))
			return
		}
		c.logger.Debug("session deleted", zap.String("session_id", sessionID))
	}()
}

// connHandler routes events of one connection; events of superseded connections are dropped.
type connHandler struct {
	c   *Controller
	gen uint64
}

func (h *connHandler) current() bool {
	return h.gen == h.c.connGen
}

func (h *connHandler) OnMessage(text string) {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.current() {
		h.c.inbound(text)
	}
}

func (h *connHandler) OnClosed() {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.current() {
		h.c.connClosed()
	}
}

func (h *connHandler) OnError(err error) {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if h.current() {
		h.c.connFailed(err)
	}
}

func (h *connHandler) OnTyping(active bool) {
	h.c.mu.Lock()
	defer h.c.mu.Unlock()
	if !h.current() || h.c.state != models.StateChatting || h.c.typing == active {
		return
	}
	h.c.typing = active
	h.c.view.ShowTyping(active)
}
