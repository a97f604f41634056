package backend

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/canned"
	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/upload"
	"github.com/hyperjump/docassist/pkg/utils"
)

// LocalDelays are the simulated latencies of the fallback backend.
type LocalDelays struct {
	Upload   time.Duration
	Explain  time.Duration
	ReplyMin time.Duration
	ReplyMax time.Duration
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// LocalBackend fabricates every response on the client. Session ids are generated locally.
type LocalBackend struct {
	delays    LocalDelays
	responder canned.Responder
	explainer canned.Explainer
	newID     func() string
	sleep     SleepFunc
	jitter    func(min, max time.Duration) time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[string]*localSession
}

type localSession struct {
	session   models.Session
	chatReady bool
}

// LocalOption configures a LocalBackend.
type LocalOption func(*LocalBackend)

// WithResponder replaces the keyword responder.
func WithResponder(r canned.Responder) LocalOption {
	return func(b *LocalBackend) {
		b.responder = r
	}
}

// WithExplainer replaces the random explainer.
func WithExplainer(e canned.Explainer) LocalOption {
	return func(b *LocalBackend) {
		b.explainer = e
	}
}

// WithSessionIDs replaces the session id generator.
func WithSessionIDs(next func() string) LocalOption {
	return func(b *LocalBackend) {
		b.newID = next
	}
}

// WithSleep replaces the delay primitive.
func WithSleep(s SleepFunc) LocalOption {
	return func(b *LocalBackend) {
		b.sleep = s
	}
}

// WithLocalLogger sets the logger.
func WithLocalLogger(l *zap.Logger) LocalOption {
	return func(b *LocalBackend) {
		b.logger = l
	}
}

// NewLocalBackend returns a fallback backend with the given delays.
func NewLocalBackend(delays LocalDelays, opts ...LocalOption) *LocalBackend {
	b := &LocalBackend{
		delays:    delays,
		responder: canned.NewKeywordResponder(nil),
		explainer: canned.NewRandomExplainer(nil),
		newID:     func() string { return canned.NewSessionID(nil) },
		sleep:     SleepContext,
		jitter:    uniformJitter,
		sessions:  make(map[string]*localSession),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = utils.OrNop(b.logger)
	return b
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func uniformJitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}

func notFound(op string) error {
	return &models.RequestError{Op: op, StatusCode: http.StatusNotFound, Detail: "File not found"}
}

// Upload registers a local session for f after the simulated delay.
func (b *LocalBackend) Upload(ctx context.Context, f upload.File) (*models.UploadResult, error) {
	if err := b.sleep(ctx, b.delays.Upload); err != nil {
		return nil, &models.RequestError{Op: models.OpUpload, Err: err}
	}
	id := b.newID()
	b.mu.Lock()
	b.sessions[id] = &localSession{session: models.Session{ID: id, FileName: f.Name, FileSizeBytes: f.Size}}
	b.mu.Unlock()
	b.logger.Debug("local session created", zap.String("session_id", id), zap.String("filename", f.Name))
	return &models.UploadResult{
		Message:   "File uploaded successfully",
		SessionID: id,
		FileName:  f.Name,
		FileSize:  f.Size,
	}, nil
}

func (b *LocalBackend) lookup(id string) (*localSession, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[id]
	return s, ok
}

// Explain returns one of the canned explanations.
func (b *LocalBackend) Explain(ctx context.Context, sessionID string) (*models.Explanation, error) {
	s, ok := b.lookup(sessionID)
	if !ok {
		return nil, notFound(models.OpExplain)
	}
	if err := b.sleep(ctx, b.delays.Explain); err != nil {
		return nil, &models.RequestError{Op: models.OpExplain, Err: err}
	}
	e := b.explainer(s.session.FileName)
	e.SessionID = sessionID
	return &e, nil
}

// CreateChat marks the session chat-ready.
func (b *LocalBackend) CreateChat(_ context.Context, sessionID string) (*models.ChatSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.sessions[sessionID]
	if !ok {
		return nil, notFound(models.OpCreateChat)
	}
	s.chatReady = true
	return &models.ChatSession{
		Message:   "Chat session created successfully",
		SessionID: sessionID,
		FileName:  s.session.FileName,
	}, nil
}

// DeleteSession forgets the session. Unknown ids are not an error.
func (b *LocalBackend) DeleteSession(_ context.Context, sessionID string) error {
	b.mu.Lock()
	delete(b.sessions, sessionID)
	b.mu.Unlock()
	return nil
}

// Sessions returns the number of live local sessions.
func (b *LocalBackend) Sessions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sessions)
}

// Dial opens a simulated channel that answers every message with the responder.
func (b *LocalBackend) Dial(_ context.Context, sessionID string, h ChatHandler) (Conn, error) {
	s, ok := b.lookup(sessionID)
	if !ok || !s.chatReady {
		return nil, &models.ConnectionError{SessionID: sessionID, Err: errors.New("no chat session found")}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &localConn{backend: b, handler: h, ctx: ctx, cancel: cancel, sessionID: sessionID}, nil
}

type localConn struct {
	backend   *LocalBackend
	handler   ChatHandler
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
}

// Send schedules a canned reply after a random delay. Handler callbacks run on their own goroutine.
func (c *localConn) Send(text string) error {
	if c.ctx.Err() != nil {
		return &models.ConnectionError{SessionID: c.sessionID, Err: errors.New("connection closed")}
	}
	typing, _ := c.handler.(TypingHandler)
	delay := c.backend.jitter(c.backend.delays.ReplyMin, c.backend.delays.ReplyMax)
	go func() {
		if typing != nil {
			typing.OnTyping(true)
		}
		err := c.backend.sleep(c.ctx, delay)
		if typing != nil {
			typing.OnTyping(false)
		}
		if err != nil {
			return
		}
		c.handler.OnMessage(c.backend.responder(text))
	}()
	return nil
}

func (c *localConn) Close() error {
	c.cancel()
	return nil
}
