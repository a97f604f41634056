package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/upload"
	"github.com/hyperjump/docassist/pkg/utils"
)

const (
	writeWait = 10 * time.Second
	// maxFrameSize bounds a single inbound chat frame.
	maxFrameSize = 1 << 20
)

// HTTPBackend relays requests to the remote document service.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
	dialer  *websocket.Dialer
	logger  *zap.Logger
}

// HTTPOption configures an HTTPBackend.
type HTTPOption func(*HTTPBackend)

// WithHTTPClient sets the client used for plain requests.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(b *HTTPBackend) {
		b.client = c
	}
}

// WithHTTPLogger sets the logger.
func WithHTTPLogger(l *zap.Logger) HTTPOption {
	return func(b *HTTPBackend) {
		b.logger = l
	}
}

// NewHTTPBackend returns a backend rooted at baseURL (http or https).
func NewHTTPBackend(baseURL string, opts ...HTTPOption) (*HTTPBackend, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	b := &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		dialer:  websocket.DefaultDialer,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = utils.OrNop(b.logger)
	return b, nil
}

// Upload posts f as the multipart field "file".
func (b *HTTPBackend) Upload(ctx context.Context, f upload.File) (*models.UploadResult, error) {
	src, err := f.Open()
	if err != nil {
		return nil, &models.RequestError{Op: models.OpUpload, Err: err}
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		defer src.Close()
		part, err := mw.CreateFormFile("file", f.Name)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	defer pr.Close()

	var out models.UploadResult
	if err := b.do(ctx, models.OpUpload, http.MethodPost, "/upload", pr, mw.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	if out.FileName == "" {
		out.FileName = f.Name
	}
	return &out, nil
}

// Explain posts to /explain/{id}.
func (b *HTTPBackend) Explain(ctx context.Context, sessionID string) (*models.Explanation, error) {
	var out models.Explanation
	if err := b.do(ctx, models.OpExplain, http.MethodPost, "/explain/"+url.PathEscape(sessionID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateChat posts to /create-rag/{id}.
func (b *HTTPBackend) CreateChat(ctx context.Context, sessionID string) (*models.ChatSession, error) {
	var out models.ChatSession
	if err := b.do(ctx, models.OpCreateChat, http.MethodPost, "/create-rag/"+url.PathEscape(sessionID), nil, "", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession sends DELETE /session/{id}. The response body is ignored.
func (b *HTTPBackend) DeleteSession(ctx context.Context, sessionID string) error {
	return b.do(ctx, models.OpDelete, http.MethodDelete, "/session/"+url.PathEscape(sessionID), nil, "", nil)
}

func (b *HTTPBackend) do(ctx context.Context, op, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return &models.RequestError{Op: op, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return &models.RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reqErr := &models.RequestError{Op: op, StatusCode: resp.StatusCode}
		var eb models.ErrorBody
		if data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10)); err == nil && json.Unmarshal(data, &eb) == nil {
			reqErr.Detail = eb.Detail
		}
		return reqErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &models.RequestError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// chatURL maps the base URL onto the websocket address of the session.
func (b *HTTPBackend) chatURL(sessionID string) string {
	u := b.baseURL
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + "/ws/" + url.PathEscape(sessionID)
}

// Dial opens the websocket chat channel of sessionID.
func (b *HTTPBackend) Dial(ctx context.Context, sessionID string, h ChatHandler) (Conn, error) {
	target := b.chatURL(sessionID)
	ws, resp, err := b.dialer.DialContext(ctx, target, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, &models.ConnectionError{SessionID: sessionID, Err: err}
	}
	b.logger.Debug("chat connected", zap.String("session_id", sessionID), zap.String("url", target))

	c := &wsConn{ws: ws, sessionID: sessionID, logger: b.logger, done: make(chan struct{})}
	go c.readPump(h)
	return c, nil
}

// wsConn is a Conn over a gorilla websocket.
type wsConn struct {
	ws        *websocket.Conn
	sessionID string
	logger    *zap.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}
}

func (c *wsConn) Send(text string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	select {
	case <-c.done:
		return &models.ConnectionError{SessionID: c.sessionID, Err: errors.New("connection closed")}
	default:
	}
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
		return &models.ConnectionError{SessionID: c.sessionID, Err: err}
	}
	return nil
}

// Close sends a close frame and releases the socket. Safe to call more than once.
func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
		c.writeMu.Unlock()
		err = c.ws.Close()
	})
	return err
}

func (c *wsConn) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// readPump delivers inbound frames to h until the socket fails or is closed.
func (c *wsConn) readPump(h ChatHandler) {
	c.ws.SetReadLimit(maxFrameSize)
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if c.closed() {
				return
			}
			c.logger.Debug("chat read ended", zap.String("session_id", c.sessionID), zap.Error(err))
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) || errors.Is(err, io.EOF) {
				h.OnClosed()
			} else {
				h.OnError(&models.ConnectionError{SessionID: c.sessionID, Err: err})
			}
			_ = c.ws.Close()
			return
		}
		h.OnMessage(string(data))
	}
}
