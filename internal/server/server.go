// Package server provides the stub document backend: the HTTP and websocket API the client talks to
// in remote mode, answered with canned content.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/canned"
	"github.com/hyperjump/docassist/internal/config"
	"github.com/hyperjump/docassist/internal/storage"
	"github.com/hyperjump/docassist/internal/upload"
	"github.com/hyperjump/docassist/pkg/utils"
)

// Server is the HTTP server for the stub backend.
type Server struct {
	store     storage.SessionStore
	files     *storage.FileStore
	config    *config.ServerConfig
	policy    upload.Policy
	explainer canned.Explainer
	responder canned.Responder
	newID     func() string
	upgrader  websocket.Upgrader
	logger    *zap.Logger
	server    *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithExplainer replaces the canned explainer.
func WithExplainer(e canned.Explainer) Option {
	return func(s *Server) { s.explainer = e }
}

// WithResponder replaces the keyword responder used on the chat socket.
func WithResponder(r canned.Responder) Option {
	return func(s *Server) { s.responder = r }
}

// WithIDs replaces the session id generator.
func WithIDs(next func() string) Option {
	return func(s *Server) { s.newID = next }
}

// NewServer creates a server with the given dependencies.
func NewServer(store storage.SessionStore, files *storage.FileStore, cfg *config.ServerConfig, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		store:     store,
		files:     files,
		config:    cfg,
		policy:    upload.Policy{Extensions: config.DefaultExtensions},
		explainer: canned.NewRandomExplainer(nil),
		responder: canned.NewKeywordResponder(nil),
		newID:     uuid.NewString,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: utils.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router. REST routes get a request timeout; the websocket route does not.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Post("/upload", s.handleUpload)
		r.Post("/explain/{id}", s.handleExplain)
		r.Post("/create-rag/{id}", s.handleCreateChat)
		r.Delete("/session/{id}", s.handleDeleteSession)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/health", s.handleHealth)
	})
	r.Get("/ws/{id}", s.handleChat)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln and blocks until the server stops. After Stop it closes ln and returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting server", zap.String("addr", ln.Addr().String()))
	err := s.server.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server. It is safe to call before Start.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
