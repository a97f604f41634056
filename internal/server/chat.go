package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/storage"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	chatGreeting  = "RAG Chatbot is ready! Ask me anything about your document."
	chatNoSession = "Error: No RAG session found. Please upload a document first."
	botPrefix     = "Bot: "
)

// chatSocket serialises writes from the reply loop and the ping ticker.
type chatSocket struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *chatSocket) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.GetSession(r.Context(), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.logger.Error("chat: session lookup failed", zap.String("session_id", id), zap.Error(err))
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	sock := &chatSocket{conn: conn}
	defer conn.Close()

	if rec == nil || !rec.ChatReady {
		_ = sock.write(websocket.TextMessage, []byte(chatNoSession))
		_ = sock.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return
	}
	if err := sock.write(websocket.TextMessage, []byte(chatGreeting)); err != nil {
		return
	}
	s.logger.Debug("chat connected", zap.String("session_id", id))

	done := make(chan struct{})
	defer close(done)
	go s.pingLoop(sock, done)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("chat read error", zap.String("session_id", id), zap.Error(err))
			}
			s.logger.Debug("chat disconnected", zap.String("session_id", id))
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		reply := botPrefix + s.responder(string(data))
		if err := sock.write(websocket.TextMessage, []byte(reply)); err != nil {
			s.logger.Debug("chat write failed", zap.String("session_id", id), zap.Error(err))
			return
		}
	}
}

func (s *Server) pingLoop(sock *chatSocket, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := sock.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
