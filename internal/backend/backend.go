// Package backend talks to the document service: the HTTP/websocket backend or the local fallback.
package backend

import (
	"context"

	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/upload"
)

// Backend is the contract the session controller drives.
type Backend interface {
	// Upload sends the file and returns the session it establishes.
	Upload(ctx context.Context, f upload.File) (*models.UploadResult, error)
	// Explain returns the explanation of the session's document.
	Explain(ctx context.Context, sessionID string) (*models.Explanation, error)
	// CreateChat prepares the session for chat.
	CreateChat(ctx context.Context, sessionID string) (*models.ChatSession, error)
	// DeleteSession releases the server-side session.
	DeleteSession(ctx context.Context, sessionID string) error
	// Dial opens the persistent chat channel of the session. Inbound events are delivered to h
	// from a goroutine owned by the connection until it is closed.
	Dial(ctx context.Context, sessionID string, h ChatHandler) (Conn, error)
}

// Conn is an open chat channel.
type Conn interface {
	Send(text string) error
	Close() error
}

// ChatHandler receives the inbound events of a Conn.
type ChatHandler interface {
	OnMessage(text string)
	OnClosed()
	OnError(err error)
}

// TypingHandler is implemented by handlers that show a pending-reply indicator.
type TypingHandler interface {
	OnTyping(active bool)
}
