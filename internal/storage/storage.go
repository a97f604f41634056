// Package storage defines the persistence interface for stub-backend sessions.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = errors.New("session not found")

// SessionRecord is one uploaded document held by the stub backend.
type SessionRecord struct {
	ID        string
	FileName  string
	FilePath  string
	FileSize  int64
	ChatReady bool
	CreatedAt time.Time
}

// Stats summarises the store for GET /sessions.
type Stats struct {
	Uploaded  int64
	ChatReady int64
}

// SessionStore defines session persistence operations.
type SessionStore interface {
	CreateSession(ctx context.Context, rec *SessionRecord) error
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	MarkChatReady(ctx context.Context, id string) error
	// DeleteSession removes the record and returns it. Unknown ids return ErrNotFound.
	DeleteSession(ctx context.Context, id string) (*SessionRecord, error)
	ListSessions(ctx context.Context) ([]*SessionRecord, error)
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Open returns a SQLite store when dbPath is set and an in-memory store otherwise.
func Open(dbPath string) (SessionStore, error) {
	if dbPath == "" {
		return NewMemoryStore(), nil
	}
	return NewSQLiteStore(dbPath)
}
