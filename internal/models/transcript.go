package models

import "time"

// Sender identifies who produced a transcript entry.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
	SenderSystem    Sender = "system"
)

// Message is one entry of a chat transcript.
type Message struct {
	Text   string    `json:"text" yaml:"text"`
	Sender Sender    `json:"sender" yaml:"sender"`
	At     time.Time `json:"at,omitempty" yaml:"at,omitempty"`
}

// Transcript is the ordered record of messages exchanged for the active session, newest last.
type Transcript struct {
	SessionID string    `json:"session_id" yaml:"session_id"`
	FileName  string    `json:"filename,omitempty" yaml:"filename,omitempty"`
	Messages  []Message `json:"messages" yaml:"messages"`
}

// NewTranscript returns an empty transcript scoped to session.
func NewTranscript(session *Session) *Transcript {
	t := &Transcript{Messages: []Message{}}
	if session != nil {
		t.SessionID = session.ID
		t.FileName = session.FileName
	}
	return t
}

// Append adds a message at the end of the transcript.
func (t *Transcript) Append(m Message) {
	t.Messages = append(t.Messages, m)
}

// Reset drops every message.
func (t *Transcript) Reset() {
	t.Messages = t.Messages[:0]
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	return len(t.Messages)
}

// Clone returns a deep copy safe to hand outside the controller.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	c := *t
	c.Messages = append([]Message(nil), t.Messages...)
	return &c
}
