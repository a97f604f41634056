package models

import (
	"errors"
	"fmt"
)

// NetworkErrorMessage is shown when a request fails without a server-provided detail.
const NetworkErrorMessage = "Network error. Please try again."

// Request operations carried by RequestError.
const (
	OpUpload     = "upload"
	OpExplain    = "explain"
	OpCreateChat = "create-chat"
	OpDelete     = "delete"
)

// ValidationError reports a file rejected before any network call.
type ValidationError struct {
	Field  string // "extension" or "size"
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Reason)
}

// UserMessage returns the text shown to the user.
func (e *ValidationError) UserMessage() string {
	return e.Reason
}

// RequestError reports a non-2xx response or a transport failure of a backend request.
type RequestError struct {
	Op         string // one of the Op constants
	StatusCode int    // 0 for transport failures
	Detail     string // server-provided detail, if any
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s request failed (%d): %s", e.Op, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s request failed (%d)", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("%s request failed: %v", e.Op, e.Err)
	}
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// UserMessage returns the server detail when present, otherwise a generic message.
func (e *RequestError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.StatusCode == 0 {
		return NetworkErrorMessage
	}
	switch e.Op {
	case OpUpload:
		return "Upload failed"
	case OpExplain:
		return "Failed to explain document"
	case OpCreateChat:
		return "Failed to create chat session"
	default:
		return NetworkErrorMessage
	}
}

// ConnectionError reports a failure of the persistent chat channel.
type ConnectionError struct {
	SessionID string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error [%s]: %v", e.SessionID, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text appended to the transcript.
func (e *ConnectionError) UserMessage() string {
	return "Connection error. Please try again."
}

// UserMessage extracts the user-facing text of err, falling back to err.Error().
func UserMessage(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
