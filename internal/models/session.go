// Package models defines the client-side data structures for sessions, transcripts and explanations.
package models

// Session is the server-side (or locally simulated) processing context of one uploaded document.
type Session struct {
	ID            string `json:"session_id" yaml:"session_id"`
	FileName      string `json:"filename" yaml:"filename"`
	FileSizeBytes int64  `json:"file_size" yaml:"file_size"`
}

// UploadResult is the body of a successful POST /upload.
type UploadResult struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id"`
	FileName  string `json:"filename"`
	FileSize  int64  `json:"file_size"`
}

// Session converts the upload response into the session it establishes.
func (r *UploadResult) Session() *Session {
	return &Session{ID: r.SessionID, FileName: r.FileName, FileSizeBytes: r.FileSize}
}

// Explanation is the body of a successful POST /explain/{session_id}.
type Explanation struct {
	SessionID    string `json:"session_id,omitempty"`
	FileName     string `json:"filename"`
	DocumentType string `json:"document_type"`
	Explanation  string `json:"explanation"`
}

// ChatSession is the body of a successful POST /create-rag/{session_id}.
type ChatSession struct {
	Message   string `json:"message,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	FileName  string `json:"filename,omitempty"`
}

// ErrorBody is the failure shape returned by the backend.
type ErrorBody struct {
	Detail string `json:"detail"`
}
