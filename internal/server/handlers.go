package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/docassist/internal/models"
	"github.com/hyperjump/docassist/internal/render"
	"github.com/hyperjump/docassist/internal/storage"
)

const (
	detailNoFile         = "No file selected"
	detailUnsupported    = "File type not supported. Please upload PDF, TXT, JPG, or JPEG files."
	detailNotFound       = "File not found"
	detailChatPDFOnly    = "RAG chatbot only supports PDF files"
	messageUploaded      = "File uploaded successfully"
	messageChatCreated   = "RAG chatbot session created successfully"
	messageSessionDelete = "Session deleted successfully"
)

// sessionsResponse is the body of GET /sessions.
type sessionsResponse struct {
	UploadedFiles      int64    `json:"uploaded_files"`
	ActiveChatSessions int64    `json:"active_rag_sessions"`
	Sessions           []string `json:"sessions"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	part, err := filePart(r)
	if err != nil {
		s.logger.Debug("upload without file part", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, detailNoFile)
		return
	}
	defer part.Close()

	name := part.FileName()
	if name == "" {
		s.respondError(w, http.StatusBadRequest, detailNoFile)
		return
	}
	if !s.policy.Allows(name) {
		s.respondError(w, http.StatusBadRequest, detailUnsupported)
		return
	}

	id := s.newID()
	path, size, err := s.files.Save(id, name, part, s.config.MaxUploadBytes)
	if errors.Is(err, storage.ErrTooLarge) {
		s.respondError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("File too large. Maximum size is %s.", render.FormatFileSize(s.config.MaxUploadBytes)))
		return
	}
	if err != nil {
		s.logger.Error("upload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Error uploading file: "+err.Error())
		return
	}

	rec := &storage.SessionRecord{ID: id, FileName: name, FilePath: path, FileSize: size}
	if err := s.store.CreateSession(r.Context(), rec); err != nil {
		_ = s.files.Remove(path)
		s.logger.Error("upload: store session failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Error uploading file: "+err.Error())
		return
	}
	s.logger.Debug("file uploaded", zap.String("session_id", id), zap.String("filename", name), zap.Int64("size", size))
	s.respondJSON(w, http.StatusOK, models.UploadResult{
		Message:   messageUploaded,
		SessionID: id,
		FileName:  name,
		FileSize:  size,
	})
}

// filePart returns the multipart part named "file".
func filePart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, err
	}
	for {
		part, err := mr.NextPart()
		if err != nil {
			if err == io.EOF {
				return nil, errors.New("missing file field")
			}
			return nil, err
		}
		if part.FormName() == "file" {
			return part, nil
		}
		_ = part.Close()
	}
}

func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.lookup(w, r, id)
	if !ok {
		return
	}
	e := s.explainer(rec.FileName)
	e.SessionID = id
	s.logger.Debug("explain request", zap.String("session_id", id), zap.String("document_type", e.DocumentType))
	s.respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleCreateChat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.lookup(w, r, id)
	if !ok {
		return
	}
	if !strings.EqualFold(filepath.Ext(rec.FileName), ".pdf") {
		s.respondError(w, http.StatusBadRequest, detailChatPDFOnly)
		return
	}
	if err := s.store.MarkChatReady(r.Context(), id); err != nil {
		s.logger.Error("create chat failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "Error creating RAG session: "+err.Error())
		return
	}
	s.logger.Debug("chat session created", zap.String("session_id", id))
	s.respondJSON(w, http.StatusOK, models.ChatSession{
		Message:   messageChatCreated,
		SessionID: id,
		FileName:  rec.FileName,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.store.DeleteSession(r.Context(), id)
	switch {
	case err == nil:
		if rmErr := s.files.Remove(rec.FilePath); rmErr != nil {
			s.logger.Warn("failed to remove uploaded file", zap.String("path", rec.FilePath), zap.Error(rmErr))
		}
	case errors.Is(err, storage.ErrNotFound):
	default:
		s.logger.Error("delete session failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Debug("session deleted", zap.String("session_id", id))
	s.respondJSON(w, http.StatusOK, map[string]string{"message": messageSessionDelete})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	recs, err := s.store.ListSessions(ctx)
	if err != nil {
		s.logger.Error("list sessions failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	st, err := s.store.Stats(ctx)
	if err != nil {
		s.logger.Error("session stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	resp := sessionsResponse{
		UploadedFiles:      st.Uploaded,
		ActiveChatSessions: st.ChatReady,
		Sessions:           make([]string, 0, len(recs)),
	}
	for _, rec := range recs {
		resp.Sessions = append(resp.Sessions, rec.ID)
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok"}
	if usage, err := s.files.Usage(); err == nil {
		resp["disk_usage_bytes"] = usage
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// lookup fetches a session and writes 404 when it does not exist.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request, id string) (*storage.SessionRecord, bool) {
	rec, err := s.store.GetSession(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, detailNotFound)
		return nil, false
	}
	if err != nil {
		s.logger.Error("session lookup failed", zap.String("session_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rec, true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, detail string) {
	s.respondJSON(w, status, models.ErrorBody{Detail: detail})
}
