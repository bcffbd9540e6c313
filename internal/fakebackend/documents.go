package fakebackend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path"
	"sort"
	"strings"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

// ownedDocument returns the caller's document or writes a 404. Must be
// called with s.mu held.
func (s *Server) ownedDocument(w http.ResponseWriter, r *http.Request) (*document, bool) {
	id, ok := pathID(r)
	if !ok {
		detailError(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	doc, ok := s.documents[id]
	if !ok || doc.meta.UserID != currentUser(r.Context()).ID {
		detailError(w, http.StatusNotFound, "Document not found")
		return nil, false
	}
	return doc, true
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r.Context()).ID
	s.mu.Lock()
	out := []taxapi.Document{}
	for _, d := range s.documents {
		if d.meta.UserID == uid {
			out = append(out, d.meta)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, doc.meta)
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detailError(w, http.StatusRequestEntityTooLarge, "File size exceeds the 10MB limit")
			return
		}
		detailError(w, http.StatusBadRequest, "invalid multipart body: %v", err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	title := strings.TrimSpace(r.FormValue("title"))
	file, hdr, err := r.FormFile("file")
	var issues []fieldIssue
	if title == "" {
		issues = append(issues, missing("body", "title"))
	}
	if err != nil {
		issues = append(issues, missing("body", "file"))
	}
	if len(issues) > 0 {
		validationError(w, issues...)
		return
	}
	defer file.Close()

	typ, err := documentType(hdr.Filename)
	if err != nil {
		detailError(w, http.StatusBadRequest, msgUnsupportedType)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		detailError(w, http.StatusBadRequest, "reading upload: %v", err)
		return
	}
	if len(data) > maxUploadSize {
		detailError(w, http.StatusRequestEntityTooLarge, "File size exceeds the 10MB limit")
		return
	}
	text, err := extractText(typ, data)
	if err != nil {
		detailError(w, http.StatusBadRequest, "Could not read document: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	now := s.timestamp()
	doc := &document{
		meta: taxapi.Document{
			ID:          id,
			Title:       title,
			Description: r.FormValue("description"),
			FilePath:    path.Join("uploads", path.Base(hdr.Filename)),
			FileType:    typ,
			FileSize:    int64(len(data)),
			UserID:      currentUser(r.Context()).ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		text: text,
	}
	s.documents[id] = doc
	s.logger.Info("document stored", "id", id, "type", typ, "bytes", len(data), "text_chars", len(text))
	writeJSON(w, http.StatusCreated, doc.meta)
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detailError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		doc.meta.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		doc.meta.Description = *req.Description
	}
	doc.meta.UpdatedAt = s.timestamp()
	writeJSON(w, http.StatusOK, doc.meta)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	delete(s.documents, doc.meta.ID)
	delete(s.chats, doc.meta.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	msgs := append([]taxapi.ChatMessage{}, s.chats[doc.meta.ID]...)
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content    string      `json:"content"`
		Role       taxapi.Role `json:"role"`
		DocumentID int64       `json:"document_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detailError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		validationError(w, missing("body", "content"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.ownedDocument(w, r)
	if !ok {
		return
	}
	uid := currentUser(r.Context()).ID
	question := taxapi.ChatMessage{
		ID:         s.newID(),
		Content:    req.Content,
		Role:       taxapi.RoleUser,
		DocumentID: doc.meta.ID,
		UserID:     uid,
		CreatedAt:  s.timestamp(),
	}
	answer := taxapi.ChatMessage{
		ID:         s.newID(),
		Content:    answerFrom(doc.text, req.Content),
		Role:       taxapi.RoleAssistant,
		DocumentID: doc.meta.ID,
		UserID:     uid,
		CreatedAt:  s.timestamp(),
	}
	s.chats[doc.meta.ID] = append(s.chats[doc.meta.ID], question, answer)
	writeJSON(w, http.StatusOK, answer)
}
