package fakebackend

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

// ownedNote must be called with s.mu held.
func (s *Server) ownedNote(w http.ResponseWriter, r *http.Request) (*taxapi.Note, bool) {
	id, ok := pathID(r)
	if ok {
		if n, found := s.notes[id]; found && n.UserID == currentUser(r.Context()).ID {
			return n, true
		}
	}
	detailError(w, http.StatusNotFound, "Note not found")
	return nil, false
}

func queryID(r *http.Request, key string) (int64, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(v, 10, 64)
	return id, err == nil
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	uid := currentUser(r.Context()).ID
	newsID, byNews := queryID(r, "news_id")
	docID, byDoc := queryID(r, "document_id")

	s.mu.Lock()
	out := []taxapi.Note{}
	for _, n := range s.notes {
		if n.UserID != uid {
			continue
		}
		if byNews && (n.NewsID == nil || *n.NewsID != newsID) {
			continue
		}
		if byDoc && (n.DocumentID == nil || *n.DocumentID != docID) {
			continue
		}
		out = append(out, *n)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.ownedNote(w, r); ok {
		writeJSON(w, http.StatusOK, n)
	}
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	var req taxapi.NoteCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detailError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		validationError(w, missing("body", "content"))
		return
	}

	uid := currentUser(r.Context()).ID
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.DocumentID != nil {
		if d, ok := s.documents[*req.DocumentID]; !ok || d.meta.UserID != uid {
			detailError(w, http.StatusNotFound, "Document not found")
			return
		}
	}
	if req.NewsID != nil && !s.newsExists(*req.NewsID) {
		detailError(w, http.StatusNotFound, "News not found")
		return
	}
	now := s.timestamp()
	n := &taxapi.Note{
		ID:         s.newID(),
		Content:    req.Content,
		NewsID:     req.NewsID,
		DocumentID: req.DocumentID,
		UserID:     uid,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.notes[n.ID] = n
	writeJSON(w, http.StatusCreated, n)
}

// newsExists must be called with s.mu held.
func (s *Server) newsExists(id int64) bool {
	for _, n := range s.news {
		if n.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Content string `json:"content"`
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
	n, ok := s.ownedNote(w, r)
	if !ok {
		return
	}
	n.Content = req.Content
	n.UpdatedAt = s.timestamp()
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.ownedNote(w, r)
	if !ok {
		return
	}
	delete(s.notes, n.ID)
	w.WriteHeader(http.StatusNoContent)
}
