package view

import (
	"context"
	"strings"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

// NoteService is implemented by *taxapi.NotesClient.
type NoteService interface {
	List(ctx context.Context, f taxapi.NoteFilter) ([]taxapi.Note, error)
	Create(ctx context.Context, in taxapi.NoteCreate) (taxapi.Note, error)
	Update(ctx context.Context, id int64, content string) (taxapi.Note, error)
	Delete(ctx context.Context, id int64) error
}

// Notes attaches free-text notes to documents and news items.
type Notes struct {
	svc NoteService
}

func NewNotes(svc NoteService) *Notes { return &Notes{svc: svc} }

func (n *Notes) List(ctx context.Context, f taxapi.NoteFilter) ([]taxapi.Note, error) {
	notes, err := n.svc.List(ctx, f)
	if err != nil {
		return nil, fail("Failed to load notes", err)
	}
	return notes, nil
}

// SaveForDocument stores content as a note on a document. Blank content
// is ignored and reported as not saved.
func (n *Notes) SaveForDocument(ctx context.Context, documentID int64, content string) (taxapi.Note, bool, error) {
	return n.save(ctx, taxapi.NoteCreate{Content: content, DocumentID: &documentID})
}

// SaveForNews stores content as a note on a news item.
func (n *Notes) SaveForNews(ctx context.Context, newsID int64, content string) (taxapi.Note, bool, error) {
	return n.save(ctx, taxapi.NoteCreate{Content: content, NewsID: &newsID})
}

func (n *Notes) save(ctx context.Context, in taxapi.NoteCreate) (taxapi.Note, bool, error) {
	if strings.TrimSpace(in.Content) == "" {
		return taxapi.Note{}, false, nil
	}
	note, err := n.svc.Create(ctx, in)
	if err != nil {
		return taxapi.Note{}, false, fail("Failed to save note", err)
	}
	return note, true, nil
}

func (n *Notes) Edit(ctx context.Context, id int64, content string) (taxapi.Note, error) {
	if strings.TrimSpace(content) == "" {
		return taxapi.Note{}, &ValidationError{Field: "content", Message: "Note content is required"}
	}
	note, err := n.svc.Update(ctx, id, content)
	if err != nil {
		return taxapi.Note{}, fail("Failed to update note", err)
	}
	return note, nil
}

func (n *Notes) Delete(ctx context.Context, id int64) error {
	if err := n.svc.Delete(ctx, id); err != nil {
		return fail("Failed to delete note", err)
	}
	return nil
}
