package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

type recordingNotes struct {
	NoteService
	created []taxapi.NoteCreate
}

func (r *recordingNotes) Create(_ context.Context, in taxapi.NoteCreate) (taxapi.Note, error) {
	r.created = append(r.created, in)
	return taxapi.Note{ID: int64(len(r.created)), Content: in.Content, NewsID: in.NewsID, DocumentID: in.DocumentID}, nil
}

func TestNotes_BlankContentIsNotSaved(t *testing.T) {
	svc := &recordingNotes{}
	notes := NewNotes(svc)

	_, saved, err := notes.SaveForDocument(context.Background(), 4, "   ")
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Empty(t, svc.created)
}

func TestNotes_AttachesTarget(t *testing.T) {
	svc := &recordingNotes{}
	notes := NewNotes(svc)

	n, saved, err := notes.SaveForNews(context.Background(), 7, "check WHT")
	require.NoError(t, err)
	assert.True(t, saved)
	require.NotNil(t, n.NewsID)
	assert.Equal(t, int64(7), *n.NewsID)
	assert.Nil(t, n.DocumentID)

	n, _, err = notes.SaveForDocument(context.Background(), 4, "see page 3")
	require.NoError(t, err)
	require.NotNil(t, n.DocumentID)
	assert.Equal(t, int64(4), *n.DocumentID)
	assert.Nil(t, n.NewsID)
}
