package fakebackend_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalambet/taxdesk/internal/fakebackend"
	"github.com/kalambet/taxdesk/internal/loading"
	"github.com/kalambet/taxdesk/internal/session"
	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type client struct {
	api     *taxapi.Client
	tokens  *session.Store
	tracker *loading.Tracker
	nav     []string
}

func setup(t *testing.T) (*client, *clock) {
	t.Helper()
	clk := &clock{now: time.Now()}
	srv := httptest.NewServer(fakebackend.New(fakebackend.Options{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		Secret:       []byte("test-secret"),
		TokenTTL:     time.Hour,
		Now:          clk.Now,
		PasswordCost: bcrypt.MinCost,
	}).Handler())
	t.Cleanup(srv.Close)

	tokens, err := session.Open(session.NewMemoryPersister(""))
	require.NoError(t, err)
	c := &client{tokens: tokens, tracker: loading.NewTracker()}
	nav := transport.NavigatorFunc(func(p string) { c.nav = append(c.nav, p) })
	c.api = taxapi.New(transport.New(srv.URL, nil, transport.Defaults(tokens, c.tracker, nav, nil)...))
	return c, clk
}

func (c *client) login(t *testing.T, email string) {
	t.Helper()
	ctx := context.Background()
	_, err := c.api.Auth.Register(ctx, email, "s3cret")
	require.NoError(t, err)
	tok, err := c.api.Auth.Login(ctx, email, "s3cret")
	require.NoError(t, err)
	require.Equal(t, "bearer", tok.TokenType)
	require.NoError(t, c.tokens.SetToken(tok.AccessToken))
}

func TestDocumentChatFlow(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "ksiegowa@acme.pl")
	ctx := context.Background()

	docs, err := c.api.Documents.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, docs)

	text := "Invoice 12/2024 for consulting services.\nThe VAT rate applied is 23 percent.\nPayment is due within 14 days."
	doc, err := c.api.Documents.Upload(ctx, taxapi.DocumentUpload{
		Title:       "Consulting invoice",
		Description: "December",
		FileName:    "invoice.txt",
		File:        strings.NewReader(text),
	})
	require.NoError(t, err)
	assert.Equal(t, taxapi.DocumentTXT, doc.FileType)
	assert.Equal(t, int64(len(text)), doc.FileSize)
	assert.Equal(t, "December", doc.Description)
	assert.False(t, doc.CreatedAt.IsZero())

	answer, err := c.api.Chat.Ask(ctx, doc.ID, "Which VAT rate was applied?")
	require.NoError(t, err)
	assert.Equal(t, taxapi.RoleAssistant, answer.Role)
	assert.Contains(t, answer.Content, "The VAT rate applied is 23 percent.")

	history, err := c.api.Chat.History(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, taxapi.RoleUser, history[0].Role)
	assert.Equal(t, answer.ID, history[1].ID)

	updated, err := c.api.Documents.Update(ctx, doc.ID, "Invoice 12/2024", "")
	require.NoError(t, err)
	assert.Equal(t, "Invoice 12/2024", updated.Title)

	require.NoError(t, c.api.Documents.Delete(ctx, doc.ID))
	_, err = c.api.Documents.Get(ctx, doc.ID)
	assert.True(t, transport.IsStatus(err, http.StatusNotFound))

	assert.False(t, c.tracker.IsLoading())
	assert.Empty(t, c.nav)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "a@acme.pl")

	_, err := c.api.Documents.Upload(context.Background(), taxapi.DocumentUpload{
		Title:    "Tool",
		FileName: "tool.exe",
		File:     strings.NewReader("MZ"),
	})
	var apiErr *transport.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Only PDF and TXT files are supported", apiErr.Message())
}

func TestPDFUpload(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "a@acme.pl")
	ctx := context.Background()

	doc, err := c.api.Documents.Upload(ctx, taxapi.DocumentUpload{
		Title:    "Ruling",
		FileName: "ruling.pdf",
		File:     bytes.NewReader(minimalPDF("The withholding tax rate is 19 percent.")),
	})
	require.NoError(t, err)
	assert.Equal(t, taxapi.DocumentPDF, doc.FileType)

	answer, err := c.api.Chat.Ask(ctx, doc.ID, "What is the withholding tax rate?")
	require.NoError(t, err)
	assert.Contains(t, answer.Content, "withholding tax rate is 19 percent")
}

func TestDocumentsAreScopedToOwner(t *testing.T) {
	alice, _ := setup(t)
	alice.login(t, "alice@acme.pl")
	doc, err := alice.api.Documents.Upload(context.Background(), taxapi.DocumentUpload{
		Title: "Private", FileName: "p.txt", File: strings.NewReader("secret"),
	})
	require.NoError(t, err)

	// A second account on the same server.
	bob, err := alice.api.Auth.Register(context.Background(), "bob@acme.pl", "pw")
	require.NoError(t, err)
	require.NotZero(t, bob.ID)
	bobToken, err := alice.api.Auth.Login(context.Background(), "bob@acme.pl", "pw")
	require.NoError(t, err)
	require.NoError(t, alice.tokens.SetToken(bobToken.AccessToken))

	_, err = alice.api.Documents.Get(context.Background(), doc.ID)
	assert.True(t, transport.IsStatus(err, http.StatusNotFound))
}

func TestSessionExpiry(t *testing.T) {
	c, clk := setup(t)
	c.login(t, "a@acme.pl")
	ctx := context.Background()

	_, err := c.api.News.List(ctx)
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = c.api.News.List(ctx)
	require.ErrorIs(t, err, transport.ErrSessionExpired)

	_, ok := c.tokens.Token()
	assert.False(t, ok, "expired token should be cleared")
	assert.Equal(t, []string{"/login"}, c.nav)
	assert.False(t, c.tracker.IsLoading())
}

func TestUnauthenticatedRequest(t *testing.T) {
	c, _ := setup(t)
	_, err := c.api.Documents.List(context.Background())
	require.ErrorIs(t, err, transport.ErrSessionExpired)
	assert.Equal(t, "Not authenticated", transport.ErrorMessage(err))
}

func TestLoginErrors(t *testing.T) {
	c, _ := setup(t)
	ctx := context.Background()
	_, err := c.api.Auth.Register(ctx, "a@acme.pl", "right")
	require.NoError(t, err)

	_, err = c.api.Auth.Login(ctx, "a@acme.pl", "wrong")
	assert.Equal(t, "Incorrect email or password", transport.ErrorMessage(err))

	_, err = c.api.Auth.Register(ctx, "a@acme.pl", "again")
	assert.True(t, transport.IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, "Email already registered", transport.ErrorMessage(err))

	_, err = c.api.Auth.Register(ctx, "", "")
	assert.True(t, transport.IsStatus(err, http.StatusUnprocessableEntity))
	assert.Equal(t, "field required; field required", transport.ErrorMessage(err))
}

func TestProfileAndPersonalizedNews(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "a@acme.pl")
	ctx := context.Background()

	_, err := c.api.Profile.Get(ctx)
	assert.True(t, transport.IsStatus(err, http.StatusNotFound))

	_, err = c.api.News.Personalized(ctx, 1)
	assert.True(t, transport.IsStatus(err, http.StatusNotFound))

	created, err := c.api.Profile.Create(ctx, taxapi.CompanyProfileFields{
		Name:        "Acme",
		NIP:         "1234567890",
		VATID:       "PL1234567890",
		CompanyType: taxapi.CompanySpZoo,
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme", created.Name)

	_, err = c.api.Profile.Create(ctx, taxapi.CompanyProfileFields{Name: "Acme", NIP: "1234567890"})
	assert.True(t, transport.IsStatus(err, http.StatusBadRequest))

	industry := "IT services"
	updated, err := c.api.Profile.Update(ctx, taxapi.CompanyProfileUpdate{Industry: &industry})
	require.NoError(t, err)
	assert.Equal(t, "IT services", updated.Industry)
	assert.Equal(t, "PL1234567890", updated.VATID, "unset fields keep their value")

	news, err := c.api.News.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, news)

	insight, err := c.api.News.Personalized(ctx, news[0].ID)
	require.NoError(t, err)
	assert.Equal(t, news[0].Summary, insight.OriginalSummary)
	assert.Contains(t, insight.PersonalizedSummary, "Acme (Sp. z o.o.)")
}

func TestNotesFilters(t *testing.T) {
	c, _ := setup(t)
	c.login(t, "a@acme.pl")
	ctx := context.Background()

	doc, err := c.api.Documents.Upload(ctx, taxapi.DocumentUpload{Title: "d", FileName: "d.txt", File: strings.NewReader("x")})
	require.NoError(t, err)

	newsID := int64(1)
	_, err = c.api.Notes.Create(ctx, taxapi.NoteCreate{Content: "on news", NewsID: &newsID})
	require.NoError(t, err)
	onDoc, err := c.api.Notes.Create(ctx, taxapi.NoteCreate{Content: "on doc", DocumentID: &doc.ID})
	require.NoError(t, err)

	all, err := c.api.Notes.List(ctx, taxapi.NoteFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	byDoc, err := c.api.Notes.List(ctx, taxapi.NoteFilter{DocumentID: doc.ID})
	require.NoError(t, err)
	require.Len(t, byDoc, 1)
	assert.Equal(t, "on doc", byDoc[0].Content)

	edited, err := c.api.Notes.Update(ctx, onDoc.ID, "on doc, edited")
	require.NoError(t, err)
	assert.Equal(t, "on doc, edited", edited.Content)

	require.NoError(t, c.api.Notes.Delete(ctx, onDoc.ID))
	_, err = c.api.Notes.Get(ctx, onDoc.ID)
	assert.True(t, transport.IsStatus(err, http.StatusNotFound))
}
