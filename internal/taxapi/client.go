// Package taxapi holds one client per backend resource. Clients only shape
// requests and decode responses; errors are returned untouched for the
// view layer to handle.
package taxapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/kalambet/taxdesk/internal/transport"
)

// Doer sends a request through the pipeline. Implemented by
// *transport.Pipeline.
type Doer interface {
	Do(ctx context.Context, req transport.Request, out any) error
}

// Client groups the resource clients sharing one pipeline.
type Client struct {
	Auth      *AuthClient
	Documents *DocumentsClient
	Chat      *ChatClient
	News      *NewsClient
	Notes     *NotesClient
	Profile   *ProfileClient
}

// New creates every resource client on top of d.
func New(d Doer) *Client {
	return &Client{
		Auth:      &AuthClient{d: d},
		Documents: &DocumentsClient{d: d},
		Chat:      &ChatClient{d: d},
		News:      &NewsClient{d: d},
		Notes:     &NotesClient{d: d},
		Profile:   &ProfileClient{d: d},
	}
}

func idPath(format string, id int64) string {
	return fmt.Sprintf(format, strconv.FormatInt(id, 10))
}

// --- auth ---

type AuthClient struct{ d Doer }

// Login exchanges credentials for an access token. The backend expects an
// OAuth2 password form with the email in the username field.
func (c *AuthClient) Login(ctx context.Context, email, password string) (Token, error) {
	var tok Token
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/token",
		Form:   url.Values{"username": {email}, "password": {password}},
	}, &tok)
	return tok, err
}

// Register creates a regular, active account.
func (c *AuthClient) Register(ctx context.Context, email, password string) (User, error) {
	var u User
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/api/auth/register",
		JSON: map[string]any{
			"email":     email,
			"password":  password,
			"is_active": true,
			"is_admin":  false,
		},
	}, &u)
	return u, err
}

// --- documents ---

type DocumentsClient struct{ d Doer }

func (c *DocumentsClient) List(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/api/documents"}, &docs)
	return docs, err
}

func (c *DocumentsClient) Get(ctx context.Context, id int64) (Document, error) {
	var doc Document
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: idPath("/api/documents/%s", id)}, &doc)
	return doc, err
}

// Upload sends the file as multipart form data. Description is omitted
// when empty.
func (c *DocumentsClient) Upload(ctx context.Context, up DocumentUpload) (Document, error) {
	fields := []transport.Field{{Name: "title", Value: up.Title}}
	if up.Description != "" {
		fields = append(fields, transport.Field{Name: "description", Value: up.Description})
	}
	var doc Document
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/api/documents",
		Multipart: &transport.Multipart{
			Fields:   fields,
			FileName: up.FileName,
			File:     up.File,
		},
	}, &doc)
	return doc, err
}

func (c *DocumentsClient) Update(ctx context.Context, id int64, title, description string) (Document, error) {
	var doc Document
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   idPath("/api/documents/%s", id),
		JSON:   map[string]string{"title": title, "description": description},
	}, &doc)
	return doc, err
}

func (c *DocumentsClient) Delete(ctx context.Context, id int64) error {
	return c.d.Do(ctx, transport.Request{Method: http.MethodDelete, Path: idPath("/api/documents/%s", id)}, nil)
}

// --- chat ---

type ChatClient struct{ d Doer }

// History returns the conversation about a document, oldest first.
func (c *ChatClient) History(ctx context.Context, documentID int64) ([]ChatMessage, error) {
	var msgs []ChatMessage
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   idPath("/api/chat/document/%s", documentID),
	}, &msgs)
	return msgs, err
}

// Ask posts a user question and returns the assistant's answer.
func (c *ChatClient) Ask(ctx context.Context, documentID int64, question string) (ChatMessage, error) {
	var answer ChatMessage
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   idPath("/api/chat/document/%s", documentID),
		JSON: chatMessageCreate{
			Content:    question,
			Role:       RoleUser,
			DocumentID: documentID,
		},
	}, &answer)
	return answer, err
}

// --- news ---

type NewsClient struct{ d Doer }

func (c *NewsClient) List(ctx context.Context) ([]News, error) {
	var items []News
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/api/news"}, &items)
	return items, err
}

func (c *NewsClient) Get(ctx context.Context, id int64) (News, error) {
	var n News
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: idPath("/api/news/%s", id)}, &n)
	return n, err
}

// Personalized returns the summary of a news item rewritten for the
// caller's company profile.
func (c *NewsClient) Personalized(ctx context.Context, id int64) (PersonalizedNews, error) {
	var p PersonalizedNews
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: idPath("/api/news/%s/personalized", id)}, &p)
	return p, err
}

// --- notes ---

type NotesClient struct{ d Doer }

func (c *NotesClient) List(ctx context.Context, f NoteFilter) ([]Note, error) {
	q := url.Values{}
	if f.NewsID != 0 {
		q.Set("news_id", strconv.FormatInt(f.NewsID, 10))
	}
	if f.DocumentID != 0 {
		q.Set("document_id", strconv.FormatInt(f.DocumentID, 10))
	}
	req := transport.Request{Method: http.MethodGet, Path: "/api/notes"}
	if len(q) > 0 {
		req.Query = q
	}
	var notes []Note
	err := c.d.Do(ctx, req, &notes)
	return notes, err
}

func (c *NotesClient) Get(ctx context.Context, id int64) (Note, error) {
	var n Note
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: idPath("/api/notes/%s", id)}, &n)
	return n, err
}

func (c *NotesClient) Create(ctx context.Context, in NoteCreate) (Note, error) {
	var n Note
	err := c.d.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/api/notes", JSON: in}, &n)
	return n, err
}

func (c *NotesClient) Update(ctx context.Context, id int64, content string) (Note, error) {
	var n Note
	err := c.d.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   idPath("/api/notes/%s", id),
		JSON:   map[string]string{"content": content},
	}, &n)
	return n, err
}

func (c *NotesClient) Delete(ctx context.Context, id int64) error {
	return c.d.Do(ctx, transport.Request{Method: http.MethodDelete, Path: idPath("/api/notes/%s", id)}, nil)
}

// --- profile ---

type ProfileClient struct{ d Doer }

// Get returns the caller's company profile. A caller without one gets a
// 404 *transport.APIError.
func (c *ProfileClient) Get(ctx context.Context) (CompanyProfile, error) {
	var p CompanyProfile
	err := c.d.Do(ctx, transport.Request{Method: http.MethodGet, Path: "/api/profile"}, &p)
	return p, err
}

func (c *ProfileClient) Create(ctx context.Context, f CompanyProfileFields) (CompanyProfile, error) {
	var p CompanyProfile
	err := c.d.Do(ctx, transport.Request{Method: http.MethodPost, Path: "/api/profile", JSON: f}, &p)
	return p, err
}

func (c *ProfileClient) Update(ctx context.Context, u CompanyProfileUpdate) (CompanyProfile, error) {
	var p CompanyProfile
	err := c.d.Do(ctx, transport.Request{Method: http.MethodPut, Path: "/api/profile", JSON: u}, &p)
	return p, err
}
