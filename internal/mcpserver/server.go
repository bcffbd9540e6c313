// Package mcpserver exposes the tax insights client as MCP tools so an
// assistant can browse documents, ask about them and read tax news on the
// user's behalf.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
	"github.com/kalambet/taxdesk/internal/view"
)

// SessionExpiredMessage is returned by every tool once the backend
// rejects the stored credential.
const SessionExpiredMessage = "session expired: run taxdesk auth login"

// Deps holds the backend services the tools call. *taxapi.Client fields
// satisfy all of them.
type Deps struct {
	Documents view.DocumentService
	Chat      view.ChatService
	News      view.NewsService
	Notes     view.NoteService
	Profile   view.ProfileService
}

// DepsFrom wires every service from one client.
func DepsFrom(c *taxapi.Client) Deps {
	return Deps{
		Documents: c.Documents,
		Chat:      c.Chat,
		News:      c.News,
		Notes:     c.Notes,
		Profile:   c.Profile,
	}
}

// New creates an MCP server with all taxdesk tools registered.
func New(deps Deps, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"taxdesk",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("taxdesk: the user's tax documents, document Q&A, tax news and notes."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_documents",
			mcp.WithDescription("List the tax documents the user has uploaded."),
		),
		listDocuments(deps),
	)

	s.AddTool(
		mcp.NewTool("ask_document",
			mcp.WithDescription("Ask a question about one uploaded document and get the assistant's answer."),
			mcp.WithNumber("document_id", mcp.Description("Document id from list_documents"), mcp.Required()),
			mcp.WithString("question", mcp.Description("The question to ask"), mcp.Required()),
		),
		askDocument(deps),
	)

	s.AddTool(
		mcp.NewTool("chat_history",
			mcp.WithDescription("Return the question and answer history of a document."),
			mcp.WithNumber("document_id", mcp.Description("Document id"), mcp.Required()),
		),
		chatHistory(deps),
	)

	s.AddTool(
		mcp.NewTool("list_news",
			mcp.WithDescription("List recent tax news."),
			mcp.WithString("category", mcp.Description("Optional category filter, e.g. VAT, CIT, PIT, Transfer Pricing")),
		),
		listNews(deps),
	)

	s.AddTool(
		mcp.NewTool("personalized_news",
			mcp.WithDescription("Read a news item with a summary tailored to the user's company profile."),
			mcp.WithNumber("news_id", mcp.Description("News id from list_news"), mcp.Required()),
		),
		personalizedNews(deps),
	)

	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List the user's notes, optionally for one document or news item."),
			mcp.WithNumber("document_id", mcp.Description("Only notes on this document")),
			mcp.WithNumber("news_id", mcp.Description("Only notes on this news item")),
		),
		listNotes(deps),
	)

	s.AddTool(
		mcp.NewTool("add_note",
			mcp.WithDescription("Attach a note to a document or a news item."),
			mcp.WithString("content", mcp.Description("Note text"), mcp.Required()),
			mcp.WithNumber("document_id", mcp.Description("Document to attach the note to")),
			mcp.WithNumber("news_id", mcp.Description("News item to attach the note to")),
		),
		addNote(deps),
	)

	s.AddTool(
		mcp.NewTool("get_profile",
			mcp.WithDescription("Return the user's company tax profile."),
		),
		getProfile(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"taxdesk://profile",
			"Company Profile",
			mcp.WithResourceDescription("Company tax profile as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		profileResource(deps),
	)

	return s
}

func listDocuments(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		docs := view.NewDocuments(deps.Documents)
		if err := docs.Load(ctx); err != nil {
			return toolFailure(err), nil
		}
		type entry struct {
			ID          int64               `json:"id"`
			Title       string              `json:"title"`
			Description string              `json:"description,omitempty"`
			Type        taxapi.DocumentType `json:"type"`
			SizeBytes   int64               `json:"size_bytes"`
		}
		out := make([]entry, 0, len(docs.Items()))
		for _, d := range docs.Items() {
			out = append(out, entry{ID: d.ID, Title: d.Title, Description: d.Description, Type: d.FileType, SizeBytes: d.FileSize})
		}
		return mcpJSON(out)
	}
}

func askDocument(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req, "document_id")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		question, err := req.RequireString("question")
		if err != nil {
			return mcpError("question is required"), nil
		}

		conv := view.NewConversation(deps.Chat, id, nil)
		if err := conv.Ask(ctx, question); err != nil {
			return toolFailure(err), nil
		}
		msgs := conv.Messages()
		if len(msgs) == 0 {
			return mcpError("question is required"), nil
		}
		return mcpText(msgs[len(msgs)-1].Content), nil
	}
}

func chatHistory(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req, "document_id")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		detail, err := view.LoadDocumentDetail(ctx, deps.Documents, deps.Chat, id)
		if err != nil {
			return toolFailure(err), nil
		}
		type line struct {
			Role    taxapi.Role `json:"role"`
			Content string      `json:"content"`
		}
		msgs := detail.Conversation.Messages()
		out := make([]line, len(msgs))
		for i, m := range msgs {
			out[i] = line{Role: m.Role, Content: m.Content}
		}
		return mcpJSON(map[string]any{"document": detail.Document.Title, "messages": out})
	}
}

func listNews(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := view.LoadNewsList(ctx, deps.News)
		if err != nil {
			return toolFailure(err), nil
		}
		category := taxapi.TaxCategory(req.GetString("category", ""))
		type entry struct {
			ID        int64              `json:"id"`
			Title     string             `json:"title"`
			Category  taxapi.TaxCategory `json:"category"`
			Summary   string             `json:"summary"`
			Published string             `json:"published"`
		}
		out := []entry{}
		for _, n := range items {
			if category != "" && n.Category != category {
				continue
			}
			out = append(out, entry{
				ID:        n.ID,
				Title:     n.Title,
				Category:  n.Category,
				Summary:   n.Summary,
				Published: n.PublishedDate.Format("2006-01-02"),
			})
		}
		return mcpJSON(out)
	}
}

func personalizedNews(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := requireID(req, "news_id")
		if err != nil {
			return mcpError(err.Error()), nil
		}
		nd, err := view.LoadNewsDetail(ctx, deps.News, id)
		if err != nil {
			return toolFailure(err), nil
		}
		out := map[string]any{
			"title":    nd.News.Title,
			"category": nd.News.Category,
			"content":  nd.News.Content,
			"summary":  nd.News.Summary,
		}
		if nd.Insight != nil {
			out["personalized_summary"] = nd.Insight.PersonalizedSummary
		} else if nd.InsightErr != nil {
			out["personalized_summary_unavailable"] = describe(nd.InsightErr)
		}
		return mcpJSON(out)
	}
}

func listNotes(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		notes, err := view.NewNotes(deps.Notes).List(ctx, taxapi.NoteFilter{
			DocumentID: int64(req.GetInt("document_id", 0)),
			NewsID:     int64(req.GetInt("news_id", 0)),
		})
		if err != nil {
			return toolFailure(err), nil
		}
		return mcpJSON(notes)
	}
}

func addNote(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		docID := int64(req.GetInt("document_id", 0))
		newsID := int64(req.GetInt("news_id", 0))
		if (docID == 0) == (newsID == 0) {
			return mcpError("exactly one of document_id or news_id is required"), nil
		}

		notes := view.NewNotes(deps.Notes)
		var (
			note  taxapi.Note
			saved bool
		)
		if docID != 0 {
			note, saved, err = notes.SaveForDocument(ctx, docID, content)
		} else {
			note, saved, err = notes.SaveForNews(ctx, newsID, content)
		}
		if err != nil {
			return toolFailure(err), nil
		}
		if !saved {
			return mcpError("content is required"), nil
		}
		return mcpText(fmt.Sprintf("Saved note %d", note.ID)), nil
	}
}

func getProfile(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ed := view.NewProfileEditor(deps.Profile)
		exists, err := ed.Load(ctx)
		if err != nil {
			return toolFailure(err), nil
		}
		if !exists {
			return mcpText("The user has not created a company profile yet."), nil
		}
		p, _ := ed.Profile()
		return mcpJSON(p)
	}
}

func profileResource(deps Deps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ed := view.NewProfileEditor(deps.Profile)
		exists, err := ed.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("loading profile: %w", err)
		}
		body := []byte("null")
		if exists {
			p, _ := ed.Profile()
			if body, err = json.Marshal(p); err != nil {
				return nil, fmt.Errorf("marshalling profile: %w", err)
			}
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(body),
			},
		}, nil
	}
}

func requireID(req mcp.CallToolRequest, name string) (int64, error) {
	v, err := req.RequireFloat(name)
	if err != nil || v <= 0 || v != float64(int64(v)) {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	return int64(v), nil
}

// describe turns a view or transport error into one line for the model.
func describe(err error) string {
	if errors.Is(err, transport.ErrSessionExpired) {
		return SessionExpiredMessage
	}
	var ve *view.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	var f *view.Failure
	if errors.As(err, &f) && f.Err != nil {
		return fmt.Sprintf("%s (%s)", f.Message, transport.ErrorMessage(f.Err))
	}
	return transport.ErrorMessage(err)
}

func toolFailure(err error) *mcp.CallToolResult {
	return mcpError(describe(err))
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
