package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/crypto/bcrypt"

	"github.com/kalambet/taxdesk/internal/fakebackend"
	"github.com/kalambet/taxdesk/internal/loading"
	"github.com/kalambet/taxdesk/internal/session"
	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
)

func toolText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("expected content in result")
	}
	tc, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected TextContent, got %T", result.Content[0])
	}
	return tc.Text
}

func makeCallToolRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

// newTestDeps runs the fake backend and returns deps logged in as a fresh
// user, plus the token store.
func newTestDeps(t *testing.T, loggedIn bool) (Deps, *taxapi.Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(fakebackend.New(fakebackend.Options{
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		PasswordCost: bcrypt.MinCost,
	}).Handler())
	t.Cleanup(srv.Close)

	tokens, err := session.Open(session.NewMemoryPersister(""))
	if err != nil {
		t.Fatalf("session.Open: %v", err)
	}
	nav := transport.NavigatorFunc(func(string) {})
	client := taxapi.New(transport.New(srv.URL, nil, transport.Defaults(tokens, loading.NewTracker(), nav, nil)...))

	if loggedIn {
		ctx := context.Background()
		if _, err := client.Auth.Register(ctx, "mcp@acme.pl", "pw"); err != nil {
			t.Fatalf("Register: %v", err)
		}
		tok, err := client.Auth.Login(ctx, "mcp@acme.pl", "pw")
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if err := tokens.SetToken(tok.AccessToken); err != nil {
			t.Fatalf("SetToken: %v", err)
		}
	}
	return DepsFrom(client), client, tokens
}

func TestMCPTool_AskDocument(t *testing.T) {
	deps, client, _ := newTestDeps(t, true)
	doc, err := client.Documents.Upload(context.Background(), taxapi.DocumentUpload{
		Title:    "Lease",
		FileName: "lease.txt",
		File:     strings.NewReader("The lease is subject to VAT at 23 percent. Rent is paid quarterly."),
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	result, err := askDocument(deps)(context.Background(), makeCallToolRequest("ask_document", map[string]interface{}{
		"document_id": float64(doc.ID),
		"question":    "How often is rent paid?",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", toolText(t, result))
	}
	if got := toolText(t, result); !strings.Contains(got, "Rent is paid quarterly.") {
		t.Errorf("answer = %q, want the quarterly sentence", got)
	}

	hist, err := chatHistory(deps)(context.Background(), makeCallToolRequest("chat_history", map[string]interface{}{
		"document_id": float64(doc.ID),
	}))
	if err != nil || hist.IsError {
		t.Fatalf("chat_history failed: %v %v", err, hist)
	}
	var body struct {
		Document string `json:"document"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	if err := json.Unmarshal([]byte(toolText(t, hist)), &body); err != nil {
		t.Fatalf("decoding history: %v", err)
	}
	if body.Document != "Lease" || len(body.Messages) != 2 {
		t.Errorf("history = %+v, want 2 messages on Lease", body)
	}
}

func TestMCPTool_AskDocument_BadID(t *testing.T) {
	deps, _, _ := newTestDeps(t, true)
	result, _ := askDocument(deps)(context.Background(), makeCallToolRequest("ask_document", map[string]interface{}{
		"document_id": 1.5,
		"question":    "q",
	}))
	if !result.IsError {
		t.Fatal("expected error for fractional id")
	}
	if got := toolText(t, result); got != "document_id must be a positive integer" {
		t.Errorf("error = %q", got)
	}
}

func TestMCPTool_SessionExpired(t *testing.T) {
	deps, _, _ := newTestDeps(t, false)
	result, err := listDocuments(deps)(context.Background(), makeCallToolRequest("list_documents", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected tool error without a session")
	}
	if got := toolText(t, result); got != SessionExpiredMessage {
		t.Errorf("error = %q, want %q", got, SessionExpiredMessage)
	}
}

func TestMCPTool_ListNewsByCategory(t *testing.T) {
	deps, _, _ := newTestDeps(t, true)
	result, err := listNews(deps)(context.Background(), makeCallToolRequest("list_news", map[string]interface{}{
		"category": "CIT",
	}))
	if err != nil || result.IsError {
		t.Fatalf("list_news failed: %v %v", err, result)
	}
	var items []struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(toolText(t, result)), &items); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected CIT news")
	}
	for _, it := range items {
		if it.Category != "CIT" {
			t.Errorf("category = %q, want CIT", it.Category)
		}
	}
}

func TestMCPTool_PersonalizedNewsWithoutProfile(t *testing.T) {
	deps, _, _ := newTestDeps(t, true)
	result, err := personalizedNews(deps)(context.Background(), makeCallToolRequest("personalized_news", map[string]interface{}{
		"news_id": float64(1),
	}))
	if err != nil || result.IsError {
		t.Fatalf("personalized_news failed: %v %v", err, result)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(toolText(t, result)), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if _, ok := body["personalized_summary"]; ok {
		t.Error("did not expect a personalized summary without a profile")
	}
	if _, ok := body["personalized_summary_unavailable"]; !ok {
		t.Error("expected the reason the personalized summary is missing")
	}
}

func TestMCPTool_AddAndListNotes(t *testing.T) {
	deps, _, _ := newTestDeps(t, true)
	ctx := context.Background()

	result, _ := addNote(deps)(ctx, makeCallToolRequest("add_note", map[string]interface{}{
		"content": "check KSeF deadline",
	}))
	if !result.IsError {
		t.Fatal("expected error when no target is given")
	}

	result, err := addNote(deps)(ctx, makeCallToolRequest("add_note", map[string]interface{}{
		"content": "check KSeF deadline",
		"news_id": float64(1),
	}))
	if err != nil || result.IsError {
		t.Fatalf("add_note failed: %v %v", err, result)
	}

	result, err = listNotes(deps)(ctx, makeCallToolRequest("list_notes", map[string]interface{}{
		"news_id": float64(1),
	}))
	if err != nil || result.IsError {
		t.Fatalf("list_notes failed: %v %v", err, result)
	}
	var notes []taxapi.Note
	if err := json.Unmarshal([]byte(toolText(t, result)), &notes); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if len(notes) != 1 || notes[0].Content != "check KSeF deadline" {
		t.Errorf("notes = %+v", notes)
	}
}

func TestMCPTool_GetProfile(t *testing.T) {
	deps, client, _ := newTestDeps(t, true)
	ctx := context.Background()

	result, _ := getProfile(deps)(ctx, makeCallToolRequest("get_profile", nil))
	if result.IsError || !strings.Contains(toolText(t, result), "not created a company profile") {
		t.Fatalf("get_profile without profile = %q", toolText(t, result))
	}

	if _, err := client.Profile.Create(ctx, taxapi.CompanyProfileFields{Name: "Acme", NIP: "1234567890"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	result, _ = getProfile(deps)(ctx, makeCallToolRequest("get_profile", nil))
	if result.IsError || !strings.Contains(toolText(t, result), `"nip":"1234567890"`) {
		t.Errorf("get_profile = %q", toolText(t, result))
	}
}

func TestNew_RegistersTools(t *testing.T) {
	deps, _, _ := newTestDeps(t, false)
	s := New(deps, "test")

	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	for _, name := range []string{"list_documents", "ask_document", "chat_history", "list_news", "personalized_news", "list_notes", "add_note", "get_profile"} {
		if !strings.Contains(string(raw), `"name":"`+name+`"`) {
			t.Errorf("tool %q not listed in %s", name, raw)
		}
	}
}
