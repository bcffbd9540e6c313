package view

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
)

// SendFailedMessage is shown when a question could not be delivered.
const SendFailedMessage = "Failed to send question. Please try again."

// ErrBusy is returned when a question is submitted while another one is
// still in flight.
var ErrBusy = errors.New("a question is already being sent")

// Asker posts a question about a document. Implemented by
// *taxapi.ChatClient.
type Asker interface {
	Ask(ctx context.Context, documentID int64, question string) (taxapi.ChatMessage, error)
}

type ConversationState int

const (
	Idle ConversationState = iota
	Sending
)

func (s ConversationState) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// Conversation is the chat panel of a document: its message list, the
// question being typed and the send state.
type Conversation struct {
	chat       Asker
	documentID int64
	now        func() time.Time

	mu       sync.Mutex
	messages []taxapi.ChatMessage
	draft    string
	state    ConversationState
	errMsg   string
}

type ConversationOption func(*Conversation)

// WithClock replaces time.Now for optimistic message ids and timestamps.
func WithClock(now func() time.Time) ConversationOption {
	return func(c *Conversation) { c.now = now }
}

// NewConversation starts a conversation seeded with history.
func NewConversation(chat Asker, documentID int64, history []taxapi.ChatMessage, opts ...ConversationOption) *Conversation {
	c := &Conversation{
		chat:       chat,
		documentID: documentID,
		now:        time.Now,
		messages:   append([]taxapi.ChatMessage(nil), history...),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) DocumentID() int64 { return c.documentID }

// Messages returns a copy of the message list in display order.
func (c *Conversation) Messages() []taxapi.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]taxapi.ChatMessage(nil), c.messages...)
}

func (c *Conversation) SetDraft(s string) {
	c.mu.Lock()
	c.draft = s
	c.mu.Unlock()
}

func (c *Conversation) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Conversation) State() ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err returns the message of the last failed send, or "".
func (c *Conversation) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Ask sets the draft to question and submits it.
func (c *Conversation) Ask(ctx context.Context, question string) error {
	c.SetDraft(question)
	return c.Submit(ctx)
}

// Submit sends the current draft. A blank draft is ignored. The question
// is appended before the call is made; on success the answer follows it
// and the draft is cleared. On failure the question stays in the list.
func (c *Conversation) Submit(ctx context.Context) error {
	c.mu.Lock()
	question := c.draft
	if strings.TrimSpace(question) == "" {
		c.mu.Unlock()
		return nil
	}
	if c.state == Sending {
		c.mu.Unlock()
		return ErrBusy
	}
	now := c.now()
	c.messages = append(c.messages, taxapi.ChatMessage{
		ID:         now.UnixMilli(),
		Content:    question,
		Role:       taxapi.RoleUser,
		DocumentID: c.documentID,
		UserID:     0,
		CreatedAt:  taxapi.Time{Time: now.UTC()},
	})
	c.state = Sending
	c.errMsg = ""
	c.mu.Unlock()

	answer, err := c.chat.Ask(ctx, c.documentID, question)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Idle
	if err != nil {
		c.errMsg = SendFailedMessage
		if errors.Is(err, transport.ErrSessionExpired) {
			return err
		}
		return fail(SendFailedMessage, err)
	}
	c.messages = append(c.messages, answer)
	if c.draft == question {
		c.draft = ""
	}
	return nil
}
