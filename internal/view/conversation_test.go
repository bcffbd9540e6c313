package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/taxdesk/internal/taxapi"
	"github.com/kalambet/taxdesk/internal/transport"
)

type askFunc func(ctx context.Context, documentID int64, question string) (taxapi.ChatMessage, error)

func (f askFunc) Ask(ctx context.Context, documentID int64, question string) (taxapi.ChatMessage, error) {
	return f(ctx, documentID, question)
}

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func TestConversation_OptimisticThenConfirmed(t *testing.T) {
	answer := taxapi.ChatMessage{ID: 99, Content: "23%", Role: taxapi.RoleAssistant, DocumentID: 4, UserID: 1}

	var conv *Conversation
	var duringCall []taxapi.ChatMessage
	var stateDuringCall ConversationState
	conv = NewConversation(askFunc(func(_ context.Context, id int64, q string) (taxapi.ChatMessage, error) {
		duringCall = conv.Messages()
		stateDuringCall = conv.State()
		return answer, nil
	}), 4, nil, WithClock(func() time.Time { return fixedNow }))

	require.NoError(t, conv.Ask(context.Background(), "What is the VAT rate?"))

	optimistic := taxapi.ChatMessage{
		ID:         fixedNow.UnixMilli(),
		Content:    "What is the VAT rate?",
		Role:       taxapi.RoleUser,
		DocumentID: 4,
		UserID:     0,
		CreatedAt:  taxapi.Time{Time: fixedNow},
	}
	if diff := cmp.Diff([]taxapi.ChatMessage{optimistic}, duringCall); diff != "" {
		t.Errorf("messages while in flight (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]taxapi.ChatMessage{optimistic, answer}, conv.Messages()); diff != "" {
		t.Errorf("messages after answer (-want +got):\n%s", diff)
	}
	assert.Equal(t, Sending, stateDuringCall)
	assert.Equal(t, Idle, conv.State())
	assert.Empty(t, conv.Draft())
	assert.Empty(t, conv.Err())
}

func TestConversation_HistoryIsKept(t *testing.T) {
	history := []taxapi.ChatMessage{
		{ID: 1, Content: "old q", Role: taxapi.RoleUser},
		{ID: 2, Content: "old a", Role: taxapi.RoleAssistant},
	}
	conv := NewConversation(askFunc(func(context.Context, int64, string) (taxapi.ChatMessage, error) {
		return taxapi.ChatMessage{ID: 4, Content: "new a", Role: taxapi.RoleAssistant}, nil
	}), 1, history, WithClock(func() time.Time { return fixedNow }))

	require.NoError(t, conv.Ask(context.Background(), "new q"))

	got := conv.Messages()
	var contents []string
	for _, m := range got {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"old q", "old a", "new q", "new a"}, contents)
}

func TestConversation_FailureKeepsOptimisticMessage(t *testing.T) {
	cause := &transport.APIError{Status: 500}
	conv := NewConversation(askFunc(func(context.Context, int64, string) (taxapi.ChatMessage, error) {
		return taxapi.ChatMessage{}, cause
	}), 4, nil, WithClock(func() time.Time { return fixedNow }))

	err := conv.Ask(context.Background(), "Is R&D relief available?")

	var f *Failure
	require.True(t, errors.As(err, &f))
	assert.Equal(t, SendFailedMessage, f.Message)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, SendFailedMessage, conv.Err())
	assert.Equal(t, "Is R&D relief available?", conv.Draft(), "draft should survive a failed send")
	assert.Equal(t, Idle, conv.State())

	want := []taxapi.ChatMessage{{
		ID:         fixedNow.UnixMilli(),
		Content:    "Is R&D relief available?",
		Role:       taxapi.RoleUser,
		DocumentID: 4,
	}}
	if diff := cmp.Diff(want, conv.Messages(), cmpopts.IgnoreFields(taxapi.ChatMessage{}, "CreatedAt")); diff != "" {
		t.Errorf("messages (-want +got):\n%s", diff)
	}
}

func TestConversation_SessionExpiredPassesThrough(t *testing.T) {
	conv := NewConversation(askFunc(func(context.Context, int64, string) (taxapi.ChatMessage, error) {
		return taxapi.ChatMessage{}, transport.ErrSessionExpired
	}), 4, nil)

	err := conv.Ask(context.Background(), "q")
	assert.True(t, errors.Is(err, transport.ErrSessionExpired))
	var f *Failure
	assert.False(t, errors.As(err, &f), "session expiry should not be wrapped as a page failure")
}

func TestConversation_BlankQuestionIsIgnored(t *testing.T) {
	called := false
	conv := NewConversation(askFunc(func(context.Context, int64, string) (taxapi.ChatMessage, error) {
		called = true
		return taxapi.ChatMessage{}, nil
	}), 4, nil)

	for _, q := range []string{"", "   ", "\n\t"} {
		require.NoError(t, conv.Ask(context.Background(), q))
	}
	assert.False(t, called)
	assert.Empty(t, conv.Messages())
}

func TestConversation_RejectsSecondSendWhileBusy(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	conv := NewConversation(askFunc(func(context.Context, int64, string) (taxapi.ChatMessage, error) {
		close(entered)
		<-release
		return taxapi.ChatMessage{ID: 2, Role: taxapi.RoleAssistant}, nil
	}), 4, nil)

	done := make(chan error, 1)
	go func() { done <- conv.Ask(context.Background(), "first") }()
	<-entered

	err := conv.Ask(context.Background(), "second")
	assert.ErrorIs(t, err, ErrBusy)

	close(release)
	require.NoError(t, <-done)
	assert.Len(t, conv.Messages(), 2)
	assert.Equal(t, "second", conv.Draft(), "draft typed during the call is not cleared")
}
