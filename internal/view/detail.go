package view

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kalambet/taxdesk/internal/taxapi"
)

// ChatService is implemented by *taxapi.ChatClient.
type ChatService interface {
	Asker
	History(ctx context.Context, documentID int64) ([]taxapi.ChatMessage, error)
}

// DocumentDetail is a document together with its chat.
type DocumentDetail struct {
	Document     taxapi.Document
	Conversation *Conversation
}

// LoadDocumentDetail fetches the document and its chat history
// concurrently. Either failure fails the page; the other request still
// runs to completion.
func LoadDocumentDetail(ctx context.Context, docs DocumentService, chat ChatService, id int64, opts ...ConversationOption) (*DocumentDetail, error) {
	var (
		doc     taxapi.Document
		history []taxapi.ChatMessage
	)
	var g errgroup.Group
	g.Go(func() error {
		var err error
		doc, err = docs.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = chat.History(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fail("Failed to load document data", err)
	}
	return &DocumentDetail{
		Document:     doc,
		Conversation: NewConversation(chat, id, history, opts...),
	}, nil
}

// NewsService is implemented by *taxapi.NewsClient.
type NewsService interface {
	List(ctx context.Context) ([]taxapi.News, error)
	Get(ctx context.Context, id int64) (taxapi.News, error)
	Personalized(ctx context.Context, id int64) (taxapi.PersonalizedNews, error)
}

// NewsDetail is a news item and, when available, the summary personalised
// for the caller's company.
type NewsDetail struct {
	News       taxapi.News
	Insight    *taxapi.PersonalizedNews
	InsightErr error
}

// LoadNewsList fetches every news item.
func LoadNewsList(ctx context.Context, svc NewsService) ([]taxapi.News, error) {
	items, err := svc.List(ctx)
	if err != nil {
		return nil, fail("Failed to load news data", err)
	}
	return items, nil
}

// LoadNewsDetail fetches a news item and its personalised insight in
// parallel. A failing insight is recorded in InsightErr and does not fail
// the page.
func LoadNewsDetail(ctx context.Context, svc NewsService, id int64) (*NewsDetail, error) {
	nd := &NewsDetail{}
	var g errgroup.Group
	g.Go(func() error {
		var err error
		nd.News, err = svc.Get(ctx, id)
		return err
	})
	g.Go(func() error {
		insight, err := svc.Personalized(ctx, id)
		if err != nil {
			nd.InsightErr = err
			return nil
		}
		nd.Insight = &insight
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fail("Failed to load news data", err)
	}
	return nd, nil
}
