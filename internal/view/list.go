package view

import (
	"context"
	"fmt"
	"sync"

	"gosshub/client/internal/api"
	"gosshub/client/internal/model"
	"gosshub/client/internal/state"
)

// RecentTagLimit caps the tag cloud.
const RecentTagLimit = 20

type ListAPI interface {
	ListDocuments(ctx context.Context, opts api.ListOptions) ([]model.Document, error)
	DocumentsByTag(ctx context.Context, slug string) ([]model.Document, error)
	ListTags(ctx context.Context) ([]model.Tag, error)
}

type Dispatcher interface {
	Dispatch(ctx context.Context, action state.Action) (state.State, error)
}

// DocumentList backs the home feed and tag pages. Applied results are
// published to the store as documents/set.
type DocumentList struct {
	api   ListAPI
	store Dispatcher
	gen   Generation
	mu    sync.Mutex
}

func NewDocumentList(client ListAPI, store Dispatcher) *DocumentList {
	return &DocumentList{api: client, store: store}
}

func (l *DocumentList) Load(ctx context.Context, opts api.ListOptions) ([]model.Document, error) {
	return l.apply(ctx, func(ctx context.Context) ([]model.Document, error) {
		return l.api.ListDocuments(ctx, opts)
	})
}

func (l *DocumentList) ByTag(ctx context.Context, slug string) ([]model.Document, error) {
	return l.apply(ctx, func(ctx context.Context) ([]model.Document, error) {
		return l.api.DocumentsByTag(ctx, slug)
	})
}

func (l *DocumentList) apply(ctx context.Context, fetch func(context.Context) ([]model.Document, error)) ([]model.Document, error) {
	ticket := l.gen.Next()
	documents, err := fetch(ctx)
	if err != nil {
		if !l.gen.Current(ticket) {
			return nil, ErrStale
		}
		return nil, fmt.Errorf("list documents: %w", err)
	}
	if documents == nil {
		documents = []model.Document{}
	}
	var dispatchErr error
	applied := l.gen.Apply(&l.mu, ticket, func() {
		if l.store != nil {
			_, dispatchErr = l.store.Dispatch(ctx, state.SetDocuments(documents))
		}
	})
	if !applied {
		return nil, ErrStale
	}
	return documents, dispatchErr
}

// RecentTags returns at most RecentTagLimit tags in server order.
func RecentTags(ctx context.Context, client ListAPI) ([]model.Tag, error) {
	tags, err := client.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	if len(tags) > RecentTagLimit {
		tags = tags[:RecentTagLimit]
	}
	return tags, nil
}
