package view

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosshub/client/internal/api"
	"gosshub/client/internal/model"
	"gosshub/client/internal/state"
)

func TestDocumentListPublishesToStore(t *testing.T) {
	store := &recordingStore{}
	list := NewDocumentList(&fakeListAPI{
		listFn: func(ctx context.Context, opts api.ListOptions) ([]model.Document, error) {
			assert.Equal(t, api.ListOptions{Page: 2, Query: "go"}, opts)
			return []model.Document{{UUID: "a"}, {UUID: "b"}}, nil
		},
	}, store)

	docs, err := list.Load(context.Background(), api.ListOptions{Page: 2, Query: "go"})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	require.Len(t, store.actions, 1)
	assert.Equal(t, state.DocumentsSet, store.actions[0].Kind)
	assert.Len(t, store.state.Documents, 2)
}

func TestDocumentListEmptyIsNotNil(t *testing.T) {
	list := NewDocumentList(&fakeListAPI{
		byTagFn: func(ctx context.Context, slug string) ([]model.Document, error) { return nil, nil },
	}, nil)
	docs, err := list.ByTag(context.Background(), "go")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestDocumentListStale(t *testing.T) {
	store := &recordingStore{}
	first := make(chan struct{})
	release := make(chan struct{})
	calls := 0
	list := NewDocumentList(&fakeListAPI{
		listFn: func(ctx context.Context, opts api.ListOptions) ([]model.Document, error) {
			calls++
			if calls == 1 {
				close(first)
				<-release
				return []model.Document{{UUID: "page-1"}}, nil
			}
			return []model.Document{{UUID: "page-2"}}, nil
		},
	}, store)

	done := make(chan error, 1)
	go func() {
		_, err := list.Load(context.Background(), api.ListOptions{Page: 1})
		done <- err
	}()
	<-first
	_, err := list.Load(context.Background(), api.ListOptions{Page: 2})
	require.NoError(t, err)
	close(release)

	assert.ErrorIs(t, <-done, ErrStale)
	require.Len(t, store.actions, 1)
	assert.Equal(t, "page-2", store.state.Documents[0].UUID)
}

func TestDocumentListError(t *testing.T) {
	boom := errors.New("down")
	store := &recordingStore{}
	list := NewDocumentList(&fakeListAPI{
		listFn: func(ctx context.Context, opts api.ListOptions) ([]model.Document, error) { return nil, boom },
	}, store)
	_, err := list.Load(context.Background(), api.ListOptions{})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, store.actions)
}

func TestRecentTagsCapped(t *testing.T) {
	var all []model.Tag
	for i := 0; i < 30; i++ {
		all = append(all, model.Tag{Name: fmt.Sprintf("t%d", i), Count: i})
	}
	tags, err := RecentTags(context.Background(), &fakeListAPI{
		tagsFn: func(ctx context.Context) ([]model.Tag, error) { return all, nil },
	})
	require.NoError(t, err)
	assert.Len(t, tags, RecentTagLimit)
	assert.Equal(t, "t0", tags[0].Name)
}
