package view

import (
	"context"
	"sync"

	"gosshub/client/internal/api"
	"gosshub/client/internal/model"
	"gosshub/client/internal/state"
)

type fakeDocumentAPI struct {
	getFn     func(ctx context.Context, uuid string) (model.Document, error)
	updateFn  func(ctx context.Context, uuid string, input api.DocumentInput) (api.Message, error)
	commentFn func(ctx context.Context, input api.CommentInput) (api.Message, error)
	watchFn   func(ctx context.Context, uuid string, watch bool) (api.Message, error)
}

func (f *fakeDocumentAPI) GetDocument(ctx context.Context, uuid string) (model.Document, error) {
	return f.getFn(ctx, uuid)
}

func (f *fakeDocumentAPI) UpdateDocument(ctx context.Context, uuid string, input api.DocumentInput) (api.Message, error) {
	return f.updateFn(ctx, uuid, input)
}

func (f *fakeDocumentAPI) PostComment(ctx context.Context, input api.CommentInput) (api.Message, error) {
	return f.commentFn(ctx, input)
}

func (f *fakeDocumentAPI) Watch(ctx context.Context, uuid string) (api.Message, error) {
	return f.watchFn(ctx, uuid, true)
}

func (f *fakeDocumentAPI) Unwatch(ctx context.Context, uuid string) (api.Message, error) {
	return f.watchFn(ctx, uuid, false)
}

type fakeListAPI struct {
	listFn  func(ctx context.Context, opts api.ListOptions) ([]model.Document, error)
	byTagFn func(ctx context.Context, slug string) ([]model.Document, error)
	tagsFn  func(ctx context.Context) ([]model.Tag, error)
}

func (f *fakeListAPI) ListDocuments(ctx context.Context, opts api.ListOptions) ([]model.Document, error) {
	return f.listFn(ctx, opts)
}

func (f *fakeListAPI) DocumentsByTag(ctx context.Context, slug string) ([]model.Document, error) {
	return f.byTagFn(ctx, slug)
}

func (f *fakeListAPI) ListTags(ctx context.Context) ([]model.Tag, error) {
	return f.tagsFn(ctx)
}

type recordingStore struct {
	mu      sync.Mutex
	state   state.State
	actions []state.Action
}

func (r *recordingStore) Dispatch(_ context.Context, action state.Action) (state.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
	r.state = state.Reduce(r.state, action)
	return r.state, nil
}

type fakeAdminAPI struct {
	mu       sync.Mutex
	me       model.User
	users    []model.User
	pages    []model.Page
	calls    []string
	usersErr error
}

func (f *fakeAdminAPI) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeAdminAPI) User(_ context.Context, username string) (model.User, error) {
	f.record("user " + username)
	return f.me, nil
}

func (f *fakeAdminAPI) Users(context.Context, string) ([]model.User, error) {
	f.record("users")
	return f.users, f.usersErr
}

func (f *fakeAdminAPI) Pages(context.Context) ([]model.Page, error) {
	f.record("pages")
	return f.pages, nil
}

func (f *fakeAdminAPI) SetUserFlag(_ context.Context, id model.ID, flag string, value bool) (api.Message, error) {
	f.mu.Lock()
	for i := range f.users {
		if f.users[i].ID == id {
			switch flag {
			case "is_admin":
				f.users[i].IsAdmin = value
			case "is_verified":
				f.users[i].IsVerified = value
			}
		}
	}
	f.mu.Unlock()
	f.record("flag " + flag)
	return api.Message{}, nil
}

func (f *fakeAdminAPI) DeleteUser(_ context.Context, id model.ID) (api.Message, error) {
	f.mu.Lock()
	kept := f.users[:0:0]
	for _, u := range f.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	f.users = kept
	f.mu.Unlock()
	f.record("delete user " + id.String())
	return api.Message{}, nil
}

func (f *fakeAdminAPI) CreatePage(_ context.Context, page model.Page) (api.Message, error) {
	f.mu.Lock()
	f.pages = append(f.pages, page)
	f.mu.Unlock()
	f.record("create page " + page.Slug)
	return api.Message{}, nil
}

func (f *fakeAdminAPI) UpdatePage(_ context.Context, slug, title, body string) (api.Message, error) {
	f.record("update page " + slug)
	return api.Message{}, nil
}

func (f *fakeAdminAPI) DeletePage(_ context.Context, slug string) (api.Message, error) {
	f.record("delete page " + slug)
	return api.Message{}, nil
}

type fakeAccountAPI struct {
	user    model.User
	updates []map[string]any
	deleted bool
}

func (f *fakeAccountAPI) User(context.Context, string) (model.User, error) {
	return f.user, nil
}

func (f *fakeAccountAPI) UpdateUser(_ context.Context, fields map[string]any) (api.Message, error) {
	f.updates = append(f.updates, fields)
	return api.Message{}, nil
}

func (f *fakeAccountAPI) DeleteUser(_ context.Context, id model.ID) (api.Message, error) {
	f.deleted = id.IsZero()
	return api.Message{}, nil
}
