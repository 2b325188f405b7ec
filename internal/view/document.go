package view

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"gosshub/client/internal/api"
	"gosshub/client/internal/history"
	"gosshub/client/internal/logger"
	"gosshub/client/internal/model"
	"gosshub/client/internal/thread"
)

type DocumentAPI interface {
	GetDocument(ctx context.Context, uuid string) (model.Document, error)
	UpdateDocument(ctx context.Context, uuid string, input api.DocumentInput) (api.Message, error)
	PostComment(ctx context.Context, input api.CommentInput) (api.Message, error)
	Watch(ctx context.Context, uuid string) (api.Message, error)
	Unwatch(ctx context.Context, uuid string) (api.Message, error)
}

var (
	ErrEmptyComment = errors.New("comment is empty")
	ErrReplyDepth   = errors.New("replies are not allowed this deep")
	ErrNoComment    = errors.New("comment not found")
)

// Snapshot is everything needed to draw a document view.
type Snapshot struct {
	Document model.Document
	Mode     history.Mode
	Current  model.Transformation
	Position int
	Total    int
	Path     string
	Threads  []*thread.Node
	Draft    history.Submission
}

// DocumentView is one viewing session of a document. Closing it cancels any
// request still in flight.
type DocumentView struct {
	api    DocumentAPI
	uuid   string
	ctx    context.Context
	cancel context.CancelFunc
	gen    Generation

	mu       sync.Mutex
	document model.Document
	viewer   *history.Viewer
	threads  []*thread.Node
	loaded   bool

	// OnLoad, when set, receives every freshly applied document.
	OnLoad func(ctx context.Context, document model.Document)
}

func OpenDocument(parent context.Context, client DocumentAPI, uuid string) *DocumentView {
	ctx, cancel := context.WithCancel(logger.NewContextWithFields(parent, logrus.Fields{"document": uuid}))
	return &DocumentView{api: client, uuid: uuid, ctx: ctx, cancel: cancel}
}

func (v *DocumentView) UUID() string {
	return v.uuid
}

func (v *DocumentView) Close() {
	v.cancel()
}

// Load fetches the document and opens it at hash, or at the latest version
// when hash is empty. An unknown hash is not an error: the view enters
// history.ModeMissing.
func (v *DocumentView) Load(hash string) error {
	ticket := v.gen.Next()
	document, err := v.api.GetDocument(v.ctx, v.uuid)
	if v.ctx.Err() != nil {
		return ErrClosed
	}
	if err != nil {
		if !v.gen.Current(ticket) {
			return ErrStale
		}
		return fmt.Errorf("load document %s: %w", v.uuid, err)
	}

	applied := v.gen.Apply(&v.mu, ticket, func() {
		v.document = document
		v.viewer = history.NewViewer(document.Transformations, hash)
		v.threads = thread.Build(document.Comments)
		v.loaded = true
	})
	if !applied {
		logger.For(v.ctx).WithField("ticket", ticket).Debug("discarding stale document response")
		return ErrStale
	}

	if v.OnLoad != nil {
		v.OnLoad(v.ctx, document)
	}
	return nil
}

// reload refetches after a write, keeping the version on screen when
// keepPosition is set and going back to the latest version otherwise.
func (v *DocumentView) reload(keepPosition bool) error {
	hash := ""
	if keepPosition {
		v.mu.Lock()
		if v.viewer != nil && v.viewer.Mode() == history.ModeHistorical {
			if current, err := v.viewer.Current(); err == nil {
				hash = current.Hash
			}
		}
		v.mu.Unlock()
	}
	return v.Load(hash)
}

func (v *DocumentView) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return Snapshot{Mode: history.ModeMissing}
	}
	snap := Snapshot{
		Document: v.document,
		Mode:     v.viewer.Mode(),
		Path:     v.viewer.Path(v.uuid),
		Threads:  v.threads,
	}
	snap.Current, _ = v.viewer.Current()
	snap.Position, snap.Total = v.viewer.Position()
	snap.Draft, _ = v.viewer.Draft()
	return snap
}

// withViewer runs fn under the lock once the document is loaded.
func (v *DocumentView) withViewer(fn func(*history.Viewer) error) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.loaded {
		return history.ErrVersionNotFound
	}
	return fn(v.viewer)
}

func (v *DocumentView) move(step func(*history.Viewer) bool) bool {
	moved := false
	_ = v.withViewer(func(h *history.Viewer) error {
		moved = step(h)
		return nil
	})
	return moved
}

func (v *DocumentView) Older() bool  { return v.move((*history.Viewer).Older) }
func (v *DocumentView) Newer() bool  { return v.move((*history.Viewer).Newer) }
func (v *DocumentView) Oldest() bool { return v.move((*history.Viewer).OldestVersion) }
func (v *DocumentView) Newest() bool { return v.move((*history.Viewer).NewestVersion) }

func (v *DocumentView) Goto(hash string) error {
	return v.withViewer(func(h *history.Viewer) error { return h.Goto(hash) })
}

func (v *DocumentView) Edit() error {
	return v.withViewer((*history.Viewer).Edit)
}

func (v *DocumentView) SetDraft(body string, tags []string) error {
	return v.withViewer(func(h *history.Viewer) error { return h.SetDraft(body, tags) })
}

func (v *DocumentView) Cancel() error {
	return v.withViewer((*history.Viewer).Cancel)
}

// Save writes the draft as a new version. It reports false without calling
// the API when the draft matches the latest version.
func (v *DocumentView) Save() (bool, error) {
	var (
		submission history.Submission
		changed    bool
	)
	err := v.withViewer(func(h *history.Viewer) error {
		var err error
		submission, changed, err = h.Submit()
		return err
	})
	if err != nil || !changed {
		return false, err
	}
	if err := v.write(submission); err != nil {
		return false, err
	}
	return true, v.reload(false)
}

// Restore copies the version on screen into a new latest version.
func (v *DocumentView) Restore() error {
	var submission history.Submission
	err := v.withViewer(func(h *history.Viewer) error {
		var err error
		submission, err = h.Restore()
		return err
	})
	if err != nil {
		return err
	}
	if err := v.write(submission); err != nil {
		return err
	}
	return v.reload(false)
}

func (v *DocumentView) write(submission history.Submission) error {
	tags := submission.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := v.api.UpdateDocument(v.ctx, v.uuid, api.DocumentInput{Body: submission.Body, Tags: tags})
	if err != nil {
		return fmt.Errorf("update document %s: %w", v.uuid, err)
	}
	return nil
}

// Comment posts a root comment, or a reply when parentID is set. Replies
// are refused below thread.MaxReplyDepth.
func (v *DocumentView) Comment(parentID model.ID, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrEmptyComment
	}
	if !parentID.IsZero() {
		v.mu.Lock()
		_, depth, ok := thread.Find(v.threads, parentID)
		v.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", ErrNoComment, parentID)
		}
		if !thread.CanReply(depth) {
			return ErrReplyDepth
		}
	}
	_, err := v.api.PostComment(v.ctx, api.CommentInput{Body: body, UUID: v.uuid, ParentID: parentID})
	if err != nil {
		return fmt.Errorf("post comment: %w", err)
	}
	return v.reload(true)
}

func (v *DocumentView) SetWatching(watch bool) error {
	var err error
	if watch {
		_, err = v.api.Watch(v.ctx, v.uuid)
	} else {
		_, err = v.api.Unwatch(v.ctx, v.uuid)
	}
	if err != nil {
		return fmt.Errorf("watch document %s: %w", v.uuid, err)
	}
	v.mu.Lock()
	v.document.Watching = watch
	v.mu.Unlock()
	return nil
}
