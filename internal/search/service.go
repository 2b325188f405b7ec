package search

import (
	"context"
	"errors"
	"sync"

	"gosshub/client/internal/logger"
	"gosshub/client/internal/model"
	"gosshub/client/internal/store"
)

// ErrUnavailable is returned by Reindex when there is no healthy index.
var ErrUnavailable = errors.New("search index unavailable")

// Backend is a search index that can also be written to.
type Backend interface {
	Searcher
	Indexer
}

// MirrorLoader reads everything that should be searchable from the mirror.
type MirrorLoader interface {
	ListDocuments(ctx context.Context) ([]store.Summary, error)
	AllComments(ctx context.Context) ([]store.CommentRecord, error)
}

// Service is the facade that tries the index first and falls back to PG FTS.
// Either side may be nil.
type Service struct {
	primary  Backend
	fallback Searcher
	pending  sync.WaitGroup
}

func NewService(primary Backend, fallback Searcher) *Service {
	return &Service{primary: primary, fallback: fallback}
}

func (s *Service) primaryHealthy() bool {
	return s.primary != nil && s.primary.Healthy()
}

// Search tries the index if healthy, otherwise falls back to PG FTS. Backend
// failures are logged and produce an empty response.
func (s *Service) Search(ctx context.Context, q Query) Response {
	log := logger.For(ctx).WithField("query", q.Text)
	if s.primaryHealthy() {
		results, total, err := s.primary.Search(ctx, q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text, Backend: "meilisearch"}
		}
		log.WithError(err).Warn("search: meilisearch error, falling back to pgfts")
	}

	if s.fallback == nil || !s.fallback.Healthy() {
		return Response{Results: []Result{}, Query: q.Text}
	}
	results, total, err := s.fallback.Search(ctx, q)
	if err != nil {
		log.WithError(err).Error("search: pgfts error")
		return Response{Results: []Result{}, Query: q.Text, Backend: "pgfts"}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text, Backend: "pgfts"}
}

// Index pushes a fetched document and its comments to the index in the
// background. Call Wait before exiting to flush pending work.
func (s *Service) Index(ctx context.Context, document model.Document) {
	if !s.primaryHealthy() {
		return
	}
	record, comments := Records(document)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		log := logger.For(ctx).WithField("document", document.UUID)
		if err := s.primary.IndexDocuments([]DocumentRecord{record}); err != nil {
			log.WithError(err).Warn("search: index document")
			return
		}
		if err := s.primary.IndexComments(comments); err != nil {
			log.WithError(err).Warn("search: index comments")
		}
	}()
}

// Remove drops a document and its comments from the index in the background.
func (s *Service) Remove(ctx context.Context, uuid string, comments int) {
	if !s.primaryHealthy() {
		return
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.primary.DeleteDocument(uuid, comments); err != nil {
			logger.For(ctx).WithError(err).WithField("document", uuid).Warn("search: delete document")
		}
	}()
}

// Reindex reads every mirrored document and comment and pushes them to the
// index synchronously. It returns the number of documents and comments sent.
func (s *Service) Reindex(ctx context.Context, mirror MirrorLoader) (int, int, error) {
	if !s.primaryHealthy() {
		return 0, 0, ErrUnavailable
	}
	summaries, err := mirror.ListDocuments(ctx)
	if err != nil {
		return 0, 0, err
	}
	stored, err := mirror.AllComments(ctx)
	if err != nil {
		return 0, 0, err
	}
	documents, comments := MirrorRecords(summaries, stored)
	if err := s.primary.IndexDocuments(documents); err != nil {
		return 0, 0, err
	}
	if err := s.primary.IndexComments(comments); err != nil {
		return len(documents), 0, err
	}
	logger.For(ctx).WithField("documents", len(documents)).WithField("comments", len(comments)).Info("search: reindexed mirror")
	return len(documents), len(comments), nil
}

// Wait blocks until background indexing has finished.
func (s *Service) Wait() {
	s.pending.Wait()
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
