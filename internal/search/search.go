// Package search finds mirrored documents and comments offline. Meilisearch is
// tried first; the Postgres mirror's full-text index is the fallback.
package search

import (
	"context"
	"strconv"

	"gosshub/client/internal/export"
	"gosshub/client/internal/model"
	"gosshub/client/internal/store"
)

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultDocument ResultType = "document"
	ResultComment  ResultType = "comment"
)

// Result is a single search hit.
type Result struct {
	Type         ResultType `json:"type"`
	ID           string     `json:"id"`
	DocumentUUID string     `json:"documentUuid"`
	Title        string     `json:"title"`
	Snippet      string     `json:"snippet"`
	Author       string     `json:"author"`
}

// Query describes a search request.
type Query struct {
	Text       string
	FilterType ResultType // empty = all types
	Tag        string
	Limit      int
	Offset     int
}

// Response is what the search command prints.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
	Backend string   `json:"backend"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, int, error)
	Healthy() bool
}

// Indexer can push mirrored entities into a search index.
type Indexer interface {
	IndexDocuments(documents []DocumentRecord) error
	IndexComments(comments []CommentRecord) error
	DeleteDocument(uuid string, comments int) error
}

// DocumentRecord is the data indexed for a document's latest version.
type DocumentRecord struct {
	ID     string   `json:"id"`
	Hash   string   `json:"hash"`
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Tags   []string `json:"tags"`
	Author string   `json:"author"`
}

// CommentRecord is the data indexed for one comment. Comment ids are not
// unique within a document, so the key is built from the position instead.
type CommentRecord struct {
	ID           string `json:"id"`
	CommentID    string `json:"commentId"`
	DocumentUUID string `json:"documentUuid"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	Author       string `json:"author"`
}

// CommentKey is the index key of the comment at position in a document.
func CommentKey(uuid string, position int) string {
	return uuid + "_" + strconv.Itoa(position)
}

// Records builds the index records of a fetched document.
func Records(document model.Document) (DocumentRecord, []CommentRecord) {
	latest, _ := document.Latest()
	title := export.Title(latest.Body)
	record := DocumentRecord{
		ID:     document.UUID,
		Hash:   latest.Hash,
		Title:  title,
		Body:   latest.Body,
		Tags:   nonNilTags(latest.Tags),
		Author: model.DisplayName(latest.Author),
	}
	comments := make([]CommentRecord, 0, len(document.Comments))
	for i, c := range document.Comments {
		comments = append(comments, CommentRecord{
			ID:           CommentKey(document.UUID, i),
			CommentID:    c.ID.String(),
			DocumentUUID: document.UUID,
			Title:        title,
			Body:         c.Body,
			Author:       model.DisplayName(c.Author),
		})
	}
	return record, comments
}

// MirrorRecords converts mirror rows into index records.
func MirrorRecords(summaries []store.Summary, stored []store.CommentRecord) ([]DocumentRecord, []CommentRecord) {
	titles := make(map[string]string, len(summaries))
	documents := make([]DocumentRecord, 0, len(summaries))
	for _, s := range summaries {
		title := export.Title(s.Body)
		titles[s.UUID] = title
		documents = append(documents, DocumentRecord{
			ID:     s.UUID,
			Hash:   s.LatestHash,
			Title:  title,
			Body:   s.Body,
			Tags:   nonNilTags(s.Tags),
			Author: model.DisplayName(s.Author),
		})
	}
	comments := make([]CommentRecord, 0, len(stored))
	for _, c := range stored {
		comments = append(comments, CommentRecord{
			ID:           CommentKey(c.DocumentUUID, c.Position),
			CommentID:    c.ID,
			DocumentUUID: c.DocumentUUID,
			Title:        titles[c.DocumentUUID],
			Body:         c.Body,
			Author:       model.DisplayName(c.Author),
		})
	}
	return documents, comments
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
