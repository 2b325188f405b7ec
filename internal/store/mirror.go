package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gosshub/client/internal/model"
)

var ErrNotFound = errors.New("document not mirrored")

// Mirror keeps an offline copy of fetched documents in Postgres.
type Mirror struct {
	db *sql.DB
}

func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

func (m *Mirror) DB() *sql.DB {
	return m.db
}

// SaveDocument replaces the mirrored copy of document with the fetched one.
func (m *Mirror) SaveDocument(ctx context.Context, document model.Document) error {
	if document.UUID == "" {
		return errors.New("save document: uuid is required")
	}
	latest, _ := document.Latest()
	latestTags, err := encodeTags(latest.Tags)
	if err != nil {
		return err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO documents (uuid, created_by, latest_hash, body, tags, author, updated_at, synced_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, NOW())
		ON CONFLICT (uuid) DO UPDATE SET
			created_by = EXCLUDED.created_by,
			latest_hash = EXCLUDED.latest_hash,
			body = EXCLUDED.body,
			tags = EXCLUDED.tags,
			author = EXCLUDED.author,
			updated_at = EXCLUDED.updated_at,
			synced_at = NOW()
	`, document.UUID, document.CreatedBy, latest.Hash, latest.Body, latestTags, latest.Author, nullTime(latest.Date.Time)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transformations WHERE document_uuid=$1`, document.UUID); err != nil {
		return fmt.Errorf("clear transformations: %w", err)
	}
	for i, t := range document.Transformations {
		tags, err := encodeTags(t.Tags)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO transformations (document_uuid, hash, position, body, tags, author, created_at)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)
			ON CONFLICT (document_uuid, hash) DO NOTHING
		`, document.UUID, t.Hash, i, t.Body, tags, t.Author, nullTime(t.Date.Time)); err != nil {
			return fmt.Errorf("insert transformation %s: %w", t.Hash, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE document_uuid=$1`, document.UUID); err != nil {
		return fmt.Errorf("clear comments: %w", err)
	}
	for i, c := range document.Comments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comments (document_uuid, id, position, parent_id, author, body, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, document.UUID, c.ID.String(), i, c.ParentID.String(), c.Author, c.Body, nullTime(c.Date.Time)); err != nil {
			return fmt.Errorf("insert comment %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror tx: %w", err)
	}
	return nil
}

// GetDocument rebuilds the document payload from the mirror, transformations
// newest first and comments in their fetched order.
func (m *Mirror) GetDocument(ctx context.Context, uuid string) (model.Document, error) {
	document := model.Document{UUID: uuid}
	err := m.db.QueryRowContext(ctx, `SELECT created_by FROM documents WHERE uuid=$1`, uuid).Scan(&document.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Document{}, ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("lookup document: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT hash, body, tags::text, author, created_at
		FROM transformations
		WHERE document_uuid=$1
		ORDER BY position ASC
	`, uuid)
	if err != nil {
		return model.Document{}, fmt.Errorf("query transformations: %w", err)
	}
	defer rows.Close()

	document.Transformations = make([]model.Transformation, 0)
	for rows.Next() {
		var (
			t       model.Transformation
			rawTags string
			created sql.NullTime
		)
		if err := rows.Scan(&t.Hash, &t.Body, &rawTags, &t.Author, &created); err != nil {
			return model.Document{}, fmt.Errorf("scan transformation: %w", err)
		}
		if t.Tags, err = decodeTags(rawTags); err != nil {
			return model.Document{}, err
		}
		t.Date = model.Time{Time: created.Time}
		document.Transformations = append(document.Transformations, t)
	}
	if err := rows.Err(); err != nil {
		return model.Document{}, fmt.Errorf("iterate transformations: %w", err)
	}

	comments, err := m.documentComments(ctx, uuid)
	if err != nil {
		return model.Document{}, err
	}
	document.Comments = make([]model.Comment, 0, len(comments))
	for _, c := range comments {
		document.Comments = append(document.Comments, model.Comment{
			ID:       model.ID(c.ID),
			ParentID: model.ID(c.ParentID),
			Author:   c.Author,
			Body:     c.Body,
			Date:     model.Time{Time: c.CreatedAt},
		})
	}
	return document, nil
}

func (m *Mirror) documentComments(ctx context.Context, uuid string) ([]CommentRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT document_uuid, id, position, parent_id, author, body, created_at
		FROM comments
		WHERE document_uuid=$1
		ORDER BY position ASC
	`, uuid)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()
	return scanComments(rows)
}

// ListDocuments returns the mirrored documents, most recently updated first.
func (m *Mirror) ListDocuments(ctx context.Context) ([]Summary, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT d.uuid, d.created_by, d.latest_hash, d.body, d.tags::text, d.author,
			d.updated_at, d.synced_at,
			(SELECT count(*) FROM transformations t WHERE t.document_uuid = d.uuid),
			(SELECT count(*) FROM comments c WHERE c.document_uuid = d.uuid)
		FROM documents d
		ORDER BY d.updated_at DESC NULLS LAST, d.uuid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	items := make([]Summary, 0)
	for rows.Next() {
		var (
			item    Summary
			rawTags string
			updated sql.NullTime
		)
		if err := rows.Scan(&item.UUID, &item.CreatedBy, &item.LatestHash, &item.Body, &rawTags, &item.Author,
			&updated, &item.SyncedAt, &item.Versions, &item.Comments); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		if item.Tags, err = decodeTags(rawTags); err != nil {
			return nil, err
		}
		item.UpdatedAt = updated.Time
		items = append(items, item)
	}
	return items, rows.Err()
}

// AllComments returns every mirrored comment, used to rebuild search indexes.
func (m *Mirror) AllComments(ctx context.Context) ([]CommentRecord, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT document_uuid, id, position, parent_id, author, body, created_at
		FROM comments
		ORDER BY document_uuid ASC, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()
	return scanComments(rows)
}

// DeleteDocument drops a document and, through cascades, its history.
func (m *Mirror) DeleteDocument(ctx context.Context, uuid string) error {
	res, err := m.db.ExecContext(ctx, `DELETE FROM documents WHERE uuid=$1`, uuid)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mirror) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

func scanComments(rows *sql.Rows) ([]CommentRecord, error) {
	items := make([]CommentRecord, 0)
	for rows.Next() {
		var (
			c       CommentRecord
			created sql.NullTime
		)
		if err := rows.Scan(&c.DocumentUUID, &c.ID, &c.Position, &c.ParentID, &c.Author, &c.Body, &created); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = created.Time
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return items, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(raw), nil
}

func decodeTags(raw string) ([]string, error) {
	tags := make([]string, 0)
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
