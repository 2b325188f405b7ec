package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gosshub/client/internal/export"
	"gosshub/client/internal/model"
)

// PgFTS implements Searcher over the Postgres mirror's tsvector columns.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy reports whether the mirror database is configured.
func (p *PgFTS) Healthy() bool {
	return p != nil && p.db != nil
}

// Search executes a UNION ALL over mirrored documents and comments using
// plainto_tsquery and ts_rank, with ts_headline for snippets.
func (p *PgFTS) Search(ctx context.Context, q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}
	dataSQL, countSQL, args := buildFTS(q)
	if dataSQL == "" {
		return nil, 0, nil
	}

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			r    Result
			typ  string
			body string
		)
		if err := rows.Scan(&typ, &r.ID, &r.DocumentUUID, &body, &r.Snippet, &r.Author); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		r.Type = ResultType(typ)
		r.Title = export.Title(body)
		r.Author = model.DisplayName(r.Author)
		results = append(results, r)
	}
	return results, total, rows.Err()
}

func buildFTS(q Query) (dataSQL, countSQL string, args []any) {
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('english', $1)"
	args = []any{q.Text}

	var subQueries []string
	if q.FilterType == "" || q.FilterType == ResultDocument {
		docWhere := "d.fts @@ " + tsQuery
		if q.Tag != "" {
			args = append(args, q.Tag)
			docWhere += fmt.Sprintf(" AND d.tags ? $%d", len(args))
		}
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'document'::text AS type, d.uuid AS id, d.uuid AS document_uuid, d.body AS title_body,
				ts_headline('english', d.body, %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				d.author,
				ts_rank(d.fts, %s) AS rank
			FROM documents d
			WHERE %s`, tsQuery, tsQuery, docWhere))
	}

	if (q.FilterType == "" || q.FilterType == ResultComment) && q.Tag == "" {
		subQueries = append(subQueries, fmt.Sprintf(`
			SELECT 'comment'::text AS type, c.id, c.document_uuid, d.body AS title_body,
				ts_headline('english', c.body, %s, 'MaxFragments=1,MaxWords=30') AS snippet,
				c.author,
				ts_rank(c.fts, %s) AS rank
			FROM comments c
			JOIN documents d ON d.uuid = c.document_uuid
			WHERE c.fts @@ %s`, tsQuery, tsQuery, tsQuery))
	}

	if len(subQueries) == 0 {
		return "", "", nil
	}

	union := strings.Join(subQueries, " UNION ALL ")
	countSQL = fmt.Sprintf("SELECT count(*) FROM (%s) sub", union)
	dataSQL = fmt.Sprintf(`SELECT type, id, document_uuid, title_body, snippet, author
		FROM (%s) sub
		ORDER BY rank DESC
		LIMIT %d OFFSET %d`, union, limit, offset)
	return dataSQL, countSQL, args
}
