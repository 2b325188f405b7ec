// Package store keeps an optional offline mirror of fetched documents in
// Postgres. The mirror backs offline reads and the full-text search fallback.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open mirror db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(2)
	db.SetMaxOpenConns(4)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mirror db: %w", err)
	}
	return db, nil
}

// OpenMirror opens the database and brings its schema up to date.
func OpenMirror(ctx context.Context, databaseURL, migrationsDir string) (*Mirror, error) {
	db, err := Open(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := ApplyMigrations(ctx, db, migrationsDir); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewMirror(db), nil
}

func (m *Mirror) Close() error {
	return m.db.Close()
}
