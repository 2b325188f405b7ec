package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"gosshub/client/internal/logger"
)

var migrationFile = regexp.MustCompile(`^(\d+)_[\w-]+\.(up|down)\.sql$`)

// migration is one numbered schema step of the mirror, with both directions.
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// loadMigrations pairs the up and down files in dir, ordered by version.
// Files that do not follow NNNN_name.(up|down).sql are ignored.
func loadMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations %s: %w", dir, err)
	}
	byVersion := map[int]*migration{}
	for _, entry := range entries {
		m := migrationFile.FindStringSubmatch(entry.Name())
		if entry.IsDir() || m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])
		step, ok := byVersion[version]
		if !ok {
			step = &migration{version: version}
			byVersion[version] = step
		}
		path := filepath.Join(dir, entry.Name())
		switch m[2] {
		case "up":
			if step.up != "" {
				return nil, fmt.Errorf("migration %d has two up files", version)
			}
			step.up, step.name = path, entry.Name()
		case "down":
			if step.down != "" {
				return nil, fmt.Errorf("migration %d has two down files", version)
			}
			step.down = path
		}
	}

	steps := make([]migration, 0, len(byVersion))
	for version, step := range byVersion {
		if step.up == "" || step.down == "" {
			return nil, fmt.Errorf("migration %d needs both an up and a down file", version)
		}
		steps = append(steps, *step)
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].version < steps[j].version })
	return steps, nil
}

// ApplyMigrations brings the mirror schema up to date. Each pending step runs
// in its own transaction together with its schema_migrations row.
func ApplyMigrations(ctx context.Context, db *sql.DB, dir string) error {
	log := logger.For(ctx).WithField("dir", dir)
	steps, err := loadMigrations(dir)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	applied := 0
	for _, step := range steps {
		var done bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, step.name).Scan(&done); err != nil {
			return fmt.Errorf("check migration %s: %w", step.name, err)
		}
		if done {
			continue
		}
		if err := runStep(ctx, db, step.up, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, step.name)
			return err
		}); err != nil {
			return fmt.Errorf("migration %s: %w", step.name, err)
		}
		applied++
		log.WithField("version", step.name).Info("mirror migration applied")
	}
	if applied == 0 {
		log.Debug("mirror schema up to date")
	}
	return nil
}

// RevertMigrations drops the mirror schema by running every down file,
// newest first, and forgetting the applied versions.
func RevertMigrations(ctx context.Context, db *sql.DB, dir string) error {
	steps, err := loadMigrations(dir)
	if err != nil {
		return err
	}
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := runStep(ctx, db, step.down, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = $1`, step.name)
			return err
		}); err != nil {
			return fmt.Errorf("revert %s: %w", step.name, err)
		}
		logger.For(ctx).WithField("version", step.name).Info("mirror migration reverted")
	}
	return nil
}

func runStep(ctx context.Context, db *sql.DB, path string, record func(*sql.Tx) error) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, string(script)); err != nil {
		return err
	}
	if err := record(tx); err != nil {
		return err
	}
	return tx.Commit()
}
