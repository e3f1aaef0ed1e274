// Package store handles SQLite jumpstat files.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/verte-zerg/jumpstats/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for jumpstat records.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS jumpstats (
			id INTEGER PRIMARY KEY,
			time INTEGER NOT NULL,
			distance REAL NOT NULL,
			strafes INTEGER NOT NULL,
			pre REAL NOT NULL,
			max INTEGER NOT NULL,
			height REAL NOT NULL,
			sync INTEGER NOT NULL,
			crouchjump INTEGER NOT NULL,
			min_forward INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_jumpstats_time ON jumpstats(time);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRecords appends records in a single transaction.
func (s *Store) InsertRecords(ctx context.Context, records []model.Record) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO jumpstats (time, distance, strafes, pre, max, height, sync, crouchjump, min_forward)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for _, r := range records {
		if _, err = stmt.ExecContext(ctx,
			r.Timestamp,
			r.Distance,
			r.Strafes,
			r.Pre,
			r.MaxVelocity,
			r.Height,
			r.Sync,
			r.CrouchJump,
			r.MinForward,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// EachRecord calls fn for every stored record in insertion order.
func (s *Store) EachRecord(ctx context.Context, fn func(model.Record)) (int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT time, distance, strafes, pre, max, height, sync, crouchjump, min_forward
		FROM jumpstats
		ORDER BY id ASC`)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	count := 0
	for rows.Next() {
		var r model.Record
		if err := rows.Scan(&r.Timestamp, &r.Distance, &r.Strafes, &r.Pre, &r.MaxVelocity, &r.Height, &r.Sync, &r.CrouchJump, &r.MinForward); err != nil {
			return count, err
		}
		fn(r)
		count++
	}
	if err := rows.Err(); err != nil {
		return count, err
	}
	return count, nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jumpstats`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
