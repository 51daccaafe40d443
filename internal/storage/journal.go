/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	applog "floorsketch/internal/log"
	"floorsketch/internal/telemetry"
	"floorsketch/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// JournalFileName is the default file name when only a directory is configured.
	JournalFileName = "journal.sqlite"

	// schemaVersion tracks the local SQLite schema for the journal.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// Record is one journaled operation.
type Record struct {
	ID       int64
	Session  string
	Op       string
	Kind     string
	Shapes   int
	Openings int
	TS       time.Time
}

// Journal wraps the journal database. It is safe for concurrent use.
type Journal struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// language=SQL
// dialect=SQLite
const insertOpSQL = `INSERT INTO ops(session, ts, op, kind, shapes, openings) VALUES (?, ?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listOpsSQL = `SELECT id, session, ts, op, kind, shapes, openings FROM ops
WHERE (? = '' OR session = ?) ORDER BY id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const countOpsSQL = `SELECT COUNT(*) FROM ops WHERE (? = '' OR session = ?)`

// language=SQL
// dialect=SQLite
const pruneOpsSQL = `DELETE FROM ops WHERE id NOT IN (SELECT id FROM ops ORDER BY id DESC LIMIT ?)`

// OpenJournal opens or creates the journal database at path, enables WAL
// mode, and ensures the meta/version tables and schema exist. A path that
// names an existing directory gets JournalFileName appended.
func OpenJournal(path string) (*Journal, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "journal_open").With(
		slog.String("path", path),
	)
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("journal path is required")
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, JournalFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.Error("create journal dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	// Convert to forward slashes for the SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure journal schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("journal ready")
	return &Journal{db: db, path: path, log: applog.WithComponent("storage")}, nil
}

// Path returns the database file path.
func (j *Journal) Path() string { return j.path }

// Close releases the database.
func (j *Journal) Close() error { return j.db.Close() }

func ensureMetaAndVersion(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema so migrations can run.
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS ops (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			session   TEXT NOT NULL,
			ts        TEXT NOT NULL,
			op        TEXT NOT NULL,
			kind      TEXT,
			shapes    INTEGER NOT NULL DEFAULT 0,
			openings  INTEGER NOT NULL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS snapshots (
			id       INTEGER PRIMARY KEY AUTOINCREMENT,
			session  TEXT NOT NULL,
			ts       TEXT NOT NULL,
			blob     BLOB NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ops_session ON ops(session, id);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create journal schema: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var cur int
	if err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		// Never downgrade.
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		switch next {
		case 2:
			tx, err := db.BeginTx(ctx, nil)
			if err != nil {
				return fmt.Errorf("begin migration %d: %w", next, err)
			}
			stmts := []string{
				`CREATE INDEX IF NOT EXISTS idx_snapshots_session ON snapshots(session, ts);`,
			}
			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					_ = tx.Rollback()
					return fmt.Errorf("migration %d stmt failed: %w", next, err)
				}
			}
			if _, err := tx.ExecContext(ctx, `UPDATE version SET schema=?, updated_at=? WHERE id=1`, next, time.Now().UTC().Format(time.RFC3339)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d update version: %w", next, err)
			}
			if err := tx.Commit(); err != nil {
				return fmt.Errorf("migration %d commit: %w", next, err)
			}
		}
		cur = next
	}
	return nil
}

// SchemaVersion reads the stored schema version.
func (j *Journal) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v)
	return v, err
}

// Append stores r and returns its row ID. A zero TS is set to now.
func (j *Journal) Append(ctx context.Context, r Record) (int64, error) {
	if r.Op == "" {
		return 0, errors.New("journal record needs an op")
	}
	if r.TS.IsZero() {
		r.TS = time.Now()
	}
	res, err := j.db.ExecContext(ctx, insertOpSQL, r.Session, r.TS.UTC().Format(time.RFC3339Nano), r.Op, r.Kind, r.Shapes, r.Openings)
	if err != nil {
		return 0, fmt.Errorf("append op: %w", err)
	}
	return res.LastInsertId()
}

// Write implements telemetry.Sink.
func (j *Journal) Write(ctx context.Context, e telemetry.Event) error {
	_, err := j.Append(ctx, Record{Session: e.Session, Op: e.Op, Kind: e.Kind, Shapes: e.Shapes, Openings: e.Openings, TS: e.TS})
	return err
}

// List returns up to limit records, newest first. An empty session lists all.
func (j *Journal) List(ctx context.Context, session string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := j.db.QueryContext(ctx, listOpsSQL, session, session, limit)
	if err != nil {
		return nil, fmt.Errorf("list ops: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Record
	for rows.Next() {
		var r Record
		var ts string
		var kind sql.NullString
		if err := rows.Scan(&r.ID, &r.Session, &ts, &r.Op, &kind, &r.Shapes, &r.Openings); err != nil {
			return nil, err
		}
		r.Kind = kind.String
		r.TS, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of records for session, or all when empty.
func (j *Journal) Count(ctx context.Context, session string) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, countOpsSQL, session, session).Scan(&n)
	return n, err
}

// Prune keeps the newest keep records and deletes the rest.
func (j *Journal) Prune(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := j.db.ExecContext(ctx, pruneOpsSQL, keep)
	if err != nil {
		return 0, fmt.Errorf("prune ops: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n > 0 {
		j.log.Debug("journal pruned", slog.Int64("rows", n))
	}
	return n, err
}
