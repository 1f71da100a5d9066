/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
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

	"roomplanner/internal/domain"
	applog "roomplanner/internal/log"
	"roomplanner/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// IndexDirName stores the library's derived index data under the root.
	IndexDirName  = ".rp"
	IndexFileName = "index.sqlite"

	// schemaVersion tracks the local SQLite schema for the embedded index.
	// Bump this when you perform breaking schema changes and add migrations.
	schemaVersion = 2
)

// language=SQL
// dialect=SQLite
const createDesignsSQL = `CREATE TABLE IF NOT EXISTS designs (
	id              INTEGER PRIMARY KEY,
	stable_id       TEXT    NOT NULL,
	name            TEXT    NOT NULL,
	owner           TEXT    NOT NULL,
	furniture_count INTEGER NOT NULL DEFAULT 0,
	area            REAL    NOT NULL DEFAULT 0,
	created_at      TEXT    NOT NULL,
	updated_at      TEXT    NOT NULL
)`

// language=SQL
// dialect=SQLite
const createOwnerIndexSQL = `CREATE INDEX IF NOT EXISTS idx_designs_owner ON designs(owner, id)`

// language=SQL
// dialect=SQLite
const createStableIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_designs_stable ON designs(stable_id)`

// language=SQL
// dialect=SQLite
const upsertDesignSQL = `INSERT INTO designs(id, stable_id, name, owner, furniture_count, area, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	stable_id = excluded.stable_id,
	name = excluded.name,
	owner = excluded.owner,
	furniture_count = excluded.furniture_count,
	area = excluded.area,
	updated_at = excluded.updated_at`

// language=SQL
// dialect=SQLite
const listDesignsSQL = `SELECT id, stable_id, name, owner, furniture_count, area, created_at, updated_at
FROM designs WHERE (? = '' OR owner = ?) ORDER BY id`

// language=SQL
// dialect=SQLite
const selectIdentitySQL = `SELECT stable_id, created_at FROM designs WHERE id = ?`

// language=SQL
// dialect=SQLite
const maxDesignIDSQL = `SELECT COALESCE(MAX(id), 0) FROM designs`

// language=SQL
// dialect=SQLite
const deleteDesignSQL = `DELETE FROM designs WHERE id = ?`

// IndexPath returns the full path to the library's embedded index database file.
func IndexPath(root string) string {
	return filepath.Join(root, IndexDirName, IndexFileName)
}

// openIndex ensures that the SQLite index exists at .rp/index.sqlite, opens
// the database, enables WAL mode, and brings the schema up to date.
func openIndex(ctx context.Context, root string) (*sql.DB, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "index_open").With(slog.String("root", root))
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("library root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, IndexDirName), 0o755); err != nil {
		l.Error("create index dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", IndexDirName, err)
	}

	path := IndexPath(root)
	// Use a URI with shared cache and set busy timeout. Convert to forward slashes for SQLite URI.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureMetaAndVersion(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureIndexSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	var chk string
	if err := db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil || !strings.Contains(strings.ToLower(chk), "ok") {
		_ = db.Close()
		return nil, fmt.Errorf("index quick_check failed: %q %v", chk, err)
	}
	l.Debug("index ready", slog.String("path", path))
	return db, nil
}

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
		// Update app and timestamp only; keep existing schema for migrations
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func ensureIndexSchema(ctx context.Context, db *sql.DB) error {
	for _, q := range []string{createDesignsSQL, createOwnerIndexSQL, createStableIndexSQL} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
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
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			// v1 had no area column and no lookup indexes
			if !hasColumn(ctx, db, "designs", "area") {
				stmts = append(stmts, `ALTER TABLE designs ADD COLUMN area REAL NOT NULL DEFAULT 0`)
			}
			stmts = append(stmts, createOwnerIndexSQL, createStableIndexSQL)
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
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
		cur = next
	}
	return nil
}

func hasColumn(ctx context.Context, db *sql.DB, table, column string) bool {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notnull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			return false
		}
		if strings.EqualFold(name, column) {
			return true
		}
	}
	return false
}

// backupIndexFile copies the current index file into a timestamped backup in .rp/backups.
func backupIndexFile(indexPath string) {
	bdir := filepath.Join(filepath.Dir(indexPath), "backups")
	_ = os.MkdirAll(bdir, 0o755)
	stamp := time.Now().Format(backupStamp)
	bak := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(indexPath), stamp))
	if data, err := os.ReadFile(indexPath); err == nil {
		_ = os.WriteFile(bak, data, 0o644)
	}
}

// Entry is one row of the library index.
type Entry struct {
	ID             int
	StableID       string
	Name           string
	Owner          string
	FurnitureCount int
	Area           float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func upsertEntry(ctx context.Context, db *sql.DB, d domain.Design) error {
	_, err := db.ExecContext(ctx, upsertDesignSQL,
		d.ID, d.StableID, d.Name, d.Owner, len(d.Furniture), d.Room.Area(),
		d.CreatedAt.UTC().Format(time.RFC3339Nano), d.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("index design %d: %w", d.ID, err)
	}
	return nil
}

func listEntries(ctx context.Context, db *sql.DB, owner string) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, listDesignsSQL, owner, owner)
	if err != nil {
		return nil, fmt.Errorf("list designs: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var e Entry
		var created, updated string
		if err := rows.Scan(&e.ID, &e.StableID, &e.Name, &e.Owner, &e.FurnitureCount, &e.Area, &created, &updated); err != nil {
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		e.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, e)
	}
	return out, rows.Err()
}

// indexedIdentity returns the stable id and creation time recorded for id.
func indexedIdentity(ctx context.Context, db *sql.DB, id int) (string, time.Time, bool) {
	var s, created string
	if err := db.QueryRowContext(ctx, selectIdentitySQL, id).Scan(&s, &created); err != nil {
		return "", time.Time{}, false
	}
	ts, _ := time.Parse(time.RFC3339Nano, created)
	return s, ts, true
}

func maxID(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, maxDesignIDSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("max design id: %w", err)
	}
	return n, nil
}
