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
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"roomplanner/internal/domain"
	applog "roomplanner/internal/log"
)

// ErrNotFound is returned when no document or backup exists for a design id.
var ErrNotFound = errors.New("design not found")

// Library stores designs under a root directory. It is safe for concurrent use.
type Library struct {
	root string
	db   *sql.DB
	log  *slog.Logger
	mu   sync.Mutex
	now  func() time.Time
}

// OpenLibrary scaffolds root and opens its index. A corrupt index is moved
// aside and rebuilt from the design documents.
func OpenLibrary(ctx context.Context, root string) (*Library, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("library root is required")
	}
	for _, d := range []string{DesignsDirName, BackupsDirName, IndexDirName} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	l := applog.WithComponent("storage").With(slog.String("root", root))
	db, err := openIndex(ctx, root)
	rebuild := false
	if err != nil {
		l.Warn("index unusable, rebuilding", slog.Any("err", err))
		path := IndexPath(root)
		backupIndexFile(path)
		for _, suffix := range []string{"", "-wal", "-shm"} {
			_ = os.Remove(path + suffix)
		}
		if db, err = openIndex(ctx, root); err != nil {
			return nil, fmt.Errorf("reopen index: %w", err)
		}
		rebuild = true
	}
	lib := &Library{root: root, db: db, log: l, now: time.Now}
	if !rebuild {
		n, err := maxID(ctx, db)
		rebuild = err == nil && n == 0
	}
	if rebuild {
		if _, err := lib.Reindex(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return lib, nil
}

func (l *Library) Root() string { return l.root }

func (l *Library) Close() error { return l.db.Close() }

func documentName(id int) string { return fmt.Sprintf("design-%d.json", id) }

// DesignPath is where the document for id lives.
func (l *Library) DesignPath(id int) string {
	return filepath.Join(l.root, DesignsDirName, documentName(id))
}

func (l *Library) backupDir() string { return filepath.Join(l.root, BackupsDirName) }

// Save validates d and writes it. A design without an id gets max(id)+1;
// a design without a stable id or creation time keeps the indexed ones, and a
// brand new design gets a fresh UUID.
// d is updated in place with the assigned identifiers and timestamps.
func (l *Library) Save(ctx context.Context, d *domain.Design) error {
	if d == nil {
		return errors.New("nil design")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.ID <= 0 {
		n, err := maxID(ctx, l.db)
		if err != nil {
			return err
		}
		d.ID = n + 1
	}
	now := l.now().UTC()
	if stable, created, ok := indexedIdentity(ctx, l.db, d.ID); ok {
		if d.StableID == "" {
			d.StableID = stable
		}
		if d.CreatedAt.IsZero() && !created.IsZero() {
			d.CreatedAt = created
		}
	}
	if d.StableID == "" {
		d.StableID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Furniture == nil {
		d.Furniture = []domain.Furniture{}
	}

	data, err := marshalDocument(d)
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}
	if err := writeWithBackup(l.DesignPath(d.ID), l.backupDir(), data); err != nil {
		return err
	}
	if err := upsertEntry(ctx, l.db, *d); err != nil {
		return err
	}
	l.log.Info("design saved", slog.Int("design", d.ID), slog.Int("furniture", len(d.Furniture)))
	return nil
}

// DecodeDesign schema-checks and decodes a design document.
func DecodeDesign(data []byte) (domain.Design, error) {
	var d domain.Design
	if err := ValidateDesignJSON(data); err != nil {
		return d, err
	}
	if err := json.Unmarshal(data, &d); err != nil {
		return d, fmt.Errorf("parse design: %w", err)
	}
	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// Load reads design id. When the current document is missing or broken the
// newest readable backup is used instead.
func (l *Library) Load(ctx context.Context, id int) (domain.Design, error) {
	path := l.DesignPath(id)
	data, err := os.ReadFile(path)
	if err == nil {
		d, derr := DecodeDesign(data)
		if derr == nil {
			return d, nil
		}
		err = derr
	}
	if errors.Is(err, os.ErrNotExist) {
		if _, _, indexed := indexedIdentity(ctx, l.db, id); !indexed {
			return domain.Design{}, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
	}
	d, berr := l.fromBackups(id)
	if berr == nil {
		l.log.Warn("loaded design from backup", slog.Int("design", id), slog.Any("err", err))
		return d, nil
	}
	if errors.Is(err, os.ErrNotExist) && errors.Is(berr, errNoBackups) {
		return domain.Design{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return domain.Design{}, fmt.Errorf("load design %d: %w; backup attempt: %v", id, err, berr)
}

// Get is Load under the name shared with the other design stores.
func (l *Library) Get(ctx context.Context, id int) (domain.Design, error) { return l.Load(ctx, id) }

func (l *Library) fromBackups(id int) (domain.Design, error) {
	candidates, err := backupsOf(l.backupDir(), documentName(id))
	if err != nil {
		return domain.Design{}, err
	}
	if len(candidates) == 0 {
		return domain.Design{}, errNoBackups
	}
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		data, err := os.ReadFile(candidates[i])
		if err != nil {
			lastErr = err
			continue
		}
		d, err := DecodeDesign(data)
		if err != nil {
			lastErr = err
			continue
		}
		return d, nil
	}
	return domain.Design{}, fmt.Errorf("no readable backup: %w", lastErr)
}

// List returns index entries ordered by id. An empty owner lists everything.
func (l *Library) List(ctx context.Context, owner string) ([]Entry, error) {
	return listEntries(ctx, l.db, owner)
}

// Delete removes design id. The last document is kept in backups as
// design-<id>.deleted-<stamp>.json, outside the Load fallback set.
func (l *Library) Delete(ctx context.Context, id int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	path := l.DesignPath(id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return err
	}
	stamp := l.now().Format(backupStamp)
	if err := copyFile(path, filepath.Join(l.backupDir(), fmt.Sprintf("design-%d.deleted-%s.json", id, stamp))); err != nil {
		return fmt.Errorf("backup before delete: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove design %d: %w", id, err)
	}
	if _, err := l.db.ExecContext(ctx, deleteDesignSQL, id); err != nil {
		return fmt.Errorf("unindex design %d: %w", id, err)
	}
	l.log.Info("design deleted", slog.Int("design", id))
	return nil
}

// Reindex rebuilds the index from the documents on disk and returns how many
// designs were indexed. Unreadable documents are skipped.
func (l *Library) Reindex(ctx context.Context) (int, error) {
	ents, err := os.ReadDir(filepath.Join(l.root, DesignsDirName))
	if err != nil {
		return 0, fmt.Errorf("read designs dir: %w", err)
	}
	n := 0
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "design-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "design-"), ".json"))
		if err != nil {
			continue
		}
		d, err := l.Load(ctx, id)
		if err != nil {
			l.log.Warn("skip unreadable design", slog.String("file", name), slog.Any("err", err))
			continue
		}
		if d.StableID == "" {
			d.StableID = uuid.NewString()
		}
		if err := upsertEntry(ctx, l.db, d); err != nil {
			return n, err
		}
		n++
	}
	if n > 0 {
		l.log.Info("index rebuilt", slog.Int("designs", n))
	}
	return n, nil
}
