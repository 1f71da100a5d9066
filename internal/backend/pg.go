/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"roomplanner/internal/domain"
	applog "roomplanner/internal/log"
	"roomplanner/internal/storage"
)

// PGStore keeps each design as a JSONB document plus summary columns.
type PGStore struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

// OpenPG connects to dsn and verifies the connection.
func OpenPG(ctx context.Context, dsn string) (*PGStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return NewPGStore(pool), nil
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool, log: applog.WithComponent("backend.pg")}
}

func (s *PGStore) Close() { s.pool.Close() }

// Ping reports database readiness.
func (s *PGStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// dialect=PostgreSQL
const pgListSQL = `
	SELECT id, stable_id::text, name, owner, furniture_count, area, created_at, updated_at
	FROM designs
	WHERE ($1 = '' OR owner = $1)
	ORDER BY id
`

func (s *PGStore) List(ctx context.Context, owner string) ([]storage.Entry, error) {
	rows, err := s.pool.Query(ctx, pgListSQL, owner)
	if err != nil {
		return nil, fmt.Errorf("querying designs: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Entry, 0, 16)
	for rows.Next() {
		var e storage.Entry
		if err := rows.Scan(&e.ID, &e.StableID, &e.Name, &e.Owner, &e.FurnitureCount, &e.Area, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning design row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating design rows: %w", err)
	}
	return out, nil
}

func (s *PGStore) Get(ctx context.Context, id int) (domain.Design, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, `SELECT document FROM designs WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Design{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return domain.Design{}, fmt.Errorf("loading design %d: %w", id, err)
	}
	return storage.DecodeDesign(doc)
}

// dialect=PostgreSQL
const pgUpsertSQL = `
	INSERT INTO designs (id, stable_id, name, owner, document, furniture_count, area, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	ON CONFLICT (id) DO UPDATE SET
		name = EXCLUDED.name,
		owner = EXCLUDED.owner,
		document = EXCLUDED.document,
		furniture_count = EXCLUDED.furniture_count,
		area = EXCLUDED.area,
		updated_at = EXCLUDED.updated_at
	RETURNING stable_id::text, created_at
`

// Save inserts or replaces d. New designs take their id from the table's sequence.
func (s *PGStore) Save(ctx context.Context, d *domain.Design) error {
	if d == nil {
		return errors.New("nil design")
	}
	if err := d.Validate(); err != nil {
		return err
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			s.log.Error("rollback failed", slog.Int("design", d.ID), slog.Any("err", err))
		}
	}()

	if d.ID <= 0 {
		if err := tx.QueryRow(ctx, `SELECT nextval(pg_get_serial_sequence('designs', 'id'))`).Scan(&d.ID); err != nil {
			return fmt.Errorf("allocating design id: %w", err)
		}
	} else {
		var stable string
		var created time.Time
		err := tx.QueryRow(ctx, `SELECT stable_id::text, created_at FROM designs WHERE id = $1`, d.ID).Scan(&stable, &created)
		switch {
		case err == nil:
			if d.StableID == "" {
				d.StableID = stable
			}
			if d.CreatedAt.IsZero() {
				d.CreatedAt = created
			}
		case !errors.Is(err, pgx.ErrNoRows):
			return fmt.Errorf("reading design %d: %w", d.ID, err)
		}
	}
	if d.StableID == "" {
		d.StableID = uuid.NewString()
	}
	now := time.Now().UTC()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	if d.Furniture == nil {
		d.Furniture = []domain.Furniture{}
	}
	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal design: %w", err)
	}
	var created time.Time
	if err := tx.QueryRow(ctx, pgUpsertSQL, d.ID, d.StableID, d.Name, d.Owner, doc, len(d.Furniture), d.Room.Area(), now).Scan(&d.StableID, &created); err != nil {
		return fmt.Errorf("saving design %d: %w", d.ID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.log.Info("design saved", slog.Int("design", d.ID))
	return nil
}

func (s *PGStore) Delete(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM designs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting design %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}
