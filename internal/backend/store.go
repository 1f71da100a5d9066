/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package backend serves designs over HTTP from either the local library or
// a Postgres database, and provides a typed client for that API.
package backend

import (
	"context"

	"roomplanner/internal/domain"
	"roomplanner/internal/storage"
)

// ErrNotFound is shared by every Store implementation.
var ErrNotFound = storage.ErrNotFound

// Store persists designs. *storage.Library and *PGStore implement it.
type Store interface {
	List(ctx context.Context, owner string) ([]storage.Entry, error)
	Get(ctx context.Context, id int) (domain.Design, error)
	Save(ctx context.Context, d *domain.Design) error
	Delete(ctx context.Context, id int) error
}

var (
	_ Store = (*storage.Library)(nil)
	_ Store = (*PGStore)(nil)
)
