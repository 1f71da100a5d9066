/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage implements the local design library.
// Each design is one JSON document under <root>/designs, written transactionally with timestamped backups of the
// previous version in <root>/backups. A SQLite index at <root>/.rp/index.sqlite lists designs per owner; it is
// derived from the documents and is rebuilt from them when missing or corrupt.
package storage
