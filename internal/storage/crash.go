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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"roomplanner/internal/domain"
)

// AutosaveCrashSnapshot writes d to <root>/backups/design-<id>.crash-<stamp>.json
// without touching the current document or the index.
func AutosaveCrashSnapshot(root string, d domain.Design) (string, error) {
	if root == "" {
		return "", errors.New("library root is required")
	}
	dir := filepath.Join(root, BackupsDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	data, err := marshalDocument(d)
	if err != nil {
		return "", fmt.Errorf("marshal design: %w", err)
	}
	name := fmt.Sprintf("design-%d.crash-%s.json", d.ID, time.Now().Format("20060102-150405"))
	path := filepath.Join(dir, name)
	if err := writeFileSync(path, data); err != nil {
		return "", err
	}
	return path, nil
}
