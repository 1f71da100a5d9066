/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"roomplanner/internal/domain"
	"roomplanner/internal/storage"
)

func TestWriteReportCreatesFileInTemp(t *testing.T) {
	path, err := writeReport("", domain.Design{}, false, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	t.Cleanup(func() { _ = os.Remove(path) })
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Room Planner Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
	if strings.Contains(s, "Design:") {
		t.Fatalf("no design was open: %s", s)
	}
}

func TestWriteReportCreatesFileInLibraryBackups(t *testing.T) {
	root := t.TempDir()
	d := domain.Design{ID: 3, Name: "Den", Furniture: []domain.Furniture{domain.Template(domain.Bed)}}
	path, err := writeReport(root, d, true, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != filepath.Join(root, storage.BackupsDirName) {
		t.Fatalf("expected crash report under backups dir, got %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(b), "Design: 3 \"Den\" (1 placements)") {
		t.Fatalf("design line missing: %s", b)
	}
}

func TestNilSessionIsSafe(t *testing.T) {
	var s *Session
	if s.root() != "" {
		t.Fatalf("nil session root")
	}
	if _, ok := s.current(); ok {
		t.Fatalf("nil session has no design")
	}
}
