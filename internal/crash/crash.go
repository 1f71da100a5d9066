/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file plus a rescue copy of the
// design that was open at the time.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"roomplanner/internal/domain"
	applog "roomplanner/internal/log"
	"roomplanner/internal/storage"
	"roomplanner/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session tells Recover where the library lives and how to read the open design.
type Session struct {
	Root string
	// Design returns the design to rescue; ok=false when nothing is open.
	Design func() (d domain.Design, ok bool)
}

func (s *Session) root() string {
	if s == nil {
		return ""
	}
	return s.Root
}

func (s *Session) current() (domain.Design, bool) {
	if s == nil || s.Design == nil {
		return domain.Design{}, false
	}
	return s.Design()
}

// Recover captures a panic, logs an error with stacktrace, writes an error
// report file and attempts a crash-safe autosave of the open design.
//
// Usage: defer crash.Recover(session)
func Recover(s *Session) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		d, open := rescue(s, l)
		reportPath, err := writeReport(s.root(), d, open, r, stack)
		if err != nil {
			l.Error("write crash report failed", slog.Any("err", err))
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

// rescue snapshots the open design. Reading it may itself panic when the
// crash left the editor inconsistent; that is logged and swallowed.
func rescue(s *Session, l *slog.Logger) (d domain.Design, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			l.Error("reading open design failed", slog.Any("panic", r))
			ok = false
		}
	}()
	d, ok = s.current()
	if !ok || s.root() == "" {
		return d, ok
	}
	if path, err := storage.AutosaveCrashSnapshot(s.root(), d); err != nil {
		l.Error("autosave crash snapshot failed", slog.Any("err", err))
	} else {
		l.Info("autosave crash snapshot written", slog.String("path", path))
	}
	return d, ok
}

func writeReport(root string, d domain.Design, open bool, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if root != "" {
		dir = filepath.Join(root, storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Room Planner Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if root != "" {
		_, _ = fmt.Fprintf(&buf, "Library: %s\n", root)
	}
	if open {
		_, _ = fmt.Fprintf(&buf, "Design: %d %q (%d placements)\n", d.ID, d.Name, len(d.Furniture))
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
