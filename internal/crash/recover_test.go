/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestRecoverWritesReportAndDump ensures Recover handles a panic, writes the
// report and scene dump, and requests exit code 2 through exitFn.
func TestRecoverWritesReportAndDump(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	called := 0
	oldExit := exitFn
	exitFn = func(code int) { called = code }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	rep := Reporter{Dir: dir, Dump: func() ([]byte, error) { return []byte(`{"shapes":[]}`), nil }}

	func() {
		defer Recover(rep)
		panic("boom")
	}()

	var report, dump string
	files, _ := os.ReadDir(dir)
	for _, f := range files {
		switch {
		case strings.HasSuffix(f.Name(), ".log"):
			report = filepath.Join(dir, f.Name())
		case strings.HasSuffix(f.Name(), ".scene.json"):
			dump = filepath.Join(dir, f.Name())
		}
	}
	if report == "" || dump == "" {
		t.Fatalf("expected report and dump, got %v", files)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !bytes.Contains(b, []byte("Panic: boom")) {
		t.Fatalf("report does not contain panic: %s", string(b))
	}
	if d, _ := os.ReadFile(dump); string(d) != `{"shapes":[]}` {
		t.Fatalf("dump = %s", d)
	}
	if called != 2 {
		t.Fatalf("expected exit code 2, got %d", called)
	}
}

func TestRecoverWithoutPanicIsNoop(t *testing.T) {
	called := false
	oldExit := exitFn
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(Reporter{Dir: t.TempDir()})
	}()
	if called {
		t.Fatalf("exit must not be requested without a panic")
	}
}
