/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the editor into a report on disk plus a
// dump of the scene as it stood, then exits with status 2.
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

	applog "floorsketch/internal/log"
	"floorsketch/internal/telemetry"
	"floorsketch/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Reporter says where reports go and how to capture the scene.
// A zero Reporter writes to the temp directory and skips the scene dump.
type Reporter struct {
	Dir  string
	Dump func() ([]byte, error)
}

// Recover captures a panic, logs it with a stack trace, writes a crash report
// and, when Dump is set, a scene dump next to it.
//
// Usage: defer crash.Recover(rep)
func Recover(rep Reporter) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := rep.writeReport(r, stack)
		if err != nil {
			l.Error("crash report failed", slog.Any("err", err))
		}
		if rep.Dump != nil {
			if path, err := rep.writeDump(); err != nil {
				l.Error("scene dump failed", slog.Any("err", err))
			} else {
				l.Info("scene dump written", slog.String("path", path))
			}
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

func (rep Reporter) dir() (string, error) {
	if rep.Dir == "" {
		return os.TempDir(), nil
	}
	if err := os.MkdirAll(rep.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	return rep.Dir, nil
}

func (rep Reporter) writeReport(panicVal any, stack []byte) (string, error) {
	dir, err := rep.dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Floorsketch Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := writeSynced(path, buf.Bytes()); err != nil {
		return path, err
	}
	// opt-in via FSK_TELEMETRY_*
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}

func (rep Reporter) writeDump() (string, error) {
	data, err := rep.Dump()
	if err != nil {
		return "", err
	}
	dir, err := rep.dir()
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.scene.json", time.Now().Format("20060102-150405")))
	return path, writeSynced(path, data)
}

func writeSynced(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if _, err = f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}
