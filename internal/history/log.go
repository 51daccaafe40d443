/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps the editor's undo/redo as one chronological log.
// Each entry is tagged with the collection it restores (shapes, openings,
// or both), so undo and redo always follow the true order of actions
// across the two collections.
package history

import (
	"log/slog"
	"sync"
	"time"

	applog "floorsketch/internal/log"
	"floorsketch/internal/scene"
)

// Kind tags which collection an entry captures.
type Kind string

const (
	KindPath    Kind = "path"
	KindOpening Kind = "opening"
	// KindScene captures both collections for actions touching both.
	KindScene Kind = "scene"
)

// Entry is the state of one or both collections before an action.
// Shapes are value objects, so a shallow copy of the slice is a snapshot;
// openings are copied by value as well.
type Entry struct {
	Kind     Kind
	Op       string
	Shapes   []scene.Shape
	Openings []scene.Opening
	TS       time.Time
}

// State is the current content of both collections.
type State struct {
	Shapes   []scene.Shape
	Openings []scene.Opening
}

// Capture builds an entry of the given kind from st.
func Capture(kind Kind, op string, st State, ts time.Time) Entry {
	e := Entry{Kind: kind, Op: op, TS: ts}
	if kind == KindPath || kind == KindScene {
		e.Shapes = append([]scene.Shape{}, st.Shapes...)
	}
	if kind == KindOpening || kind == KindScene {
		e.Openings = append([]scene.Opening{}, st.Openings...)
	}
	return e
}

// Config controls depth caps and coalescing.
type Config struct {
	// MaxEntries caps the undo depth; the oldest entries are dropped first (0 means unlimited).
	MaxEntries int
	// MinInterval coalesces entries with the same kind and op recorded within
	// the interval. The earlier snapshot is kept since it predates both actions.
	// Zero disables coalescing.
	MinInterval time.Duration
}

// Log is safe for concurrent use.
type Log struct {
	cfg  Config
	mu   sync.Mutex
	undo []Entry
	redo []Entry
	log  *slog.Logger
}

func New(cfg Config) *Log {
	if cfg.MaxEntries < 0 {
		cfg.MaxEntries = 0
	}
	return &Log{cfg: cfg, log: applog.WithComponent("history")}
}

// Record pushes the pre-mutation snapshot of an action and invalidates redo.
func (l *Log) Record(e Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e.TS.IsZero() {
		e.TS = time.Now()
	}
	l.redo = nil
	if n := len(l.undo); n > 0 && l.cfg.MinInterval > 0 {
		last := l.undo[n-1]
		if last.Kind == e.Kind && last.Op == e.Op && e.TS.Sub(last.TS) < l.cfg.MinInterval {
			l.undo[n-1].TS = e.TS
			return
		}
	}
	l.undo = append(l.undo, e)
	l.enforceCapsLocked()
}

// Undo pops the newest entry. The returned entry holds the state to restore;
// the current state of the same collections is pushed onto redo.
func (l *Log) Undo(cur State) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.undo)
	if n == 0 {
		l.log.Debug("undo underflow")
		return Entry{}, false
	}
	e := l.undo[n-1]
	l.undo = l.undo[:n-1]
	l.redo = append(l.redo, Capture(e.Kind, e.Op, cur, time.Now()))
	return e, true
}

// Redo pops the newest undone entry and pushes the current state back onto undo.
func (l *Log) Redo(cur State) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := len(l.redo)
	if n == 0 {
		l.log.Debug("redo underflow")
		return Entry{}, false
	}
	e := l.redo[n-1]
	l.redo = l.redo[:n-1]
	l.undo = append(l.undo, Capture(e.Kind, e.Op, cur, time.Now()))
	l.enforceCapsLocked()
	return e, true
}

// Apply restores the collections captured by e into sc.
func Apply(sc *scene.Scene, e Entry) {
	switch e.Kind {
	case KindPath:
		sc.SetShapes(e.Shapes)
	case KindOpening:
		sc.SetOpenings(e.Openings)
	case KindScene:
		sc.SetShapes(e.Shapes)
		sc.SetOpenings(e.Openings)
	}
}

// LastKind is the kind of the most recent undoable action, or "" when empty.
func (l *Log) LastKind() Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n := len(l.undo); n > 0 {
		return l.undo[n-1].Kind
	}
	return ""
}

func (l *Log) CanUndo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo) > 0
}

func (l *Log) CanRedo() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.redo) > 0
}

// Clear drops all undo and redo entries.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.undo = nil
	l.redo = nil
}

// Stats returns current depths for diagnostics.
func (l *Log) Stats() (undo, redo int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.undo), len(l.redo)
}

func (l *Log) enforceCapsLocked() {
	if l.cfg.MaxEntries > 0 && len(l.undo) > l.cfg.MaxEntries {
		drop := len(l.undo) - l.cfg.MaxEntries
		l.undo = append([]Entry{}, l.undo[drop:]...)
	}
}
