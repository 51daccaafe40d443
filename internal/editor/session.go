/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the editing session: it owns the scene, view, history
// and tool state of one drawing surface and exposes the mutation entry
// points the input layer calls. All methods are safe for concurrent use;
// a single mutex serializes them the way a UI event loop would.
package editor

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"floorsketch/internal/geom"
	"floorsketch/internal/history"
	applog "floorsketch/internal/log"
	"floorsketch/internal/recognize"
	"floorsketch/internal/scene"
	"floorsketch/internal/telemetry"
	"floorsketch/internal/viewport"
)

// Observer receives selection and drawing notifications. Callbacks run
// after the session lock is released.
type Observer interface {
	TextBoxSelected(box scene.Shape)
	TextBoxDeselected(prevID string)
	DrawingComplete(sh scene.Shape)
}

// Hooks adapts optional functions to Observer.
type Hooks struct {
	OnTextBoxSelected   func(box scene.Shape)
	OnTextBoxDeselected func(prevID string)
	OnDrawingComplete   func(sh scene.Shape)
}

func (h Hooks) TextBoxSelected(box scene.Shape) {
	if h.OnTextBoxSelected != nil {
		h.OnTextBoxSelected(box)
	}
}

func (h Hooks) TextBoxDeselected(prevID string) {
	if h.OnTextBoxDeselected != nil {
		h.OnTextBoxDeselected(prevID)
	}
}

func (h Hooks) DrawingComplete(sh scene.Shape) {
	if h.OnDrawingComplete != nil {
		h.OnDrawingComplete(sh)
	}
}

// RedrawFunc paints one consistent frame.
type RedrawFunc func(snap scene.Snapshot, view viewport.View)

// Option configures a Session.
type Option func(*Session)

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// WithRedraw installs the paint callback. Mutations schedule it through a
// debounced timer so a burst of changes produces one frame.
func WithRedraw(fn RedrawFunc) Option { return func(s *Session) { s.redraw = fn } }

// WithTelemetry sends one event per mutation to c.
func WithTelemetry(c *telemetry.Client) Option { return func(s *Session) { s.tel = c } }

// WithClock overrides time.Now for gesture cooldowns and history timestamps.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithSessionID fixes the session identifier used in logs and telemetry.
func WithSessionID(id string) Option { return func(s *Session) { s.id = id } }

type mode int

const (
	modeIdle mode = iota
	modeStroke
	modeErase
	modeDragText
	modeResizeText
	modeDragOpening
	modeTextRect
	modeOpening
)

// Session is one editing surface.
type Session struct {
	mu   sync.Mutex
	id   string
	ctx  context.Context
	opts Options
	log  *slog.Logger
	now  func() time.Time

	sc      *scene.Scene
	view    viewport.View
	gesture *viewport.Gesture
	hist    *history.Log
	rec     recognize.Recognizer

	tool       viewport.ToolState
	doorType   scene.DoorType
	color      string
	width      float64
	eraserSize float64

	observers []Observer
	redraw    RedrawFunc
	schedule  func(func())
	tel       *telemetry.Client

	// in-progress gesture
	mode    mode
	stroke  []geom.Pt
	start   geom.Pt
	end     geom.Pt
	anchor  geom.Pt
	handle  string
	pending history.Entry
	changed bool
	// collections touched by the current eraser gesture
	erasedShapes   bool
	erasedOpenings bool
	notices        []func()
	frames         int
	redrawMu       sync.Mutex
}

// New creates a session with an empty scene.
func New(opts Options, options ...Option) *Session {
	opts = opts.normalize()
	s := &Session{
		opts:       opts,
		now:        time.Now,
		sc:         scene.New(),
		view:       viewport.New(opts.Limits),
		hist:       history.New(opts.History),
		tool:       viewport.ToolState{Tool: scene.ToolPen, LineStyle: scene.LineSolid},
		doorType:   scene.DoorSingle,
		color:      opts.StrokeColor,
		width:      opts.StrokeWidth,
		eraserSize: geom.Clamp(opts.EraserSize, opts.EraserMin, opts.EraserMax),
	}
	for _, o := range options {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	s.ctx = applog.ContextWithSession(context.Background(), s.id)
	s.log = applog.WithComponent("editor")
	s.gesture = viewport.NewGesture(opts.TouchCooldown, s.now)
	if s.redraw != nil {
		s.schedule = debounce.New(opts.RedrawDelay)
	}
	s.log.DebugContext(s.ctx, "session created", slog.Float64("grid", opts.Grid))
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Options returns the effective options.
func (s *Session) Options() Options { return s.opts }

// Scene returns a read-only snapshot for painting.
func (s *Session) Scene() scene.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sc.Snapshot()
}

// ViewTransform returns the current view.
func (s *Session) ViewTransform() viewport.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Preview returns the in-progress stroke, if any: the pen path so far or the
// start and current end of a two-point shape.
func (s *Session) Preview() (path []geom.Pt, start, end geom.Pt, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != modeStroke && s.mode != modeTextRect {
		return nil, geom.Pt{}, geom.Pt{}, false
	}
	return append([]geom.Pt(nil), s.stroke...), s.start, s.end, true
}

// CanUndo reports whether Undo would change anything.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// HistoryStats returns the undo and redo depths.
func (s *Session) HistoryStats() (undo, redo int) { return s.hist.Stats() }

// MarshalJSON dumps the scene snapshot.
func (s *Session) MarshalJSON() ([]byte, error) { return json.Marshal(s.Scene()) }

// Frames returns how many redraws have been delivered.
func (s *Session) Frames() int {
	s.redrawMu.Lock()
	defer s.redrawMu.Unlock()
	return s.frames
}

// --- tool state ---

// SetTool selects the active tool. Switching tools abandons any gesture in
// progress and deselects text boxes and openings.
func (s *Session) SetTool(name string) error {
	t, err := scene.ParseTool(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.cancelGestureLocked()
	s.tool.Tool = t
	s.deselectTextLocked()
	s.sc.SelectOpening("")
	s.mu.Unlock()
	s.flush(true)
	return nil
}

// Tool returns the active tool.
func (s *Session) Tool() scene.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tool.Tool
}

// SetLineStyle sets the style of new lines.
func (s *Session) SetLineStyle(name string) error {
	st, err := scene.ParseLineStyle(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tool.LineStyle = st
	s.mu.Unlock()
	return nil
}

// SetDoorType sets the type of new doors. "opening" makes the door tool
// place openings instead.
func (s *Session) SetDoorType(name string) error {
	switch dt := scene.DoorType(name); dt {
	case scene.DoorSingle, scene.DoorDouble, scene.DoorOpening:
		s.mu.Lock()
		s.doorType = dt
		s.mu.Unlock()
		return nil
	}
	return scene.ErrMalformedShape
}

// SetShift records the modifier state used for snapping and line constraint.
func (s *Session) SetShift(on bool) {
	s.mu.Lock()
	s.tool.Shift = on
	s.mu.Unlock()
}

// SetStroke sets the color and base width of new shapes.
func (s *Session) SetStroke(color string, width float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if color != "" {
		s.color = color
	}
	if width > 0 {
		s.width = width
	}
}

// SetEraserSize clamps n to the configured range and returns the result.
func (s *Session) SetEraserSize(n float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(n) {
		return s.eraserSize
	}
	s.eraserSize = geom.Clamp(n, s.opts.EraserMin, s.opts.EraserMax)
	return s.eraserSize
}

// EraserSize returns the current eraser radius.
func (s *Session) EraserSize() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eraserSize
}

// --- internals ---

func (s *Session) state() history.State {
	return history.State{Shapes: s.sc.Shapes(), Openings: s.sc.Openings()}
}

func (s *Session) capture(kind history.Kind, op string) history.Entry {
	return history.Capture(kind, op, s.state(), s.now())
}

// record pushes e and reports the mutation.
func (s *Session) record(e history.Entry) {
	s.hist.Record(e)
	s.emit(e.Op, e.Kind)
}

func (s *Session) emit(op string, kind history.Kind) {
	s.log.DebugContext(s.ctx, op, slog.String("kind", string(kind)),
		slog.Int("shapes", s.sc.ShapeCount()), slog.Int("openings", s.sc.OpeningCount()))
	if s.tel != nil {
		s.tel.Event(telemetry.Event{
			Session: s.id, Op: op, Kind: string(kind),
			Shapes: s.sc.ShapeCount(), Openings: s.sc.OpeningCount(), TS: s.now(),
		})
	}
}

// notify queues an observer callback to run after the lock is released.
func (s *Session) notify(fn func(Observer)) {
	for _, o := range s.observers {
		o := o
		s.notices = append(s.notices, func() { fn(o) })
	}
}

// flush runs queued notifications and optionally schedules a redraw. It
// must be called without holding the lock.
func (s *Session) flush(redraw bool) {
	s.mu.Lock()
	ns := s.notices
	s.notices = nil
	s.mu.Unlock()
	for _, n := range ns {
		n()
	}
	if redraw {
		s.requestRedraw()
	}
}

// requestRedraw resets the debounce timer; only the last request in a
// burst paints.
func (s *Session) requestRedraw() {
	if s.schedule == nil {
		return
	}
	s.schedule(s.paint)
}

func (s *Session) paint() {
	s.mu.Lock()
	snap := s.sc.Snapshot()
	view := s.view
	s.mu.Unlock()
	s.redrawMu.Lock()
	s.frames++
	s.redrawMu.Unlock()
	s.redraw(snap, view)
}

// selectTextLocked makes id the selected text box. Leaving the previous
// box goes through deselectTextLocked so an empty one is discarded.
func (s *Session) selectTextLocked(id string) {
	if cur, ok := s.sc.SelectedTextBox(); ok {
		if cur.ID == id {
			return
		}
		s.deselectTextLocked()
	}
	s.sc.SelectTextBox(id)
	if box, ok := s.sc.SelectedTextBox(); ok {
		s.notify(func(o Observer) { o.TextBoxSelected(box) })
	}
}

// deselectTextLocked ends text editing: the selected box is deselected and
// removed when empty.
func (s *Session) deselectTextLocked() {
	box, ok := s.sc.SelectedTextBox()
	if !ok {
		return
	}
	if removed, _ := s.sc.RemoveEmptyTextBoxes(); removed {
		s.log.DebugContext(s.ctx, "empty text box removed", slog.String("id", box.ID))
	}
	id := box.ID
	s.notify(func(o Observer) { o.TextBoxDeselected(id) })
}

func (s *Session) cancelGestureLocked() {
	if s.mode == modeErase && s.changed {
		s.commitEraseLocked()
	}
	if (s.mode == modeDragText || s.mode == modeResizeText || s.mode == modeDragOpening) && s.changed {
		s.record(s.pending)
	}
	s.mode = modeIdle
	s.stroke = nil
	s.changed = false
	s.tool.Dragging = false
}
