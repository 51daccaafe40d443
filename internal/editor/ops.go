/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"encoding/json"
	"log/slog"
	"math"

	"floorsketch/internal/erase"
	"floorsketch/internal/geom"
	"floorsketch/internal/history"
	"floorsketch/internal/scene"
	"floorsketch/internal/viewport"
)

const (
	minTextBoxWidth         = 120
	minVerticalTextBoxWidth = 60
	minTextBoxHeight        = 60
)

// EraseAt applies the eraser at world point p. Inside an eraser gesture
// (pointer down with the eraser tool) all applications share one history
// entry, recorded when the gesture ends.
func (s *Session) EraseAt(p geom.Pt) bool {
	s.mu.Lock()
	ok := !s.gesture.Blocked() && s.eraseLocked(p)
	s.mu.Unlock()
	s.flush(ok)
	return ok
}

func (s *Session) eraseLocked(p geom.Pt) bool {
	st := s.state()
	res := erase.EraseAt(st.Shapes, st.Openings, p, erase.Params{Radius: s.eraserSize, Grid: s.opts.Grid})
	if !res.Changed() {
		return false
	}
	prevBox := s.selectedBoxID()
	if s.mode == modeErase {
		if !s.changed {
			s.pending = history.Capture(history.KindScene, "erase", st, s.now())
			s.erasedShapes, s.erasedOpenings = false, false
		}
		s.changed = true
		s.erasedShapes = s.erasedShapes || res.ShapesChanged
		s.erasedOpenings = s.erasedOpenings || res.OpeningsChanged
	} else {
		s.record(history.Capture(kindOf(res.ShapesChanged, res.OpeningsChanged), "erase", st, s.now()))
	}
	if res.ShapesChanged {
		s.sc.SetShapes(res.Shapes)
	}
	if res.OpeningsChanged {
		s.sc.SetOpenings(res.Openings)
	}
	s.reconcileSelectionLocked(prevBox)
	s.log.DebugContext(s.ctx, "erase", slog.Int("removed", res.Removed), slog.Int("split", res.Split))
	return true
}

// commitEraseLocked records the eraser gesture, narrowed to the collections
// it actually touched.
func (s *Session) commitEraseLocked() {
	e := s.pending
	e.Kind = kindOf(s.erasedShapes, s.erasedOpenings)
	switch e.Kind {
	case history.KindPath:
		e.Openings = nil
	case history.KindOpening:
		e.Shapes = nil
	}
	s.record(e)
	s.changed = false
}

func kindOf(shapes, openings bool) history.Kind {
	switch {
	case shapes && openings:
		return history.KindScene
	case openings:
		return history.KindOpening
	}
	return history.KindPath
}

// CreateOpeningAt places an opening of 2.5 grid units centered on p and
// selects it.
func (s *Session) CreateOpeningAt(p geom.Pt) scene.Opening {
	s.mu.Lock()
	o := s.createOpeningLocked(p)
	s.mu.Unlock()
	s.flush(true)
	return o
}

func (s *Session) createOpeningLocked(p geom.Pt) scene.Opening {
	before := s.capture(history.KindOpening, "add_opening")
	o := s.sc.AddOpening(p, s.opts.Grid*scene.OpeningUnits)
	s.record(before)
	return o
}

// BeginMove starts moving the selected text box, or else the selected
// opening, from world point p. The pre-move state is captured once here.
func (s *Session) BeginMove(p geom.Pt) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginMoveLocked(p)
}

func (s *Session) beginMoveLocked(p geom.Pt) bool {
	if _, ok := s.sc.SelectedTextBox(); ok {
		s.mode = modeDragText
		s.pending = s.capture(history.KindPath, "move_textbox")
	} else if _, ok := s.sc.SelectedOpening(); ok {
		s.mode = modeDragOpening
		s.pending = s.capture(history.KindOpening, "move_opening")
	} else {
		return false
	}
	s.anchor = p
	s.changed = false
	s.tool.Dragging = true
	return true
}

// MoveSelection drags the selection so that the point grabbed in BeginMove
// follows p.
func (s *Session) MoveSelection(p geom.Pt) bool {
	s.mu.Lock()
	ok := s.moveSelectionLocked(p)
	s.mu.Unlock()
	s.flush(ok)
	return ok
}

func (s *Session) moveSelectionLocked(p geom.Pt) bool {
	dx, dy := p.X-s.anchor.X, p.Y-s.anchor.Y
	if dx == 0 && dy == 0 {
		return false
	}
	var moved bool
	switch s.mode {
	case modeDragText:
		moved = s.sc.MoveSelectedTextBox(dx, dy)
	case modeDragOpening:
		moved = s.sc.MoveSelectedOpening(dx, dy)
	}
	if moved {
		s.anchor = p
		s.changed = true
	}
	return moved
}

// EndMove finishes a move and records it when anything moved.
func (s *Session) EndMove() bool {
	s.mu.Lock()
	moved := s.changed && (s.mode == modeDragText || s.mode == modeDragOpening)
	s.cancelGestureLocked()
	s.mu.Unlock()
	s.flush(moved)
	return moved
}

// Undo restores the state before the most recent action.
func (s *Session) Undo() bool {
	return s.step("undo", s.hist.Undo)
}

// Redo re-applies the most recently undone action.
func (s *Session) Redo() bool {
	return s.step("redo", s.hist.Redo)
}

func (s *Session) step(op string, pop func(history.State) (history.Entry, bool)) bool {
	s.mu.Lock()
	s.cancelGestureLocked()
	e, ok := pop(s.state())
	if ok {
		prev := s.selectedBoxID()
		history.Apply(s.sc, e)
		s.reconcileSelectionLocked(prev)
		s.emit(op, e.Kind)
	}
	s.mu.Unlock()
	s.flush(ok)
	return ok
}

// Clear empties the scene and the history.
func (s *Session) Clear() {
	s.mu.Lock()
	s.cancelGestureLocked()
	prev := s.selectedBoxID()
	s.sc.Clear()
	s.hist.Clear()
	s.reconcileSelectionLocked(prev)
	s.emit("clear", history.KindScene)
	s.mu.Unlock()
	s.flush(true)
}

// CreateTextBox creates a text box over the rectangle dragged from a to b,
// centered on its midpoint and grown to the minimum size. Nothing is created
// while another text box is selected.
func (s *Session) CreateTextBox(a, b geom.Pt, vertical bool) (scene.Shape, bool) {
	s.mu.Lock()
	sh, ok := s.createTextBoxLocked(a, b, vertical)
	s.mu.Unlock()
	s.flush(ok)
	return sh, ok
}

func (s *Session) createTextBoxLocked(a, b geom.Pt, vertical bool) (scene.Shape, bool) {
	if _, busy := s.sc.SelectedTextBox(); busy {
		return scene.Shape{}, false
	}
	r := geom.RectFromCorners(a, b)
	minW := float64(minTextBoxWidth)
	if vertical {
		minW = minVerticalTextBoxWidth
	}
	w := math.Max(minW, r.W)
	h := math.Max(minTextBoxHeight, r.H)
	c := r.Center()
	box := scene.NewTextBox(c.X-w/2, c.Y-h/2, w, h, s.opts.FontSize, s.opts.FontFamily, s.color, vertical)

	before := s.capture(history.KindPath, "add_textbox")
	stored, ok, err := s.sc.AddShape(box)
	if err != nil || !ok {
		return scene.Shape{}, false
	}
	s.record(before)
	s.sc.SelectOpening("")
	s.selectTextLocked(stored.ID)
	return stored, true
}

// SetText replaces the text of a text box.
func (s *Session) SetText(id, text string) bool {
	s.mu.Lock()
	ok := false
	if sh, found := s.sc.Shape(id); found && sh.Tool == scene.ToolTextBox && sh.Text != text {
		before := s.capture(history.KindPath, "edit_text")
		ok = s.sc.SetText(id, text)
		if ok {
			s.record(before)
		}
	}
	s.mu.Unlock()
	s.flush(ok)
	return ok
}

// SelectTextBox selects a text box by ID; an empty id deselects.
func (s *Session) SelectTextBox(id string) bool {
	s.mu.Lock()
	if id == "" {
		s.deselectTextLocked()
	} else {
		s.selectTextLocked(id)
	}
	box, ok := s.sc.SelectedTextBox()
	s.mu.Unlock()
	s.flush(true)
	return ok && box.ID == id
}

// DumpJSON returns the scene and view as indented JSON.
func (s *Session) DumpJSON() ([]byte, error) {
	s.mu.Lock()
	doc := struct {
		Scene scene.Snapshot `json:"scene"`
		View  viewport.View  `json:"view"`
	}{s.sc.Snapshot(), s.view}
	s.mu.Unlock()
	return json.MarshalIndent(doc, "", "  ")
}

func (s *Session) selectedBoxID() string {
	if box, ok := s.sc.SelectedTextBox(); ok {
		return box.ID
	}
	return ""
}

// reconcileSelectionLocked emits TextBoxDeselected when the box selected
// before a bulk change no longer is.
func (s *Session) reconcileSelectionLocked(prev string) {
	if prev == "" || s.selectedBoxID() == prev {
		return
	}
	s.notify(func(o Observer) { o.TextBoxDeselected(prev) })
}
