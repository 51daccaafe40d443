/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scene owns the drawable entities of a floor plan: shapes
// (strokes, walls, doors, stairs, text boxes) and openings, plus the
// current selection. Selection is held as entity IDs, never as pointers
// into the collections, so removing a selected entity cannot dangle.
//
// A Scene is not safe for concurrent use; the editor serializes access.
package scene

import (
	"math"
	"slices"
	"strings"

	"github.com/google/uuid"

	"floorsketch/internal/geom"
)

// Scene is the mutable model.
type Scene struct {
	shapes          []Shape
	openings        []Opening
	selectedText    string
	selectedOpening string
}

// New returns an empty scene.
func New() *Scene { return &Scene{} }

// Snapshot is a read-only copy of the scene for painting and export.
type Snapshot struct {
	Shapes          []Shape   `json:"shapes"`
	Openings        []Opening `json:"openings"`
	SelectedTextBox string    `json:"selectedTextBox,omitempty"`
	SelectedOpening string    `json:"selectedOpening,omitempty"`
}

// Snapshot copies the current state.
func (s *Scene) Snapshot() Snapshot {
	return Snapshot{
		Shapes:          s.Shapes(),
		Openings:        s.Openings(),
		SelectedTextBox: s.selectedText,
		SelectedOpening: s.selectedOpening,
	}
}

// Shapes returns a copy of the shape collection.
func (s *Scene) Shapes() []Shape {
	out := make([]Shape, len(s.shapes))
	for i, sh := range s.shapes {
		out[i] = sh.Clone()
	}
	return out
}

// Openings returns a copy of the opening collection.
func (s *Scene) Openings() []Opening { return append([]Opening{}, s.openings...) }

func (s *Scene) ShapeCount() int   { return len(s.shapes) }
func (s *Scene) OpeningCount() int { return len(s.openings) }

// SetShapes replaces the shape collection (history restore, erase results).
// A selection that no longer resolves is dropped.
func (s *Scene) SetShapes(shapes []Shape) {
	s.shapes = make([]Shape, len(shapes))
	for i, sh := range shapes {
		s.shapes[i] = sh.Clone()
	}
	if s.shapeIndex(s.selectedText) < 0 {
		s.selectedText = ""
	}
}

// SetOpenings replaces the opening collection.
func (s *Scene) SetOpenings(ops []Opening) {
	s.openings = append([]Opening{}, ops...)
	if s.openingIndex(s.selectedOpening) < 0 {
		s.selectedOpening = ""
	}
}

// AddShape appends a shape and returns it with its assigned ID.
// Degenerate geometry (zero length, empty path) is dropped with ok=false and
// no error; a wrong tool or contradictory fields return an error.
func (s *Scene) AddShape(sh Shape) (Shape, bool, error) {
	ok, err := check(sh)
	if err != nil || !ok {
		return Shape{}, false, err
	}
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	sh = sh.Clone()
	s.shapes = append(s.shapes, sh)
	return sh, true, nil
}

// AddOpening places a square opening of side size centered on floor(p),
// selects it and deselects every other opening.
func (s *Scene) AddOpening(p geom.Pt, size float64) Opening {
	c := p.Floor()
	o := Opening{ID: uuid.NewString(), X: c.X - size/2, Y: c.Y - size/2, Width: size, Height: size}
	s.openings = append(s.openings, o)
	s.selectedOpening = o.ID
	return o
}

// Shape returns the shape with the given ID.
func (s *Scene) Shape(id string) (Shape, bool) {
	if i := s.shapeIndex(id); i >= 0 {
		return s.shapes[i].Clone(), true
	}
	return Shape{}, false
}

func (s *Scene) shapeIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.shapes, func(sh Shape) bool { return sh.ID == id })
}

func (s *Scene) openingIndex(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.openings, func(o Opening) bool { return o.ID == id })
}

// SelectedTextBox returns the selected text box, if any.
func (s *Scene) SelectedTextBox() (Shape, bool) {
	return s.Shape(s.selectedText)
}

// SelectedOpening returns the selected opening, if any.
func (s *Scene) SelectedOpening() (Opening, bool) {
	if i := s.openingIndex(s.selectedOpening); i >= 0 {
		return s.openings[i], true
	}
	return Opening{}, false
}

// SelectTextBox makes id the only selected text box and returns the ID of the
// previously selected one. An empty or unknown id clears the selection.
func (s *Scene) SelectTextBox(id string) (prev string) {
	prev = s.selectedText
	if i := s.shapeIndex(id); i >= 0 && s.shapes[i].Tool == ToolTextBox {
		s.selectedText = id
	} else {
		s.selectedText = ""
	}
	return prev
}

// SelectOpening makes id the only selected opening.
func (s *Scene) SelectOpening(id string) {
	if s.openingIndex(id) >= 0 {
		s.selectedOpening = id
		return
	}
	s.selectedOpening = ""
}

// MoveSelectedTextBox translates the selected text box. It records no history;
// callers snapshot once at drag start.
func (s *Scene) MoveSelectedTextBox(dx, dy float64) bool {
	i := s.shapeIndex(s.selectedText)
	if i < 0 {
		return false
	}
	s.shapes[i].X += dx
	s.shapes[i].Y += dy
	return true
}

// MoveSelectedOpening translates the selected opening.
func (s *Scene) MoveSelectedOpening(dx, dy float64) bool {
	i := s.openingIndex(s.selectedOpening)
	if i < 0 {
		return false
	}
	s.openings[i].X += dx
	s.openings[i].Y += dy
	return true
}

// SetText replaces a text box's text.
func (s *Scene) SetText(id, text string) bool {
	i := s.shapeIndex(id)
	if i < 0 || s.shapes[i].Tool != ToolTextBox {
		return false
	}
	s.shapes[i].Text = text
	return true
}

// MinTextBoxWidth is the narrowest a text box may be resized to.
func MinTextBoxWidth(fontSize float64) float64 { return math.Max(30, fontSize*3) }

// ResizeSelectedTextBox drags the named horizontal handle ("w" or "e") of the
// selected text box to p. Widths below MinTextBoxWidth are refused for "w"
// and clamped for "e".
func (s *Scene) ResizeSelectedTextBox(handle string, p geom.Pt) bool {
	i := s.shapeIndex(s.selectedText)
	if i < 0 {
		return false
	}
	b := &s.shapes[i]
	minW := MinTextBoxWidth(b.FontSize)
	switch handle {
	case "w":
		w := b.Width + (b.X - p.X)
		if w < minW {
			return false
		}
		b.Width = w
		b.X = p.X
	case "e":
		b.Width = math.Max(minW, p.X-b.X)
	default:
		return false
	}
	return true
}

// RemoveEmptyTextBoxes deletes the selected text box when its text is empty or
// whitespace. A selected box with text is only deselected.
func (s *Scene) RemoveEmptyTextBoxes() (removed, deselected bool) {
	i := s.shapeIndex(s.selectedText)
	if i < 0 {
		return false, false
	}
	s.selectedText = ""
	if strings.TrimSpace(s.shapes[i].Text) != "" {
		return false, true
	}
	s.shapes = slices.Delete(s.shapes, i, i+1)
	return true, true
}

// TextBoxAt returns the topmost text box whose actual rendered area contains p.
func (s *Scene) TextBoxAt(p geom.Pt) (Shape, bool) {
	for i := len(s.shapes) - 1; i >= 0; i-- {
		sh := s.shapes[i]
		if sh.Tool == ToolTextBox && ActualSize(sh).Contains(p) {
			return sh.Clone(), true
		}
	}
	return Shape{}, false
}

// OpeningAt returns the topmost opening containing p.
func (s *Scene) OpeningAt(p geom.Pt) (Opening, bool) {
	for i := len(s.openings) - 1; i >= 0; i-- {
		if s.openings[i].Rect().Contains(p) {
			return s.openings[i], true
		}
	}
	return Opening{}, false
}

// Clear empties both collections and the selection.
func (s *Scene) Clear() {
	s.shapes = nil
	s.openings = nil
	s.selectedText = ""
	s.selectedOpening = ""
}

// OptimizePaths merges runs of consecutive pen strokes that share color and
// width and continue where the previous one ended (gap no wider than the
// stroke), keeping each merged path at or under maxPoints. It returns the
// number of shapes saved.
func (s *Scene) OptimizePaths(maxPoints int) int {
	if len(s.shapes) < 2 {
		return 0
	}
	before := len(s.shapes)
	out := make([]Shape, 0, len(s.shapes))
	for _, sh := range s.shapes {
		if n := len(out); n > 0 && canMerge(out[n-1], sh, maxPoints) {
			last := &out[n-1]
			merged := make([]geom.Pt, 0, len(last.Path)+len(sh.Path))
			merged = append(merged, last.Path...)
			last.Path = append(merged, sh.Path...)
			if sh.ID == s.selectedText {
				s.selectedText = ""
			}
			continue
		}
		out = append(out, sh)
	}
	s.shapes = out
	return before - len(out)
}

func canMerge(a, b Shape, maxPoints int) bool {
	if a.Tool != ToolPen || b.Tool != ToolPen || len(a.Path) == 0 || len(b.Path) == 0 {
		return false
	}
	if a.StrokeColor != b.StrokeColor || a.StrokeWidth != b.StrokeWidth {
		return false
	}
	if maxPoints > 0 && len(a.Path)+len(b.Path) > maxPoints {
		return false
	}
	return geom.Dist(a.Path[len(a.Path)-1], b.Path[0]) <= math.Max(1, a.StrokeWidth)
}

// PenCount counts pen strokes.
func (s *Scene) PenCount() int {
	n := 0
	for _, sh := range s.shapes {
		if sh.Tool == ToolPen {
			n++
		}
	}
	return n
}
