/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"testing"
	"time"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func drag(s *Session, pts ...geom.Pt) {
	s.PointerDown(pts[0], 1)
	for _, p := range pts[1:] {
		s.PointerMove(p, 1)
	}
	s.PointerUp(pts[len(pts)-1], 1)
}

func TestPointerDrawsSnappedLine(t *testing.T) {
	s := newSession(t)
	_ = s.SetTool("line")
	drag(s, geom.P(3, 4), geom.P(47, 2))
	snap := s.Scene()
	if len(snap.Shapes) != 1 {
		t.Fatalf("shapes = %d", len(snap.Shapes))
	}
	if sh := snap.Shapes[0]; !sh.Start.Eq(geom.P(0, 0)) || !sh.End.Eq(geom.P(50, 0)) {
		t.Fatalf("line = %v-%v, want half-grid snapped (0,0)-(50,0)", sh.Start, sh.End)
	}
}

func TestPointerPenIsUnsnapped(t *testing.T) {
	s := newSession(t)
	drag(s, geom.P(3, 4), geom.P(7, 9), geom.P(13, 21))
	sh := s.Scene().Shapes[0]
	if sh.Tool != scene.ToolPen || len(sh.Path) != 3 || !sh.Path[1].Eq(geom.P(7, 9)) {
		t.Fatalf("pen = %+v", sh)
	}
}

func TestEraserGestureIsOneUndoEntry(t *testing.T) {
	s := newSession(t)
	drawLine(t, s, geom.P(0, 0), geom.P(200, 0))
	_ = s.SetTool("eraser")
	drag(s, geom.P(50, 0), geom.P(100, 0), geom.P(150, 0))
	if n := len(s.Scene().Shapes); n < 2 {
		t.Fatalf("erase gesture should leave fragments, got %d shapes", n)
	}
	if undo, _ := s.HistoryStats(); undo != 2 {
		t.Fatalf("undo depth = %d, want 2 (line + one erase)", undo)
	}
	s.Undo()
	got := s.Scene().Shapes
	if len(got) != 1 || got[0].End.X != 200 {
		t.Fatalf("single undo should restore the line: %+v", got)
	}
}

func textBoxWithText(t *testing.T, s *Session) scene.Shape {
	t.Helper()
	box, ok := s.CreateTextBox(geom.P(0, 0), geom.P(200, 100), false)
	if !ok {
		t.Fatalf("CreateTextBox failed")
	}
	s.SetText(box.ID, "hi")
	return box
}

func TestDragTextBoxIsOneUndoEntry(t *testing.T) {
	s := newSession(t)
	box := textBoxWithText(t, s)
	drag(s, geom.P(100, 50), geom.P(110, 60), geom.P(120, 70))
	got, _ := findShape(s.Scene(), box.ID)
	if got.X != 20 || got.Y != 20 {
		t.Fatalf("box at %v,%v, want 20,20", got.X, got.Y)
	}
	if undo, _ := s.HistoryStats(); undo != 3 {
		t.Fatalf("undo depth = %d, want 3", undo)
	}
	s.Undo()
	got, _ = findShape(s.Scene(), box.ID)
	if got.X != 0 || got.Y != 0 {
		t.Fatalf("undo should restore the drag start, got %v,%v", got.X, got.Y)
	}
	if len(s.Scene().Shapes) != 1 {
		t.Fatalf("pen tool must not draw while dragging a box")
	}
}

func TestResizeTextBoxFromEastHandle(t *testing.T) {
	s := newSession(t)
	box := textBoxWithText(t, s)
	drag(s, geom.P(200, 50), geom.P(260, 50))
	got, _ := findShape(s.Scene(), box.ID)
	if got.Width != 260 || got.X != 0 {
		t.Fatalf("resized box = x %v w %v, want x 0 w 260", got.X, got.Width)
	}
}

func TestPointerDragsOpening(t *testing.T) {
	s := newSession(t)
	s.CreateOpeningAt(geom.P(100, 100))
	drag(s, geom.P(100, 100), geom.P(140, 100))
	o := s.Scene().Openings[0]
	if o.X != 115 {
		t.Fatalf("opening x = %v, want 115", o.X)
	}
	if len(s.Scene().Shapes) != 0 {
		t.Fatalf("dragging an opening must not draw")
	}
}

func TestOpeningToolPlacesOnRelease(t *testing.T) {
	s := newSession(t)
	_ = s.SetTool("opening")
	drag(s, geom.P(180, 190), geom.P(203, 198))
	snap := s.Scene()
	if len(snap.Openings) != 1 {
		t.Fatalf("openings = %d", len(snap.Openings))
	}
	if o := snap.Openings[0]; o.X != 175 || o.Y != 175 {
		t.Fatalf("opening = %+v, want centered on snapped (200,200)", o)
	}
}

func TestDoorOpeningTypePlacesOpening(t *testing.T) {
	s := newSession(t)
	_ = s.SetTool("door")
	_ = s.SetDoorType("opening")
	drag(s, geom.P(0, 0), geom.P(40, 0))
	snap := s.Scene()
	if len(snap.Shapes) != 0 || len(snap.Openings) != 1 {
		t.Fatalf("door+opening should place an opening: %+v", snap)
	}
}

func TestTextToolCreatesBox(t *testing.T) {
	var selected int
	s := newSession(t, WithObserver(Hooks{OnTextBoxSelected: func(scene.Shape) { selected++ }}))
	_ = s.SetTool("text-horizontal")
	drag(s, geom.P(0, 0), geom.P(300, 100))
	box, ok := findShape(s.Scene(), s.Scene().SelectedTextBox)
	if !ok || box.Width != 300 || box.Height != 100 {
		t.Fatalf("box = %+v ok=%v", box, ok)
	}
	if selected != 1 {
		t.Fatalf("selected events = %d", selected)
	}
}

func TestMultiTouchSuspendsDrawingWithCooldown(t *testing.T) {
	clk := &fakeClock{t: time.Unix(1000, 0)}
	s := newSession(t, WithClock(clk.now))

	s.TouchStart([]geom.Pt{geom.P(100, 100), geom.P(200, 100)})
	drag(s, geom.P(0, 0), geom.P(50, 50))
	if n := len(s.Scene().Shapes); n != 0 {
		t.Fatalf("drawing during pinch: %d shapes", n)
	}
	if !s.TouchMove([]geom.Pt{geom.P(50, 100), geom.P(250, 100)}, 1) {
		t.Fatalf("pinch should change the view")
	}
	if v := s.ViewTransform(); math.Abs(v.Scale-2) > 1e-9 {
		t.Fatalf("scale = %v, want 2", v.Scale)
	}

	s.TouchEnd(1)
	s.TouchEnd(0)
	if !s.Blocked() || s.BeginStroke(geom.P(0, 0)) {
		t.Fatalf("drawing must stay suspended during the cooldown")
	}
	clk.advance(250 * time.Millisecond)
	if s.Blocked() {
		t.Fatalf("cooldown should have expired")
	}
	if !s.BeginStroke(geom.P(0, 0)) {
		t.Fatalf("drawing should resume after the cooldown")
	}
}

func TestSecondTouchAbandonsStroke(t *testing.T) {
	s := newSession(t)
	s.PointerDown(geom.P(0, 0), 1)
	s.PointerMove(geom.P(10, 10), 1)
	s.TouchStart([]geom.Pt{geom.P(0, 0), geom.P(100, 0)})
	s.PointerUp(geom.P(20, 20), 1)
	if n := len(s.Scene().Shapes); n != 0 {
		t.Fatalf("abandoned stroke was committed")
	}
}

func TestWheelZoomAndReset(t *testing.T) {
	s := newSession(t)
	if !s.Wheel(400, 300, 1, -1) {
		t.Fatalf("wheel up should zoom in")
	}
	if v := s.ViewTransform(); math.Abs(v.Scale-math.Exp(0.1)) > 1e-9 {
		t.Fatalf("scale = %v", v.Scale)
	}
	s.Pan(10, 0, 1)
	if !s.ResetZoom() {
		t.Fatalf("reset should change the view")
	}
	if v := s.ViewTransform(); v.Scale != 1 || v.TranslateX != 0 {
		t.Fatalf("view after reset = %+v", v)
	}
	if s.ResetZoom() {
		t.Fatalf("second reset is a no-op")
	}
}

func TestPointerRespectsZoom(t *testing.T) {
	s := newSession(t)
	s.ZoomAt(0, 0, 1, 2)
	_ = s.SetTool("line")
	drag(s, geom.P(0, 0), geom.P(200, 0))
	sh := s.Scene().Shapes[0]
	if sh.End.X != 100 {
		t.Fatalf("end x = %v, want 100 at scale 2", sh.End.X)
	}
}
