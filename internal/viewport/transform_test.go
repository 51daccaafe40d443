/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"math"
	"testing"
	"time"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= eps }

func TestSnapUnitPolicy(t *testing.T) {
	cases := []struct {
		name string
		ts   ToolState
		want float64
	}{
		{"pen", ToolState{Tool: scene.ToolPen}, 0},
		{"pen shift", ToolState{Tool: scene.ToolPen, Shift: true}, 20},
		{"eraser", ToolState{Tool: scene.ToolEraser}, 0},
		{"text", ToolState{Tool: scene.ToolTextVertical}, 0},
		{"text shift", ToolState{Tool: scene.ToolTextHorizontal, Shift: true}, 20},
		{"door", ToolState{Tool: scene.ToolDoor}, 5},
		{"stairs", ToolState{Tool: scene.ToolStairs}, 5},
		{"dashed line", ToolState{Tool: scene.ToolLine, LineStyle: scene.LineDashed}, 5},
		{"arrow line", ToolState{Tool: scene.ToolLine, LineStyle: scene.LineArrow}, 5},
		{"solid line", ToolState{Tool: scene.ToolLine, LineStyle: scene.LineSolid}, 10},
		{"rectangle", ToolState{Tool: scene.ToolRectangle}, 10},
		{"opening", ToolState{Tool: scene.ToolOpening}, 20},
		{"dragging", ToolState{Tool: scene.ToolRectangle, Dragging: true}, 0},
	}
	for _, c := range cases {
		if got := SnapUnit(c.ts, 20); got != c.want {
			t.Fatalf("%s: SnapUnit = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestToWorldAppliesDPRTranslateScaleAndSnap(t *testing.T) {
	v := New(DefaultLimits)
	v.Scale = 2
	v.TranslateX, v.TranslateY = 100, 50
	// (60*2 - 100)/2 = 10, (40*2 - 50)/2 = 15
	raw := v.Unsnapped(geom.P(60, 40), 2)
	if raw != geom.P(10, 15) {
		t.Fatalf("Unsnapped = %+v", raw)
	}
	got := v.ToWorld(geom.P(60, 40), 2, ToolState{Tool: scene.ToolRectangle}, 20)
	if got != geom.P(10, 20) {
		t.Fatalf("ToWorld = %+v, want (10,20)", got)
	}
}

// P1: identical inputs give identical outputs.
func TestToWorldIsPure(t *testing.T) {
	v := New(DefaultLimits)
	v.ZoomAt(123, 77, 1.5, 1.7)
	ts := ToolState{Tool: scene.ToolLine, LineStyle: scene.LineArrow}
	a := v.ToWorld(geom.P(311.3, 97.8), 1.5, ts, 20)
	b := v.ToWorld(geom.P(311.3, 97.8), 1.5, ts, 20)
	if a != b {
		t.Fatalf("ToWorld not idempotent: %+v vs %+v", a, b)
	}
}

func TestToScreenInvertsUnsnapped(t *testing.T) {
	v := New(DefaultLimits)
	v.ZoomAt(10, 20, 2, 3)
	w := v.Unsnapped(geom.P(200, 150), 2)
	s := v.ToScreen(w, 2)
	if !near(s.X, 200) || !near(s.Y, 150) {
		t.Fatalf("ToScreen(Unsnapped(p)) = %+v", s)
	}
}

// P5: the world point under the zoom center is invariant.
func TestZoomAtKeepsFixedPoint(t *testing.T) {
	v := New(DefaultLimits)
	v.TranslateX, v.TranslateY = 13, -7
	before := v.Unsnapped(geom.P(321, 123), 1.25)
	if !v.ZoomAt(321, 123, 1.25, 1.8) {
		t.Fatalf("expected a scale change")
	}
	after := v.Unsnapped(geom.P(321, 123), 1.25)
	if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
		t.Fatalf("fixed point moved: %+v -> %+v", before, after)
	}
}

// Scenario D: zoom in then out at the same point restores the view.
func TestZoomInOutRestores(t *testing.T) {
	v := New(DefaultLimits)
	orig := v
	v.ZoomAt(400, 300, 1, 2)
	v.ZoomAt(400, 300, 1, 0.5)
	if !near(v.Scale, orig.Scale) || !near(v.TranslateX, orig.TranslateX) || !near(v.TranslateY, orig.TranslateY) {
		t.Fatalf("view not restored: %+v", v)
	}
}

func TestZoomClamps(t *testing.T) {
	v := New(DefaultLimits)
	v.ZoomAt(0, 0, 1, 100)
	if v.Scale != 5 {
		t.Fatalf("scale = %v, want 5", v.Scale)
	}
	if v.ZoomAt(0, 0, 1, 2) {
		t.Fatalf("zoom beyond max must report no change")
	}
	v.ZoomAt(0, 0, 1, 1e-6)
	if v.Scale != 0.1 {
		t.Fatalf("scale = %v, want 0.1", v.Scale)
	}
	if v.ZoomAt(0, 0, 1, -1) {
		t.Fatalf("non-positive factors are ignored")
	}
}

func TestWheelAndReset(t *testing.T) {
	v := New(DefaultLimits)
	v.Wheel(0, 0, 1, -120, 0.1)
	if !near(v.Scale, math.Exp(0.1)) {
		t.Fatalf("wheel up scale = %v", v.Scale)
	}
	v.Wheel(0, 0, 1, 120, 0.1)
	if !near(v.Scale, 1) {
		t.Fatalf("wheel down should undo wheel up, got %v", v.Scale)
	}
	v.Pan(10, 5, 2)
	v.Reset()
	if v.Scale != 1 || v.TranslateX != 0 || v.TranslateY != 0 {
		t.Fatalf("reset failed: %+v", v)
	}
}

func TestGesturePinchAndCooldown(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	g := NewGesture(200*time.Millisecond, clock)
	v := New(DefaultLimits)

	g.TouchStart([]geom.Pt{{X: 100, Y: 100}, {X: 200, Y: 100}})
	if !g.Blocked() || !g.Pinching() {
		t.Fatalf("two contacts must block drawing")
	}
	// spread to twice the distance around the same center
	if !g.TouchMove(&v, []geom.Pt{{X: 50, Y: 100}, {X: 250, Y: 100}}, 1) {
		t.Fatalf("pinch should change the view")
	}
	if !near(v.Scale, 2) {
		t.Fatalf("pinch scale = %v, want 2", v.Scale)
	}
	// translate both fingers: pan only
	tx := v.TranslateX
	g.TouchMove(&v, []geom.Pt{{X: 60, Y: 100}, {X: 260, Y: 100}}, 1)
	if !near(v.TranslateX, tx+10) {
		t.Fatalf("centroid pan: tx=%v want %v", v.TranslateX, tx+10)
	}

	g.TouchEnd(1)
	if g.Pinching() || !g.Blocked() {
		t.Fatalf("one remaining contact: pinch over, still multi-touch")
	}
	g.TouchEnd(0)
	if !g.Blocked() {
		t.Fatalf("cooldown must block right after lift")
	}
	now = now.Add(199 * time.Millisecond)
	if !g.Blocked() {
		t.Fatalf("still inside cooldown")
	}
	now = now.Add(2 * time.Millisecond)
	if g.Blocked() {
		t.Fatalf("cooldown should have elapsed")
	}
}
