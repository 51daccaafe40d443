/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package recognize

import (
	"math"
	"testing"

	"floorsketch/internal/geom"
)

func pts(xy ...float64) []geom.Pt {
	out := make([]geom.Pt, 0, len(xy)/2)
	for i := 0; i+1 < len(xy); i += 2 {
		out = append(out, geom.P(xy[i], xy[i+1]))
	}
	return out
}

func TestRecognizeLineSnapsToAxis(t *testing.T) {
	var r Recognizer
	res, ok := r.Recognize(pts(0, 0, 30, 2, 60, -1, 100, 3))
	if !ok || res.Kind != Line {
		t.Fatalf("expected a line, got %+v ok=%v", res, ok)
	}
	if !res.End.Eq(geom.P(100, 0)) {
		t.Fatalf("near-horizontal line should snap, end=%v", res.End)
	}
	if res.Confidence <= 0.5 || res.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", res.Confidence)
	}

	res, ok = r.Recognize(pts(0, 0, 1, 50, 3, 100))
	if !ok || !res.End.Eq(geom.P(0, 100)) {
		t.Fatalf("near-vertical line should snap: %+v", res)
	}
}

func TestRecognizeRejects(t *testing.T) {
	var r Recognizer
	if _, ok := r.Recognize(pts(0, 0, 100, 0)); ok {
		t.Fatalf("two-point paths are never recognized")
	}
	if _, ok := r.Recognize(pts(0, 0, 50, 40, 100, 0, 150, 40)); ok {
		t.Fatalf("zigzag should not be recognized")
	}
	if _, ok := r.Recognize(pts(0, 0, 5, 1, 10, 0)); ok {
		t.Fatalf("strokes shorter than the minimum line length are ignored")
	}
}

func TestRecognizeRectangle(t *testing.T) {
	var r Recognizer
	path := pts(40, 0, 60, 0, 100, 0, 100, 50, 100, 100, 50, 100, 0, 100, 0, 50, 0, 0, 30, 0)
	if c := Corners(path); len(c) != 4 {
		t.Fatalf("corners = %v, want 4", c)
	}
	res, ok := r.Recognize(path)
	if !ok || res.Kind != Rectangle {
		t.Fatalf("expected rectangle, got %+v ok=%v", res, ok)
	}
	if !res.Start.Eq(geom.P(0, 0)) || !res.End.Eq(geom.P(100, 100)) {
		t.Fatalf("rectangle corners = %v %v", res.Start, res.End)
	}
}

func TestRecognizeCircle(t *testing.T) {
	var path []geom.Pt
	for i := 0; i < 24; i++ {
		a := float64(i) * 15 * math.Pi / 180
		path = append(path, geom.P(100+50*math.Cos(a), 100+50*math.Sin(a)))
	}
	var r Recognizer
	res, ok := r.Recognize(path)
	if !ok || res.Kind != Circle {
		t.Fatalf("expected circle, got %+v ok=%v", res, ok)
	}
	if !res.Start.Near(geom.P(100, 100), 1e-6) || math.Abs(res.End.X-150) > 1e-6 {
		t.Fatalf("circle center/radius = %v %v", res.Start, res.End)
	}
}
