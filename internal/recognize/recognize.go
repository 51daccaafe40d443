/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package recognize turns freehand pen paths into lines, rectangles or
// circles when the stroke is close enough to one of them.
package recognize

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"floorsketch/internal/geom"
)

// Kind is the recognized shape.
type Kind string

const (
	Line      Kind = "line"
	Circle    Kind = "circle"
	Rectangle Kind = "rectangle"
)

// Tolerances in world units.
type Tolerances struct {
	Line      float64
	Circle    float64
	Rectangle float64
}

// DefaultTolerances match a relaxed freehand hand.
var DefaultTolerances = Tolerances{Line: 25, Circle: 20, Rectangle: 25}

// Result describes a recognized shape. For a line Start/End are the
// endpoints, for a rectangle the min and max corners, for a circle the
// center and a point on the circumference.
type Result struct {
	Kind       Kind
	Start      geom.Pt
	End        geom.Pt
	Confidence float64
}

const (
	minLineLength    = 20
	axisSnapDeg      = 15
	minCirclePoints  = 10
	minRectPoints    = 8
	cornerThreshold  = math.Pi / 4
	vectorTolerance  = 0.2
	circleClosure    = 0.3
	rectConfidence   = 0.8
	lineAccept       = 0.5
	shapeAccept      = 0.7
	minLineConfident = 0.5
)

// Recognizer holds tolerances; the zero value uses DefaultTolerances.
type Recognizer struct {
	Tol Tolerances
}

func (r Recognizer) tol() Tolerances {
	if r.Tol == (Tolerances{}) {
		return DefaultTolerances
	}
	return r.Tol
}

// Recognize tries a line first, then the better of circle and rectangle.
// Paths with fewer than three points are never recognized.
func (r Recognizer) Recognize(path []geom.Pt) (Result, bool) {
	if len(path) < 3 {
		return Result{}, false
	}
	if res, ok := r.line(path); ok && res.Confidence > lineAccept {
		return res, true
	}
	best, found := Result{}, false
	for _, try := range []func([]geom.Pt) (Result, bool){r.circle, r.rectangle} {
		if res, ok := try(path); ok && (!found || res.Confidence > best.Confidence) {
			best, found = res, true
		}
	}
	if found && best.Confidence > shapeAccept {
		return best, true
	}
	return Result{}, false
}

func (r Recognizer) line(path []geom.Pt) (Result, bool) {
	start, end := path[0], path[len(path)-1]
	if geom.Dist(start, end) < minLineLength {
		return Result{}, false
	}
	switch a := math.Abs(geom.AngleDeg(start, end)); {
	case a < axisSnapDeg || a > 180-axisSnapDeg:
		end.Y = start.Y
	case math.Abs(a-90) < axisSnapDeg:
		end.X = start.X
	}
	inner := path[1 : len(path)-1]
	dists := make([]float64, len(inner))
	for i, p := range inner {
		dists[i] = geom.DistToSegment(p, start, end)
	}
	avg := stat.Mean(dists, nil)
	tol := r.tol().Line
	if floats.Max(dists) >= tol || avg >= tol/1.5 {
		return Result{}, false
	}
	return Result{Kind: Line, Start: start, End: end, Confidence: math.Max(minLineConfident, 1-avg/tol)}, true
}

func (r Recognizer) circle(path []geom.Pt) (Result, bool) {
	if len(path) < minCirclePoints {
		return Result{}, false
	}
	b, _ := geom.BoundsOf(path)
	c := b.Center()
	dists := make([]float64, len(path))
	for i, p := range path {
		dists[i] = geom.Dist(p, c)
	}
	radius, sd := stat.PopMeanStdDev(dists, nil)
	tol := r.tol().Circle
	if sd >= tol {
		return Result{}, false
	}
	if geom.Dist(path[0], path[len(path)-1]) >= radius*circleClosure {
		return Result{}, false
	}
	return Result{Kind: Circle, Start: c, End: geom.P(c.X+radius, c.Y), Confidence: 1 - sd/tol}, true
}

func (r Recognizer) rectangle(path []geom.Pt) (Result, bool) {
	if len(path) < minRectPoints {
		return Result{}, false
	}
	corners := Corners(path)
	if len(corners) != 4 || !rectangular(corners) {
		return Result{}, false
	}
	b, _ := geom.BoundsOf(corners)
	return Result{Kind: Rectangle, Start: b.Min(), End: b.Max(), Confidence: rectConfidence}, true
}

// Corners returns the interior points where the path turns by more than 45°.
func Corners(path []geom.Pt) []geom.Pt {
	var out []geom.Pt
	for i := 1; i < len(path)-1; i++ {
		a1 := math.Atan2(path[i].Y-path[i-1].Y, path[i].X-path[i-1].X)
		a2 := math.Atan2(path[i+1].Y-path[i].Y, path[i+1].X-path[i].X)
		d := math.Abs(a2 - a1)
		if d > math.Pi {
			d = 2*math.Pi - d
		}
		if d > cornerThreshold {
			out = append(out, path[i])
		}
	}
	return out
}

func rectangular(c []geom.Pt) bool {
	v := make([]geom.Pt, 4)
	for i := range v {
		v[i] = c[(i+1)%4].Sub(c[i])
	}
	return parallel(v[0], v[2]) && parallel(v[1], v[3]) && perpendicular(v[0], v[1])
}

func norm(v geom.Pt) float64 { return math.Hypot(v.X, v.Y) }

func parallel(a, b geom.Pt) bool {
	return math.Abs(a.X*b.Y-a.Y*b.X) < vectorTolerance*norm(a)*norm(b)
}

func perpendicular(a, b geom.Pt) bool {
	return math.Abs(a.X*b.X+a.Y*b.Y) < vectorTolerance*norm(a)*norm(b)
}
