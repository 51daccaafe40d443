/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the plane geometry shared by the editing engine:
// points, axis-aligned rectangles, point-to-segment distance, angle
// classification and grid snapping. All values are world units (float64).
package geom

import "math"

// Pt is a point in world coordinates.
type Pt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Add(q Pt) Pt                 { return Pt{p.X + q.X, p.Y + q.Y} }
func (p Pt) Sub(q Pt) Pt                 { return Pt{p.X - q.X, p.Y - q.Y} }
func (p Pt) Scale(s float64) Pt          { return Pt{p.X * s, p.Y * s} }
func (p Pt) Eq(q Pt) bool                { return p.X == q.X && p.Y == q.Y }
func (p Pt) Floor() Pt                   { return Pt{math.Floor(p.X), math.Floor(p.Y)} }
func (p Pt) Near(q Pt, eps float64) bool { return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps }

// Dist returns the euclidean distance between a and b.
func Dist(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Lerp returns a + (b-a)*t.
func Lerp(a, b Pt, t float64) Pt { return Pt{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t} }

// ClosestOnSegment projects p onto segment ab, clamped to the segment.
// A degenerate segment yields a.
func ClosestOnSegment(p, a, b Pt) Pt {
	dx, dy := b.X-a.X, b.Y-a.Y
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / l2
	t = Clamp(t, 0, 1)
	return Pt{a.X + t*dx, a.Y + t*dy}
}

// DistToSegment is the shortest distance from p to segment ab.
func DistToSegment(p, a, b Pt) float64 { return Dist(p, ClosestOnSegment(p, a, b)) }

// AngleDeg is the direction of a→b in degrees, in (-180, 180].
func AngleDeg(a, b Pt) float64 { return math.Atan2(b.Y-a.Y, b.X-a.X) * 180 / math.Pi }

// NearAxis reports whether the absolute angle is within tol degrees of
// horizontal (0°, 180°) or vertical (90°).
func NearAxis(angleDeg, tol float64) bool {
	a := math.Abs(angleDeg)
	return a < tol || a > 180-tol || math.Abs(a-90) < tol
}

// NearDiagonal reports whether the absolute angle is within tol degrees of 45° or 135°.
func NearDiagonal(angleDeg, tol float64) bool {
	a := math.Abs(angleDeg)
	return math.Abs(a-45) <= tol || math.Abs(a-135) <= tol
}

// Snap rounds v to the nearest multiple of unit. Non-positive units leave v unchanged.
func Snap(v, unit float64) float64 {
	if unit <= 0 {
		return v
	}
	return math.Round(v/unit) * unit
}

// SnapPt snaps both coordinates independently.
func SnapPt(p Pt, unit float64) Pt { return Pt{Snap(p.X, unit), Snap(p.Y, unit)} }

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromCorners normalizes two opposite corners into a Rect.
func RectFromCorners(a, b Pt) Rect {
	return Rect{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y), W: math.Abs(b.X - a.X), H: math.Abs(b.Y - a.Y)}
}

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

// Contains is inclusive on all edges.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides. Size never goes negative.
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: math.Max(0, r.W-2*dx), H: math.Max(0, r.H-2*dy)}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Corners returns tl, tr, br, bl.
func (r Rect) Corners() [4]Pt {
	return [4]Pt{{r.X, r.Y}, {r.X + r.W, r.Y}, {r.X + r.W, r.Y + r.H}, {r.X, r.Y + r.H}}
}

// BoundsOf returns the bounding box of pts; ok is false for an empty slice.
func BoundsOf(pts []Pt) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}

// Affine is a 2D affine transform
// | A C E |
// | B D F |
// | 0 0 1 |
type Affine struct{ A, B, C, D, E, F float64 }

var Identity = Affine{A: 1, D: 1}

func Translate(tx, ty float64) Affine { return Affine{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine     { return Affine{A: sx, D: sy} }

// Mul returns m·n (n applied first).
func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine) Apply(p Pt) Pt {
	return Pt{X: m.A*p.X + m.C*p.Y + m.E, Y: m.B*p.X + m.D*p.Y + m.F}
}

// Invert returns the inverse transform; ok is false when m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Affine{}, false
	}
	inv := 1 / det
	return Affine{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}, true
}
