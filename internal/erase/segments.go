/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package erase

import (
	"math"

	"floorsketch/internal/geom"
)

// Segment is one half-grid piece of a line or rectangle edge.
type Segment struct {
	Start geom.Pt
	End   geom.Pt
	// Side names the rectangle edge (top, right, bottom, left); empty for lines.
	Side string
}

// Rectangle sides in segmentation order.
var Sides = []string{"top", "right", "bottom", "left"}

const (
	diagonalTolerance = 10.0
	axisTolerance     = 10.0
	diagonalBoost     = 1.4
)

// LineSegments splits a→b into equal pieces of about half a grid unit.
// Within 10° of a diagonal the unit grows by √2 so boundaries stay on grid
// intersections. The count is ceil(length/unit) and the pieces are exact
// divisions, so the first starts at a and the last ends at b.
func LineSegments(a, b geom.Pt, grid float64) []Segment {
	length := geom.Dist(a, b)
	if length == 0 || grid <= 0 {
		return nil
	}
	unit := grid / 2
	if geom.NearDiagonal(geom.AngleDeg(a, b), diagonalTolerance) {
		unit *= math.Sqrt2
	}
	n := int(math.Max(1, math.Ceil(length/unit)))
	out := make([]Segment, n)
	for i := 0; i < n; i++ {
		out[i] = Segment{Start: geom.Lerp(a, b, float64(i)/float64(n)), End: geom.Lerp(a, b, float64(i+1)/float64(n))}
	}
	out[n-1].End = b
	return out
}

// RectangleSegments splits each edge of the rectangle spanned by a and b into
// half-grid pieces, top, right, bottom, left, clockwise from the top-left.
// The last piece on an edge is clipped to the corner.
func RectangleSegments(a, b geom.Pt, grid float64) []Segment {
	if grid <= 0 {
		return nil
	}
	c := geom.RectFromCorners(a, b).Corners()
	half := grid / 2
	var out []Segment
	for i, side := range Sides {
		from, to := c[i], c[(i+1)%4]
		length := geom.Dist(from, to)
		if length == 0 {
			continue
		}
		for d := 0.0; d < length; d += half {
			out = append(out, Segment{
				Start: geom.Lerp(from, to, d/length),
				End:   geom.Lerp(from, to, math.Min(d+half, length)/length),
				Side:  side,
			})
		}
	}
	return out
}

// SegmentHit reports whether p is within tol of s. Segments more than 10° off
// horizontal and vertical get a 1.4x larger catch radius.
func SegmentHit(p geom.Pt, s Segment, tol float64) bool {
	if !geom.NearAxis(geom.AngleDeg(s.Start, s.End), axisTolerance) {
		tol *= diagonalBoost
	}
	return geom.DistToSegment(p, s.Start, s.End) <= tol
}

// ArrowRegion is the zone around an arrow's head, measured along the axis
// from Base to Tip.
type ArrowRegion struct {
	Base       geom.Pt
	Tip        geom.Pt
	HeadLength float64
}

// MinArrowHead is the smallest head length regardless of line length.
const MinArrowHead = 10

// headSlack widens the region when deciding whether a segment overlaps it.
const headSlack = 5

// ArrowHead returns the head region of an arrow a→b: the last
// max(10, 10% of length) of the line. ok is false for a zero-length line.
func ArrowHead(a, b geom.Pt) (ArrowRegion, bool) {
	length := geom.Dist(a, b)
	if length == 0 {
		return ArrowRegion{}, false
	}
	head := math.Max(MinArrowHead, length*0.1)
	return ArrowRegion{Base: geom.Lerp(b, a, head/length), Tip: b, HeadLength: head}, true
}

// Contains reports whether p lies within half the head length plus slack of
// the base-tip axis.
func (r ArrowRegion) Contains(p geom.Pt, slack float64) bool {
	return geom.DistToSegment(p, r.Base, r.Tip) <= r.HeadLength/2+slack
}

// Overlaps reports whether either end of s reaches into the head region.
func (r ArrowRegion) Overlaps(s Segment) bool {
	return r.Contains(s.Start, headSlack) || r.Contains(s.End, headSlack)
}
