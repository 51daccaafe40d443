/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package erase implements the partial eraser: walls, dashed lines and
// arrows lose only the half-grid pieces under the eraser, rectangles break
// into per-edge fragments, and everything else is removed whole.
//
// EraseAt is a pure function of its inputs. Fragment IDs are derived from
// the parent ID so repeated calls return identical results.
package erase

import (
	"fmt"

	"github.com/google/uuid"

	"floorsketch/internal/geom"
	"floorsketch/internal/hittest"
	"floorsketch/internal/scene"
)

// Params carries the eraser radius and the grid size that sets the
// segmentation unit.
type Params struct {
	Radius float64
	Grid   float64
}

// Result is the scene after one eraser application.
type Result struct {
	Shapes          []scene.Shape
	Openings        []scene.Opening
	ShapesChanged   bool
	OpeningsChanged bool
	// Removed counts shapes deleted outright; Split counts shapes replaced by
	// fragments (possibly zero of them).
	Removed int
	Split   int
}

// Changed reports whether anything was erased.
func (r Result) Changed() bool { return r.ShapesChanged || r.OpeningsChanged }

// EraseAt applies the eraser centered at p to both collections. The input
// slices are not modified.
func EraseAt(shapes []scene.Shape, openings []scene.Opening, p geom.Pt, prm Params) Result {
	res := Result{}

	res.Openings = make([]scene.Opening, 0, len(openings))
	for _, o := range openings {
		if o.Rect().Contains(p) {
			res.OpeningsChanged = true
			continue
		}
		res.Openings = append(res.Openings, o)
	}

	res.Shapes = make([]scene.Shape, 0, len(shapes))
	for _, sh := range shapes {
		frags, verdict := eraseShape(sh, p, prm)
		switch verdict {
		case keep:
			res.Shapes = append(res.Shapes, sh.Clone())
		case remove:
			res.Removed++
			res.ShapesChanged = true
		case split:
			res.Split++
			res.ShapesChanged = true
			res.Shapes = append(res.Shapes, frags...)
		}
	}
	return res
}

type verdict int

const (
	keep verdict = iota
	remove
	split
)

func eraseShape(sh scene.Shape, p geom.Pt, prm Params) ([]scene.Shape, verdict) {
	switch sh.Tool {
	case scene.ToolPen:
		if hittest.NearShape(sh, p, prm.Radius, prm.Grid) {
			return nil, remove
		}
	case scene.ToolTextBox:
		if scene.ActualSize(sh).Contains(p) {
			return nil, remove
		}
	case scene.ToolLine:
		return eraseLine(sh, p, prm)
	case scene.ToolRectangle:
		return eraseRectangle(sh, p, prm)
	default:
		if hittest.NearShape(sh, p, prm.Radius, prm.Grid) {
			return nil, remove
		}
	}
	return nil, keep
}

func eraseLine(sh scene.Shape, p geom.Pt, prm Params) ([]scene.Shape, verdict) {
	var head ArrowRegion
	arrow := false
	if sh.IsArrow() {
		var ok bool
		if head, ok = ArrowHead(sh.Start, sh.End); ok {
			if head.Contains(p, prm.Radius) {
				return nil, remove
			}
			arrow = true
		}
	}
	segs := LineSegments(sh.Start, sh.End, prm.Grid)
	hit := make([]bool, len(segs))
	hitAny := false
	for i, s := range segs {
		if arrow && head.Overlaps(s) {
			continue
		}
		if SegmentHit(p, s, prm.Radius) {
			hit[i] = true
			hitAny = true
		}
	}
	if !hitAny {
		return nil, keep
	}
	style := sh.LineStyle
	if style == "" {
		style = scene.LineSolid
	}
	return survivors(sh, segs, hit, style), split
}

// survivors turns each run of unhit segments into one line from the run's
// first start to its last end. Runs of length 1 or less are dropped.
func survivors(parent scene.Shape, segs []Segment, hit []bool, style scene.LineStyle) []scene.Shape {
	var out []scene.Shape
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		a, b := segs[runStart].Start, segs[end].End
		runStart = -1
		if geom.Dist(a, b) <= 1 {
			return
		}
		out = append(out, fragment(parent, len(out), a, b, style))
	}
	for i := range segs {
		if hit[i] {
			flush(i - 1)
			continue
		}
		if runStart < 0 {
			runStart = i
		}
	}
	flush(len(segs) - 1)
	return out
}

func eraseRectangle(sh scene.Shape, p geom.Pt, prm Params) ([]scene.Shape, verdict) {
	segs := RectangleSegments(sh.Start, sh.End, prm.Grid)
	bySide := make(map[string][]Segment, len(Sides))
	hitAny := false
	for _, s := range segs {
		if SegmentHit(p, s, prm.Radius) {
			hitAny = true
			continue
		}
		bySide[s.Side] = append(bySide[s.Side], s)
	}
	if !hitAny {
		return nil, keep
	}
	gap := prm.Grid / 4
	var out []scene.Shape
	for _, side := range Sides {
		var cur *Segment
		for _, s := range bySide[side] {
			if cur != nil && geom.Dist(cur.End, s.Start) < gap {
				cur.End = s.End
				continue
			}
			if cur != nil {
				out = append(out, fragment(sh, len(out), cur.Start, cur.End, scene.LineSolid))
			}
			c := s
			cur = &c
		}
		if cur != nil {
			out = append(out, fragment(sh, len(out), cur.Start, cur.End, scene.LineSolid))
		}
	}
	return out, split
}

func fragment(parent scene.Shape, i int, a, b geom.Pt, style scene.LineStyle) scene.Shape {
	return scene.Shape{
		ID:          fragmentID(parent.ID, i),
		Tool:        scene.ToolLine,
		Start:       a,
		End:         b,
		LineStyle:   style,
		StrokeColor: parent.StrokeColor,
		StrokeWidth: parent.StrokeWidth,
	}
}

func fragmentID(parent string, i int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s/%d", parent, i))).String()
}
