/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package hittest answers "what is under this point" for the editor:
// text box handles and bodies, openings, and eraser proximity to shapes.
// Every function here is pure; a miss is a zero Hit, never an error.
package hittest

import (
	"math"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
	"floorsketch/internal/textlayout"
)

// DefaultHandleSize is the drawn side of a resize handle in world units.
const DefaultHandleSize = 8

// handleReach scales the handle size into its touch-friendly detection square.
const handleReach = 2.5

// Kind classifies a hit.
type Kind int

const (
	None Kind = iota
	Handle
	TextBox
	Opening
)

func (k Kind) String() string {
	switch k {
	case Handle:
		return "handle"
	case TextBox:
		return "textbox"
	case Opening:
		return "opening"
	default:
		return "none"
	}
}

// Hit is the result of At. ID names the text box or opening. Handle is set
// for Kind == Handle. MoveArea reports whether a body hit landed inside the
// inset drag area rather than the resize margin.
type Hit struct {
	Kind     Kind
	ID       string
	Handle   string
	MoveArea bool
}

// Options tunes hit-testing. Zero values fall back to defaults.
type Options struct {
	HandleSize float64
	Provider   textlayout.Provider
}

func (o Options) handleSize() float64 {
	if o.HandleSize <= 0 {
		return DefaultHandleSize
	}
	return o.HandleSize
}

func (o Options) provider() textlayout.Provider {
	if o.Provider == nil {
		return textlayout.BasicProvider{}
	}
	return o.Provider
}

// Anchor is a named resize handle position.
type Anchor struct {
	Name string
	Pt   geom.Pt
}

// Handles returns the eight anchors of a text box computed from its actual
// rendered size, in the order nw, ne, sw, se, n, s, w, e.
func Handles(box scene.Shape) []Anchor { return handlesWith(textlayout.BasicProvider{}, box) }

func handlesWith(p textlayout.Provider, box scene.Shape) []Anchor {
	r := scene.ActualSizeWith(p, box)
	x, y, w, h := r.X, r.Y, r.W, r.H
	return []Anchor{
		{"nw", geom.P(x, y)},
		{"ne", geom.P(x+w, y)},
		{"sw", geom.P(x, y+h)},
		{"se", geom.P(x+w, y+h)},
		{"n", geom.P(x+w/2, y)},
		{"s", geom.P(x+w/2, y+h)},
		{"w", geom.P(x, y+h/2)},
		{"e", geom.P(x+w, y+h/2)},
	}
}

// activeHandles are the only anchors that respond to input.
var activeHandles = []string{"w", "e"}

// HandleAt returns the active handle of box under p, testing a square of
// side handleSize*2.5 centered on each anchor.
func HandleAt(box scene.Shape, p geom.Pt, handleSize float64) (string, bool) {
	return handleAtWith(textlayout.BasicProvider{}, box, p, handleSize)
}

func handleAtWith(prov textlayout.Provider, box scene.Shape, p geom.Pt, handleSize float64) (string, bool) {
	half := handleSize * handleReach / 2
	anchors := handlesWith(prov, box)
	for _, name := range activeHandles {
		for _, a := range anchors {
			if a.Name != name {
				continue
			}
			if math.Abs(p.X-a.Pt.X) <= half && math.Abs(p.Y-a.Pt.Y) <= half {
				return name, true
			}
		}
	}
	return "", false
}

// InMoveArea reports whether p lies in the body of box inset by handleSize
// on every side.
func InMoveArea(box scene.Shape, p geom.Pt, handleSize float64) bool {
	return scene.ActualSize(box).Inset(handleSize, handleSize).Contains(p)
}

func inMoveAreaWith(prov textlayout.Provider, box scene.Shape, p geom.Pt, handleSize float64) bool {
	return scene.ActualSizeWith(prov, box).Inset(handleSize, handleSize).Contains(p)
}

// At resolves p against the snapshot. Priority, highest first: a handle of
// the selected text box, a handle of any other text box (topmost first), a
// text box body, an opening, nothing.
func At(snap scene.Snapshot, p geom.Pt, opts Options) Hit {
	hs := opts.handleSize()
	prov := opts.provider()

	if id := snap.SelectedTextBox; id != "" {
		for _, sh := range snap.Shapes {
			if sh.ID == id && sh.Tool == scene.ToolTextBox {
				if name, ok := handleAtWith(prov, sh, p, hs); ok {
					return Hit{Kind: Handle, ID: id, Handle: name}
				}
				break
			}
		}
	}

	for i := len(snap.Shapes) - 1; i >= 0; i-- {
		sh := snap.Shapes[i]
		if sh.Tool != scene.ToolTextBox || sh.ID == snap.SelectedTextBox {
			continue
		}
		if name, ok := handleAtWith(prov, sh, p, hs); ok {
			return Hit{Kind: Handle, ID: sh.ID, Handle: name}
		}
	}

	for i := len(snap.Shapes) - 1; i >= 0; i-- {
		sh := snap.Shapes[i]
		if sh.Tool != scene.ToolTextBox || !scene.ActualSizeWith(prov, sh).Contains(p) {
			continue
		}
		if inMoveAreaWith(prov, sh, p, hs) {
			return Hit{Kind: TextBox, ID: sh.ID, MoveArea: true}
		}
		if name, ok := handleAtWith(prov, sh, p, hs); ok {
			return Hit{Kind: Handle, ID: sh.ID, Handle: name}
		}
		return Hit{Kind: TextBox, ID: sh.ID}
	}

	for i := len(snap.Openings) - 1; i >= 0; i-- {
		if o := snap.Openings[i]; o.Rect().Contains(p) {
			return Hit{Kind: Opening, ID: o.ID}
		}
	}
	return Hit{}
}

// stairNosings is the fixed number of step lines tested on a flight of stairs.
const stairNosings = 10

// NearShape reports whether p is within tol of sh, using the per-tool rule
// the eraser applies. grid is the default stair width.
func NearShape(sh scene.Shape, p geom.Pt, tol, grid float64) bool {
	switch sh.Tool {
	case scene.ToolPen:
		for _, v := range sh.Path {
			if geom.Dist(p, v) <= tol {
				return true
			}
		}
		return false
	case scene.ToolLine, scene.ToolDoor:
		return geom.DistToSegment(p, sh.Start, sh.End) <= tol
	case scene.ToolRectangle:
		return nearRectangle(p, sh.Start, sh.End, tol)
	case scene.ToolStairs:
		w := sh.StairWidth
		if w <= 0 {
			w = grid
		}
		return nearStairs(p, sh.Start, sh.End, w, tol)
	case scene.ToolTextBox:
		return scene.ActualSize(sh).Contains(p)
	}
	return false
}

func nearRectangle(p, a, b geom.Pt, tol float64) bool {
	c := geom.RectFromCorners(a, b).Corners()
	best := math.Inf(1)
	for i := range c {
		best = math.Min(best, geom.DistToSegment(p, c[i], c[(i+1)%4]))
	}
	return best <= tol
}

func nearStairs(p, a, b geom.Pt, width, tol float64) bool {
	if geom.DistToSegment(p, a, b) <= tol {
		return true
	}
	length := geom.Dist(a, b)
	if length == 0 {
		return false
	}
	d := b.Sub(a).Scale(1 / length)
	perp := geom.P(-d.Y, d.X).Scale(width / 2)
	for i := 1; i <= stairNosings; i++ {
		c := geom.Lerp(a, b, float64(i)/float64(stairNosings+1))
		if geom.DistToSegment(p, c.Add(perp), c.Sub(perp)) <= tol {
			return true
		}
	}
	return false
}
