/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a scene snapshot onto an A4 page as PDF, PNG or
// SVG. All three share one page layout in millimetres: a margin, a title
// band, and the drawing fitted into the remaining area.
package export

import (
	"math"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
	"floorsketch/internal/textlayout"
)

// Page geometry in millimetres.
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	PageMargin   = 15.0
	HeaderHeight = 20.0

	// captureRows is the height of the default capture window in grid cells;
	// its width follows the aspect of the drawing area.
	captureRows = 22
)

// Options controls all exporters.
type Options struct {
	// Title is printed in the header band.
	Title string
	// Grid is the world grid size; it sizes the default capture window.
	Grid float64
	// FitToContent frames the drawing bounds instead of the fixed window
	// centered on the world origin.
	FitToContent bool
	// ShowGrid draws the grid behind the drawing.
	ShowGrid bool
	// DPI is the raster resolution (PNG only).
	DPI int
	// Provider measures text box text; nil uses the built-in bitmap face.
	Provider textlayout.Provider
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Floor plan"
	}
	if o.Grid <= 0 {
		o.Grid = 20
	}
	if o.DPI <= 0 {
		o.DPI = 150
	}
	if o.Provider == nil {
		o.Provider = textlayout.BasicProvider{}
	}
	return o
}

// Bounds is the extent of everything drawn: pen points, shape endpoints,
// text boxes at their rendered size, and openings. ok is false for an empty
// scene.
func Bounds(snap scene.Snapshot) (geom.Rect, bool) {
	return boundsWith(textlayout.BasicProvider{}, snap)
}

func boundsWith(prov textlayout.Provider, snap scene.Snapshot) (geom.Rect, bool) {
	var pts []geom.Pt
	for _, sh := range snap.Shapes {
		switch sh.Tool {
		case scene.ToolPen:
			pts = append(pts, sh.Path...)
		case scene.ToolTextBox:
			r := scene.ActualSizeWith(prov, sh)
			pts = append(pts, r.Min(), r.Max())
		case scene.ToolStairs:
			w := sh.StairWidth / 2
			pts = append(pts, sh.Start, sh.End)
			if n, ok := normal(sh.Start, sh.End); ok {
				pts = append(pts, sh.Start.Add(n.Scale(w)), sh.Start.Sub(n.Scale(w)), sh.End.Add(n.Scale(w)), sh.End.Sub(n.Scale(w)))
			}
		case scene.ToolDoor:
			// the swing reaches one leaf length off the wall
			pts = append(pts, sh.Start, sh.End)
			if n, ok := normal(sh.Start, sh.End); ok {
				l := sh.Length()
				if sh.DoorType == scene.DoorDouble {
					l /= 2
				}
				pts = append(pts, sh.Start.Add(n.Scale(l)), sh.End.Add(n.Scale(l)))
			}
		default:
			pts = append(pts, sh.Start, sh.End)
		}
	}
	for _, o := range snap.Openings {
		r := o.Rect()
		pts = append(pts, r.Min(), r.Max())
	}
	return geom.BoundsOf(pts)
}

// normal is the unit left-hand normal of a→b.
func normal(a, b geom.Pt) (geom.Pt, bool) {
	l := geom.Dist(a, b)
	if l == 0 {
		return geom.Pt{}, false
	}
	return geom.Pt{X: -(b.Y - a.Y) / l, Y: (b.X - a.X) / l}, true
}

// Layout maps a world window onto the page.
type Layout struct {
	// Window is the captured world rectangle.
	Window geom.Rect
	// Area is where the window lands on the page, in millimetres.
	Area geom.Rect
	// Scale is millimetres per world unit.
	Scale float64
}

// Map converts a world point to page millimetres.
func (l Layout) Map(p geom.Pt) geom.Pt {
	return geom.Pt{
		X: l.Area.X + (p.X-l.Window.X)*l.Scale,
		Y: l.Area.Y + (p.Y-l.Window.Y)*l.Scale,
	}
}

// Available is the page area below the header band.
func Available() geom.Rect {
	return geom.R(PageMargin, PageMargin+HeaderHeight, PageWidth-2*PageMargin, PageHeight-2*PageMargin-HeaderHeight)
}

// CaptureWindow returns the world rectangle an export frames. The default is
// 22 grid rows high with the column count matching the drawing area aspect,
// centered on the world origin. FitToContent frames the drawing bounds plus
// one grid cell; an empty scene falls back to the default window.
func CaptureWindow(snap scene.Snapshot, o Options) geom.Rect {
	o = o.withDefaults()
	if o.FitToContent {
		if b, ok := boundsWith(o.Provider, snap); ok {
			return b.Inset(-o.Grid, -o.Grid)
		}
	}
	avail := Available()
	cols := math.Round(captureRows * avail.W / avail.H)
	w, h := cols*o.Grid, captureRows*o.Grid
	return geom.R(-w/2, -h/2, w, h)
}

// PageLayout fits the capture window into the drawing area, preserving its
// aspect and centering it.
func PageLayout(snap scene.Snapshot, o Options) Layout {
	win := CaptureWindow(snap, o)
	avail := Available()
	s := math.Min(avail.W/win.W, avail.H/win.H)
	w, h := win.W*s, win.H*s
	return Layout{
		Window: win,
		Area:   geom.R(avail.X+(avail.W-w)/2, avail.Y+(avail.H-h)/2, w, h),
		Scale:  s,
	}
}
