/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"floorsketch/internal/erase"
	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
	"floorsketch/internal/textlayout"
)

// painter is the drawing surface of one exporter. Coordinates and sizes are
// page millimetres.
type painter interface {
	Line(a, b geom.Pt, width float64, c color.RGBA)
	FillRect(r geom.Rect, c color.RGBA)
	// Text draws s with its baseline starting at p.
	Text(p geom.Pt, size float64, s string, c color.RGBA)
	Clip(r geom.Rect)
	Unclip()
}

var (
	white      = color.RGBA{255, 255, 255, 255}
	black      = color.RGBA{0, 0, 0, 255}
	headerFill = color.RGBA{0, 102, 204, 255}
	headerText = color.RGBA{252, 204, 158, 255}
	gridColor  = color.RGBA{225, 225, 225, 255}
	openingRim = color.RGBA{128, 128, 128, 255}
)

const (
	titleSize    = 6.35 // 18pt
	gridLineMM   = 0.1
	minStrokeMM  = 0.1
	dashOn       = 8.0
	dashOff      = 6.0
	arcSteps     = 16
	textLineStep = 1.3
)

// renderPage paints the full page: background, header band, then the
// drawing clipped to its area.
func renderPage(p painter, snap scene.Snapshot, o Options, l Layout) {
	p.FillRect(geom.R(0, 0, PageWidth, PageHeight), white)
	band := geom.R(PageMargin, PageMargin, PageWidth-2*PageMargin, HeaderHeight)
	p.FillRect(band, headerFill)
	p.Text(geom.Pt{X: band.X + 4, Y: band.Y + band.H/2 + titleSize/3}, titleSize, o.Title, headerText)

	p.Clip(l.Area)
	if o.ShowGrid {
		drawGrid(p, o.Grid, l)
	}
	for _, sh := range snap.Shapes {
		drawShape(p, sh, o, l)
	}
	for _, op := range snap.Openings {
		r := op.Rect()
		a, b := l.Map(r.Min()), l.Map(r.Max())
		p.FillRect(geom.RectFromCorners(a, b), white)
		c := geom.RectFromCorners(a, b).Corners()
		for i := range c {
			p.Line(c[i], c[(i+1)%4], minStrokeMM, openingRim)
		}
	}
	p.Unclip()
}

func drawGrid(p painter, grid float64, l Layout) {
	w := l.Window
	for x := math.Ceil(w.X/grid) * grid; x <= w.X+w.W; x += grid {
		p.Line(l.Map(geom.Pt{X: x, Y: w.Y}), l.Map(geom.Pt{X: x, Y: w.Y + w.H}), gridLineMM, gridColor)
	}
	for y := math.Ceil(w.Y/grid) * grid; y <= w.Y+w.H; y += grid {
		p.Line(l.Map(geom.Pt{X: w.X, Y: y}), l.Map(geom.Pt{X: w.X + w.W, Y: y}), gridLineMM, gridColor)
	}
}

func drawShape(p painter, sh scene.Shape, o Options, l Layout) {
	c := parseHex(sh.StrokeColor)
	w := math.Max(sh.StrokeWidth*l.Scale, minStrokeMM)
	seg := func(a, b geom.Pt, width float64) { p.Line(l.Map(a), l.Map(b), width, c) }

	switch sh.Tool {
	case scene.ToolPen:
		if len(sh.Path) == 1 {
			seg(sh.Path[0], sh.Path[0], w)
		}
		for i := 1; i < len(sh.Path); i++ {
			seg(sh.Path[i-1], sh.Path[i], w)
		}
	case scene.ToolLine:
		switch sh.LineStyle {
		case scene.LineDashed:
			for _, d := range dashes(sh.Start, sh.End) {
				seg(d[0], d[1], w)
			}
		case scene.LineArrow:
			seg(sh.Start, sh.End, w)
			if head, ok := erase.ArrowHead(sh.Start, sh.End); ok {
				n, _ := normal(head.Base, head.Tip)
				half := n.Scale(head.HeadLength / 2)
				seg(head.Tip, head.Base.Add(half), w)
				seg(head.Tip, head.Base.Sub(half), w)
			}
		default:
			seg(sh.Start, sh.End, w)
		}
	case scene.ToolRectangle:
		cs := geom.RectFromCorners(sh.Start, sh.End).Corners()
		for i := range cs {
			seg(cs[i], cs[(i+1)%4], w)
		}
	case scene.ToolDoor:
		drawDoor(seg, sh, w)
	case scene.ToolStairs:
		drawStairs(seg, sh, o.Grid, math.Max(w/2, minStrokeMM))
	case scene.ToolTextBox:
		drawText(p, sh, o.Provider, l, c)
	}
}

// dashes splits a→b into on/off pieces in world units.
func dashes(a, b geom.Pt) [][2]geom.Pt {
	l := geom.Dist(a, b)
	if l == 0 {
		return nil
	}
	var out [][2]geom.Pt
	for t := 0.0; t < l; t += dashOn + dashOff {
		end := math.Min(t+dashOn, l)
		out = append(out, [2]geom.Pt{geom.Lerp(a, b, t/l), geom.Lerp(a, b, end/l)})
	}
	return out
}

// drawDoor draws the wall gap, each leaf standing open at a right angle,
// and the quarter-circle swing from the leaf tip back to the wall.
func drawDoor(seg func(a, b geom.Pt, w float64), sh scene.Shape, w float64) {
	n, ok := normal(sh.Start, sh.End)
	if !ok {
		return
	}
	seg(sh.Start, sh.End, math.Max(w/4, minStrokeMM))
	type leaf struct{ hinge, closed geom.Pt }
	leaves := []leaf{{sh.Start, sh.End}}
	if sh.DoorType == scene.DoorDouble {
		mid := geom.Lerp(sh.Start, sh.End, 0.5)
		leaves = []leaf{{sh.Start, mid}, {sh.End, mid}}
	}
	for _, lf := range leaves {
		r := geom.Dist(lf.hinge, lf.closed)
		open := lf.hinge.Add(n.Scale(r))
		seg(lf.hinge, open, w)
		arc := swing(lf.hinge, lf.closed, open, r)
		for i := 1; i < len(arc); i++ {
			seg(arc[i-1], arc[i], math.Max(w/4, minStrokeMM))
		}
	}
}

// swing approximates the arc of radius r around c from a to b, turning the
// short way.
func swing(c, a, b geom.Pt, r float64) []geom.Pt {
	a0 := math.Atan2(a.Y-c.Y, a.X-c.X)
	a1 := math.Atan2(b.Y-c.Y, b.X-c.X)
	d := math.Remainder(a1-a0, 2*math.Pi)
	pts := make([]geom.Pt, arcSteps+1)
	for i := range pts {
		t := a0 + d*float64(i)/arcSteps
		pts[i] = geom.Pt{X: c.X + r*math.Cos(t), Y: c.Y + r*math.Sin(t)}
	}
	return pts
}

// drawStairs draws both stringers and the step nosings evenly spaced
// between the ends.
func drawStairs(seg func(a, b geom.Pt, w float64), sh scene.Shape, grid, w float64) {
	n, ok := normal(sh.Start, sh.End)
	if !ok {
		return
	}
	width := sh.StairWidth
	if width <= 0 {
		width = grid
	}
	half := n.Scale(width / 2)
	seg(sh.Start.Add(half), sh.End.Add(half), w)
	seg(sh.Start.Sub(half), sh.End.Sub(half), w)
	steps := sh.StairSteps
	for i := 1; i <= steps; i++ {
		c := geom.Lerp(sh.Start, sh.End, float64(i)/float64(steps+1))
		seg(c.Add(half), c.Sub(half), w)
	}
}

// drawText lays text out the way the editor measures it: wrapped rows for
// horizontal boxes, right-to-left columns of single runes for vertical ones.
func drawText(p painter, sh scene.Shape, prov textlayout.Provider, l Layout, c color.RGBA) {
	if strings.TrimSpace(sh.Text) == "" {
		return
	}
	r := scene.ActualSizeWith(prov, sh)
	fs := sh.FontSize
	pad := math.Max(4, fs*0.2)
	size := fs * l.Scale
	spec := textlayout.FontSpec{Family: sh.FontFamily, SizePx: fs}
	if sh.Vertical {
		for col, line := range strings.Split(sh.Text, "\n") {
			x := r.X + r.W - pad - float64(col+1)*fs*1.2
			for row, ch := range []rune(line) {
				p.Text(l.Map(geom.Pt{X: x, Y: r.Y + pad + float64(row+1)*fs}), size, string(ch), c)
			}
		}
		return
	}
	b := textlayout.Layout(prov, spec, sh.Text, r.W-2*pad)
	for i, line := range b.Lines {
		y := r.Y + pad + float64(i)*fs*textLineStep + fs
		p.Text(l.Map(geom.Pt{X: r.X + pad, Y: y}), size, line, c)
	}
}

// parseHex reads #rgb or #rrggbb; anything else is black.
func parseHex(s string) color.RGBA {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return black
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
