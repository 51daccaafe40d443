/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

// rasterPainter fills stroke outlines with the vector rasterizer. Each
// primitive is rasterized over its own bounding box only.
type rasterPainter struct {
	img  *image.RGBA
	px   float64 // pixels per millimetre
	clip image.Rectangle
	z    vector.Rasterizer
}

func newRasterPainter(dpi int) *rasterPainter {
	px := float64(dpi) / 25.4
	w := int(math.Round(PageWidth * px))
	h := int(math.Round(PageHeight * px))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	return &rasterPainter{img: img, px: px, clip: img.Bounds()}
}

func (p *rasterPainter) toPx(q geom.Pt) geom.Pt { return q.Scale(p.px) }

func (p *rasterPainter) Line(a, b geom.Pt, width float64, c color.RGBA) {
	a, b = p.toPx(a), p.toPx(b)
	hw := math.Max(width*p.px, 1) / 2
	l := geom.Dist(a, b)
	if l == 0 {
		p.fill([]geom.Pt{{X: a.X - hw, Y: a.Y - hw}, {X: a.X + hw, Y: a.Y - hw}, {X: a.X + hw, Y: a.Y + hw}, {X: a.X - hw, Y: a.Y + hw}}, c)
		return
	}
	// square caps extend each end by half the width
	d := b.Sub(a).Scale(hw / l)
	n := geom.Pt{X: -d.Y, Y: d.X}
	a, b = a.Sub(d), b.Add(d)
	p.fill([]geom.Pt{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, c)
}

func (p *rasterPainter) FillRect(r geom.Rect, c color.RGBA) {
	cs := r.Corners()
	for i := range cs {
		cs[i] = p.toPx(cs[i])
	}
	p.fill(cs[:], c)
}

func (p *rasterPainter) fill(poly []geom.Pt, c color.RGBA) {
	bb, ok := geom.BoundsOf(poly)
	if !ok {
		return
	}
	r := image.Rect(int(math.Floor(bb.X)), int(math.Floor(bb.Y)), int(math.Ceil(bb.X+bb.W))+1, int(math.Ceil(bb.Y+bb.H))+1).Intersect(p.clip)
	if r.Empty() {
		return
	}
	ox, oy := float64(r.Min.X), float64(r.Min.Y)
	p.z.Reset(r.Dx(), r.Dy())
	p.z.DrawOp = draw.Over
	p.z.MoveTo(float32(poly[0].X-ox), float32(poly[0].Y-oy))
	for _, q := range poly[1:] {
		p.z.LineTo(float32(q.X-ox), float32(q.Y-oy))
	}
	p.z.ClosePath()
	p.z.Draw(p.img, r, image.NewUniform(c), image.Point{})
}

// Text uses the fixed 7x13 bitmap face; size is ignored.
func (p *rasterPainter) Text(at geom.Pt, _ float64, s string, c color.RGBA) {
	dst, ok := p.img.SubImage(p.clip).(*image.RGBA)
	if !ok {
		return
	}
	at = p.toPx(at)
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(int(math.Round(at.X)), int(math.Round(at.Y))),
	}
	d.DrawString(s)
}

func (p *rasterPainter) Clip(r geom.Rect) {
	a, b := p.toPx(r.Min()), p.toPx(r.Max())
	p.clip = image.Rect(int(math.Floor(a.X)), int(math.Floor(a.Y)), int(math.Ceil(b.X)), int(math.Ceil(b.Y))).Intersect(p.img.Bounds())
}

func (p *rasterPainter) Unclip() { p.clip = p.img.Bounds() }

// Render rasterizes snap onto an A4 page at o.DPI.
func Render(snap scene.Snapshot, o Options) *image.RGBA {
	o = o.withDefaults()
	p := newRasterPainter(o.DPI)
	renderPage(p, snap, o, PageLayout(snap, o))
	return p.img
}

// WritePNG encodes the rendered page to w.
func WritePNG(w io.Writer, snap scene.Snapshot, o Options) error {
	if err := png.Encode(w, Render(snap, o)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG writes the PNG to outPath, creating its directory.
func ExportPNG(outPath string, snap scene.Snapshot, o Options) error {
	return writeFile(outPath, func(w io.Writer) error { return WritePNG(w, snap, o) })
}
