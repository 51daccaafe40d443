/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image/color"
	"io"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

// svgPainter emits one element per primitive in a millimetre viewBox.
type svgPainter struct {
	buf   bytes.Buffer
	err   error
	clips int
}

func (p *svgPainter) wf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(&p.buf, format, args...)
}

func (p *svgPainter) Line(a, b geom.Pt, width float64, c color.RGBA) {
	p.wf("  <line x1=\"%g\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"%g\" stroke-linecap=\"round\"/>\n",
		a.X, a.Y, b.X, b.Y, svgColor(c), width)
}

func (p *svgPainter) FillRect(r geom.Rect, c color.RGBA) {
	p.wf("  <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\"/>\n", r.X, r.Y, r.W, r.H, svgColor(c))
}

func (p *svgPainter) Text(at geom.Pt, size float64, s string, c color.RGBA) {
	p.wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\" fill=\"%s\">%s</text>\n",
		at.X, at.Y, size, svgColor(c), escText(s))
}

func (p *svgPainter) Clip(r geom.Rect) {
	p.clips++
	p.wf("  <clipPath id=\"area%d\"><rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\"/></clipPath>\n", p.clips, r.X, r.Y, r.W, r.H)
	p.wf("  <g clip-path=\"url(#area%d)\">\n", p.clips)
}

func (p *svgPainter) Unclip() { p.wf("  </g>\n") }

// WriteSVG renders snap as an A4 SVG document.
func WriteSVG(w io.Writer, snap scene.Snapshot, o Options) error {
	o = o.withDefaults()
	p := &svgPainter{}
	p.wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	p.wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gmm\" height=\"%gmm\" viewBox=\"0 0 %g %g\">\n",
		PageWidth, PageHeight, PageWidth, PageHeight)
	p.wf("  <title>%s</title>\n", escText(o.Title))
	renderPage(p, snap, o, PageLayout(snap, o))
	p.wf("</svg>\n")
	if p.err != nil {
		return fmt.Errorf("build svg: %w", p.err)
	}
	if _, err := w.Write(p.buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// ExportSVG writes the SVG to outPath, creating its directory.
func ExportSVG(outPath string, snap scene.Snapshot, o Options) error {
	return writeFile(outPath, func(w io.Writer) error { return WriteSVG(w, snap, o) })
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		case '"':
			out = append(out, "&quot;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
