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
	"image/color"
	"io"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

// mmToPt converts a font size in millimetres to points.
const mmToPt = 72 / 25.4

// pdfPainter draws with the built-in Helvetica so text stays vector without
// embedding; the translator maps UTF-8 onto the core font encoding.
type pdfPainter struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (p *pdfPainter) Line(a, b geom.Pt, width float64, c color.RGBA) {
	p.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetLineWidth(width)
	p.pdf.Line(a.X, a.Y, b.X, b.Y)
}

func (p *pdfPainter) FillRect(r geom.Rect, c color.RGBA) {
	p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	p.pdf.Rect(r.X, r.Y, r.W, r.H, "F")
}

func (p *pdfPainter) Text(at geom.Pt, size float64, s string, c color.RGBA) {
	p.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	p.pdf.SetFont("Helvetica", "", size*mmToPt)
	p.pdf.Text(at.X, at.Y, p.tr(s))
}

func (p *pdfPainter) Clip(r geom.Rect) { p.pdf.ClipRect(r.X, r.Y, r.W, r.H, false) }
func (p *pdfPainter) Unclip()          { p.pdf.ClipEnd() }

// WritePDF renders snap onto one A4 portrait page and writes the document to w.
func WritePDF(w io.Writer, snap scene.Snapshot, o Options) error {
	o = o.withDefaults()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(o.Title, true)
	pdf.SetAuthor("floorsketch", false)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	p := &pdfPainter{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	renderPage(p, snap, o, PageLayout(snap, o))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// ExportPDF writes the PDF to outPath, creating its directory.
func ExportPDF(outPath string, snap scene.Snapshot, o Options) error {
	return writeFile(outPath, func(w io.Writer) error { return WritePDF(w, snap, o) })
}

// writeFile creates outPath and its directory and streams render into it.
func writeFile(outPath string, render func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(outPath), err)
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(outPath), err)
	}
	return nil
}
