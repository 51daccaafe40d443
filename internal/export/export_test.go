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
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xeipuuv/gojsonschema"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

func near(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

// sameColor allows the rasterizer's coverage rounding.
func sameColor(a, b color.RGBA) bool {
	d := func(x, y uint8) bool { return math.Abs(float64(x)-float64(y)) <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func sampleSnapshot() scene.Snapshot {
	sc := scene.New()
	_, _, _ = sc.AddShape(scene.NewLine(geom.P(-100, 0), geom.P(100, 0), scene.LineSolid, "#000000", 2))
	_, _, _ = sc.AddShape(scene.NewLine(geom.P(-100, 60), geom.P(100, 60), scene.LineArrow, "#c00000", 2))
	_, _, _ = sc.AddShape(scene.NewLine(geom.P(-100, 90), geom.P(100, 90), scene.LineDashed, "#0000ff", 2))
	_, _, _ = sc.AddShape(scene.NewRectangle(geom.P(-80, -120), geom.P(80, -40), "#000", 2))
	_, _, _ = sc.AddShape(scene.NewDoor(geom.P(-40, -40), geom.P(0, -40), scene.DoorSingle, "#000", 2))
	_, _, _ = sc.AddShape(scene.NewDoor(geom.P(20, -40), geom.P(60, -40), scene.DoorDouble, "#000", 2))
	_, _, _ = sc.AddShape(scene.NewStairs(geom.P(-120, -100), geom.P(-120, 100), 10, 20, "#000", 2))
	_, _, _ = sc.AddShape(scene.NewPen([]geom.Pt{{X: 0, Y: 120}, {X: 10, Y: 125}, {X: 20, Y: 118}}, "#333333", 2))
	box, _, _ := sc.AddShape(scene.NewTextBox(20, 130, 120, 60, 24, "sans-serif", "#000000", false))
	sc.SetText(box.ID, "Living <room> & co")
	vbox, _, _ := sc.AddShape(scene.NewTextBox(-60, 130, 60, 60, 24, "sans-serif", "#000000", true))
	sc.SetText(vbox.ID, "WC\nUP")
	sc.AddOpening(geom.P(0, 0), 50)
	return sc.Snapshot()
}

func TestBounds(t *testing.T) {
	if _, ok := Bounds(scene.Snapshot{}); ok {
		t.Fatalf("empty scene has no bounds")
	}
	sc := scene.New()
	_, _, _ = sc.AddShape(scene.NewLine(geom.P(10, 20), geom.P(110, 20), scene.LineSolid, "#000", 2))
	sc.AddOpening(geom.P(200, 200), 50)
	b, ok := Bounds(sc.Snapshot())
	if !ok || b.X != 10 || b.Y != 20 || b.W != 215 || b.H != 205 {
		t.Fatalf("bounds = %+v ok=%v", b, ok)
	}
}

func TestDefaultCaptureWindow(t *testing.T) {
	w := CaptureWindow(scene.Snapshot{}, Options{Grid: 20})
	if w.X != -160 || w.Y != -220 || w.W != 320 || w.H != 440 {
		t.Fatalf("window = %+v, want 16x22 cells centered on the origin", w)
	}
	// 320x440 is taller than the 180x247 mm area, so height limits the fit.
	l := PageLayout(scene.Snapshot{}, Options{Grid: 20})
	scale := 247.0 / 440
	if !near(l.Scale, scale) || !near(l.Area.Y, 35) || !near(l.Area.H, 247) ||
		!near(l.Area.W, 320*scale) || !near(l.Area.X, 15+(180-320*scale)/2) {
		t.Fatalf("layout = %+v", l)
	}
	if c := l.Map(geom.P(0, 0)); !near(c.X, 105) || !near(c.Y, 158.5) {
		t.Fatalf("origin maps to %v", c)
	}
}

func TestFitToContentFramesBounds(t *testing.T) {
	sc := scene.New()
	_, _, _ = sc.AddShape(scene.NewLine(geom.P(1000, 1000), geom.P(1400, 1000), scene.LineSolid, "#000", 2))
	w := CaptureWindow(sc.Snapshot(), Options{Grid: 20, FitToContent: true})
	if w.X != 980 || w.Y != 980 || w.W != 440 || w.H != 40 {
		t.Fatalf("window = %+v", w)
	}
	l := PageLayout(sc.Snapshot(), Options{Grid: 20, FitToContent: true})
	if !near(l.Area.W, 180) {
		t.Fatalf("wide content should fill the width, area %+v", l.Area)
	}
}

func TestRenderPaintsHeaderAndStrokes(t *testing.T) {
	img := Render(sampleSnapshot(), Options{Grid: 20, DPI: 150})
	if b := img.Bounds(); b.Dx() != 1240 || b.Dy() != 1754 {
		t.Fatalf("page size = %v", b)
	}
	if c := img.RGBAAt(118, 118); !sameColor(c, headerFill) {
		t.Fatalf("header pixel = %v", c)
	}
	// the solid wall runs through the world origin at (105mm, 158.5mm) but the
	// opening covers it there; sample the wall further left.
	p := geom.P(105-80*247.0/440, 158.5).Scale(150 / 25.4)
	if c := img.RGBAAt(int(p.X), int(p.Y)); !sameColor(c, black) {
		t.Fatalf("wall pixel = %v", c)
	}
	if c := img.RGBAAt(5, 5); !sameColor(c, white) {
		t.Fatalf("margin pixel = %v", c)
	}
}

func TestWritePDFAndSVG(t *testing.T) {
	var pdf bytes.Buffer
	if err := WritePDF(&pdf, sampleSnapshot(), Options{ShowGrid: true}); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
	var svg bytes.Buffer
	if err := WriteSVG(&svg, sampleSnapshot(), Options{}); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	s := svg.String()
	for _, want := range []string{"<svg", "<line", "clip-path", "&lt;room&gt; &amp; co", "Floor plan"} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg missing %q", want)
		}
	}
}

const snapshotSchema = `{
  "type": "object",
  "required": ["shapes", "openings"],
  "properties": {
    "shapes": {"type": "array", "items": {"type": "object", "required": ["id", "tool", "strokeWidth", "strokeColor"]}},
    "openings": {"type": "array", "items": {"type": "object", "required": ["id", "x", "y", "width", "height"]}}
  }
}`

func TestBatchExportPrintPreset(t *testing.T) {
	dir := t.TempDir()
	paths, err := BatchExport(sampleSnapshot(), BatchOptions{
		Preset:  PresetPrint,
		Formats: []string{"pdf", "png", "svg", "json"},
		OutDir:  dir,
	})
	if err != nil {
		t.Fatalf("batch export: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("paths = %v", paths)
	}
	for _, p := range paths {
		st, err := os.Stat(p)
		if err != nil || st.Size() == 0 {
			t.Fatalf("missing or empty %s: %v", p, err)
		}
	}
	doc, err := os.ReadFile(filepath.Join(dir, "floorplan.json"))
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewStringLoader(snapshotSchema), gojsonschema.NewBytesLoader(doc))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.Valid() {
		t.Fatalf("snapshot json invalid: %v", res.Errors())
	}
}

func TestBatchExportUnknownFormat(t *testing.T) {
	if _, err := BatchExport(scene.Snapshot{}, BatchOptions{OutDir: t.TempDir(), Formats: []string{"tiff"}}); err == nil {
		t.Fatalf("unknown format must fail")
	}
}

func TestParseHex(t *testing.T) {
	if c := parseHex("#c00000"); c.R != 0xc0 || c.G != 0 || c.A != 255 {
		t.Fatalf("parseHex = %v", c)
	}
	if c := parseHex("#fff"); c != white {
		t.Fatalf("short form = %v", c)
	}
	if c := parseHex("red"); c != black {
		t.Fatalf("fallback = %v", c)
	}
}
