/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout measures annotation text for the sketch engine.
// Measurement is isolated behind Provider so tests stay deterministic
// with the built-in bitmap face.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font at a pixel size.
type FontSpec struct {
	Family string
	SizePx float64
}

// Metrics are font metrics in pixels at the requested size.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

// Provider maps a FontSpec to a face plus the factor that scales the
// face's native advances to the requested size.
type Provider interface {
	Resolve(FontSpec) (face font.Face, scale float64, m Metrics)
}

// BasicProvider uses basicfont.Face7x13 scaled linearly to the requested size.
type BasicProvider struct{}

const basicNativeHeight = 13

func (BasicProvider) Resolve(spec FontSpec) (font.Face, float64, Metrics) {
	f := basicfont.Face7x13
	size := spec.SizePx
	if size <= 0 {
		size = basicNativeHeight
	}
	scale := size / basicNativeHeight
	m := f.Metrics()
	return f, scale, Metrics{
		Ascent:  float64(m.Ascent.Round()) * scale,
		Descent: float64(m.Descent.Round()) * scale,
		LineGap: float64(m.Height.Round()-m.Ascent.Round()-m.Descent.Round()) * scale,
	}
}

func toPx(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Width returns the advance width of s in pixels.
func Width(p Provider, spec FontSpec, s string) float64 {
	if p == nil {
		p = BasicProvider{}
	}
	face, scale, _ := p.Resolve(spec)
	d := &font.Drawer{Face: face}
	return toPx(d.MeasureString(s)) * scale
}

// WrapRunes breaks a single line into pieces no wider than maxWidth,
// splitting between characters. A piece always holds at least one rune.
func WrapRunes(p Provider, spec FontSpec, line string, maxWidth float64) []string {
	if line == "" {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{line}
	}
	var out []string
	var cur []rune
	for _, r := range line {
		next := append(cur, r)
		if len(cur) > 0 && Width(p, spec, string(next)) > maxWidth {
			out = append(out, string(cur))
			cur = []rune{r}
			continue
		}
		cur = next
	}
	return append(out, string(cur))
}

// Block is the result of laying out multi-line text into a width.
type Block struct {
	// Lines after wrapping.
	Lines []string
	// NaturalWidth is the widest source line before wrapping.
	NaturalWidth float64
	// MaxRunes is the rune count of the longest source line.
	MaxRunes int
	// SourceLines is the number of newline-separated lines.
	SourceLines int
}

// Layout splits text on newlines and wraps each line at maxWidth.
func Layout(p Provider, spec FontSpec, text string, maxWidth float64) Block {
	src := strings.Split(text, "\n")
	b := Block{SourceLines: len(src)}
	for _, line := range src {
		if w := Width(p, spec, line); w > b.NaturalWidth {
			b.NaturalWidth = w
		}
		if n := len([]rune(line)); n > b.MaxRunes {
			b.MaxRunes = n
		}
		b.Lines = append(b.Lines, WrapRunes(p, spec, line, maxWidth)...)
	}
	return b
}
