/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import (
	"math"
	"strings"

	"floorsketch/internal/geom"
	"floorsketch/internal/textlayout"
)

// WallExtra is added to the base stroke width of lines, rectangles and doors
// so walls render thicker than freehand strokes.
const WallExtra = 6

// Shape is a drawable entity. Tool selects which fields are meaningful:
//   - pen: Path
//   - line: Start, End, LineStyle
//   - rectangle: Start, End (opposite corners)
//   - door: Start, End, DoorType
//   - stairs: Start, End, StairSteps, StairWidth
//   - textbox: X, Y, Width, Height, Text, FontSize, FontFamily, Vertical
//
// Shapes are values; once stored, a pen Path is never modified in place.
type Shape struct {
	ID          string    `json:"id"`
	Tool        Tool      `json:"tool"`
	StrokeWidth float64   `json:"strokeWidth"`
	StrokeColor string    `json:"strokeColor"`
	Path        []geom.Pt `json:"path,omitempty"`
	Start       geom.Pt   `json:"startPoint"`
	End         geom.Pt   `json:"endPoint"`
	LineStyle   LineStyle `json:"lineStyle,omitempty"`
	DoorType    DoorType  `json:"doorType,omitempty"`
	StairSteps  int       `json:"stairSteps,omitempty"`
	StairWidth  float64   `json:"stairWidth,omitempty"`

	X          float64 `json:"x,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Width      float64 `json:"width,omitempty"`
	Height     float64 `json:"height,omitempty"`
	Text       string  `json:"text,omitempty"`
	FontSize   float64 `json:"fontSize,omitempty"`
	FontFamily string  `json:"fontFamily,omitempty"`
	Vertical   bool    `json:"isVertical,omitempty"`
}

// Clone returns a copy that shares no slices with s.
func (s Shape) Clone() Shape {
	if s.Path != nil {
		s.Path = append([]geom.Pt(nil), s.Path...)
	}
	return s
}

// Length is the start→end distance for two-point shapes.
func (s Shape) Length() float64 { return geom.Dist(s.Start, s.End) }

// IsArrow reports whether the shape is an arrow-styled line.
func (s Shape) IsArrow() bool { return s.Tool == ToolLine && s.LineStyle == LineArrow }

// Bounds is the geometric extent using stored sizes (text boxes are not measured).
func (s Shape) Bounds() geom.Rect {
	switch {
	case s.Tool == ToolPen:
		r, _ := geom.BoundsOf(s.Path)
		return r
	case s.Tool == ToolTextBox:
		return geom.R(s.X, s.Y, s.Width, s.Height)
	default:
		return geom.RectFromCorners(s.Start, s.End)
	}
}

// check classifies a shape before insertion: ok=false with a nil error means
// degenerate geometry that is dropped silently; a non-nil error is a caller bug.
func check(s Shape) (bool, error) {
	if !s.Tool.IsShapeKind() {
		return false, ErrInvalidTool
	}
	switch s.Tool {
	case ToolPen:
		return len(s.Path) > 0, nil
	case ToolTextBox:
		if s.FontSize <= 0 || s.Width < 0 || s.Height < 0 {
			return false, ErrMalformedShape
		}
		return true, nil
	case ToolLine:
		if _, err := ParseLineStyle(string(s.LineStyle)); err != nil {
			return false, err
		}
	case ToolStairs:
		if s.StairSteps < 0 {
			return false, ErrMalformedShape
		}
	}
	if bad(s.Start) || bad(s.End) {
		return false, ErrMalformedShape
	}
	return !s.Start.Eq(s.End), nil
}

func bad(p geom.Pt) bool {
	return math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0)
}

// NewPen builds a pen stroke.
func NewPen(path []geom.Pt, color string, width float64) Shape {
	return Shape{Tool: ToolPen, Path: path, StrokeColor: color, StrokeWidth: width}
}

// NewLine builds a wall/line with the thick wall stroke.
func NewLine(a, b geom.Pt, style LineStyle, color string, baseWidth float64) Shape {
	if style == "" {
		style = LineSolid
	}
	return Shape{Tool: ToolLine, Start: a, End: b, LineStyle: style, StrokeColor: color, StrokeWidth: baseWidth + WallExtra}
}

// NewRectangle builds an axis-aligned rectangle from opposite corners.
func NewRectangle(a, b geom.Pt, color string, baseWidth float64) Shape {
	return Shape{Tool: ToolRectangle, Start: a, End: b, StrokeColor: color, StrokeWidth: baseWidth + WallExtra}
}

// NewDoor builds a door along a→b.
func NewDoor(a, b geom.Pt, kind DoorType, color string, baseWidth float64) Shape {
	if kind == "" {
		kind = DoorSingle
	}
	return Shape{Tool: ToolDoor, Start: a, End: b, DoorType: kind, StrokeColor: color, StrokeWidth: baseWidth + WallExtra}
}

// NewStairs builds a flight of stairs along a→b.
func NewStairs(a, b geom.Pt, steps int, width float64, color string, baseWidth float64) Shape {
	return Shape{Tool: ToolStairs, Start: a, End: b, StairSteps: steps, StairWidth: width, StrokeColor: color, StrokeWidth: baseWidth}
}

// NewTextBox builds an empty text box.
func NewTextBox(x, y, w, h, fontSize float64, family, color string, vertical bool) Shape {
	return Shape{
		Tool: ToolTextBox, X: x, Y: y, Width: w, Height: h,
		FontSize: fontSize, FontFamily: family, StrokeColor: color, Vertical: vertical,
	}
}

// ActualSize returns the rendered extent of a text box: the stored box grown
// to fit its text. It never shrinks below the stored size.
func ActualSize(s Shape) geom.Rect { return ActualSizeWith(textlayout.BasicProvider{}, s) }

// ActualSizeWith is ActualSize with an explicit text measurement provider.
func ActualSizeWith(p textlayout.Provider, s Shape) geom.Rect {
	r := geom.R(s.X, s.Y, s.Width, s.Height)
	if s.Tool != ToolTextBox || strings.TrimSpace(s.Text) == "" {
		return r
	}
	fs := s.FontSize
	padding := math.Max(4, fs*0.2)
	spec := textlayout.FontSpec{Family: s.FontFamily, SizePx: fs}
	if s.Vertical {
		b := textlayout.Layout(p, spec, s.Text, 0)
		r.H = math.Max(s.Height, float64(b.MaxRunes)*fs+padding*2)
		r.W = math.Max(s.Width, float64(b.SourceLines)*fs*1.2+padding*2)
		return r
	}
	lineHeight := fs * 1.3
	b := textlayout.Layout(p, spec, s.Text, s.Width-padding*2)
	r.H = math.Max(s.Height, float64(len(b.Lines))*lineHeight+padding*2)
	r.W = math.Max(s.Width, b.NaturalWidth+padding*2)
	return r
}

// Opening is a free-floating wall gap, tracked apart from shapes.
type Opening struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (o Opening) Rect() geom.Rect { return geom.R(o.X, o.Y, o.Width, o.Height) }

// OpeningUnits is the opening side length in grid units.
const OpeningUnits = 2.5
