/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport converts between screen and world coordinates and owns
// the pan/zoom state. Screen coordinates are CSS-style pixels; the device
// pixel ratio maps them onto the backing store before the view transform.
package viewport

import (
	"math"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
)

// Limits bounds the zoom scale.
type Limits struct {
	MinScale float64
	MaxScale float64
}

// DefaultLimits matches the editor defaults.
var DefaultLimits = Limits{MinScale: 0.1, MaxScale: 5}

// View is the pan/zoom state. Paint-time transform is
// device = world*Scale + (TranslateX, TranslateY).
type View struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translateX"`
	TranslateY float64 `json:"translateY"`
	Limits     Limits  `json:"-"`
}

// New returns an identity view with the given limits.
func New(l Limits) View {
	if l.MinScale <= 0 || l.MaxScale < l.MinScale {
		l = DefaultLimits
	}
	return View{Scale: 1, Limits: l}
}

// Transform is the world→device affine.
func (v View) Transform() geom.Affine {
	return geom.Translate(v.TranslateX, v.TranslateY).Mul(geom.Scale(v.Scale, v.Scale))
}

// ToolState is the slice of editor state that influences snapping.
type ToolState struct {
	Tool      scene.Tool
	LineStyle scene.LineStyle
	Shift     bool
	// Dragging suppresses snapping while moving or resizing a text box.
	Dragging bool
}

// SnapUnit returns the grid step for the tool, or 0 when the tool does not snap.
// First match wins:
//  1. pen, text tools and eraser without Shift: no snap
//  2. pen with Shift: full grid
//  3. door, stairs: quarter grid
//  4. dashed or arrow line: quarter grid
//  5. solid line, rectangle: half grid
//  6. anything else: full grid
func SnapUnit(ts ToolState, grid float64) float64 {
	if ts.Dragging || grid <= 0 {
		return 0
	}
	switch ts.Tool {
	case scene.ToolPen, scene.ToolTextHorizontal, scene.ToolTextVertical, scene.ToolEraser:
		if !ts.Shift {
			return 0
		}
	}
	switch ts.Tool {
	case scene.ToolPen:
		return grid
	case scene.ToolDoor, scene.ToolStairs:
		return grid / 4
	case scene.ToolLine:
		if ts.LineStyle == scene.LineDashed || ts.LineStyle == scene.LineArrow {
			return grid / 4
		}
		return grid / 2
	case scene.ToolRectangle:
		return grid / 2
	}
	return grid
}

// Unsnapped converts screen coordinates to world coordinates without snapping.
func (v View) Unsnapped(screen geom.Pt, dpr float64) geom.Pt {
	if dpr <= 0 {
		dpr = 1
	}
	s := v.Scale
	if s == 0 {
		s = 1
	}
	return geom.Pt{
		X: (screen.X*dpr - v.TranslateX) / s,
		Y: (screen.Y*dpr - v.TranslateY) / s,
	}
}

// ToWorld converts a screen point to world coordinates and applies the tool's
// grid snap. It is a pure function of its inputs.
func (v View) ToWorld(screen geom.Pt, dpr float64, ts ToolState, grid float64) geom.Pt {
	return geom.SnapPt(v.Unsnapped(screen, dpr), SnapUnit(ts, grid))
}

// ToScreen maps a world point back to screen coordinates.
func (v View) ToScreen(world geom.Pt, dpr float64) geom.Pt {
	if dpr <= 0 {
		dpr = 1
	}
	d := v.Transform().Apply(world)
	return geom.Pt{X: d.X / dpr, Y: d.Y / dpr}
}

// ZoomAt scales by factor around the screen point, clamping to the limits.
// The world point under (sx, sy) stays fixed. It reports whether the scale changed.
func (v *View) ZoomAt(sx, sy, dpr, factor float64) bool {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return false
	}
	if dpr <= 0 {
		dpr = 1
	}
	lim := v.limits()
	ns := geom.Clamp(v.Scale*factor, lim.MinScale, lim.MaxScale)
	if ns == v.Scale {
		return false
	}
	px, py := sx*dpr, sy*dpr
	ratio := ns / v.Scale
	v.TranslateX = px - (px-v.TranslateX)*ratio
	v.TranslateY = py - (py-v.TranslateY)*ratio
	v.Scale = ns
	return true
}

// WheelFactor is exp(-step) for a scroll towards the user (deltaY > 0), exp(step) otherwise.
func WheelFactor(deltaY, step float64) float64 {
	if deltaY > 0 {
		return math.Exp(-step)
	}
	return math.Exp(step)
}

// Wheel zooms at the pointer position for a wheel event.
func (v *View) Wheel(sx, sy, dpr, deltaY, step float64) bool {
	if deltaY == 0 {
		return false
	}
	return v.ZoomAt(sx, sy, dpr, WheelFactor(deltaY, step))
}

// Pan shifts the view by a screen-space delta.
func (v *View) Pan(dx, dy, dpr float64) {
	if dpr <= 0 {
		dpr = 1
	}
	v.TranslateX += dx * dpr
	v.TranslateY += dy * dpr
}

// Reset restores scale 1 and zero translation.
func (v *View) Reset() {
	v.Scale = 1
	v.TranslateX = 0
	v.TranslateY = 0
}

func (v View) limits() Limits {
	if v.Limits.MinScale <= 0 || v.Limits.MaxScale < v.Limits.MinScale {
		return DefaultLimits
	}
	return v.Limits
}
