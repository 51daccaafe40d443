/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"
	"math"

	"floorsketch/internal/geom"
	"floorsketch/internal/history"
	"floorsketch/internal/recognize"
	"floorsketch/internal/scene"
)

// BeginStroke starts a pen path or a two-point shape at world point p with
// the active tool. It reports whether a stroke was started.
func (s *Session) BeginStroke(p geom.Pt) bool {
	s.mu.Lock()
	ok := !s.gesture.Blocked() && s.beginStrokeLocked(p)
	s.mu.Unlock()
	s.flush(ok)
	return ok
}

// ContinueStroke extends the stroke in progress.
func (s *Session) ContinueStroke(p geom.Pt) bool {
	s.mu.Lock()
	ok := s.mode == modeStroke && s.continueStrokeLocked(p)
	s.mu.Unlock()
	s.flush(ok)
	return ok
}

// EndStroke commits the stroke in progress and returns the stored shape.
// Degenerate strokes are dropped with ok=false.
func (s *Session) EndStroke(p geom.Pt) (scene.Shape, bool) {
	s.mu.Lock()
	var (
		sh scene.Shape
		ok bool
	)
	if s.mode == modeStroke {
		sh, ok = s.endStrokeLocked(p)
	}
	s.mu.Unlock()
	s.flush(true)
	return sh, ok
}

func (s *Session) beginStrokeLocked(p geom.Pt) bool {
	switch t := s.tool.Tool; {
	case t == scene.ToolPen:
		s.stroke = []geom.Pt{p}
	case t.IsTwoPoint():
		s.stroke = nil
		s.start, s.end = p, p
	default:
		return false
	}
	s.mode = modeStroke
	return true
}

func (s *Session) continueStrokeLocked(p geom.Pt) bool {
	if s.tool.Tool == scene.ToolPen {
		if len(s.stroke) >= s.opts.MaxPoints {
			return false
		}
		if n := len(s.stroke); n > 0 && s.stroke[n-1].Eq(p) {
			return false
		}
		s.stroke = append(s.stroke, p)
		return true
	}
	s.end = s.constrain(p)
	return true
}

// constrain keeps a shift-dragged line horizontal or vertical, following
// the larger delta.
func (s *Session) constrain(p geom.Pt) geom.Pt {
	if !s.tool.Shift || s.tool.Tool != scene.ToolLine {
		return p
	}
	if math.Abs(p.X-s.start.X) >= math.Abs(p.Y-s.start.Y) {
		return geom.Pt{X: p.X, Y: s.start.Y}
	}
	return geom.Pt{X: s.start.X, Y: p.Y}
}

func (s *Session) endStrokeLocked(p geom.Pt) (scene.Shape, bool) {
	s.continueStrokeLocked(p)
	s.mode = modeIdle
	path := s.stroke
	s.stroke = nil

	var sh scene.Shape
	switch s.tool.Tool {
	case scene.ToolPen:
		sh = s.recognized(path)
	case scene.ToolLine:
		sh = scene.NewLine(s.start, s.end, s.tool.LineStyle, s.color, s.width)
	case scene.ToolRectangle:
		sh = scene.NewRectangle(s.start, s.end, s.color, s.width)
	case scene.ToolDoor:
		sh = scene.NewDoor(s.start, s.end, s.doorType, s.color, s.width)
	case scene.ToolStairs:
		sh = scene.NewStairs(s.start, s.end, s.opts.StairSteps, s.opts.Grid, s.color, s.width)
	default:
		return scene.Shape{}, false
	}
	return s.commitShapeLocked(sh)
}

// recognized returns the pen stroke, or a line or rectangle when recognition
// is enabled and the path matches one.
func (s *Session) recognized(path []geom.Pt) scene.Shape {
	pen := scene.NewPen(path, s.color, s.width)
	if !s.opts.Recognize {
		return pen
	}
	res, ok := s.rec.Recognize(path)
	if !ok {
		return pen
	}
	s.log.DebugContext(s.ctx, "stroke recognized", slog.String("kind", string(res.Kind)), slog.Float64("confidence", res.Confidence))
	switch res.Kind {
	case recognize.Line:
		return scene.NewLine(res.Start, res.End, scene.LineSolid, s.color, s.width)
	case recognize.Rectangle:
		return scene.NewRectangle(res.Start, res.End, s.color, s.width)
	}
	return pen
}

func (s *Session) commitShapeLocked(sh scene.Shape) (scene.Shape, bool) {
	before := s.capture(history.KindPath, "add_shape")
	stored, ok, err := s.sc.AddShape(sh)
	if err != nil {
		s.log.ErrorContext(s.ctx, "add shape", slog.String("tool", string(sh.Tool)), slog.Any("err", err))
		return scene.Shape{}, false
	}
	if !ok {
		return scene.Shape{}, false
	}
	s.record(before)
	if t := s.opts.OptimizeThreshold; t > 0 && s.sc.PenCount() > t {
		if saved := s.sc.OptimizePaths(s.opts.MaxPoints); saved > 0 {
			s.log.DebugContext(s.ctx, "paths optimized", slog.Int("saved", saved))
		}
	}
	s.notify(func(o Observer) { o.DrawingComplete(stored) })
	return stored, true
}
