/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"floorsketch/internal/geom"
	"floorsketch/internal/history"
	"floorsketch/internal/hittest"
	"floorsketch/internal/scene"
	"floorsketch/internal/viewport"
)

// PointerDown handles a press at screen coordinates. Presses on text box
// handles, text box bodies and openings grab them; anything else deselects
// and starts the active tool. The eraser always erases.
func (s *Session) PointerDown(screen geom.Pt, dpr float64) {
	s.mu.Lock()
	redraw := s.pointerDownLocked(screen, dpr)
	s.mu.Unlock()
	s.flush(redraw)
}

func (s *Session) pointerDownLocked(screen geom.Pt, dpr float64) bool {
	if s.gesture.Blocked() {
		return false
	}
	s.cancelGestureLocked()
	raw := s.view.Unsnapped(screen, dpr)
	p := s.view.ToWorld(screen, dpr, s.tool, s.opts.Grid)

	if s.tool.Tool == scene.ToolEraser {
		s.mode = modeErase
		s.changed = false
		s.eraseLocked(p)
		return true
	}

	hit := hittest.At(s.sc.Snapshot(), raw, hittest.Options{HandleSize: s.opts.HandleSize})
	switch hit.Kind {
	case hittest.Handle:
		s.sc.SelectOpening("")
		s.selectTextLocked(hit.ID)
		s.mode = modeResizeText
		s.handle = hit.Handle
		s.pending = s.capture(history.KindPath, "resize_textbox")
		s.changed = false
		s.tool.Dragging = true
		return true
	case hittest.TextBox:
		s.sc.SelectOpening("")
		s.selectTextLocked(hit.ID)
		return s.beginMoveLocked(raw)
	case hittest.Opening:
		s.deselectTextLocked()
		s.sc.SelectOpening(hit.ID)
		return s.beginMoveLocked(raw)
	}

	s.deselectTextLocked()
	s.sc.SelectOpening("")
	switch t := s.tool.Tool; {
	case t == scene.ToolTextHorizontal || t == scene.ToolTextVertical:
		s.mode = modeTextRect
		s.start, s.end = p, p
	case t == scene.ToolOpening || (t == scene.ToolDoor && s.doorType == scene.DoorOpening):
		s.mode = modeOpening
		s.start, s.end = p, p
	default:
		s.beginStrokeLocked(p)
	}
	return true
}

// PointerMove handles pointer motion while pressed.
func (s *Session) PointerMove(screen geom.Pt, dpr float64) {
	s.mu.Lock()
	redraw := s.pointerMoveLocked(screen, dpr)
	s.mu.Unlock()
	s.flush(redraw)
}

func (s *Session) pointerMoveLocked(screen geom.Pt, dpr float64) bool {
	if s.mode == modeIdle || s.gesture.Blocked() {
		return false
	}
	raw := s.view.Unsnapped(screen, dpr)
	p := s.view.ToWorld(screen, dpr, s.tool, s.opts.Grid)
	switch s.mode {
	case modeStroke:
		return s.continueStrokeLocked(p)
	case modeErase:
		return s.eraseLocked(p)
	case modeDragText, modeDragOpening:
		return s.moveSelectionLocked(raw)
	case modeResizeText:
		if s.sc.ResizeSelectedTextBox(s.handle, raw) {
			s.changed = true
			return true
		}
	case modeTextRect, modeOpening:
		s.end = p
		return true
	}
	return false
}

// PointerUp finishes the press.
func (s *Session) PointerUp(screen geom.Pt, dpr float64) {
	s.mu.Lock()
	redraw := s.pointerUpLocked(screen, dpr)
	s.mu.Unlock()
	s.flush(redraw)
}

func (s *Session) pointerUpLocked(screen geom.Pt, dpr float64) bool {
	if s.mode == modeIdle {
		return false
	}
	p := s.view.ToWorld(screen, dpr, s.tool, s.opts.Grid)
	switch s.mode {
	case modeStroke:
		s.endStrokeLocked(p)
	case modeTextRect:
		s.mode = modeIdle
		s.createTextBoxLocked(s.start, p, s.tool.Tool == scene.ToolTextVertical)
	case modeOpening:
		s.mode = modeIdle
		s.createOpeningLocked(p)
	default:
		s.cancelGestureLocked()
	}
	s.mode = modeIdle
	return true
}

// TouchStart registers the current contacts. A second contact abandons any
// stroke in progress and suspends drawing.
func (s *Session) TouchStart(touches []geom.Pt) {
	s.mu.Lock()
	multi := len(touches) >= 2
	if multi {
		if s.mode == modeStroke || s.mode == modeTextRect || s.mode == modeOpening {
			s.mode = modeIdle
			s.stroke = nil
		}
		s.cancelGestureLocked()
	}
	s.gesture.TouchStart(touches)
	s.mu.Unlock()
	s.flush(multi)
}

// TouchMove applies pinch zoom and pan.
func (s *Session) TouchMove(touches []geom.Pt, dpr float64) bool {
	s.mu.Lock()
	changed := s.gesture.TouchMove(&s.view, touches, dpr)
	s.mu.Unlock()
	s.flush(changed)
	return changed
}

// TouchEnd is called with the number of contacts still down.
func (s *Session) TouchEnd(remaining int) {
	s.mu.Lock()
	s.gesture.TouchEnd(remaining)
	s.mu.Unlock()
}

// Blocked reports whether single-pointer input is currently suspended.
func (s *Session) Blocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gesture.Blocked()
}

// Wheel zooms at the pointer for a wheel event.
func (s *Session) Wheel(sx, sy, dpr, deltaY float64) bool {
	return s.viewChange("wheel", func(v *viewport.View) bool {
		return v.Wheel(sx, sy, dpr, deltaY, s.opts.WheelStep)
	})
}

// ZoomAt scales the view by factor around a screen point.
func (s *Session) ZoomAt(sx, sy, dpr, factor float64) bool {
	return s.viewChange("zoom", func(v *viewport.View) bool { return v.ZoomAt(sx, sy, dpr, factor) })
}

// Pan shifts the view by a screen delta.
func (s *Session) Pan(dx, dy, dpr float64) bool {
	return s.viewChange("pan", func(v *viewport.View) bool {
		if dx == 0 && dy == 0 {
			return false
		}
		v.Pan(dx, dy, dpr)
		return true
	})
}

// ResetZoom restores the identity view.
func (s *Session) ResetZoom() bool {
	return s.viewChange("reset_zoom", func(v *viewport.View) bool {
		if v.Scale == 1 && v.TranslateX == 0 && v.TranslateY == 0 {
			return false
		}
		v.Reset()
		return true
	})
}

func (s *Session) viewChange(op string, fn func(*viewport.View) bool) bool {
	s.mu.Lock()
	changed := fn(&s.view)
	if changed {
		s.log.DebugContext(s.ctx, op)
	}
	s.mu.Unlock()
	s.flush(changed)
	return changed
}
