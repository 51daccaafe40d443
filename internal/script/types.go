/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import "fmt"

// Script is a recorded editing session: canvas settings plus input steps
// replayed in order against an editor session.
type Script struct {
	Grid  float64 `json:"grid,omitempty"`
	DPR   float64 `json:"dpr,omitempty"`
	Title string  `json:"title,omitempty"`
	Steps []Step  `json:"steps"`
}

// Op names a step kind.
type Op string

const (
	OpTool       Op = "tool"
	OpStyle      Op = "style"
	OpDoor       Op = "door"
	OpShift      Op = "shift"
	OpEraserSize Op = "eraser_size"
	OpDown       Op = "down"
	OpMove       Op = "move"
	OpUp         Op = "up"
	OpErase      Op = "erase"
	OpOpening    Op = "opening"
	OpUndo       Op = "undo"
	OpRedo       Op = "redo"
	OpClear      Op = "clear"
	OpWheel      Op = "wheel"
	OpZoom       Op = "zoom"
	OpPan        Op = "pan"
	OpResetZoom  Op = "reset_zoom"
	OpText       Op = "text"
)

// Step is one input event. Which fields matter depends on Op:
//   - tool: Tool
//   - style: Style (solid, dashed, arrow)
//   - door: Door (single, double, opening)
//   - shift: On
//   - eraser_size: Size
//   - down, move, up: X, Y in screen pixels
//   - erase, opening: X, Y in world units
//   - wheel: X, Y, DeltaY
//   - zoom: X, Y, Factor
//   - pan: X, Y as the screen delta
//   - text: Text, applied to ID or else the selected text box
type Step struct {
	Op     Op      `json:"op"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Tool   string  `json:"tool,omitempty"`
	Style  string  `json:"style,omitempty"`
	Door   string  `json:"door,omitempty"`
	On     bool    `json:"on,omitempty"`
	Size   float64 `json:"size,omitempty"`
	DeltaY float64 `json:"deltaY,omitempty"`
	Factor float64 `json:"factor,omitempty"`
	Text   string  `json:"text,omitempty"`
	ID     string  `json:"id,omitempty"`
}

// Error is a validation or replay failure with position context.
type Error struct {
	// Step is the 0-based step index, or -1 for document-level problems.
	Step    int
	Field   string
	Message string
}

func (e Error) Error() string {
	switch {
	case e.Step < 0 && e.Field == "":
		return e.Message
	case e.Step < 0:
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}
