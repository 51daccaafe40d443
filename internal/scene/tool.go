/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scene

import "errors"

// Tool names both the active drawing tool and the kind of a stored shape.
type Tool string

const (
	ToolPen            Tool = "pen"
	ToolLine           Tool = "line"
	ToolRectangle      Tool = "rectangle"
	ToolDoor           Tool = "door"
	ToolStairs         Tool = "stairs"
	ToolTextBox        Tool = "textbox"
	ToolEraser         Tool = "eraser"
	ToolTextHorizontal Tool = "text-horizontal"
	ToolTextVertical   Tool = "text-vertical"
	ToolOpening        Tool = "opening"
)

// ParseTool validates a tool name.
func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolPen, ToolLine, ToolRectangle, ToolDoor, ToolStairs, ToolTextBox,
		ToolEraser, ToolTextHorizontal, ToolTextVertical, ToolOpening:
		return t, nil
	}
	return "", ErrInvalidTool
}

// IsShapeKind reports whether shapes of this tool can be stored in a scene.
func (t Tool) IsShapeKind() bool {
	switch t {
	case ToolPen, ToolLine, ToolRectangle, ToolDoor, ToolStairs, ToolTextBox:
		return true
	}
	return false
}

// IsTwoPoint reports whether the shape is defined by a start and end point.
func (t Tool) IsTwoPoint() bool {
	switch t {
	case ToolLine, ToolRectangle, ToolDoor, ToolStairs:
		return true
	}
	return false
}

type LineStyle string

const (
	LineSolid  LineStyle = "solid"
	LineDashed LineStyle = "dashed"
	LineArrow  LineStyle = "arrow"
)

func ParseLineStyle(s string) (LineStyle, error) {
	switch ls := LineStyle(s); ls {
	case LineSolid, LineDashed, LineArrow:
		return ls, nil
	case "":
		return LineSolid, nil
	}
	return "", ErrMalformedShape
}

type DoorType string

const (
	DoorSingle  DoorType = "single"
	DoorDouble  DoorType = "double"
	DoorOpening DoorType = "opening"
)

var (
	// ErrInvalidTool is returned for tool names outside the known set.
	ErrInvalidTool = errors.New("scene: invalid tool")
	// ErrMalformedShape is returned when a shape's fields contradict its tool.
	ErrMalformedShape = errors.New("scene: malformed shape")
)
