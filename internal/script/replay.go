/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package script

import (
	"context"
	"fmt"
	"log/slog"

	"floorsketch/internal/editor"
	"floorsketch/internal/geom"
	applog "floorsketch/internal/log"
)

// NewSession builds a session for s: base options with the script's grid.
func NewSession(s Script, base editor.Options, opts ...editor.Option) *editor.Session {
	if s.Grid > 0 {
		base.Grid = s.Grid
	}
	return editor.New(base, opts...)
}

// Run replays every step against sess. It stops at the first step the
// session rejects as a programmer error (unknown tool or style) or when ctx
// is done. Steps that simply have no effect, like an undo with empty
// history, are not errors.
func Run(ctx context.Context, sess *editor.Session, s Script) error {
	log := applog.WithOperation(applog.WithComponent("script"), "replay")
	dpr := s.DPR
	if dpr <= 0 {
		dpr = 1
	}
	for i, st := range s.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replay interrupted at step %d: %w", i, err)
		}
		if err := apply(sess, st, dpr); err != nil {
			return Error{Step: i, Field: string(st.Op), Message: err.Error()}
		}
	}
	snap := sess.Scene()
	log.Info("replay finished", slog.Int("steps", len(s.Steps)),
		slog.Int("shapes", len(snap.Shapes)), slog.Int("openings", len(snap.Openings)))
	return nil
}

func apply(sess *editor.Session, st Step, dpr float64) error {
	p := geom.P(st.X, st.Y)
	switch st.Op {
	case OpTool:
		return sess.SetTool(st.Tool)
	case OpStyle:
		return sess.SetLineStyle(st.Style)
	case OpDoor:
		return sess.SetDoorType(st.Door)
	case OpShift:
		sess.SetShift(st.On)
	case OpEraserSize:
		sess.SetEraserSize(st.Size)
	case OpDown:
		sess.PointerDown(p, dpr)
	case OpMove:
		sess.PointerMove(p, dpr)
	case OpUp:
		sess.PointerUp(p, dpr)
	case OpErase:
		sess.EraseAt(p)
	case OpOpening:
		sess.CreateOpeningAt(p)
	case OpUndo:
		sess.Undo()
	case OpRedo:
		sess.Redo()
	case OpClear:
		sess.Clear()
	case OpWheel:
		sess.Wheel(st.X, st.Y, dpr, st.DeltaY)
	case OpZoom:
		sess.ZoomAt(st.X, st.Y, dpr, st.Factor)
	case OpPan:
		sess.Pan(st.X, st.Y, dpr)
	case OpResetZoom:
		sess.ResetZoom()
	case OpText:
		id := st.ID
		if id == "" {
			id = sess.Scene().SelectedTextBox
		}
		if id == "" {
			return fmt.Errorf("no text box selected")
		}
		sess.SetText(id, st.Text)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}
