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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"floorsketch/internal/editor"
	"floorsketch/internal/scene"
)

const sampleScript = `{
  "grid": 20,
  "title": "Ground floor",
  "steps": [
    {"op": "tool", "tool": "line"},
    {"op": "down", "x": 0, "y": 0},
    {"op": "move", "x": 50, "y": 0},
    {"op": "up", "x": 100, "y": 0},
    {"op": "opening", "x": 200, "y": 200},
    {"op": "undo"},
    {"op": "undo"},
    {"op": "redo"},
    {"op": "redo"},
    {"op": "tool", "tool": "text-horizontal"},
    {"op": "down", "x": 300, "y": 300},
    {"op": "up", "x": 500, "y": 400},
    {"op": "text", "text": "Hall"},
    {"op": "eraser_size", "size": 10},
    {"op": "erase", "x": 50, "y": 0}
  ]
}`

func TestParseValidScript(t *testing.T) {
	s, errs := Parse([]byte(sampleScript))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if s.Grid != 20 || s.DPR != 1 || len(s.Steps) != 15 {
		t.Fatalf("script = grid %v dpr %v steps %d", s.Grid, s.DPR, len(s.Steps))
	}
	if s.Steps[0].Op != OpTool || s.Steps[0].Tool != "line" {
		t.Fatalf("first step = %+v", s.Steps[0])
	}
}

func TestParseReportsStepErrors(t *testing.T) {
	doc := `{"steps": [
	  {"op": "undo"},
	  {"op": "down", "x": 1},
	  {"op": "teleport"}
	]}`
	_, errs := Parse([]byte(doc))
	if len(errs) == 0 {
		t.Fatalf("expected validation errors")
	}
	seen := map[int]bool{}
	for _, e := range errs {
		seen[e.Step] = true
	}
	if !seen[1] || !seen[2] || seen[0] {
		t.Fatalf("errors = %v", errs)
	}
}

func TestParseRejectsUnknownTool(t *testing.T) {
	if _, errs := Parse([]byte(`{"steps": [{"op": "tool", "tool": "lasso"}]}`)); len(errs) == 0 {
		t.Fatalf("unknown tool must fail validation")
	}
	if _, errs := Parse([]byte(`not json`)); len(errs) == 0 || errs[0].Step != -1 {
		t.Fatalf("malformed document must fail at document level: %v", errs)
	}
}

func TestRunReplaysSession(t *testing.T) {
	s, errs := Parse([]byte(sampleScript))
	if len(errs) != 0 {
		t.Fatalf("parse: %v", errs)
	}
	sess := NewSession(s, editor.DefaultOptions())
	if err := Run(context.Background(), sess, s); err != nil {
		t.Fatalf("run: %v", err)
	}
	snap := sess.Scene()
	var lines, boxes int
	for _, sh := range snap.Shapes {
		switch sh.Tool {
		case scene.ToolLine:
			lines++
		case scene.ToolTextBox:
			boxes++
			if sh.Text != "Hall" {
				t.Fatalf("text = %q", sh.Text)
			}
		}
	}
	if lines != 2 || boxes != 1 || len(snap.Openings) != 1 {
		t.Fatalf("lines=%d boxes=%d openings=%d", lines, boxes, len(snap.Openings))
	}
}

func TestRunTextWithoutSelectionFails(t *testing.T) {
	s := Script{Steps: []Step{{Op: OpText, Text: "x"}}}
	err := Run(context.Background(), NewSession(s, editor.DefaultOptions()), s)
	var se Error
	if !errors.As(err, &se) || se.Step != 0 {
		t.Fatalf("err = %v", err)
	}
}

func TestRunHonoursContext(t *testing.T) {
	s := Script{Steps: []Step{{Op: OpUndo}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Run(ctx, NewSession(s, editor.DefaultOptions()), s); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	if err := os.WriteFile(good, []byte(sampleScript), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(good); err != nil {
		t.Fatalf("Load: %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"steps": [{"op": "down"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(bad); err == nil {
		t.Fatalf("Load should reject an invalid script")
	}
	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatalf("Load should fail for a missing file")
	}
}
