/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"floorsketch/internal/geom"
	"floorsketch/internal/scene"
	"floorsketch/internal/telemetry"
	"floorsketch/internal/viewport"
)

func newSession(t *testing.T, options ...Option) *Session {
	t.Helper()
	return New(DefaultOptions(), options...)
}

func drawLine(t *testing.T, s *Session, a, b geom.Pt) scene.Shape {
	t.Helper()
	if err := s.SetTool("line"); err != nil {
		t.Fatalf("SetTool: %v", err)
	}
	if !s.BeginStroke(a) {
		t.Fatalf("BeginStroke refused")
	}
	sh, ok := s.EndStroke(b)
	if !ok {
		t.Fatalf("EndStroke dropped %v-%v", a, b)
	}
	return sh
}

func TestCreateOpeningIsGridSizedAndCentered(t *testing.T) {
	s := newSession(t)
	o := s.CreateOpeningAt(geom.P(200, 200))
	if o.X != 175 || o.Y != 175 || o.Width != 50 || o.Height != 50 {
		t.Fatalf("opening = %+v, want {175 175 50 50}", o)
	}
	if snap := s.Scene(); snap.SelectedOpening != o.ID {
		t.Fatalf("new opening must be selected")
	}
}

func TestUndoRedoAcrossShapesAndOpenings(t *testing.T) {
	s := newSession(t)
	drawLine(t, s, geom.P(0, 0), geom.P(100, 0))
	s.CreateOpeningAt(geom.P(200, 200))
	before := s.Scene()

	if !s.Undo() || !s.Undo() {
		t.Fatalf("two undos should succeed")
	}
	if snap := s.Scene(); len(snap.Shapes) != 0 || len(snap.Openings) != 0 {
		t.Fatalf("after undo: %d shapes, %d openings", len(snap.Shapes), len(snap.Openings))
	}
	if s.Undo() {
		t.Fatalf("undo on empty history must be a no-op")
	}
	if !s.Redo() || !s.Redo() {
		t.Fatalf("two redos should succeed")
	}
	after := s.Scene()
	if !reflect.DeepEqual(before.Shapes, after.Shapes) || !reflect.DeepEqual(before.Openings, after.Openings) {
		t.Fatalf("redo did not restore state:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUndoFollowsChronologyWhenInterleaved(t *testing.T) {
	s := newSession(t)
	s.CreateOpeningAt(geom.P(0, 0))
	drawLine(t, s, geom.P(0, 0), geom.P(100, 0))
	s.CreateOpeningAt(geom.P(300, 0))

	s.Undo()
	if snap := s.Scene(); len(snap.Openings) != 1 || len(snap.Shapes) != 1 {
		t.Fatalf("first undo should remove the last opening only: %+v", snap)
	}
	s.Undo()
	if snap := s.Scene(); len(snap.Openings) != 1 || len(snap.Shapes) != 0 {
		t.Fatalf("second undo should remove the line: %+v", snap)
	}
}

func TestHistoryBalanceThroughSession(t *testing.T) {
	s := newSession(t)
	const n = 5
	for i := 0; i < n; i++ {
		x := float64(i * 40)
		drawLine(t, s, geom.P(x, 0), geom.P(x, 100))
	}
	full := s.Scene().Shapes
	for i := 0; i < n; i++ {
		if !s.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	if got := len(s.Scene().Shapes); got != 0 {
		t.Fatalf("shapes after undo = %d", got)
	}
	for i := 0; i < n; i++ {
		if !s.Redo() {
			t.Fatalf("redo %d failed", i)
		}
	}
	if !reflect.DeepEqual(full, s.Scene().Shapes) {
		t.Fatalf("redo did not restore shapes in order")
	}
}

func TestZeroLengthStrokeIsDroppedSilently(t *testing.T) {
	var completed int
	s := newSession(t, WithObserver(Hooks{OnDrawingComplete: func(scene.Shape) { completed++ }}))
	_ = s.SetTool("line")
	s.BeginStroke(geom.P(10, 10))
	if _, ok := s.EndStroke(geom.P(10, 10)); ok {
		t.Fatalf("zero-length line must be dropped")
	}
	if undo, _ := s.HistoryStats(); undo != 0 {
		t.Fatalf("dropped stroke must not be recorded, undo depth %d", undo)
	}
	drawLine(t, s, geom.P(0, 0), geom.P(40, 0))
	if completed != 1 {
		t.Fatalf("DrawingComplete fired %d times, want 1", completed)
	}
}

func TestShiftConstrainsLine(t *testing.T) {
	s := newSession(t)
	_ = s.SetTool("line")
	s.SetShift(true)
	s.BeginStroke(geom.P(0, 0))
	s.ContinueStroke(geom.P(50, 10))
	sh, ok := s.EndStroke(geom.P(50, 10))
	if !ok || !sh.End.Eq(geom.P(50, 0)) {
		t.Fatalf("end = %v ok=%v, want (50,0)", sh.End, ok)
	}
	if sh.StrokeWidth != 2+scene.WallExtra {
		t.Fatalf("wall width = %v", sh.StrokeWidth)
	}
}

func TestStairsAndDoorsUseToolState(t *testing.T) {
	s := newSession(t)
	_ = s.SetTool("stairs")
	s.BeginStroke(geom.P(0, 0))
	st, ok := s.EndStroke(geom.P(0, 100))
	if !ok || st.StairWidth != 20 || st.StairSteps != 10 {
		t.Fatalf("stairs = %+v", st)
	}
	_ = s.SetTool("door")
	if err := s.SetDoorType("double"); err != nil {
		t.Fatalf("SetDoorType: %v", err)
	}
	s.BeginStroke(geom.P(0, 0))
	d, _ := s.EndStroke(geom.P(40, 0))
	if d.DoorType != scene.DoorDouble {
		t.Fatalf("door type = %q", d.DoorType)
	}
	if err := s.SetDoorType("revolving"); err == nil {
		t.Fatalf("unknown door type must fail")
	}
	if err := s.SetTool("lasso"); err == nil {
		t.Fatalf("unknown tool must fail")
	}
}

func TestPenPathIsCapped(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPoints = 5
	s := New(opts)
	s.BeginStroke(geom.P(0, 0))
	for i := 1; i < 20; i++ {
		s.ContinueStroke(geom.P(float64(i), 0))
	}
	sh, ok := s.EndStroke(geom.P(30, 0))
	if !ok || len(sh.Path) != 5 {
		t.Fatalf("path len = %d, want 5", len(sh.Path))
	}
}

func TestRecognitionReplacesPenStroke(t *testing.T) {
	opts := DefaultOptions()
	opts.Recognize = true
	s := New(opts)
	s.BeginStroke(geom.P(0, 0))
	for x := 10.0; x < 200; x += 10 {
		s.ContinueStroke(geom.P(x, 2))
	}
	sh, ok := s.EndStroke(geom.P(200, 1))
	if !ok || sh.Tool != scene.ToolLine {
		t.Fatalf("expected recognized line, got %q", sh.Tool)
	}
}

func TestEraserSizeClamped(t *testing.T) {
	s := newSession(t)
	if got := s.SetEraserSize(1000); got != 50 {
		t.Fatalf("clamp high = %v", got)
	}
	if got := s.SetEraserSize(1); got != 5 {
		t.Fatalf("clamp low = %v", got)
	}
}

func TestEraseAtRecordsAndSplits(t *testing.T) {
	s := newSession(t)
	s.SetEraserSize(10)
	drawLine(t, s, geom.P(0, 0), geom.P(100, 0))
	if !s.EraseAt(geom.P(50, 0)) {
		t.Fatalf("erase should hit the line")
	}
	if got := len(s.Scene().Shapes); got != 2 {
		t.Fatalf("fragments = %d, want 2", got)
	}
	if s.EraseAt(geom.P(50, 300)) {
		t.Fatalf("erase far away must not change anything")
	}
	s.Undo()
	if got := s.Scene().Shapes; len(got) != 1 || got[0].End.X != 100 {
		t.Fatalf("undo should restore the whole line: %+v", got)
	}
}

func TestClearEmptiesSceneAndHistory(t *testing.T) {
	s := newSession(t)
	drawLine(t, s, geom.P(0, 0), geom.P(100, 0))
	s.CreateOpeningAt(geom.P(10, 10))
	s.Clear()
	snap := s.Scene()
	if len(snap.Shapes) != 0 || len(snap.Openings) != 0 {
		t.Fatalf("scene not cleared")
	}
	if s.CanUndo() || s.CanRedo() {
		t.Fatalf("history not cleared")
	}
}

func TestTextBoxLifecycleEvents(t *testing.T) {
	var selected []string
	var deselected []string
	s := newSession(t, WithObserver(Hooks{
		OnTextBoxSelected:   func(b scene.Shape) { selected = append(selected, b.ID) },
		OnTextBoxDeselected: func(id string) { deselected = append(deselected, id) },
	}))
	box, ok := s.CreateTextBox(geom.P(100, 100), geom.P(110, 110), false)
	if !ok {
		t.Fatalf("CreateTextBox failed")
	}
	if box.Width != 120 || box.Height != 60 || box.X != 45 || box.Y != 75 {
		t.Fatalf("box geometry = %+v", box)
	}
	if len(selected) != 1 || selected[0] != box.ID {
		t.Fatalf("selected events = %v", selected)
	}
	if _, ok := s.CreateTextBox(geom.P(0, 0), geom.P(10, 10), false); ok {
		t.Fatalf("no new box while one is selected")
	}
	s.SelectTextBox("")
	if len(deselected) != 1 || deselected[0] != box.ID {
		t.Fatalf("deselected events = %v", deselected)
	}
	if n := len(s.Scene().Shapes); n != 0 {
		t.Fatalf("empty box should be discarded on deselect, %d shapes left", n)
	}
}

func TestVerticalTextBoxMinimum(t *testing.T) {
	s := newSession(t)
	box, _ := s.CreateTextBox(geom.P(0, 0), geom.P(10, 10), true)
	if box.Width != 60 || !box.Vertical {
		t.Fatalf("vertical box = %+v", box)
	}
}

func TestUndoEmitsDeselectWhenBoxVanishes(t *testing.T) {
	var deselected []string
	s := newSession(t, WithObserver(Hooks{OnTextBoxDeselected: func(id string) { deselected = append(deselected, id) }}))
	box, _ := s.CreateTextBox(geom.P(0, 0), geom.P(200, 100), false)
	s.Undo()
	if len(deselected) != 1 || deselected[0] != box.ID {
		t.Fatalf("deselected = %v", deselected)
	}
}

func TestSetTextRecordsHistory(t *testing.T) {
	s := newSession(t)
	box, _ := s.CreateTextBox(geom.P(0, 0), geom.P(200, 100), false)
	if !s.SetText(box.ID, "kitchen") {
		t.Fatalf("SetText failed")
	}
	if s.SetText(box.ID, "kitchen") {
		t.Fatalf("unchanged text must not record")
	}
	s.Undo()
	got, _ := findShape(s.Scene(), box.ID)
	if got.Text != "" {
		t.Fatalf("undo should restore empty text, got %q", got.Text)
	}
}

func TestMoveSelectionOpening(t *testing.T) {
	s := newSession(t)
	s.CreateOpeningAt(geom.P(100, 100))
	if !s.BeginMove(geom.P(100, 100)) {
		t.Fatalf("BeginMove with a selected opening should succeed")
	}
	s.MoveSelection(geom.P(110, 100))
	s.MoveSelection(geom.P(130, 120))
	if !s.EndMove() {
		t.Fatalf("EndMove should report the move")
	}
	o := s.Scene().Openings[0]
	if o.X != 105 || o.Y != 95 {
		t.Fatalf("opening at %v,%v, want 105,95", o.X, o.Y)
	}
	if undo, _ := s.HistoryStats(); undo != 2 {
		t.Fatalf("undo depth = %d, want 2", undo)
	}
	s.Undo()
	if o := s.Scene().Openings[0]; o.X != 75 {
		t.Fatalf("undo should restore the opening position, x=%v", o.X)
	}
}

func TestTelemetryEventPerMutation(t *testing.T) {
	var mu sync.Mutex
	var ops []string
	c := telemetry.New(telemetry.Config{}, telemetry.SinkFunc(func(_ context.Context, e telemetry.Event) error {
		mu.Lock()
		ops = append(ops, e.Op)
		mu.Unlock()
		return nil
	}))
	defer c.Close()
	s := newSession(t, WithTelemetry(c), WithSessionID("sess-1"))
	drawLine(t, s, geom.P(0, 0), geom.P(100, 0))
	s.CreateOpeningAt(geom.P(0, 0))
	s.Undo()
	c.Flush(context.Background())

	mu.Lock()
	defer mu.Unlock()
	want := []string{"add_shape", "add_opening", "undo"}
	if !reflect.DeepEqual(ops, want) {
		t.Fatalf("ops = %v, want %v", ops, want)
	}
}

func TestRedrawIsCoalesced(t *testing.T) {
	opts := DefaultOptions()
	opts.RedrawDelay = 30 * time.Millisecond
	frames := make(chan scene.Snapshot, 10)
	s := New(opts, WithRedraw(func(snap scene.Snapshot, _ viewport.View) { frames <- snap }))
	for i := 0; i < 5; i++ {
		s.CreateOpeningAt(geom.P(float64(i*100), 0))
	}
	select {
	case snap := <-frames:
		if len(snap.Openings) != 5 {
			t.Fatalf("frame saw %d openings, want 5", len(snap.Openings))
		}
	case <-time.After(time.Second):
		t.Fatalf("no redraw delivered")
	}
	time.Sleep(100 * time.Millisecond)
	if got := s.Frames(); got != 1 {
		t.Fatalf("frames = %d, want 1", got)
	}
}

func TestDumpJSON(t *testing.T) {
	s := newSession(t)
	drawLine(t, s, geom.P(0, 0), geom.P(100, 0))
	b, err := s.DumpJSON()
	if err != nil {
		t.Fatalf("DumpJSON: %v", err)
	}
	if len(b) == 0 || b[0] != '{' {
		t.Fatalf("unexpected dump %q", b)
	}
}

func findShape(snap scene.Snapshot, id string) (scene.Shape, bool) {
	for _, sh := range snap.Shapes {
		if sh.ID == id {
			return sh, true
		}
	}
	return scene.Shape{}, false
}
