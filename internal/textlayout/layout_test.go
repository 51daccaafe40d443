/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import "testing"

func TestWidthScalesWithSize(t *testing.T) {
	w13 := Width(BasicProvider{}, FontSpec{SizePx: 13}, "ABC")
	w26 := Width(BasicProvider{}, FontSpec{SizePx: 26}, "ABC")
	if w13 != 21 {
		t.Fatalf("7x13 face should advance 7px per glyph, got %v", w13)
	}
	if w26 != 2*w13 {
		t.Fatalf("doubling the size should double the width: %v vs %v", w26, w13)
	}
}

func TestWidthDeterministic(t *testing.T) {
	a := Width(nil, FontSpec{SizePx: 48}, "ABC")
	b := Width(BasicProvider{}, FontSpec{SizePx: 48}, "A") + Width(BasicProvider{}, FontSpec{SizePx: 48}, "BC")
	if a != b {
		t.Fatalf("expected additive advances, got %v vs %v", a, b)
	}
}

func TestWrapRunes(t *testing.T) {
	spec := FontSpec{SizePx: 13}
	parts := WrapRunes(BasicProvider{}, spec, "abcdefghij", 30) // 4 glyphs fit
	if len(parts) != 3 || parts[0] != "abcd" || parts[2] != "ij" {
		t.Fatalf("unexpected wrap: %q", parts)
	}
	if got := WrapRunes(BasicProvider{}, spec, "wide", 1); len(got) != 4 {
		t.Fatalf("each piece must hold at least one rune: %q", got)
	}
}

func TestLayoutCountsSourceAndWrappedLines(t *testing.T) {
	b := Layout(BasicProvider{}, FontSpec{SizePx: 13}, "abcdefghij\nxy", 30)
	if b.SourceLines != 2 || b.MaxRunes != 10 {
		t.Fatalf("unexpected source stats: %+v", b)
	}
	if len(b.Lines) != 4 {
		t.Fatalf("expected 3+1 wrapped lines, got %q", b.Lines)
	}
	if b.NaturalWidth != 70 {
		t.Fatalf("NaturalWidth = %v, want 70", b.NaturalWidth)
	}
}
