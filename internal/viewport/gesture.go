/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package viewport

import (
	"time"

	"floorsketch/internal/geom"
)

// Gesture tracks multi-touch state. While two or more contacts are down,
// drawing is suspended; after the last contact lifts a cooldown keeps it
// suspended so the end of a pinch does not leave marks.
//
// Flags are plain fields: gestures are fed from a single event loop.
type Gesture struct {
	Cooldown time.Duration
	now      func() time.Time

	pinching      bool
	multiTouch    bool
	lastDist      float64
	lastCenter    geom.Pt
	cooldownUntil time.Time
}

// NewGesture returns a tracker. A nil clock uses time.Now.
func NewGesture(cooldown time.Duration, now func() time.Time) *Gesture {
	if now == nil {
		now = time.Now
	}
	return &Gesture{Cooldown: cooldown, now: now}
}

// TouchStart registers the current contact set.
func (g *Gesture) TouchStart(touches []geom.Pt) {
	if len(touches) < 2 {
		return
	}
	g.multiTouch = true
	g.pinching = true
	g.lastDist = geom.Dist(touches[0], touches[1])
	g.lastCenter = geom.Lerp(touches[0], touches[1], 0.5)
}

// TouchMove applies pinch zoom and centroid pan to v. It reports whether the
// view changed.
func (g *Gesture) TouchMove(v *View, touches []geom.Pt, dpr float64) bool {
	if !g.pinching || len(touches) < 2 {
		return false
	}
	d := geom.Dist(touches[0], touches[1])
	c := geom.Lerp(touches[0], touches[1], 0.5)
	changed := false
	if g.lastDist > 0 && d > 0 {
		changed = v.ZoomAt(c.X, c.Y, dpr, d/g.lastDist)
	}
	if dx, dy := c.X-g.lastCenter.X, c.Y-g.lastCenter.Y; dx != 0 || dy != 0 {
		v.Pan(dx, dy, dpr)
		changed = true
	}
	g.lastDist = d
	g.lastCenter = c
	return changed
}

// TouchEnd is called with the number of contacts still down.
func (g *Gesture) TouchEnd(remaining int) {
	if remaining < 2 {
		g.pinching = false
	}
	if remaining == 0 && g.multiTouch {
		g.multiTouch = false
		g.cooldownUntil = g.now().Add(g.Cooldown)
	}
}

// Pinching reports whether a pinch is in progress.
func (g *Gesture) Pinching() bool { return g.pinching }

// Blocked reports whether single-pointer drawing must be ignored.
func (g *Gesture) Blocked() bool {
	return g.multiTouch || g.now().Before(g.cooldownUntil)
}
