/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"time"

	"floorsketch/internal/config"
	"floorsketch/internal/history"
	"floorsketch/internal/viewport"
)

// Options are the tunables of a Session.
type Options struct {
	Grid        float64
	HandleSize  float64
	FontSize    float64
	FontFamily  string
	StrokeColor string
	StrokeWidth float64
	StairSteps  int

	EraserSize float64
	EraserMin  float64
	EraserMax  float64

	Limits        viewport.Limits
	WheelStep     float64
	TouchCooldown time.Duration

	History history.Config

	MaxPoints         int
	OptimizeThreshold int

	Recognize bool

	// RedrawDelay is the debounce window of the redraw scheduler.
	RedrawDelay time.Duration
}

// DefaultOptions returns OptionsFromConfig(config.Defaults()).
func DefaultOptions() Options { return OptionsFromConfig(config.Defaults()) }

// OptionsFromConfig maps the YAML configuration onto session options.
func OptionsFromConfig(cfg config.AppConfig) Options {
	return Options{
		Grid:              cfg.Canvas.GridSize,
		HandleSize:        cfg.Canvas.HandleSize,
		FontSize:          cfg.Canvas.FontSize,
		FontFamily:        cfg.Canvas.FontFamily,
		StrokeColor:       cfg.Canvas.StrokeColor,
		StrokeWidth:       cfg.Canvas.StrokeWidth,
		StairSteps:        cfg.Canvas.StairSteps,
		EraserSize:        cfg.Eraser.Size,
		EraserMin:         cfg.Eraser.MinSize,
		EraserMax:         cfg.Eraser.MaxSize,
		Limits:            viewport.Limits{MinScale: cfg.Zoom.MinScale, MaxScale: cfg.Zoom.MaxScale},
		WheelStep:         cfg.Zoom.WheelStep,
		TouchCooldown:     time.Duration(cfg.Zoom.TouchCooldownMs) * time.Millisecond,
		History:           history.Config{MaxEntries: cfg.History.MaxEntries, MinInterval: time.Duration(cfg.History.CoalesceMs) * time.Millisecond},
		MaxPoints:         cfg.Paths.MaxPoints,
		OptimizeThreshold: cfg.Paths.OptimizeThreshold,
		Recognize:         cfg.Recognize.Enabled,
		RedrawDelay:       time.Duration(cfg.Redraw.FrameMs) * time.Millisecond,
	}
}

// normalize fills zero values with defaults.
func (o Options) normalize() Options {
	d := config.Defaults()
	if o.Grid <= 0 {
		o.Grid = d.Canvas.GridSize
	}
	if o.HandleSize <= 0 {
		o.HandleSize = d.Canvas.HandleSize
	}
	if o.FontSize <= 0 {
		o.FontSize = d.Canvas.FontSize
	}
	if o.FontFamily == "" {
		o.FontFamily = d.Canvas.FontFamily
	}
	if o.StrokeColor == "" {
		o.StrokeColor = d.Canvas.StrokeColor
	}
	if o.StrokeWidth <= 0 {
		o.StrokeWidth = d.Canvas.StrokeWidth
	}
	if o.StairSteps <= 0 {
		o.StairSteps = d.Canvas.StairSteps
	}
	if o.EraserMin <= 0 {
		o.EraserMin = d.Eraser.MinSize
	}
	if o.EraserMax < o.EraserMin {
		o.EraserMax = d.Eraser.MaxSize
	}
	if o.EraserSize <= 0 {
		o.EraserSize = d.Eraser.Size
	}
	if o.Limits.MinScale <= 0 || o.Limits.MaxScale < o.Limits.MinScale {
		o.Limits = viewport.DefaultLimits
	}
	if o.WheelStep <= 0 {
		o.WheelStep = d.Zoom.WheelStep
	}
	if o.TouchCooldown < 0 {
		o.TouchCooldown = 0
	}
	if o.MaxPoints <= 0 {
		o.MaxPoints = d.Paths.MaxPoints
	}
	return o
}
