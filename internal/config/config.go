/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user scope.
// Environment variables are read-only overrides applied at load time.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type CanvasConfig struct {
	GridSize    float64 `yaml:"grid_size"`
	HandleSize  float64 `yaml:"handle_size"`
	FontSize    float64 `yaml:"font_size"`
	FontFamily  string  `yaml:"font_family"`
	StrokeColor string  `yaml:"stroke_color"`
	StrokeWidth float64 `yaml:"stroke_width"`
	StairSteps  int     `yaml:"stair_steps"`
}

type EraserConfig struct {
	Size    float64 `yaml:"size"`
	MinSize float64 `yaml:"min_size"`
	MaxSize float64 `yaml:"max_size"`
}

type ZoomConfig struct {
	MinScale        float64 `yaml:"min_scale"`
	MaxScale        float64 `yaml:"max_scale"`
	WheelStep       float64 `yaml:"wheel_step"`
	TouchCooldownMs int     `yaml:"touch_cooldown_ms"`
}

type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
	CoalesceMs int `yaml:"coalesce_ms"`
}

type PathsConfig struct {
	MaxPoints         int `yaml:"max_points"`
	OptimizeThreshold int `yaml:"optimize_threshold"`
}

type RecognizeConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RedrawConfig struct {
	FrameMs int `yaml:"frame_ms"`
}

type JournalConfig struct {
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	Canvas        CanvasConfig    `yaml:"canvas"`
	Eraser        EraserConfig    `yaml:"eraser"`
	Zoom          ZoomConfig      `yaml:"zoom"`
	History       HistoryConfig   `yaml:"history"`
	Paths         PathsConfig     `yaml:"paths"`
	Recognize     RecognizeConfig `yaml:"recognize"`
	Redraw        RedrawConfig    `yaml:"redraw"`
	Journal       JournalConfig   `yaml:"journal"`
	Logging       LoggingConfig   `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			GridSize:    20,
			HandleSize:  8,
			FontSize:    48,
			FontFamily:  "sans-serif",
			StrokeColor: "#000000",
			StrokeWidth: 2,
			StairSteps:  10,
		},
		Eraser:    EraserConfig{Size: 30, MinSize: 5, MaxSize: 50},
		Zoom:      ZoomConfig{MinScale: 0.1, MaxScale: 5, WheelStep: 0.1, TouchCooldownMs: 200},
		History:   HistoryConfig{MaxEntries: 200, CoalesceMs: 0},
		Paths:     PathsConfig{MaxPoints: 1000, OptimizeThreshold: 50},
		Recognize: RecognizeConfig{Enabled: false},
		Redraw:    RedrawConfig{FrameMs: 16},
		Logging:   LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvGridSize    = "FSK_GRID_SIZE"
	EnvEraserSize  = "FSK_ERASER_SIZE"
	EnvRecognize   = "FSK_RECOGNIZE"
	EnvJournalPath = "FSK_JOURNAL_PATH"
	EnvConfigPath  = "FSK_CONFIG"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "FSK_LOG_LEVEL"
	EnvLogFormat = "FSK_LOG_FORMAT"
	EnvLogSource = "FSK_LOG_SOURCE"
	EnvLogFile   = "FSK_LOG_FILE"
)

// ConfigPath returns the per-user config file path. FSK_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "FloorSketch")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "FloorSketch")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "floorsketch")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "floorsketch")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// A malformed file is ignored in favour of defaults.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Marshal renders cfg as YAML.
func Marshal(cfg AppConfig) ([]byte, error) { return yaml.Marshal(cfg) }

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// canvas
	setF(&dst.Canvas.GridSize, src.Canvas.GridSize)
	setF(&dst.Canvas.HandleSize, src.Canvas.HandleSize)
	setF(&dst.Canvas.FontSize, src.Canvas.FontSize)
	setS(&dst.Canvas.FontFamily, src.Canvas.FontFamily)
	setS(&dst.Canvas.StrokeColor, src.Canvas.StrokeColor)
	setF(&dst.Canvas.StrokeWidth, src.Canvas.StrokeWidth)
	setI(&dst.Canvas.StairSteps, src.Canvas.StairSteps)
	// eraser
	setF(&dst.Eraser.Size, src.Eraser.Size)
	setF(&dst.Eraser.MinSize, src.Eraser.MinSize)
	setF(&dst.Eraser.MaxSize, src.Eraser.MaxSize)
	// zoom
	setF(&dst.Zoom.MinScale, src.Zoom.MinScale)
	setF(&dst.Zoom.MaxScale, src.Zoom.MaxScale)
	setF(&dst.Zoom.WheelStep, src.Zoom.WheelStep)
	setI(&dst.Zoom.TouchCooldownMs, src.Zoom.TouchCooldownMs)
	// history; coalesce_ms of 0 is a valid choice and is copied as-is
	setI(&dst.History.MaxEntries, src.History.MaxEntries)
	dst.History.CoalesceMs = src.History.CoalesceMs
	setI(&dst.Paths.MaxPoints, src.Paths.MaxPoints)
	setI(&dst.Paths.OptimizeThreshold, src.Paths.OptimizeThreshold)
	// booleans: copy directly from src (file) so user preferences persist
	dst.Recognize.Enabled = src.Recognize.Enabled
	setI(&dst.Redraw.FrameMs, src.Redraw.FrameMs)
	setS(&dst.Journal.Path, src.Journal.Path)
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	setS(&dst.Logging.File, src.Logging.File)
}

func setF(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

func setI(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setS(dst *string, v string) {
	if s := strings.TrimSpace(v); s != "" {
		*dst = s
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.Canvas.GridSize = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvEraserSize)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			cfg.Eraser.Size = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvRecognize)); v != "" {
		cfg.Recognize.Enabled = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournalPath)); v != "" {
		cfg.Journal.Path = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var name string
	switch key {
	case "canvas.grid_size":
		name = EnvGridSize
	case "eraser.size":
		name = EnvEraserSize
	case "recognize.enabled":
		name = EnvRecognize
	case "journal.path":
		name = EnvJournalPath
	case "logging.level":
		name = EnvLogLevel
	case "logging.format":
		name = EnvLogFormat
	case "logging.source":
		name = EnvLogSource
	case "logging.file":
		name = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(name) != "" {
		return name, true
	}
	return "", false
}
