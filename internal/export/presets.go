/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"floorsketch/internal/scene"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls exporting one snapshot to several formats.
//
// Files are named <Base>.<format> inside OutDir; an empty OutDir uses the
// preset name, an empty Base uses "floorplan".
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: pdf, png, svg, json; empty means preset defaults
	OutDir  string
	Base    string
	Options Options
}

// BatchExport writes every requested format and returns the written paths.
func BatchExport(snap scene.Snapshot, opt BatchOptions) ([]string, error) {
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	outDir := opt.OutDir
	if outDir == "" {
		outDir = string(opt.Preset)
		if outDir == "" {
			outDir = "."
		}
	}
	base := opt.Base
	if base == "" {
		base = "floorplan"
	}
	o := opt.Options
	if opt.Preset == PresetPrint && o.DPI == 0 {
		o.DPI = 300
	}
	o.ShowGrid = o.ShowGrid || presetShowsGrid(opt.Preset)

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(outDir, base+"."+f)
		var err error
		switch f {
		case "pdf":
			err = ExportPDF(out, snap, o)
		case "png":
			err = ExportPNG(out, snap, o)
		case "svg":
			err = ExportSVG(out, snap, o)
		case "json":
			err = ExportJSON(out, snap)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// WriteJSON writes the snapshot as indented JSON.
func WriteJSON(w io.Writer, snap scene.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// ExportJSON writes the snapshot JSON to outPath.
func ExportJSON(outPath string, snap scene.Snapshot) error {
	return writeFile(outPath, func(w io.Writer) error { return WriteJSON(w, snap) })
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetShowsGrid(p PresetName) bool {
	return p == PresetPrint
}
