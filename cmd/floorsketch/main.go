/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"floorsketch/internal/config"
	"floorsketch/internal/crash"
	"floorsketch/internal/editor"
	"floorsketch/internal/export"
	applog "floorsketch/internal/log"
	"floorsketch/internal/script"
	"floorsketch/internal/storage"
	"floorsketch/internal/telemetry"
	"floorsketch/internal/version"
)

func usage() {
	fmt.Println("floorsketch: floor plan sketch engine")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  floorsketch version|-v|--version            Show version")
	fmt.Println("  floorsketch replay <script.json> [flags]     Replay an input script and export the result")
	fmt.Println("      -png/-pdf/-svg/-json <file>              Write a single format")
	fmt.Println("      -preset web|print -out <dir>             Batch export with a preset")
	fmt.Println("      -fit -grid                               Frame the drawing, draw the grid")
	fmt.Println("  floorsketch journal [-session id] [-n 20]    List journaled operations")
	fmt.Println("  floorsketch config [init]                    Print the effective config, or write defaults")
}

func main() {
	cfg, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", cfgErr))
	}

	var sess *editor.Session
	defer crash.Recover(crash.Reporter{Dump: func() ([]byte, error) {
		if sess == nil {
			return nil, errors.New("no active session")
		}
		return sess.MarshalJSON()
	}})

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	var err error
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return
	case "replay":
		err = runReplay(cfg, args[2:], func(s *editor.Session) { sess = s })
	case "journal":
		err = runJournal(cfg, args[2:])
	case "config":
		err = runConfig(cfg, args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error("command failed", slog.String("cmd", args[1]), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type replayFlags struct {
	png, pdf, svg, json string
	preset, out         string
	fit, grid           bool
}

func runReplay(cfg config.AppConfig, args []string, onSession func(*editor.Session)) error {
	fs := flag.NewFlagSet("replay", flag.ContinueOnError)
	var f replayFlags
	fs.StringVar(&f.png, "png", "", "write PNG to file")
	fs.StringVar(&f.pdf, "pdf", "", "write PDF to file")
	fs.StringVar(&f.svg, "svg", "", "write SVG to file")
	fs.StringVar(&f.json, "json", "", "write scene JSON to file")
	fs.StringVar(&f.preset, "preset", "", "batch export preset (web, print)")
	fs.StringVar(&f.out, "out", "", "batch export directory")
	fs.BoolVar(&f.fit, "fit", false, "frame the drawing bounds")
	fs.BoolVar(&f.grid, "grid", false, "draw the grid")
	if len(args) == 0 {
		return errors.New("replay requires <script.json>")
	}
	path := args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	s, err := script.Load(path)
	if err != nil {
		return err
	}

	var sinks []telemetry.Sink
	var j *storage.Journal
	if cfg.Journal.Path != "" {
		if j, err = storage.OpenJournal(cfg.Journal.Path); err != nil {
			return err
		}
		defer func() { _ = j.Close() }()
		sinks = append(sinks, j)
	}
	tel := telemetry.New(telemetry.FromEnv(), sinks...)
	defer tel.Close()

	sess := script.NewSession(s, editor.OptionsFromConfig(cfg), editor.WithTelemetry(tel))
	onSession(sess)
	ctx := applog.ContextWithSession(context.Background(), sess.ID())
	if err := script.Run(ctx, sess, s); err != nil {
		return err
	}
	tel.Flush(ctx)

	snap := sess.Scene()
	if j != nil {
		blob, err := sess.MarshalJSON()
		if err != nil {
			return err
		}
		if err := j.SaveSnapshot(ctx, sess.ID(), blob, time.Now()); err != nil {
			return err
		}
	}

	o := export.Options{Title: s.Title, Grid: s.Grid, FitToContent: f.fit, ShowGrid: f.grid}
	written := 0
	for _, w := range []struct {
		path  string
		write func(string) error
	}{
		{f.png, func(p string) error { return export.ExportPNG(p, snap, o) }},
		{f.pdf, func(p string) error { return export.ExportPDF(p, snap, o) }},
		{f.svg, func(p string) error { return export.ExportSVG(p, snap, o) }},
		{f.json, func(p string) error { return export.ExportJSON(p, snap) }},
	} {
		if w.path == "" {
			continue
		}
		if err := w.write(w.path); err != nil {
			return err
		}
		fmt.Println("Wrote", w.path)
		written++
	}
	if f.preset != "" {
		paths, err := export.BatchExport(snap, export.BatchOptions{
			Preset:  export.PresetName(strings.ToLower(f.preset)),
			OutDir:  f.out,
			Options: o,
		})
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Println("Wrote", p)
		}
		written += len(paths)
	}
	undo, redo := sess.HistoryStats()
	fmt.Printf("Replayed %d steps: %d shapes, %d openings, history %d/%d\n",
		len(s.Steps), len(snap.Shapes), len(snap.Openings), undo, redo)
	if written == 0 {
		fmt.Println("No export requested.")
	}
	return nil
}

func runJournal(cfg config.AppConfig, args []string) error {
	fs := flag.NewFlagSet("journal", flag.ContinueOnError)
	session := fs.String("session", "", "only this session")
	n := fs.Int("n", 20, "number of records")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Journal.Path == "" {
		return fmt.Errorf("no journal configured (set %s or journal.path)", config.EnvJournalPath)
	}
	j, err := storage.OpenJournal(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer func() { _ = j.Close() }()
	ctx := context.Background()
	recs, err := j.List(ctx, *session, *n)
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s  %-8s %-16s %-8s shapes=%d openings=%d\n",
			r.TS.Format(time.RFC3339), shortID(r.Session), r.Op, r.Kind, r.Shapes, r.Openings)
	}
	total, err := j.Count(ctx, *session)
	if err != nil {
		return err
	}
	fmt.Printf("%d of %d records\n", len(recs), total)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runConfig(cfg config.AppConfig, args []string) error {
	if len(args) > 0 && args[0] == "init" {
		if err := config.Save(config.Defaults()); err != nil {
			return err
		}
		path, _ := config.ConfigPath()
		fmt.Println("Wrote defaults to", path)
		return nil
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
