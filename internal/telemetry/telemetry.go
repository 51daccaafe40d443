/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry ships editor operation events to sinks off the
// event loop: the local operation journal and, when opted in, an HTTP
// endpoint. Crash reports can be uploaded to a separate endpoint.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	applog "floorsketch/internal/log"
	"floorsketch/internal/version"
)

// Event describes one editor mutation.
type Event struct {
	Session  string    `json:"session"`
	Op       string    `json:"op"`
	Kind     string    `json:"kind,omitempty"`
	Shapes   int       `json:"shapes"`
	Openings int       `json:"openings"`
	TS       time.Time `json:"ts"`
}

// Sink receives events from the client goroutine.
type Sink interface {
	Write(ctx context.Context, e Event) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, e Event) error

func (f SinkFunc) Write(ctx context.Context, e Event) error { return f(ctx, e) }

// Config holds runtime configuration for remote delivery.
// Remote telemetry is strictly opt-in and disabled by default.
//
// Environment variables (read by FromEnv):
// - FSK_TELEMETRY_OPT_IN: "1", "true", "yes" to enable remote events
// - FSK_TELEMETRY_URL: URL to POST JSON events to
// - FSK_CRASH_UPLOAD_URL: URL to POST crash reports to
// - FSK_TELEMETRY_TIMEOUT_MS: optional request timeout, default 1500ms
// - FSK_TELEMETRY_DEBUG: if set, logs delivery failures
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
	QueueSize    int
}

func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv("FSK_TELEMETRY_OPT_IN")),
		EventsURL:    strings.TrimSpace(os.Getenv("FSK_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("FSK_CRASH_UPLOAD_URL")),
		Timeout:      1500 * time.Millisecond,
		DebugLogging: os.Getenv("FSK_TELEMETRY_DEBUG") != "",
	}
	if ms := strings.TrimSpace(os.Getenv("FSK_TELEMETRY_TIMEOUT_MS")); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// HTTPSink posts each event as JSON.
type HTTPSink struct {
	URL    string
	Client *http.Client
}

func (h HTTPSink) Write(ctx context.Context, e Event) error {
	payload := map[string]any{
		"name":     e.Op,
		"session":  e.Session,
		"kind":     e.Kind,
		"shapes":   e.Shapes,
		"openings": e.Openings,
		"ts":       e.TS.UTC().Format(time.RFC3339Nano),
		"version":  version.String(),
		"os":       runtime.GOOS,
		"arch":     runtime.GOARCH,
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.Client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telemetry endpoint: %s", resp.Status)
	}
	return nil
}

// Client is a minimal async sender; it drops events silently on errors.
// It never blocks the caller; the queue is bounded and drops when full.
type Client struct {
	cfg     Config
	log     *slog.Logger
	cli     *http.Client
	sinks   []Sink
	q       chan Event
	pending atomic.Int64
	dropped atomic.Int64
	once    sync.Once
	closed  chan struct{}
	done    chan struct{}
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
	defaultMu     sync.Mutex
)

// InitDefault initializes the package-level default client from env when first used.
func InitDefault() {
	defaultOnce.Do(func() {
		defaultMu.Lock()
		defer defaultMu.Unlock()
		if defaultClient == nil {
			defaultClient = New(FromEnv())
		}
	})
}

// NewDefault creates and installs the default client with cfg.
func NewDefault(cfg Config, sinks ...Sink) {
	c := New(cfg, sinks...)
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
}

func getDefault() *Client {
	InitDefault()
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultClient
}

// New constructs a client delivering to sinks, plus the HTTP endpoint when
// cfg opts in.
func New(cfg Config, sinks ...Sink) *Client {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan Event, cfg.QueueSize),
		closed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, s := range sinks {
		if s != nil {
			c.sinks = append(c.sinks, s)
		}
	}
	if cfg.OptIn && cfg.EventsURL != "" {
		c.sinks = append(c.sinks, HTTPSink{URL: cfg.EventsURL, Client: c.cli})
	}
	go c.loop()
	return c
}

// Enabled reports whether any sink will receive events.
func (c *Client) Enabled() bool { return c != nil && len(c.sinks) > 0 }

// Enabled reports whether the default client has sinks.
func Enabled() bool { return getDefault().Enabled() }

// Event enqueues e. Events without an op are ignored. Safe to call from anywhere.
func (c *Client) Event(e Event) {
	if !c.Enabled() || e.Op == "" {
		return
	}
	if e.TS.IsZero() {
		e.TS = time.Now()
	}
	c.pending.Add(1)
	select {
	case c.q <- e:
	default:
		c.pending.Add(-1)
		c.dropped.Add(1)
	}
}

// Dropped returns the number of events discarded because the queue was full.
func (c *Client) Dropped() int64 { return c.dropped.Load() }

// Flush waits briefly for queued events to be delivered.
func (c *Client) Flush(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for {
		if c.pending.Load() == 0 || time.Now().After(deadline) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// Close stops the background goroutine and waits for it to exit.
// Undelivered events are discarded.
func (c *Client) Close() {
	c.once.Do(func() { close(c.closed) })
	<-c.done
}

func (c *Client) loop() {
	defer close(c.done)
	for {
		select {
		case <-c.closed:
			return
		case e := <-c.q:
			c.deliver(e)
			c.pending.Add(-1)
		}
	}
}

func (c *Client) deliver(e Event) {
	for _, s := range c.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout())
		err := s.Write(ctx, e)
		cancel()
		if err != nil && c.cfg.DebugLogging {
			c.log.Debug("telemetry delivery failed", slog.String("op", e.Op), slog.Any("err", err))
		}
	}
}

func (c *Client) timeout() time.Duration {
	if c.cfg.Timeout > 0 {
		return c.cfg.Timeout
	}
	return 1500 * time.Millisecond
}

// UploadCrash posts an already-serialized crash report to the configured crash URL if opted in.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	go func(b []byte) {
		req, err := http.NewRequest(http.MethodPost, c.cfg.CrashURL, bytes.NewReader(b))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp, err := c.cli.Do(req)
		if err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		_ = resp.Body.Close()
		if c.cfg.DebugLogging {
			c.log.Debug("crash report uploaded")
		}
	}(append([]byte(nil), report...))
}

// UploadCrash using default client.
func UploadCrash(report []byte) { getDefault().UploadCrash(report) }
