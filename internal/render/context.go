/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"roomplanner/internal/coords"
	applog "roomplanner/internal/log"
)

var (
	// ErrNotReady is returned by WaitReady when setup did not finish in time.
	ErrNotReady = errors.New("render context not ready")
	// ErrAlreadyRunning is returned by a second call to Run.
	ErrAlreadyRunning = errors.New("render context already running")
)

// Renderer draws scenes. Setup runs once on the render loop before any Render.
type Renderer interface {
	Setup(ctx context.Context) error
	Render(ctx context.Context, sc Scene, f Frame) error
}

// Options configures a Context.
type Options struct {
	Mapper coords.Mapper
	Logger *slog.Logger
}

// Stats is a point-in-time copy of the loop counters.
type Stats struct {
	Requested uint64
	Coalesced uint64
	Rendered  uint64
	Skipped   uint64
	Failed    uint64
	LastSeq   uint64
}

// Context owns the render loop. Requests carry no payload: they coalesce into
// a one-slot queue and the loop pulls the newest frame from its Source.
type Context struct {
	src    Source
	r      Renderer
	mapper coords.Mapper
	log    *slog.Logger

	reqs     chan struct{}
	ready    chan struct{}
	setupErr error
	running  atomic.Bool

	requested, coalesced, rendered, skipped, failed atomic.Uint64

	mu      sync.Mutex
	drawn   bool
	lastSeq uint64
}

// NewContext builds a stopped context; call Run to start it.
func NewContext(src Source, r Renderer, opts Options) *Context {
	if opts.Mapper.Scale <= 0 {
		opts.Mapper = coords.Default()
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("render")
	}
	return &Context{
		src:    src,
		r:      r,
		mapper: opts.Mapper,
		log:    l,
		reqs:   make(chan struct{}, 1),
		ready:  make(chan struct{}),
	}
}

// Request asks for a redraw. It never blocks.
func (c *Context) Request() {
	c.requested.Add(1)
	select {
	case c.reqs <- struct{}{}:
	default:
		c.coalesced.Add(1)
	}
}

// Run performs setup, draws the current frame and then serves requests until
// ctx is cancelled. Render failures are logged and do not stop the loop.
func (c *Context) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	l := applog.WithOperation(c.log, "run")
	err := c.r.Setup(ctx)
	c.setupErr = err
	close(c.ready)
	if err != nil {
		l.Error("setup failed", slog.Any("err", err))
		return fmt.Errorf("render setup: %w", err)
	}
	l.Debug("ready")
	c.draw(ctx)
	for {
		select {
		case <-ctx.Done():
			l.Debug("stopped", slog.Uint64("rendered", c.rendered.Load()))
			return nil
		case <-c.reqs:
			c.draw(ctx)
		}
	}
}

func (c *Context) draw(ctx context.Context) {
	f := c.src.Frame()
	c.mu.Lock()
	if c.drawn && f.Seq == c.lastSeq {
		c.mu.Unlock()
		c.skipped.Add(1)
		return
	}
	c.mu.Unlock()

	sc := Build(f, c.mapper)
	if err := c.r.Render(ctx, sc, f); err != nil {
		c.failed.Add(1)
		c.log.Warn("render failed", slog.Uint64("seq", f.Seq), slog.Any("err", err))
		return
	}
	c.mu.Lock()
	c.drawn = true
	c.lastSeq = f.Seq
	c.mu.Unlock()
	c.rendered.Add(1)
}

// WaitReady blocks until setup finished, ctx ends or timeout elapses.
// It returns the setup error, if any.
func (c *Context) WaitReady(ctx context.Context, timeout time.Duration) error {
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-c.ready:
		return c.setupErr
	case <-t.C:
		return ErrNotReady
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether setup completed successfully.
func (c *Context) Ready() bool {
	select {
	case <-c.ready:
		return c.setupErr == nil
	default:
		return false
	}
}

func (c *Context) Stats() Stats {
	c.mu.Lock()
	last := c.lastSeq
	c.mu.Unlock()
	return Stats{
		Requested: c.requested.Load(),
		Coalesced: c.coalesced.Load(),
		Rendered:  c.rendered.Load(),
		Skipped:   c.skipped.Load(),
		Failed:    c.failed.Load(),
		LastSeq:   last,
	}
}
