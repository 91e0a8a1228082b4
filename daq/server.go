// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sync"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/bma400/conddb"
)

// Device is a sensor driver that can be released.
type Device interface {
	Driver
	io.Closer
}

// Server runs FIFO-full acquisitions as a TDAQ process.
//
// Snapshots are published, encoded, on the output handle.
type Server struct {
	name string
	msg  *log.Logger

	open   func() (Device, error)
	preset func(ctx context.Context, name string) (conddb.Preset, error)

	mu      sync.Mutex
	cfg     Config
	dev     Device
	n       int
	running bool

	data chan []byte
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerLogger sets the logger used for the sensor diagnostics.
func WithServerLogger(msg *log.Logger) ServerOption {
	return func(srv *Server) {
		srv.msg = msg
	}
}

// WithConfig sets the acquisition configuration.
func WithConfig(cfg Config) ServerOption {
	return func(srv *Server) {
		srv.cfg = cfg
	}
}

// WithPresets sets the function used to retrieve presets on /config.
func WithPresets(f func(ctx context.Context, name string) (conddb.Preset, error)) ServerOption {
	return func(srv *Server) {
		srv.preset = f
	}
}

// NewServer returns a new TDAQ server, using open to acquire the sensor on /init.
func NewServer(name string, open func() (Device, error), opts ...ServerOption) *Server {
	srv := &Server{
		name: name,
		msg:  log.New(os.Stdout, name+": ", 0),
		open: open,
		cfg:  DefaultConfig(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	// an acquisition server streams until /stop.
	srv.cfg.Iterations = 0
	return srv
}

// Register installs the server handles on the provided TDAQ server.
func (srv *Server) Register(s *tdaq.Server) {
	s.CmdHandle("/config", srv.OnConfig)
	s.CmdHandle("/init", srv.OnInit)
	s.CmdHandle("/reset", srv.OnReset)
	s.CmdHandle("/start", srv.OnStart)
	s.CmdHandle("/stop", srv.OnStop)
	s.CmdHandle("/quit", srv.OnQuit)

	s.OutputHandle("/accel", srv.Output)

	s.RunHandle(srv.Loop)
}

// N returns the number of snapshots acquired since the last /init or /reset.
func (srv *Server) N() int {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.n
}

// Running reports whether the acquisition loop is running.
func (srv *Server) Running() bool {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	return srv.running
}

func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	if len(req.Body) == 0 {
		return nil
	}

	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	name := dec.ReadStr()
	if name == "" {
		return nil
	}

	if srv.preset == nil {
		ctx.Msg.Errorf("no preset database to retrieve %q", name)
		return fmt.Errorf("no preset database to retrieve %q", name)
	}

	p, err := srv.preset(ctx.Ctx, name)
	if err != nil {
		ctx.Msg.Errorf("could not retrieve preset %q: %+v", name, err)
		return fmt.Errorf("could not retrieve preset %q: %w", name, err)
	}

	cfg, err := ConfigFrom(p)
	if err != nil {
		ctx.Msg.Errorf("could not use preset %q: %+v", name, err)
		return fmt.Errorf("could not use preset %q: %w", name, err)
	}
	cfg.Iterations = 0

	srv.mu.Lock()
	srv.cfg = cfg
	srv.mu.Unlock()

	ctx.Msg.Infof("preset: %v", p)
	return nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.dev != nil {
		ctx.Msg.Errorf("sensor already initialized")
		return fmt.Errorf("sensor already initialized")
	}

	dev, err := srv.open()
	if err != nil {
		ctx.Msg.Errorf("could not open sensor: %+v", err)
		return fmt.Errorf("could not open sensor: %w", err)
	}

	err = Configure(dev, srv.cfg, srv.msg)
	if err != nil {
		ctx.Msg.Errorf("could not configure sensor: %+v", err)
	}

	srv.dev = dev
	srv.reset()
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.running {
		ctx.Msg.Errorf("could not reset a running acquisition")
		return fmt.Errorf("could not reset a running acquisition")
	}

	if srv.dev == nil {
		srv.reset()
		return nil
	}

	err := Configure(srv.dev, srv.cfg, srv.msg)
	if err != nil {
		ctx.Msg.Errorf("could not configure sensor: %+v", err)
	}
	srv.reset()
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.dev == nil {
		ctx.Msg.Errorf("sensor not initialized")
		return fmt.Errorf("sensor not initialized")
	}
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := srv.N()
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.dev == nil {
		return nil
	}

	err := srv.dev.Close()
	srv.dev = nil
	if err != nil {
		ctx.Msg.Errorf("could not close sensor: %+v", err)
		return fmt.Errorf("could not close sensor: %w", err)
	}
	return nil
}

// Output publishes the next encoded snapshot.
func (srv *Server) Output(ctx tdaq.Context, dst *tdaq.Frame) error {
	srv.mu.Lock()
	data := srv.data
	srv.mu.Unlock()

	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case raw := <-data:
		dst.Body = raw
	}
	return nil
}

// Loop acquires snapshots until the run is stopped.
func (srv *Server) Loop(ctx tdaq.Context) error {
	srv.mu.Lock()
	var (
		dev  = srv.dev
		cfg  = srv.cfg
		data = srv.data
	)
	if dev == nil {
		srv.mu.Unlock()
		return fmt.Errorf("sensor not initialized")
	}
	srv.running = true
	srv.mu.Unlock()

	defer func() {
		srv.mu.Lock()
		srv.running = false
		srv.mu.Unlock()
	}()

	_, err := Run(ctx.Ctx, dev, cfg, srv.msg, func(snap Snapshot) error {
		buf := new(bytes.Buffer)
		err := NewEncoder(buf).Encode(snap)
		if err != nil {
			return err
		}

		select {
		case data <- buf.Bytes():
			srv.mu.Lock()
			srv.n++
			srv.mu.Unlock()
		default:
			ctx.Msg.Warnf("output queue full: dropping snapshot %d", snap.Iteration)
		}
		return nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil
	default:
		ctx.Msg.Errorf("could not run acquisition: %+v", err)
		return err
	}
}

// reset clears the acquisition state. reset must be called with srv.mu held.
func (srv *Server) reset() {
	srv.n = 0
	srv.data = make(chan []byte, 1024)
}
