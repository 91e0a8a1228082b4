// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package daq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"testing"

	"github.com/go-daq/tdaq"
	tlog "github.com/go-daq/tdaq/log"
	"github.com/go-lpc/bma400/conddb"
	"github.com/go-lpc/bma400/sensorapi"
)

func newTestContext(ctx context.Context) tdaq.Context {
	return tdaq.Context{
		Ctx: ctx,
		Msg: tlog.NewMsgStream("bma400-test", tlog.LvlError, io.Discard),
	}
}

func TestServer(t *testing.T) {
	dev := newFakeDriver(repeat(fifoFull, 5)...)
	presets := map[string]conddb.Preset{
		"fast": {
			Name: "fast", ODR: sensorapi.ODR400Hz, Range: sensorapi.Range8G,
			FIFOFlags: 0xe4, Iterations: 3,
		},
	}

	srv := NewServer(
		"bma400-test",
		func() (Device, error) { return dev, nil },
		WithServerLogger(log.New(io.Discard, "", 0)),
		WithPresets(func(ctx context.Context, name string) (conddb.Preset, error) {
			p, ok := presets[name]
			if !ok {
				return p, fmt.Errorf("no preset %q", name)
			}
			return p, nil
		}),
	)

	ctx := newTestContext(context.Background())
	var resp tdaq.Frame

	cmd := func(name string) tdaq.Frame {
		buf := new(bytes.Buffer)
		enc := tdaq.NewEncoder(buf)
		enc.WriteStr(name)
		return tdaq.Frame{Body: buf.Bytes()}
	}

	if err := srv.OnStart(ctx, &resp, tdaq.Frame{}); err == nil {
		t.Fatalf("expected an error starting an uninitialized server")
	}

	if err := srv.OnConfig(ctx, &resp, cmd("missing")); err == nil {
		t.Fatalf("expected an error for a missing preset")
	}

	if err := srv.OnConfig(ctx, &resp, cmd("fast")); err != nil {
		t.Fatalf("could not /config: %+v", err)
	}

	if err := srv.OnInit(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /init: %+v", err)
	}
	if got, want := dev.accel.ODR, sensorapi.ODR400Hz; got != want {
		t.Fatalf("preset not applied: got=0x%x, want=0x%x", got, want)
	}

	if err := srv.OnInit(ctx, &resp, tdaq.Frame{}); err == nil {
		t.Fatalf("expected an error on double /init")
	}

	if err := srv.OnStart(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /start: %+v", err)
	}

	run, cancel := context.WithCancel(context.Background())
	errc := make(chan error)
	go func() {
		errc <- srv.Loop(newTestContext(run))
	}()

	for i := 0; i < 5; i++ {
		var dst tdaq.Frame
		err := srv.Output(ctx, &dst)
		if err != nil {
			t.Fatalf("could not read output %d: %+v", i, err)
		}

		var snap Snapshot
		err = NewDecoder(bytes.NewReader(dst.Body)).Decode(&snap)
		if err != nil {
			t.Fatalf("could not decode output %d: %+v", i, err)
		}
		if got, want := snap.Iteration, uint32(i+1); got != want {
			t.Fatalf("invalid iteration: got=%d, want=%d", got, want)
		}
		if got, want := len(snap.Samples), 3; got != want {
			t.Fatalf("invalid number of samples: got=%d, want=%d", got, want)
		}
	}

	if !srv.Running() {
		t.Fatalf("acquisition loop should be running")
	}
	if err := srv.OnReset(ctx, &resp, tdaq.Frame{}); err == nil {
		t.Fatalf("expected an error resetting a running acquisition")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("could not run acquisition loop: %+v", err)
	}
	if srv.Running() {
		t.Fatalf("acquisition loop should be stopped")
	}

	if got, want := srv.N(), 5; got != want {
		t.Fatalf("invalid number of snapshots: got=%d, want=%d", got, want)
	}

	if err := srv.OnStop(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /stop: %+v", err)
	}

	if err := srv.OnReset(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /reset: %+v", err)
	}
	if got, want := srv.N(), 0; got != want {
		t.Fatalf("invalid number of snapshots after /reset: got=%d, want=%d", got, want)
	}
	if got, want := dev.count("soft-reset"), 2; got != want {
		t.Fatalf("invalid number of soft resets: got=%d, want=%d", got, want)
	}

	if err := srv.OnQuit(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /quit: %+v", err)
	}
	if !dev.closed {
		t.Fatalf("sensor not closed on /quit")
	}
}

func TestServerOpenError(t *testing.T) {
	srv := NewServer(
		"bma400-test",
		func() (Device, error) { return nil, sensorapi.ErrNoSensorAPI },
		WithServerLogger(log.New(io.Discard, "", 0)),
	)

	ctx := newTestContext(context.Background())
	var resp tdaq.Frame

	if err := srv.OnConfig(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /config: %+v", err)
	}

	if err := srv.OnInit(ctx, &resp, tdaq.Frame{}); err == nil {
		t.Fatalf("expected an error")
	}

	if err := srv.Loop(ctx); err == nil {
		t.Fatalf("expected an error running an uninitialized server")
	}

	if err := srv.OnQuit(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /quit: %+v", err)
	}
}

func TestServerNoPresets(t *testing.T) {
	srv := NewServer(
		"bma400-test",
		func() (Device, error) { return newFakeDriver(), nil },
		WithConfig(DefaultConfig()),
	)

	buf := new(bytes.Buffer)
	tdaq.NewEncoder(buf).WriteStr("fast")

	var resp tdaq.Frame
	err := srv.OnConfig(newTestContext(context.Background()), &resp, tdaq.Frame{Body: buf.Bytes()})
	if err == nil {
		t.Fatalf("expected an error")
	}
}
